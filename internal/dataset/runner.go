package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xssvec/xssvec/internal/extract"
	"github.com/xssvec/xssvec/internal/logging"
	"github.com/xssvec/xssvec/internal/store"
)

// Runner drives feature extraction over a list of labeled pages. Pages are
// independent and the catalogs read-only, so they are processed by a fixed
// pool of workers.
type Runner struct {
	extractor     *extract.Extractor
	store         *store.Store // nil disables run history
	logger        *slog.Logger
	workers       int
	pageTimeout   time.Duration
	progressEvery int
}

// NewRunner creates a Runner with the given worker count. st may be nil.
func NewRunner(extractor *extract.Extractor, st *store.Store, logger *slog.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		extractor:     extractor,
		store:         st,
		logger:        logger,
		workers:       workers,
		pageTimeout:   30 * time.Second,
		progressEvery: 20,
	}
}

// Run extracts one feature record per page, in manifest order. Pages whose
// document is missing or unreadable are skipped and logged; no page failure
// aborts the run. Only ctx cancellation stops early.
func (r *Runner) Run(ctx context.Context, pages []Page) ([]extract.Features, error) {
	var runID string
	if r.store != nil {
		run, err := r.store.BeginRun(ctx)
		if err != nil {
			return nil, err
		}
		runID = run.ID
	}

	results := make([]extract.Features, len(pages))
	jobs := make(chan int)
	var done atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.processPage(ctx, runID, pages[idx])
				if n := done.Add(1); n%int64(r.progressEvery) == 0 {
					r.logger.Info("extraction progress", "done", n, "total", len(pages))
				}
			}
		}()
	}

feed:
	for idx := range pages {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	rows := make([]extract.Features, 0, len(pages))
	for _, row := range results {
		if row != nil {
			rows = append(rows, row)
		}
	}

	if r.store != nil {
		if err := r.store.FinishRun(context.WithoutCancel(ctx), runID, len(rows)); err != nil {
			r.logger.Error("recording run completion", "run", runID, "error", err)
		}
	}
	r.logger.Info("extraction finished",
		"pages", len(pages), "rows", len(rows), "skipped", len(pages)-len(rows))

	return rows, ctx.Err()
}

// processPage extracts one page under its own timeout, so a pathological
// document costs at most that page. Returns nil when the page is skipped.
func (r *Runner) processPage(ctx context.Context, runID string, page Page) extract.Features {
	logger := logging.WithPage(r.logger, page.Path, page.URL)

	pctx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()

	feats, err := r.extractor.Page(pctx, page.Path, page.URL)
	if errors.Is(err, extract.ErrorPageNotFound) {
		logger.Info("file not found, skipping page")
		return nil
	}
	if err != nil {
		logger.Error("page extraction failed", "error", err)
		return nil
	}
	feats["class"] = float64(page.Label)

	if r.store != nil {
		if err := r.store.InsertPage(pctx, runID, page.URL, page.Path, page.Label, feats); err != nil {
			logger.Error("storing page row", "error", err)
		}
	}
	return feats
}
