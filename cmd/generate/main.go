// Command generate builds the training CSV: it reads the labeled page
// manifests, extracts one feature record per mirrored page, and writes the
// rows in the catalog's canonical column order.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/xssvec/xssvec/internal/catalog"
	"github.com/xssvec/xssvec/internal/dataset"
	"github.com/xssvec/xssvec/internal/extract"
	"github.com/xssvec/xssvec/internal/logging"
	"github.com/xssvec/xssvec/internal/store"
)

func main() {
	// A .env file is optional; flags below fall back to its values.
	godotenv.Load()

	var (
		xssedManifest = flag.String("xssed", envOr("XSSVEC_XSSED", "xssed.json"),
			"manifest of mirrored xssed.com pages (label 1)")
		xssedDir = flag.String("xssed-dir", envOr("XSSVEC_XSSED_DIR", "html/xssed"),
			"directory the xssed manifest paths are relative to")
		randomManifest = flag.String("randomwalk", envOr("XSSVEC_RANDOMWALK", "randomwalk.json"),
			"manifest of random-walk pages (label 0)")
		randomDir = flag.String("randomwalk-dir", envOr("XSSVEC_RANDOMWALK_DIR", "html/randomsample/subsample"),
			"directory holding the subsampled random-walk pages")
		outPath     = flag.String("out", envOr("XSSVEC_OUT", "data.csv"), "output CSV path")
		dbPath      = flag.String("db", os.Getenv("XSSVEC_DB"), "optional SQLite database recording run history")
		catalogPath = flag.String("catalog", os.Getenv("XSSVEC_CATALOG"), "optional YAML catalog overriding the defaults")
		workers     = flag.Int("workers", runtime.NumCPU(), "number of extraction workers")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(level)

	cats := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.Load(*catalogPath)
		if err != nil {
			logger.Error("loading catalog", "error", err)
			os.Exit(1)
		}
		cats = loaded
	}

	var st *store.Store
	if *dbPath != "" {
		var err error
		st, err = store.NewStore(*dbPath)
		if err != nil {
			logger.Error("opening store", "error", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	benign, err := dataset.LoadRandomWalk(*randomManifest, *randomDir)
	if err != nil {
		logger.Error("loading random-walk manifest", "error", err)
		os.Exit(1)
	}
	malicious, err := dataset.LoadXssed(*xssedManifest, *xssedDir, logger)
	if err != nil {
		logger.Error("loading xssed manifest", "error", err)
		os.Exit(1)
	}
	pages := append(benign, malicious...)
	logger.Info("manifests loaded", "benign", len(benign), "malicious", len(malicious))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()

	runner := dataset.NewRunner(extract.NewExtractor(cats, logger), st, logger, *workers)
	rows, runErr := runner.Run(ctx, pages)
	if runErr != nil {
		logger.Warn("run interrupted, writing partial output", "error", runErr)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		logger.Error("creating output file", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := dataset.WriteCSV(out, cats.Schema(), rows); err != nil {
		logger.Error("writing csv", "error", err)
		os.Exit(1)
	}

	logger.Info("dataset written", "path", *outPath, "rows", len(rows))
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
