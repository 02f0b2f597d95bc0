package extract

import (
	"context"

	"github.com/xssvec/xssvec/internal/jsast"
)

// Page extracts the full feature record of the page at path with the given
// source URL. A missing file yields ErrorPageNotFound and no record.
func (e *Extractor) Page(ctx context.Context, path, pageURL string) (Features, error) {
	doc, err := e.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return e.pageFromDocument(ctx, doc, pageURL, path), nil
}

// PageFromHTML extracts the full feature record of an in-memory document.
func (e *Extractor) PageFromHTML(ctx context.Context, rawHTML, pageURL string) (Features, error) {
	doc, err := e.ParseDocument(rawHTML, pageURL)
	if err != nil {
		return nil, err
	}
	return e.pageFromDocument(ctx, doc, pageURL, pageURL), nil
}

// pageFromDocument analyzes every fragment of doc and merges the three
// feature blocks. For a fixed catalog the returned key set is identical for
// every page.
func (e *Extractor) pageFromDocument(ctx context.Context, doc *Document, pageURL, origin string) Features {
	feats := URLFeatures(pageURL)
	feats.merge(doc.Features)
	feats.merge(e.reduceFragments(ctx, e.analyzeFragments(ctx, doc.Fragments, origin)))
	return feats
}

// analyzeFragments runs the fragment analyzer over every extracted fragment.
// A fragment that fails to parse is dropped, not zero-filled; the failure is
// already reported by the analyzer and the page itself still succeeds.
func (e *Extractor) analyzeFragments(ctx context.Context, fragments []string, origin string) []*jsast.Record {
	records := make([]*jsast.Record, 0, len(fragments))
	for _, fragment := range fragments {
		rec, err := e.analyzer.Analyze(ctx, fragment, origin)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}
