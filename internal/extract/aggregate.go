package extract

import (
	"context"

	"github.com/xssvec/xssvec/internal/jsast"
)

// reduceFragments folds per-fragment records into the page-level JavaScript
// feature block. Dom/prop/method counters and the string length take the
// maximum across fragments; length, declaration and call counts take the
// minimum. The asymmetry is part of the feature definition, not an
// implementation convenience.
//
// An empty list aggregates over the record of the empty string, so the block
// is always fully populated even for pages carrying no JavaScript at all
// (pages demonstrating pure tag injection exist in the wild).
func (e *Extractor) reduceFragments(ctx context.Context, records []*jsast.Record) Features {
	if len(records) == 0 {
		empty, err := e.analyzer.Analyze(ctx, "", "")
		if err != nil {
			// Analyzing "" only fails on an expired context; the zero
			// record is identical to what it would have produced.
			empty = jsast.NewRecord(e.cats, 0)
		}
		records = []*jsast.Record{empty}
	}

	feats := make(Features, len(e.cats.DomObjects)+len(e.cats.Properties)+len(e.cats.Methods)+4)
	for _, name := range e.cats.DomObjects {
		feats["js_dom_"+name] = maxOver(records, func(r *jsast.Record) int { return r.Dom[name] })
	}
	for _, name := range e.cats.Properties {
		feats["js_prop_"+name] = maxOver(records, func(r *jsast.Record) int { return r.Properties[name] })
	}
	for _, name := range e.cats.Methods {
		feats["js_method_"+name] = maxOver(records, func(r *jsast.Record) int { return r.Methods[name] })
	}
	feats["js_min_length"] = minOver(records, func(r *jsast.Record) int { return r.Length })
	feats["js_min_define_function"] = minOver(records, func(r *jsast.Record) int { return r.DefineFunction })
	feats["js_min_function_calls"] = minOver(records, func(r *jsast.Record) int { return r.FunctionCalls })
	feats["js_string_max_length"] = maxOver(records, func(r *jsast.Record) int { return r.StringMaxLength })
	return feats
}

func maxOver(records []*jsast.Record, get func(*jsast.Record) int) float64 {
	best := get(records[0])
	for _, r := range records[1:] {
		if v := get(r); v > best {
			best = v
		}
	}
	return float64(best)
}

func minOver(records []*jsast.Record, get func(*jsast.Record) int) float64 {
	best := get(records[0])
	for _, r := range records[1:] {
		if v := get(r); v < best {
			best = v
		}
	}
	return float64(best)
}
