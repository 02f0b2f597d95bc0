package jsast

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/xssvec/xssvec/internal/catalog"
)

// identifierTokenTypes are the leaf types that carry identifier names. The
// grammar splits member accesses into identifier/property_identifier, so both
// sides of document.cookie are classified.
var identifierTokenTypes = map[string]bool{
	"identifier":                            true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
}

// functionDeclarationTypes are node types counted as named function
// declarations (generators included, they declare a name the same way).
var functionDeclarationTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
}

// callLikeTypes are node types counted as function or method calls. Function
// expressions count as call-like on purpose: payloads lean on IIFE wrappers.
var callLikeTypes = map[string]bool{
	"call_expression":     true,
	"function_expression": true,
	"function":            true,
	"generator_function":  true,
}

// Record is the feature record of one JavaScript fragment.
type Record struct {
	Length          int
	Dom             map[string]int
	Properties      map[string]int
	Methods         map[string]int
	DefineFunction  int
	FunctionCalls   int
	StringMaxLength int
}

// NewRecord returns an all-zero record for a fragment of the given character
// length, with one counter per catalog name.
func NewRecord(cats *catalog.Catalog, length int) *Record {
	rec := &Record{
		Length:     length,
		Dom:        make(map[string]int, len(cats.DomObjects)),
		Properties: make(map[string]int, len(cats.Properties)),
		Methods:    make(map[string]int, len(cats.Methods)),
	}
	for _, name := range cats.DomObjects {
		rec.Dom[name] = 0
	}
	for _, name := range cats.Properties {
		rec.Properties[name] = 0
	}
	for _, name := range cats.Methods {
		rec.Methods[name] = 0
	}
	return rec
}

// Analyzer turns JavaScript fragments into Records against a fixed catalog.
// Safe for concurrent use; every Analyze call parses with its own parser.
type Analyzer struct {
	cats   *catalog.Catalog
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer classifying identifiers against cats.
func NewAnalyzer(cats *catalog.Catalog, logger *slog.Logger) *Analyzer {
	return &Analyzer{cats: cats, logger: logger}
}

// Analyze parses one fragment and returns its Record. origin names the page
// the fragment came from, for diagnostics only. On parse failure the fragment
// is reported and the error returned; callers must drop the fragment from
// aggregation rather than treat it as zero-valued.
func (a *Analyzer) Analyze(ctx context.Context, source, origin string) (*Record, error) {
	parsed, err := Parse(ctx, source)
	if err != nil {
		// XSS exploits frequently truncate or break the surrounding
		// script; that only ever costs this one fragment.
		a.logger.Error("invalid JavaScript fragment",
			"origin", origin, "code", source, "error", err)
		return nil, err
	}

	rec := NewRecord(a.cats, utf8.RuneCountInString(source))

	// Syntactic pass: nodes without a type field are skipped, not an error.
	WalkMaps(parsed.Tree, func(m Map) {
		t, ok := m["type"].(Scalar)
		if !ok {
			return
		}
		switch {
		case functionDeclarationTypes[string(t)]:
			rec.DefineFunction++
		case callLikeTypes[string(t)]:
			rec.FunctionCalls++
		}
	})

	// Lexical pass. Identifiers are classified dom -> prop -> method, first
	// match wins, so a name in several catalogs is never double-counted.
	var literals []string
	for _, tok := range parsed.Tokens {
		switch {
		case identifierTokenTypes[tok.Type]:
			if _, ok := rec.Dom[tok.Value]; ok {
				rec.Dom[tok.Value]++
			} else if _, ok := rec.Properties[tok.Value]; ok {
				rec.Properties[tok.Value]++
			} else if _, ok := rec.Methods[tok.Value]; ok {
				rec.Methods[tok.Value]++
			}
		case tok.Value == "string":
			// TODO: this compares the token text against the literal word
			// "string", so real string literals are never collected and
			// StringMaxLength stays 0 for them. The training data was built
			// with this comparison; switching to a token-type check changes
			// the js_string_max_length column for every existing dataset.
			literals = append(literals, tok.Value)
		}
	}
	for _, s := range literals {
		if n := utf8.RuneCountInString(s); n > rec.StringMaxLength {
			rec.StringMaxLength = n
		}
	}

	return rec, nil
}
