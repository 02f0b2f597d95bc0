package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/xssvec/xssvec/internal/catalog"
	"github.com/xssvec/xssvec/internal/jsast"
)

// ErrorPageNotFound is returned when the HTML document is missing on disk.
// Callers must skip the page entirely; it is not a zero-valued page.
var ErrorPageNotFound = errors.New("html document not found")

// jsProtocolRe matches javascript: pseudo-protocol attribute values. Leading
// whitespace, case and embedded newlines are all tolerated; filter evasion
// payloads rely on every one of them.
var jsProtocolRe = regexp.MustCompile(`(?is)^\s*javascript:(.*)`)

// Document is the HTML half of a page: structural feature counts plus the
// ordered JavaScript fragments found in the document's execution vectors.
type Document struct {
	Features  Features
	Fragments []string
}

// Extractor derives page feature records against a fixed catalog. Read-only
// after construction, safe for concurrent use.
type Extractor struct {
	cats     *catalog.Catalog
	analyzer *jsast.Analyzer
	logger   *slog.Logger
}

// NewExtractor creates an Extractor for the given catalog.
func NewExtractor(cats *catalog.Catalog, logger *slog.Logger) *Extractor {
	return &Extractor{
		cats:     cats,
		analyzer: jsast.NewAnalyzer(cats, logger),
		logger:   logger,
	}
}

// ReadDocument loads and parses the HTML file at path. A missing file yields
// ErrorPageNotFound; undecodable bytes are replaced, never fatal.
func (e *Extractor) ReadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrorPageNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.ParseDocument(strings.ToValidUTF8(string(raw), "�"), path)
}

// ParseDocument extracts the structural counts and the JavaScript fragments
// of rawHTML. origin names the document in diagnostics.
func (e *Extractor) ParseDocument(rawHTML, origin string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing html of %s: %w", origin, err)
	}

	feats := make(Features, len(e.cats.Tags)+len(e.cats.Attrs)+len(e.cats.EventHandlerAttrs)+2)
	fragments := make([]string, 0, 8)

	// A script element referencing an external file contributes no inline
	// fragment, only the boolean flag.
	feats["js_file"] = boolFeature(doc.Find("script[src]").Length() > 0)

	// Vector 1: inline <script> bodies.
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		text, ok := singleTextChild(s)
		if !ok {
			e.logger.Info("skipping ill-formed script element", "page", origin)
			return
		}
		fragments = append(fragments, text)
	})

	// Vectors 2-5: javascript: pseudo-protocol carriers.
	fragments = e.appendProtocolFragments(fragments, doc, "a", "href")
	fragments = e.appendProtocolFragments(fragments, doc, "form", "action")
	fragments = e.appendProtocolFragments(fragments, doc, "iframe", "src")
	fragments = e.appendProtocolFragments(fragments, doc, "frame", "src")

	// Structural counts, independent of fragment extraction.
	for _, tag := range e.cats.Tags {
		feats["html_tag_"+tag] = float64(doc.Find(tag).Length())
	}
	for _, attr := range e.cats.Attrs {
		feats["html_attr_"+attr] = float64(doc.Find("[" + attr + "]").Length())
	}

	// Vector 6: event-handler attribute values are code, no pattern test.
	for _, event := range e.cats.EventHandlerAttrs {
		carriers := doc.Find("[" + event + "]")
		feats["html_event_"+event] = float64(carriers.Length())
		carriers.Each(func(_ int, s *goquery.Selection) {
			if value, ok := s.Attr(event); ok {
				fragments = append(fragments, value)
			}
		})
	}

	feats["html_length"] = float64(utf8.RuneCountInString(rawHTML))

	return &Document{Features: feats, Fragments: fragments}, nil
}

// appendProtocolFragments collects the code of every javascript: value in the
// given attribute of the given tag. Attribute values arrive entity-decoded
// from the HTML parser.
func (e *Extractor) appendProtocolFragments(fragments []string, doc *goquery.Document, tag, attr string) []string {
	doc.Find(tag + "[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr(attr)
		if code, ok := JsProtocol(value); ok && code != "" {
			fragments = append(fragments, code)
		}
	})
	return fragments
}

// JsProtocol returns the code carried by a javascript: pseudo-protocol value
// and whether the value matched at all.
func JsProtocol(value string) (string, bool) {
	m := jsProtocolRe.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// singleTextChild returns the element's text when its content is exactly one
// text node. Script elements holding child markup instead of code do occur in
// mirrored exploit pages and are skipped by the caller.
func singleTextChild(s *goquery.Selection) (string, bool) {
	if len(s.Nodes) == 0 {
		return "", false
	}
	child := s.Nodes[0].FirstChild
	if child == nil || child.NextSibling != nil || child.Type != html.TextNode {
		return "", false
	}
	return child.Data, true
}
