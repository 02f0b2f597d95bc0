package extract

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xssvec/xssvec/internal/catalog"
)

func testExtractor() *Extractor {
	return NewExtractor(catalog.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseDocumentInlineScript(t *testing.T) {
	doc, err := testExtractor().ParseDocument(
		`<html><body><script>alert(1)</script></body></html>`, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 1 || doc.Fragments[0] != "alert(1)" {
		t.Fatalf("expected fragment [alert(1)], got %v", doc.Fragments)
	}
	if doc.Features["js_file"] != 0 {
		t.Errorf("expected js_file 0, got %v", doc.Features["js_file"])
	}
	if doc.Features["html_tag_script"] != 1 {
		t.Errorf("expected 1 script tag, got %v", doc.Features["html_tag_script"])
	}
}

func TestParseDocumentExternalScript(t *testing.T) {
	doc, err := testExtractor().ParseDocument(
		`<html><body><script src="/app.js"></script></body></html>`, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Features["js_file"] != 1 {
		t.Errorf("expected js_file 1, got %v", doc.Features["js_file"])
	}
	if len(doc.Fragments) != 0 {
		t.Errorf("expected no fragments from external script, got %v", doc.Fragments)
	}
}

func TestParseDocumentEmptyScriptSkipped(t *testing.T) {
	doc, err := testExtractor().ParseDocument(
		`<html><body><script></script></body></html>`, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 0 {
		t.Errorf("expected no fragments from empty script, got %v", doc.Fragments)
	}
}

func TestParseDocumentAnchorPseudoProtocol(t *testing.T) {
	doc, err := testExtractor().ParseDocument(
		`<html><body><a href="javascript:alert(1)">x</a><a href="/home">y</a></body></html>`, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 1 || doc.Fragments[0] != "alert(1)" {
		t.Fatalf("expected fragment [alert(1)], got %v", doc.Fragments)
	}
}

func TestParseDocumentPseudoProtocolCaseAndWhitespace(t *testing.T) {
	doc, err := testExtractor().ParseDocument(
		`<html><body><a href="  JaVaScRiPt:alert(document.cookie)">x</a></body></html>`, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 1 || doc.Fragments[0] != "alert(document.cookie)" {
		t.Fatalf("expected fragment [alert(document.cookie)], got %v", doc.Fragments)
	}
}

func TestParseDocumentEmptyPseudoProtocolSkipped(t *testing.T) {
	doc, err := testExtractor().ParseDocument(
		`<html><body><a href="javascript:">x</a></body></html>`, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 0 {
		t.Errorf("expected no fragments from empty pseudo-protocol, got %v", doc.Fragments)
	}
}

func TestParseDocumentFormAndIframeVectors(t *testing.T) {
	raw := `<html><body>` +
		`<form action="javascript:alert('f')"></form>` +
		`<iframe src="javascript:alert('i')"></iframe>` +
		`</body></html>`
	doc, err := testExtractor().ParseDocument(raw, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %v", doc.Fragments)
	}
	if doc.Fragments[0] != "alert('f')" || doc.Fragments[1] != "alert('i')" {
		t.Errorf("unexpected fragments %v", doc.Fragments)
	}
	if doc.Features["html_tag_iframe"] != 1 {
		t.Errorf("expected 1 iframe, got %v", doc.Features["html_tag_iframe"])
	}
}

func TestParseDocumentFrameVector(t *testing.T) {
	// frame elements only survive HTML5 parsing inside a frameset document.
	raw := `<html><frameset><frame src="javascript:alert(1)"></frameset></html>`
	doc, err := testExtractor().ParseDocument(raw, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 1 || doc.Fragments[0] != "alert(1)" {
		t.Fatalf("expected fragment [alert(1)], got %v", doc.Fragments)
	}
}

func TestParseDocumentEventHandlers(t *testing.T) {
	raw := `<html><body><img src="x" onerror="alert(1)"><div onclick="go()">x</div></body></html>`
	doc, err := testExtractor().ParseDocument(raw, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Features["html_event_onerror"] != 1 {
		t.Errorf("expected 1 onerror, got %v", doc.Features["html_event_onerror"])
	}
	if doc.Features["html_event_onclick"] != 1 {
		t.Errorf("expected 1 onclick, got %v", doc.Features["html_event_onclick"])
	}
	if len(doc.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %v", doc.Fragments)
	}
}

func TestParseDocumentStructuralCounts(t *testing.T) {
	raw := `<html><body><div><div></div></div><a href="/x">y</a><meta http-equiv="refresh"></body></html>`
	doc, err := testExtractor().ParseDocument(raw, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Features["html_tag_div"] != 2 {
		t.Errorf("expected 2 divs, got %v", doc.Features["html_tag_div"])
	}
	if doc.Features["html_attr_href"] != 1 {
		t.Errorf("expected 1 href carrier, got %v", doc.Features["html_attr_href"])
	}
	if doc.Features["html_attr_http-equiv"] != 1 {
		t.Errorf("expected 1 http-equiv carrier, got %v", doc.Features["html_attr_http-equiv"])
	}
	if doc.Features["html_length"] == 0 {
		t.Error("expected non-zero html_length")
	}
}

func TestReadDocumentMissingFile(t *testing.T) {
	_, err := testExtractor().ReadDocument(filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, ErrorPageNotFound) {
		t.Fatalf("expected ErrorPageNotFound, got %v", err)
	}
}

func TestReadDocumentInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	raw := append([]byte("<html><body>"), 0xff, 0xfe)
	raw = append(raw, []byte("<script>alert(1)</script></body></html>")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := testExtractor().ReadDocument(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 1 || doc.Fragments[0] != "alert(1)" {
		t.Fatalf("expected fragment [alert(1)], got %v", doc.Fragments)
	}
}

func TestJsProtocol(t *testing.T) {
	if code, ok := JsProtocol("javascript:alert(1)"); !ok || code != "alert(1)" {
		t.Errorf("expected alert(1), got %q ok=%v", code, ok)
	}
	if _, ok := JsProtocol("http://example.com/"); ok {
		t.Error("expected http URL not to match")
	}
	if code, ok := JsProtocol("javascript:"); !ok || code != "" {
		t.Errorf("expected empty capture, got %q ok=%v", code, ok)
	}
}
