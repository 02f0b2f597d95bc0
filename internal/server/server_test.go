package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xssvec/xssvec/internal/catalog"
	"github.com/xssvec/xssvec/internal/store"
)

func testServer(t *testing.T, st *store.Store) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(NewServer(catalog.Default(), st, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleExtract(t *testing.T) {
	ts := testServer(t, nil)

	body := `{"url": "http://evil.example.com/?q=<<script>",
		"html": "<html><body><script>alert(document.cookie)</script></body></html>"}`
	resp, err := http.Post(ts.URL+"/extract", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var feats map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feats))
	assert.Equal(t, float64(1), feats["js_method_alert"])
	assert.Equal(t, float64(1), feats["js_dom_document"])
	assert.Equal(t, float64(1), feats["url_duplicated_characters"])
	assert.Equal(t, float64(1), feats["html_tag_script"])
}

func TestHandleExtractRejectsGet(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Get(ts.URL + "/extract")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleExtractBadJSON(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Post(ts.URL+"/extract", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSchema(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Get(ts.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var schema SchemaResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	require.NotEmpty(t, schema.Columns)
	assert.Equal(t, "class", schema.Columns[0])
	assert.Equal(t, "html_length", schema.Columns[len(schema.Columns)-1])
}

func TestHandleStatsWithoutStore(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleStats(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	run, err := st.BeginRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.InsertPage(ctx, run.ID, "http://a.example.com/", "a.html", 1, map[string]float64{"class": 1}))

	ts := testServer(t, st)
	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats store.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 1, stats.Malicious)
}

func TestHandleHealth(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
