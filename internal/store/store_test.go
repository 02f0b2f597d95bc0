package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xssvec/xssvec/internal/extract"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginAndFinishRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	require.NoError(t, s.FinishRun(ctx, run.ID, 7))

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 0, stats.Pages)
}

func TestInsertAndReadPages(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	first := extract.Features{"class": 1, "js_method_alert": 2}
	second := extract.Features{"class": 0, "js_method_alert": 0}
	require.NoError(t, s.InsertPage(ctx, run.ID, "http://a.example.com/", "a.html", 1, first))
	require.NoError(t, s.InsertPage(ctx, run.ID, "http://b.example.com/", "b.html", 0, second))

	rows, err := s.PageFeatures(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(2), rows[0]["js_method_alert"])
	assert.Equal(t, float64(0), rows[1]["class"])
}

func TestInsertPageDuplicateIgnored(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	feats := extract.Features{"class": 1}
	require.NoError(t, s.InsertPage(ctx, run.ID, "http://a.example.com/", "a.html", 1, feats))
	require.NoError(t, s.InsertPage(ctx, run.ID, "http://a.example.com/", "a.html", 1, feats))

	rows, err := s.PageFeatures(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx)
	require.NoError(t, err)

	require.NoError(t, s.InsertPage(ctx, run.ID, "http://a.example.com/", "a.html", 1, extract.Features{"class": 1}))
	require.NoError(t, s.InsertPage(ctx, run.ID, "http://b.example.com/", "b.html", 1, extract.Features{"class": 1}))
	require.NoError(t, s.InsertPage(ctx, run.ID, "http://c.example.com/", "c.html", 0, extract.Features{"class": 0}))

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 2, stats.Malicious)
	assert.Equal(t, 1, stats.Benign)
}
