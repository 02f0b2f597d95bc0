// Package dataset loads the labeled page manifests, runs the feature engine
// over every page, and serializes the result.
package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// Labels of the binary classification target.
const (
	LabelBenign    = 0
	LabelMalicious = 1
)

// Page is one labeled dataset entry fed to the feature engine.
type Page struct {
	Path  string
	URL   string
	Label int
}

type randomWalkEntry struct {
	FilePath string `json:"file_path"`
	URL      string `json:"url"`
}

type xssedFile struct {
	Path string `json:"path"`
}

type xssedEntry struct {
	URL      string      `json:"url"`
	Category string      `json:"category"`
	Files    []xssedFile `json:"files"`
}

// randomWalkPathRe strips the manifest path prefixes written by older spider
// runs, so entries recorded before the subsampling keep resolving.
var randomWalkPathRe = regexp.MustCompile(`html/randomsample(/full)?/`)

// LoadRandomWalk reads the benign manifest and roots its file paths at dir.
// Missing files are not checked here; the runner skips them when it reads.
func LoadRandomWalk(manifestPath, dir string) ([]Page, error) {
	var entries []randomWalkEntry
	if err := readManifest(manifestPath, &entries); err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(entries))
	for _, e := range entries {
		name := randomWalkPathRe.ReplaceAllString(e.FilePath, "")
		pages = append(pages, Page{
			Path:  filepath.Join(dir, name),
			URL:   e.URL,
			Label: LabelBenign,
		})
	}
	return pages, nil
}

// LoadXssed reads the xssed.com mirror manifest and roots its file paths at
// dir. Entries without a mirrored file are skipped; entries outside the XSS
// categories are imported with a warning so they can be reviewed.
func LoadXssed(manifestPath, dir string, logger *slog.Logger) ([]Page, error) {
	var entries []xssedEntry
	if err := readManifest(manifestPath, &entries); err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(entries))
	for _, e := range entries {
		if len(e.Files) == 0 {
			// Some mirrored pages were never downloaded.
			logger.Info("skipping xss entry without mirror file", "url", e.URL)
			continue
		}
		if e.Category != "XSS" && e.Category != "Script Insertion" {
			logger.Warn("non-XSS vulnerability imported, please review",
				"url", e.URL, "category", e.Category)
		}
		pages = append(pages, Page{
			Path:  filepath.Join(dir, e.Files[0].Path),
			URL:   e.URL,
			Label: LabelMalicious,
		})
	}
	return pages, nil
}

func readManifest(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return nil
}
