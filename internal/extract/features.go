// Package extract turns a raw HTML document and its URL into a page-level
// feature record: structural HTML counts, lexical URL features, and the
// aggregated features of every JavaScript fragment found on the page.
package extract

// Features maps feature name to value. Boolean features are stored as 0/1 so
// every record stays a flat numeric row.
type Features map[string]float64

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// merge copies every entry of src into f. Key sets of the merged blocks are
// disjoint by construction.
func (f Features) merge(src Features) {
	for k, v := range src {
		f[k] = v
	}
}
