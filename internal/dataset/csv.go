package dataset

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/xssvec/xssvec/internal/extract"
)

// WriteCSV writes the header and one row per feature record, in the canonical
// column order, so the file can be consumed without a schema-discovery pass.
func WriteCSV(w io.Writer, schema []string, rows []extract.Features) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema); err != nil {
		return err
	}
	record := make([]string, len(schema))
	for _, row := range rows {
		for i, col := range schema {
			record[i] = strconv.FormatFloat(row[col], 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
