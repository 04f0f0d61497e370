// Package tabular parses uploaded files into an in-memory table. The
// first row of the first sheet is taken as the header; every data row is
// keyed by those headers. Header text is preserved verbatim (including
// casing and whitespace) so mapping decisions echo the file as uploaded.
package tabular

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

// Table is one parsed upload.
type Table struct {
	Columns []string     // headers in file order
	Rows    []ingest.Row // data rows in file order, fully-empty rows skipped
}

// Parse reads an upload, choosing the reader by file extension. Anything
// that is not .csv is treated as an Excel workbook.
func Parse(r io.Reader, filename string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ParseCSV(r)
	}
	return ParseXLSX(r)
}

// fromRecords builds a Table from raw records. Columns with an empty
// header are unnamed in the source and can never be mapped, so their
// cells are not carried. Short rows are simply missing those keys.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ingest.ErrEmptyUpload)
	}

	t := &Table{Columns: records[0]}
	for _, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}
		row := make(ingest.Row, len(t.Columns))
		for i, col := range t.Columns {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = record[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
