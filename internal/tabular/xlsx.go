package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

// ParseXLSX reads the first sheet of an Excel workbook. Cells come back as
// the strings excelize renders them to; numeric coercion happens at the
// storage boundary.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable workbook: %v", ingest.ErrEmptyUpload, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ingest.ErrEmptyUpload)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ingest.ErrEmptyUpload, sheets[0], err)
	}
	return fromRecords(records)
}
