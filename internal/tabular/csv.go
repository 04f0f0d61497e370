package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a comma-separated upload. Windows exports often carry a
// UTF-8 BOM and stray invalid bytes; both are sanitized before parsing.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read file: %v", ingest.ErrEmptyUpload, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ingest.ErrEmptyUpload, err)
	}
	return fromRecords(records)
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
