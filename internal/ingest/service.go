package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SchemaProvider creates the destination table on demand and returns its
// live field list (excluding the created_at column).
type SchemaProvider interface {
	EnsureTable(ctx context.Context, table string) ([]string, error)
}

// Classifier asks the external mapping service for a best-effort
// source-column to destination-field mapping. The response is never
// trusted; Resolve validates every claimed field.
type Classifier interface {
	Classify(ctx context.Context, sourceColumns, destinationFields []string) (map[string]string, error)
}

// Sink persists reconciled rows and answers the existing-id query.
type Sink interface {
	ExistingIDs(ctx context.Context, table string, ids []string) (map[string]struct{}, error)
	Append(ctx context.Context, table string, fields []string, rows []Row) (int, error)
}

// Service runs the upload pipeline. Each call to ProcessUpload is a single
// logical unit of work; the service itself holds no per-upload state.
type Service struct {
	schema     SchemaProvider
	classifier Classifier
	sink       Sink
}

// NewService creates a Service from its three collaborators.
func NewService(schema SchemaProvider, classifier Classifier, sink Sink) *Service {
	return &Service{schema: schema, classifier: classifier, sink: sink}
}

// Request is one parsed upload ready for processing.
type Request struct {
	Table    string
	FileName string
	Columns  []string // source headers in file order
	Rows     []Row    // data rows in file order
	Insert   bool     // false = dry run, report only
}

// Report echoes the mapping decisions and counts back to the caller.
type Report struct {
	Status              string            `json:"status"`
	OriginalColumns     []string          `json:"original_columns"`
	DatabaseFields      []string          `json:"database_fields"`
	Mapping             map[string]string `json:"mapping"`
	RenamedColumns      []string          `json:"renamed_columns"`
	TotalRows           int               `json:"total_rows"`
	RowsInserted        int               `json:"rows_inserted"`
	RowsSkippedExisting int               `json:"rows_skipped_existing"`
	RowsDroppedInvalid  int               `json:"rows_dropped_invalid"`
	Preview             []Row             `json:"preview"`
}

// PreviewRows is the number of reconciled rows echoed in the report.
const PreviewRows = 5

func mapsToIdentity(finalMapping map[string]string) bool {
	for _, field := range finalMapping {
		if field == FieldClientID {
			return true
		}
	}
	return false
}

// ProcessUpload runs the five-stage pipeline for one upload request.
//
// A failed classifier or storage call fails the whole request; nothing is
// retried internally. When Insert is false no rows are written and the
// report shows what an insert would have done.
func (s *Service) ProcessUpload(ctx context.Context, req Request) (*Report, error) {
	ingestID := uuid.New().String()
	logger := slog.Default().With("ingest_id", ingestID, "table", req.Table, "file", req.FileName)
	start := time.Now()

	if len(req.Columns) == 0 || len(req.Rows) == 0 {
		return nil, fmt.Errorf("%w: %d columns, %d rows", ErrEmptyUpload, len(req.Columns), len(req.Rows))
	}

	fields, err := s.schema.EnsureTable(ctx, req.Table)
	if err != nil {
		return nil, err
	}
	allowed := FieldSet(fields)

	classified, err := s.classifier.Classify(ctx, req.Columns, fields)
	if err != nil {
		return nil, err
	}
	logger.Debug("classifier mapping received", "suggestions", len(classified))

	finalMapping, err := Resolve(req.Columns, StaticMapping, classified, allowed)
	if err != nil {
		return nil, err
	}
	if !mapsToIdentity(finalMapping) {
		return nil, fmt.Errorf("%w: mapped fields %v", ErrNoIdentityKey, finalMapping)
	}

	batch, err := Reconcile(req.Rows, finalMapping, req.Columns, allowed, func(ids []string) (map[string]struct{}, error) {
		return s.sink.ExistingIDs(ctx, req.Table, ids)
	})
	if err != nil {
		return nil, err
	}

	inserted := 0
	if req.Insert {
		if len(batch.ToInsert) == 0 && len(batch.SkippedExisting) == 0 {
			return nil, fmt.Errorf("%w: %d rows dropped", ErrNothingToInsert, batch.DroppedInvalid)
		}
		if len(batch.ToInsert) > 0 {
			inserted, err = s.sink.Append(ctx, req.Table, RenamedColumns(req.Columns, finalMapping, allowed), batch.ToInsert)
			if err != nil {
				return nil, err
			}
		}
	}

	logger.Info("upload processed",
		"rows", len(req.Rows),
		"inserted", inserted,
		"skipped_existing", len(batch.SkippedExisting),
		"dropped_invalid", batch.DroppedInvalid,
		"insert_requested", req.Insert,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	preview := batch.Rows
	if len(preview) > PreviewRows {
		preview = preview[:PreviewRows]
	}

	return &Report{
		Status:              "success",
		OriginalColumns:     req.Columns,
		DatabaseFields:      fields,
		Mapping:             finalMapping,
		RenamedColumns:      RenamedColumns(req.Columns, finalMapping, allowed),
		TotalRows:           len(req.Rows),
		RowsInserted:        inserted,
		RowsSkippedExisting: len(batch.SkippedExisting),
		RowsDroppedInvalid:  batch.DroppedInvalid,
		Preview:             preview,
	}, nil
}
