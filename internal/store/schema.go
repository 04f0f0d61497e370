package store

// schema.go owns the fixed destination schema. Table creation is
// idempotent and runs on every upload; introspection returns the live
// column list so the mapping resolver works against real target names.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

// createTableTemplate is the fixed client schema. The table name is
// interpolated after passing ValidIdentifier; everything else is static.
const createTableTemplate = `
CREATE TABLE IF NOT EXISTS %s (
	client_id VARCHAR(50) PRIMARY KEY,
	full_name VARCHAR(255),
	phone_no VARCHAR(20),
	client_amount DOUBLE PRECISION,
	total_land DOUBLE PRECISION,
	year INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// timestampColumn is server-assigned and never a mapping target.
const timestampColumn = "created_at"

// EnsureTable validates the table name, creates the table with the fixed
// schema if absent, and returns its live column list minus the timestamp
// column. Introspection failures fall back to the fixed default field
// list rather than failing the upload.
func (s *Store) EnsureTable(ctx context.Context, table string) ([]string, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", ingest.ErrBadTableName, table)
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf(createTableTemplate, table)); err != nil {
		return nil, fmt.Errorf("%w: create table %s: %v", ingest.ErrStorage, table, err)
	}

	fields, err := s.tableFields(ctx, table)
	if err != nil || len(fields) == 0 {
		slog.Warn("column introspection failed, using default fields", "table", table, "error", err)
		return ingest.DefaultFields(), nil
	}
	return fields, nil
}

func (s *Store) tableFields(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT column_name
		 FROM information_schema.columns
		 WHERE table_name = $1
		 ORDER BY ordinal_position`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name == timestampColumn {
			continue
		}
		fields = append(fields, name)
	}
	return fields, rows.Err()
}
