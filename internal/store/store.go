// Package store is the Postgres persistence layer: it creates destination
// tables on demand, answers the existing-id query, and appends reconciled
// rows. It performs no deduplication of its own; the client_id primary key
// constraint is the final authority on uniqueness when concurrent uploads
// race.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

// identPattern is the allowlist for identifiers interpolated into SQL.
// Identifiers cannot be bound as statement parameters, so every name that
// reaches a query string must pass this check first. The table name comes
// from request input; treat this as a security contract, not cosmetics.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to interpolate into SQL.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping reports storage reachability for the health check.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ExistingIDs returns the subset of ids already present in the table.
func (s *Store) ExistingIDs(ctx context.Context, table string, ids []string) (map[string]struct{}, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", ingest.ErrBadTableName, table)
	}

	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query := fmt.Sprintf(`SELECT client_id FROM %s WHERE client_id = ANY($1)`, table)
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: query existing ids: %v", ingest.ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan existing id: %v", ingest.ErrStorage, err)
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: existing ids: %v", ingest.ErrStorage, err)
	}
	return existing, nil
}

// Append inserts rows into the table as one batch. It must not be called
// with an empty row set; the pipeline guards that upstream.
//
// Unique violations on client_id surface as an identity conflict so the
// caller knows a retry is safe; all other database errors are generic
// storage failures.
func (s *Store) Append(ctx context.Context, table string, fields []string, rows []ingest.Row) (int, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: append called with no rows", ingest.ErrStorage)
	}
	if !ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: %q", ingest.ErrBadTableName, table)
	}
	for _, f := range fields {
		if !ValidIdentifier(f) {
			return 0, fmt.Errorf("%w: column %q", ingest.ErrBadTableName, f)
		}
	}

	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
	)

	batch := &pgx.Batch{}
	for _, row := range rows {
		args := make([]any, len(fields))
		for i, field := range fields {
			v, err := bindValue(field, row[field])
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		batch.Queue(insertSQL, args...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range rows {
		if _, err := results.Exec(); err != nil {
			return inserted, classifyPgError(err)
		}
		inserted++
	}
	if err := results.Close(); err != nil {
		return inserted, classifyPgError(err)
	}
	return inserted, nil
}

// bindValue coerces a raw cell to the column's storage type. Empty cells
// become NULL for the non-key columns.
func bindValue(field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch field {
	case ingest.FieldClientAmount, ingest.FieldTotalLand:
		if raw == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not numeric for %s", ingest.ErrBadCell, raw, field)
		}
		return f, nil
	case ingest.FieldYear:
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer for %s", ingest.ErrBadCell, raw, field)
		}
		return n, nil
	default:
		if raw == "" && field != ingest.FieldClientID {
			return nil, nil
		}
		return raw, nil
	}
}

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ingest.ErrIdentityConflict, pgErr.Detail)
	}
	return fmt.Errorf("%w: %v", ingest.ErrStorage, err)
}
