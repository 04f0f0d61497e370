package ingest

// reconcile.go partitions an upload batch into insertable, already-present
// and invalid rows.
//
// The reconciler owns all deduplication. The storage sink stays a dumb
// append; the only uniqueness enforcement below this layer is the
// client_id primary key constraint, which catches concurrent uploads that
// race past the existing-id check.

import "strings"

// Batch is the outcome of reconciling one upload.
type Batch struct {
	// Rows holds every projected row in input order, including ones that
	// were later skipped or dropped. Used for previews and reporting.
	Rows []Row

	// ToInsert are rows with a unique, non-empty client_id not yet
	// present in storage, in input order.
	ToInsert []Row

	// SkippedExisting are rows whose client_id is already persisted.
	// Re-uploading the same file is idempotent: these are skipped
	// silently, neither rejected nor overwritten.
	SkippedExisting []Row

	// DroppedInvalid counts rows with a missing or empty client_id plus
	// earlier occurrences of within-batch duplicate ids.
	DroppedInvalid int
}

// LookupFunc reports which of the given client ids already exist in the
// destination table.
type LookupFunc func(ids []string) (map[string]struct{}, error)

// CleanID returns the cleaned identity key of a projected row: trimmed of
// surrounding whitespace, nothing else. Ids differing only by case are
// distinct keys.
func CleanID(row Row) string {
	return strings.TrimSpace(row[FieldClientID])
}

// Reconcile projects rows onto the mapped destination fields, cleans the
// identity key, and partitions the batch.
//
// Projection renames each row's keys per finalMapping, applying renames in
// source-column order so that when two columns map to the same field the
// later column wins, then drops keys outside allowed. Rows that project to
// zero fields are kept in Batch.Rows; they fall out later because they
// cannot carry an identity key.
//
// Within-batch duplicates keep only the last occurrence; earlier ones
// count as dropped. Rows whose cleaned id is empty never reach the lookup.
func Reconcile(rows []Row, finalMapping map[string]string, sourceColumns []string, allowed map[string]struct{}, lookup LookupFunc) (*Batch, error) {
	batch := &Batch{Rows: make([]Row, 0, len(rows))}
	for _, row := range rows {
		batch.Rows = append(batch.Rows, project(row, finalMapping, sourceColumns, allowed))
	}

	// Last occurrence of each id wins; everything before it is invalid.
	lastSeen := make(map[string]int, len(batch.Rows))
	for i, row := range batch.Rows {
		if id := CleanID(row); id != "" {
			lastSeen[id] = i
		}
	}

	candidates := make([]Row, 0, len(lastSeen))
	ids := make([]string, 0, len(lastSeen))
	for i, row := range batch.Rows {
		id := CleanID(row)
		if id == "" || lastSeen[id] != i {
			batch.DroppedInvalid++
			continue
		}
		row[FieldClientID] = id
		candidates = append(candidates, row)
		ids = append(ids, id)
	}

	existing := map[string]struct{}{}
	if len(ids) > 0 {
		var err error
		if existing, err = lookup(ids); err != nil {
			return nil, err
		}
	}

	for _, row := range candidates {
		if _, present := existing[row[FieldClientID]]; present {
			batch.SkippedExisting = append(batch.SkippedExisting, row)
		} else {
			batch.ToInsert = append(batch.ToInsert, row)
		}
	}

	return batch, nil
}

func project(row Row, finalMapping map[string]string, sourceColumns []string, allowed map[string]struct{}) Row {
	out := make(Row, len(finalMapping))
	for _, col := range sourceColumns {
		field, ok := finalMapping[col]
		if !ok {
			continue
		}
		if _, member := allowed[field]; !member {
			continue
		}
		if value, present := row[col]; present {
			out[field] = value
		}
	}
	return out
}
