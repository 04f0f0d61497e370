package ingest

// mapping.go resolves the final column-to-field assignment for an upload.
//
// Two mapping sources contribute, in priority order: the operator-defined
// StaticMapping (trusted), then the external classifier's suggestions
// (untrusted). Classifier output is validated at this boundary: a claimed
// destination field outside the allowed set is never assigned.

import "strings"

// metaValidityKey is a metadata flag some classifier workflows attach to
// the mapping payload. It is not a column mapping and must be discarded.
const metaValidityKey = "is_valid"

// NormalizeColumn returns the canonical comparison form of a column
// header: trimmed and lowercased. Every column-name comparison in the
// pipeline goes through this, so "Loaner_ID" and " loaner_id " resolve
// identically.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve merges the trusted static alias table with the classifier's
// suggestions into at most one destination field per source column.
//
// Static entries always win. A classifier suggestion is used only when
// the claimed field is a member of allowed. Columns matching neither
// source are left out of the result and dropped during projection.
//
// Keys of the result are the original (unnormalized) source column names,
// so downstream renames apply to the headers as they appear in the file.
// Two source columns may legitimately resolve to the same field; the
// projection step applies renames in source order, so the last one wins.
func Resolve(sourceColumns []string, static map[string]string, classified map[string]string, allowed map[string]struct{}) (map[string]string, error) {
	suggestions := make(map[string]string, len(classified))
	for col, field := range classified {
		norm := NormalizeColumn(col)
		if norm == metaValidityKey {
			continue
		}
		suggestions[norm] = strings.TrimSpace(field)
	}

	final := make(map[string]string, len(sourceColumns))
	for _, col := range sourceColumns {
		norm := NormalizeColumn(col)
		if field, ok := static[norm]; ok {
			final[col] = field
			continue
		}
		if field, ok := suggestions[norm]; ok {
			if _, member := allowed[field]; member {
				final[col] = field
			}
		}
	}

	if len(final) == 0 {
		return nil, ErrNoColumnsMapped
	}
	return final, nil
}

// RenamedColumns returns the destination fields present after projection,
// in source-column order with duplicates removed.
func RenamedColumns(sourceColumns []string, finalMapping map[string]string, allowed map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(finalMapping))
	out := make([]string, 0, len(finalMapping))
	for _, col := range sourceColumns {
		field, ok := finalMapping[col]
		if !ok {
			continue
		}
		if _, member := allowed[field]; !member {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}
