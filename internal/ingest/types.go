// Package ingest implements the column-mapping and row-reconciliation
// pipeline for loan client uploads.
//
// An upload moves through five stages: the destination table is created or
// introspected, the external classifier suggests a column mapping, the
// trusted alias table and the classifier output are merged into one final
// mapping, rows are projected/cleaned/deduplicated against persisted ids,
// and the surviving rows are appended to storage.
package ingest

// Destination fields of the persisted client table. FieldClientID is the
// identity key: unique, required, non-empty after cleaning.
const (
	FieldClientID     = "client_id"
	FieldFullName     = "full_name"
	FieldPhoneNo      = "phone_no"
	FieldClientAmount = "client_amount"
	FieldTotalLand    = "total_land"
	FieldYear         = "year"
)

// Row is a single record keyed by column name. Cell values are the raw
// strings read from the uploaded sheet; type coercion happens at the
// storage boundary.
type Row map[string]string

// DefaultFields returns the destination column set in table order,
// excluding the server-assigned created_at column.
func DefaultFields() []string {
	return []string{
		FieldClientID,
		FieldFullName,
		FieldPhoneNo,
		FieldClientAmount,
		FieldTotalLand,
		FieldYear,
	}
}

// FieldSet converts an ordered field list into a membership set.
func FieldSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// StaticMapping is the operator-defined alias table from known source
// headers to destination fields. Keys are normalized (trimmed, lowercase)
// at definition time. Entries here always override whatever the classifier
// suggests for the same column.
var StaticMapping = map[string]string{
	"loaner_id":   FieldClientID,
	"name":        FieldFullName,
	"phone_no":    FieldPhoneNo,
	"loan_amount": FieldClientAmount,
	"total_land":  FieldTotalLand,
	"year":        FieldYear,
}
