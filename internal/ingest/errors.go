package ingest

// errors.go defines the failure taxonomy for the upload pipeline.
//
// Every error that crosses the package boundary wraps exactly one of the
// sentinel errors below, so transport layers can classify failures with
// errors.Is instead of matching message strings. ClassifyError maps an
// error onto a stable support code and a suggested HTTP status.

import (
	"errors"
	"net/http"
)

// Sentinel errors for the upload pipeline.
var (
	// ErrBadTableName: the destination table identifier failed the
	// safe-identifier allowlist.
	ErrBadTableName = errors.New("invalid table name")

	// ErrEmptyUpload: the uploaded file parsed to zero columns or zero
	// data rows.
	ErrEmptyUpload = errors.New("uploaded file has no data rows")

	// ErrNoColumnsMapped: no source column resolved to any destination
	// field, so nothing could possibly be stored.
	ErrNoColumnsMapped = errors.New("no source column maps to a destination field")

	// ErrNothingToInsert: insertion was requested but every row was
	// dropped during cleaning and none matched an already-persisted id.
	ErrNothingToInsert = errors.New("no insertable rows after cleaning")

	// ErrNoIdentityKey: the final mapping assigns no source column to the
	// identity key, so no row could ever be deduplicated or stored.
	ErrNoIdentityKey = errors.New("no source column maps to the identity key")

	// ErrBadCell: a cell value could not be coerced to its destination
	// column type.
	ErrBadCell = errors.New("cell value does not match column type")

	// ErrAuthExpired: the classifier rejected our credential.
	ErrAuthExpired = errors.New("classifier authorization expired")

	// ErrClassifier: the classifier call errored, timed out, or reported
	// a non-success workflow status.
	ErrClassifier = errors.New("classifier request failed")

	// ErrMalformedMapping: the classifier payload could not be decoded,
	// or was empty once metadata was stripped.
	ErrMalformedMapping = errors.New("classifier returned a malformed mapping")

	// ErrIdentityConflict: storage rejected an insert on the client_id
	// primary key. This happens when a concurrent upload wins the race
	// between the existing-id check and the append; retrying the upload
	// is safe.
	ErrIdentityConflict = errors.New("client_id already exists")

	// ErrStorage: any other persistence failure.
	ErrStorage = errors.New("storage operation failed")
)

// Failure is a classified pipeline error, ready for the transport layer.
type Failure struct {
	Status  int    // suggested HTTP status
	Code    string // stable code for support reference
	Message string // user-facing summary
}

// ClassifyError maps a pipeline error onto exactly one Failure. Unknown
// errors fall through to a generic internal failure rather than leaking
// unclassified details.
func ClassifyError(err error) Failure {
	switch {
	case errors.Is(err, ErrBadTableName):
		return Failure{http.StatusBadRequest, "VAL001", "table name may only contain letters, digits and underscores, and must not start with a digit"}
	case errors.Is(err, ErrEmptyUpload):
		return Failure{http.StatusBadRequest, "VAL002", "the uploaded file contains no data rows"}
	case errors.Is(err, ErrNoColumnsMapped):
		return Failure{http.StatusBadRequest, "VAL003", "none of the file's columns could be mapped to a database field"}
	case errors.Is(err, ErrNothingToInsert):
		return Failure{http.StatusBadRequest, "VAL004", "no rows left to insert after cleaning; check that the file has non-empty client ids"}
	case errors.Is(err, ErrNoIdentityKey):
		return Failure{http.StatusBadRequest, "VAL006", "no column in the file maps to client_id, so rows cannot be identified"}
	case errors.Is(err, ErrBadCell):
		return Failure{http.StatusBadRequest, "VAL005", "a cell value does not match its column type"}
	case errors.Is(err, ErrAuthExpired):
		return Failure{http.StatusForbidden, "AUTH001", "classifier token expired; rotate the credential"}
	case errors.Is(err, ErrMalformedMapping):
		return Failure{http.StatusInternalServerError, "CLS002", "the classifier returned an unusable mapping"}
	case errors.Is(err, ErrClassifier):
		return Failure{http.StatusInternalServerError, "CLS001", "the column classifier service failed"}
	case errors.Is(err, ErrIdentityConflict):
		return Failure{http.StatusConflict, "DB001", "a record with one of these client ids was inserted concurrently; retrying the upload is safe"}
	case errors.Is(err, ErrStorage):
		return Failure{http.StatusInternalServerError, "DB002", "database operation failed"}
	default:
		return Failure{http.StatusInternalServerError, "GEN001", "internal error"}
	}
}
