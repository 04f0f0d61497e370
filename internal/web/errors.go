package web

// errors.go provides unified error response handling for the web layer.
//
// Every pipeline failure is classified by ingest.ClassifyError into a
// status, support code and user-facing message before it crosses the
// boundary; the technical error is logged server-side with the request id
// for correlation.

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/logging"
)

// ErrorResponse is the JSON structure for error responses. Code is the
// stable support reference; Error is the human-readable message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError classifies a pipeline error and writes the JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	failure := ingest.ClassifyError(err)

	logger := logging.FromContext(r.Context())
	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", failure.Status,
		"code", failure.Code,
		"error", err.Error(),
	)

	writeJSON(w, failure.Status, ErrorResponse{
		Error: failure.Message,
		Code:  failure.Code,
	})
}

// writeError writes a plain JSON error for request-shape problems that
// never reach the pipeline.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: "REQ001"})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}
