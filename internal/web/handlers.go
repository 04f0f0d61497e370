package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/tabular"
)

// handleRoot advertises the operation surface. No business logic.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "loan-client-upload",
		"endpoints": map[string]string{
			"POST /upload": "upload a tabular file; form fields: file, table_name, insert_to_db",
			"GET /healthz": "storage and classifier readiness",
		},
	})
}

// handleHealth reports storage reachability and whether a classifier
// credential is configured. It never performs a live classifier call.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	dbOK := true
	if err := s.storage.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		dbOK = false
	}

	writeJSON(w, code, map[string]any{
		"status":                status,
		"database":              dbOK,
		"classifier_configured": s.classifier.Configured(),
	})
}

// handleUpload accepts a multipart tabular file, runs the reconciliation
// pipeline, and echoes the mapping decisions, counts and a short preview.
//
// Form fields: file (required), table_name (defaults to the configured
// table), insert_to_db (bool, default false for a dry run).
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	tableName := r.FormValue("table_name")
	if tableName == "" {
		tableName = s.cfg.Upload.DefaultTable
	}

	insert := false
	if v := r.FormValue("insert_to_db"); v != "" {
		insert, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "insert_to_db must be a boolean")
			return
		}
	}

	table, err := tabular.Parse(file, header.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := s.pipeline.ProcessUpload(r.Context(), ingest.Request{
		Table:    tableName,
		FileName: header.Filename,
		Columns:  table.Columns,
		Rows:     table.Rows,
		Insert:   insert,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
