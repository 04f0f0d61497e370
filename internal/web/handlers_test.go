package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/config"
	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

type stubPipeline struct {
	report *ingest.Report
	err    error
	got    ingest.Request
}

func (s *stubPipeline) ProcessUpload(ctx context.Context, req ingest.Request) (*ingest.Report, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type stubStorage struct{ err error }

func (s *stubStorage) Ping(ctx context.Context) error { return s.err }

type stubClassifier struct{ configured bool }

func (s *stubClassifier) Configured() bool { return s.configured }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 60 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Upload.DefaultTable = "llm_mapping"
	return cfg
}

func newTestServer(p Pipeline, storage Storage, cl ClassifierStatus) *Server {
	return NewServer(p, storage, cl, testConfig())
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStorage{}, &stubClassifier{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["service"] != "loan-client-upload" {
		t.Errorf("service = %v", info["service"])
	}
}

func TestHandleHealth_OK(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStorage{}, &stubClassifier{configured: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health map[string]any
	json.Unmarshal(rec.Body.Bytes(), &health)
	if health["status"] != "ok" || health["classifier_configured"] != true {
		t.Errorf("health = %v", health)
	}
}

func TestHandleHealth_StorageDown(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStorage{err: errors.New("refused")}, &stubClassifier{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleUpload_Success(t *testing.T) {
	pipeline := &stubPipeline{report: &ingest.Report{Status: "success", TotalRows: 1}}
	srv := newTestServer(pipeline, &stubStorage{}, &stubClassifier{})

	body, contentType := multipartUpload(t,
		map[string]string{"table_name": "clients", "insert_to_db": "true"},
		"clients.csv", "Loaner_ID,Name\nA1,Asha\n")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if pipeline.got.Table != "clients" || !pipeline.got.Insert {
		t.Errorf("pipeline request = %+v", pipeline.got)
	}
	if len(pipeline.got.Columns) != 2 || pipeline.got.Columns[0] != "Loaner_ID" {
		t.Errorf("parsed columns = %v", pipeline.got.Columns)
	}
}

func TestHandleUpload_DefaultsApplied(t *testing.T) {
	pipeline := &stubPipeline{report: &ingest.Report{Status: "success"}}
	srv := newTestServer(pipeline, &stubStorage{}, &stubClassifier{})

	body, contentType := multipartUpload(t, nil, "c.csv", "id\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if pipeline.got.Table != "llm_mapping" {
		t.Errorf("Table = %q, want default llm_mapping", pipeline.got.Table)
	}
	if pipeline.got.Insert {
		t.Error("Insert = true, want default false")
	}
}

func TestHandleUpload_NoFile(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStorage{}, &stubClassifier{})

	body, contentType := multipartUpload(t, map[string]string{"table_name": "x"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUpload_BadInsertFlag(t *testing.T) {
	srv := newTestServer(&stubPipeline{}, &stubStorage{}, &stubClassifier{})

	body, contentType := multipartUpload(t,
		map[string]string{"insert_to_db": "maybe"}, "c.csv", "id\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUpload_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ingest.ErrBadTableName, http.StatusBadRequest, "VAL001"},
		{ingest.ErrEmptyUpload, http.StatusBadRequest, "VAL002"},
		{ingest.ErrNoColumnsMapped, http.StatusBadRequest, "VAL003"},
		{ingest.ErrNothingToInsert, http.StatusBadRequest, "VAL004"},
		{ingest.ErrAuthExpired, http.StatusForbidden, "AUTH001"},
		{ingest.ErrClassifier, http.StatusInternalServerError, "CLS001"},
		{ingest.ErrIdentityConflict, http.StatusConflict, "DB001"},
		{ingest.ErrStorage, http.StatusInternalServerError, "DB002"},
	}

	for _, c := range cases {
		srv := newTestServer(&stubPipeline{err: c.err}, &stubStorage{}, &stubClassifier{})

		body, contentType := multipartUpload(t, nil, "c.csv", "id\n1\n")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != c.status {
			t.Errorf("%v: status = %d, want %d", c.err, rec.Code, c.status)
		}
		var resp ErrorResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Code != c.code {
			t.Errorf("%v: code = %q, want %q", c.err, resp.Code, c.code)
		}
	}
}
