// Package classifier is the HTTP client for the external column-mapping
// workflow. The service takes the upload's column names plus the database
// field names and returns a best-effort name-to-name mapping.
//
// The response is treated as untrusted input: this client only decodes and
// strips metadata; validation of the claimed fields happens in the ingest
// resolver.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

// DefaultTimeout bounds the outbound call. The workflow must fail, not
// hang, past this.
const DefaultTimeout = 30 * time.Second

// Config holds the classifier endpoint settings.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Client calls the mapping workflow. Safe for concurrent use.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New creates a Client. A non-positive timeout falls back to
// DefaultTimeout.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: cfg.URL,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
	}
}

// Configured reports whether both endpoint and credential are set. Used by
// the health check, which never performs a live call.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.token != ""
}

// task is the form payload the workflow expects, serialized as JSON into a
// single form field.
type task struct {
	ExcelColumns   []string `json:"excel_columns"`
	DatabaseFields []string `json:"database_fields"`
}

// workflowResponse is the envelope the workflow wraps its result in. The
// mapping sits two levels deep under result.result.
type workflowResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Result struct {
		Result map[string]any `json:"result"`
	} `json:"result"`
}

// Classify sends the column and field lists to the workflow and returns
// its raw suggested mapping with metadata keys stripped.
//
// Failure modes: a 403 means the credential was rejected; transport
// errors, timeouts, non-2xx statuses and non-success workflow statuses are
// remote failures; undecodable or empty payloads are malformed responses.
func (c *Client) Classify(ctx context.Context, sourceColumns, destinationFields []string) (map[string]string, error) {
	payload, err := json.Marshal(task{
		ExcelColumns:   sourceColumns,
		DatabaseFields: destinationFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode task: %v", ingest.ErrClassifier, err)
	}

	form := url.Values{"task": {string(payload)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ingest.ErrClassifier, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrClassifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: endpoint returned 403", ingest.ErrAuthExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ingest.ErrClassifier, resp.StatusCode)
	}

	var wr workflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ingest.ErrMalformedMapping, err)
	}

	if wr.Status != "completed" {
		return nil, fmt.Errorf("%w: workflow status %q", ingest.ErrClassifier, wr.Status)
	}
	if wr.Error != "" {
		return nil, fmt.Errorf("%w: workflow error: %s", ingest.ErrClassifier, wr.Error)
	}

	mapping := make(map[string]string, len(wr.Result.Result))
	for col, field := range wr.Result.Result {
		if ingest.NormalizeColumn(col) == "is_valid" {
			continue
		}
		// Non-string values are noise from the workflow, not mappings.
		if s, ok := field.(string); ok {
			mapping[col] = s
		}
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("%w: empty mapping after stripping metadata", ingest.ErrMalformedMapping)
	}
	return mapping, nil
}
