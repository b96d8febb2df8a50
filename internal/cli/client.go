package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	DocumentID int64
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running deepsearch server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

// Search runs a query.
func (c *Client) Search(ctx context.Context, query string, topK int) (*models.SearchResponse, error) {
	var out models.SearchResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: query, TopK: topK}, &out)
	return &out, err
}

// Ingest stores and indexes a document.
func (c *Client) Ingest(ctx context.Context, content string, metadata map[string]interface{}) (*models.IngestResponse, error) {
	var out models.IngestResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/ingest", models.DocumentInput{Content: content, Metadata: metadata}, &out)
	return &out, err
}

// GetDocument fetches one document.
func (c *Client) GetDocument(ctx context.Context, id int64) (*models.SearchResult, error) {
	var out models.SearchResult
	err := c.do(ctx, http.MethodGet, "/api/v1/documents/"+strconv.FormatInt(id, 10), nil, &out)
	return &out, err
}

// Status fetches the server status.
func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &out)
	return &out, err
}

// Orphans lists documents without a vector.
func (c *Client) Orphans(ctx context.Context) ([]int64, error) {
	var out struct {
		Orphans []int64 `json:"orphans"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/orphans", nil, &out)
	return out.Orphans, err
}

// Repair asks the server to re-index orphaned documents. A report is
// returned alongside the error when some documents failed.
func (c *Client) Repair(ctx context.Context) (*ingest.RepairReport, error) {
	var out struct {
		ingest.RepairReport
		Errors []string `json:"errors"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/repair", nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(out.Errors) > 0 {
		return &out.RepairReport, fmt.Errorf("repair incomplete: %s", strings.Join(out.Errors, "; "))
	}
	return &out.RepairReport, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e models.ErrorResponse
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Code, apiErr.Message, apiErr.DocumentID = e.Code, e.Error, e.DocumentID
		}
		// Repair failures still carry a report.
		_ = json.Unmarshal(raw, out)
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
