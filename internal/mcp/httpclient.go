package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/ironpath/internal/models"
	"github.com/claude/ironpath/internal/progression"
)

// HTTPClient implements DataSource by calling the IronPath REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but data
// lives in a running daemon (typically reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) History(ctx context.Context) ([]models.WorkoutRecord, error) {
	var out []models.WorkoutRecord
	if err := c.get(ctx, "/api/v1/history", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Session(ctx context.Context) ([]models.SetEntry, error) {
	var out []models.SetEntry
	if err := c.get(ctx, "/api/v1/session", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context) (map[string]models.PersonalRecord, error) {
	var out map[string]models.PersonalRecord
	if err := c.get(ctx, "/api/v1/records", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Progression(ctx context.Context) (progression.Level, error) {
	var out progression.Level
	if err := c.get(ctx, "/api/v1/progression", &out); err != nil {
		return progression.Level{}, err
	}
	return out, nil
}
