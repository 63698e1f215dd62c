// Package supabase reads the cloud library through the PostgREST API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client implements domain.CloudLibraryRepository
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a cloud library client. Without a URL or key every
// call fails with domain.ErrNotConfigured.
func NewClient(baseURL, anonKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Configured reports whether credentials are present
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

// doRequest runs a read query against a table and decodes the rows
func (c *Client) doRequest(ctx context.Context, table string, query url.Values, dest interface{}) error {
	if !c.Configured() {
		return domain.ErrNotConfigured
	}

	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	c.logger.Debug("supabase request", "table", table, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase request failed", "table", table, "error", err)
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthFailed
	default:
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Error("supabase request error", "table", table, "status", resp.StatusCode, "message", apiErr.Message)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, apiErr.Message)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse %s rows: %w", table, err)
	}
	return nil
}

// Library returns the user's entries with their series, newest first
func (c *Client) Library(ctx context.Context) ([]domain.LibraryEntry, error) {
	var rows []domain.LibraryEntry
	query := url.Values{
		"select": {"*,series(*)"},
		"order":  {"added_at.desc,id.asc"},
	}
	if err := c.doRequest(ctx, "library", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Series returns all series ordered by title
func (c *Client) Series(ctx context.Context) ([]domain.Series, error) {
	var rows []domain.Series
	query := url.Values{
		"select": {"*"},
		"order":  {"title.asc,id.asc"},
	}
	if err := c.doRequest(ctx, "series", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Issues returns the issues of one series ordered by number
func (c *Client) Issues(ctx context.Context, seriesID string) ([]domain.Issue, error) {
	var rows []domain.Issue
	query := url.Values{
		"select":    {"*"},
		"series_id": {"eq." + seriesID},
		"order":     {"number.asc"},
	}
	if err := c.doRequest(ctx, "issues", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
