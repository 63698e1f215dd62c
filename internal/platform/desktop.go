package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
)

// helperBaseURL is a placeholder host; the transport always dials the socket
const helperBaseURL = "http://marquee"

// Desktop forwards capabilities to the privileged helper process
type Desktop struct {
	socket     string
	httpClient *http.Client
	cloud      atomic.Bool // helper reported a configured cloud library
	logger     *slog.Logger
}

// NewDesktop creates a client for the helper listening on socket
func NewDesktop(socket string, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		},
		MaxIdleConns:    4,
		IdleConnTimeout: 30 * time.Second,
	}
	return &Desktop{
		socket: socket,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
		logger: logger,
	}
}

// Handshake checks the helper is alive and learns what it can serve
func (d *Desktop) Handshake(ctx context.Context) error {
	var health healthResponse
	if err := d.call(ctx, http.MethodGet, "/v1/health", nil, &health); err != nil {
		return err
	}
	d.cloud.Store(health.Cloud)
	d.logger.Debug("desktop helper healthy", "version", health.Version, "cloud", health.Cloud)
	return nil
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) GetStream(ctx context.Context, q domain.StreamQuery) (*domain.StreamResult, error) {
	var res domain.StreamResult
	if err := d.call(ctx, http.MethodPost, "/v1/stream", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (d *Desktop) CloudAPI() domain.CloudLibraryRepository {
	if !d.cloud.Load() {
		return nil
	}
	return desktopCloud{d}
}

func (d *Desktop) Fetcher() Fetcher { return desktopFetcher{d} }

// call sends one request to the helper. A non-nil in is sent as JSON and
// out, when non-nil, receives the decoded JSON response.
func (d *Desktop) call(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := d.roundTrip(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse helper response: %w", err)
	}
	return nil
}

func (d *Desktop) roundTrip(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, helperBaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Debug("helper call failed", "path", path, "requestID", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read helper response: %w", err)
	}

	d.logger.Debug("helper call", "method", method, "path", path, "requestID", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return nil, decodeError(eb, resp.StatusCode)
	}
	return data, nil
}

// desktopCloud reads the cloud library through the helper
type desktopCloud struct{ d *Desktop }

func (c desktopCloud) Library(ctx context.Context) ([]domain.LibraryEntry, error) {
	var rows []domain.LibraryEntry
	err := c.d.call(ctx, http.MethodGet, "/v1/cloud/library", nil, &rows)
	return rows, err
}

func (c desktopCloud) Series(ctx context.Context) ([]domain.Series, error) {
	var rows []domain.Series
	err := c.d.call(ctx, http.MethodGet, "/v1/cloud/series", nil, &rows)
	return rows, err
}

func (c desktopCloud) Issues(ctx context.Context, seriesID string) ([]domain.Issue, error) {
	var rows []domain.Issue
	path := fmt.Sprintf("/v1/cloud/series/%s/issues", url.PathEscape(seriesID))
	err := c.d.call(ctx, http.MethodGet, path, nil, &rows)
	return rows, err
}

// desktopFetcher runs provider GETs in the helper
type desktopFetcher struct{ d *Desktop }

func (f desktopFetcher) Fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	return f.d.roundTrip(ctx, http.MethodPost, "/v1/fetch", fetchRequest{URL: rawURL, Header: header})
}
