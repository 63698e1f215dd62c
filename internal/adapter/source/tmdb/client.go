// Package tmdb is a client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "Marquee/1.0"
)

// Options configures a Client
type Options struct {
	BaseURL           string
	ImageBaseURL      string
	APIKey            string // v3 key or v4 read access token
	Language          string
	RequestsPerSecond float64
}

// Client implements domain.MetadataRepository
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// NewClient creates a new metadata API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
		apiKey:       opts.APIKey,
		language:     opts.Language,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(limit, 10),
		logger:  logger,
	}
}

// isBearerToken reports whether the key is a v4 JWT access token
func (c *Client) isBearerToken() bool {
	return strings.Count(c.apiKey, ".") == 2
}

// doRequest performs an authenticated GET and decodes the JSON body into dest
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if c.apiKey == "" {
		return domain.ErrNotConfigured
	}

	if query == nil {
		query = url.Values{}
	}
	if _, set := query["language"]; !set && c.language != "" {
		query.Set("language", c.language)
	}
	if !c.isBearerToken() {
		query.Set("api_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.isBearerToken() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Error("tmdb request error", "path", path, "status", resp.StatusCode, "message", apiErr.StatusMessage)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetDetails returns the full record for an item, including its IMDb id
func (c *Client) GetDetails(ctx context.Context, id string, kind domain.MediaKind) (*domain.MediaItem, error) {
	var r mediaResult
	path := fmt.Sprintf("/%s/%s", kindPath(kind), id)
	query := url.Values{"append_to_response": {"external_ids"}}
	if err := c.doRequest(ctx, path, query, &r); err != nil {
		return nil, err
	}
	item := MapMediaItem(r, kind)
	return &item, nil
}

// GetCredits returns the cast ordered by billing
func (c *Client) GetCredits(ctx context.Context, id string, kind domain.MediaKind) ([]domain.CastMember, error) {
	var r creditsResponse
	path := fmt.Sprintf("/%s/%s/credits", kindPath(kind), id)
	if err := c.doRequest(ctx, path, nil, &r); err != nil {
		return nil, err
	}
	return MapCast(r.Cast), nil
}

// GetRecommendations returns similar titles of the same kind
func (c *Client) GetRecommendations(ctx context.Context, id string, kind domain.MediaKind) ([]domain.MediaItem, error) {
	var r pagedResults
	path := fmt.Sprintf("/%s/%s/recommendations", kindPath(kind), id)
	if err := c.doRequest(ctx, path, nil, &r); err != nil {
		return nil, err
	}
	return MapMediaItems(r.Results, kind), nil
}

// GetLogos returns English and language agnostic logos
func (c *Client) GetLogos(ctx context.Context, id string, kind domain.MediaKind) ([]domain.Logo, error) {
	var r imagesResponse
	path := fmt.Sprintf("/%s/%s/images", kindPath(kind), id)
	// A nil language suppresses the default so include_image_language applies
	query := url.Values{"include_image_language": {"en,null"}, "language": nil}
	if err := c.doRequest(ctx, path, query, &r); err != nil {
		return nil, err
	}
	return MapLogos(r.Logos), nil
}

// GetTrailers returns hosted trailers, official trailers first
func (c *Client) GetTrailers(ctx context.Context, id string, kind domain.MediaKind) ([]domain.Trailer, error) {
	var r videosResponse
	path := fmt.Sprintf("/%s/%s/videos", kindPath(kind), id)
	if err := c.doRequest(ctx, path, nil, &r); err != nil {
		return nil, err
	}
	return MapTrailers(r.Results), nil
}

// GetEpisodes returns the episode listing of one season
func (c *Client) GetEpisodes(ctx context.Context, seriesID string, season int) ([]domain.Episode, error) {
	var r seasonResponse
	path := fmt.Sprintf("/tv/%s/season/%d", seriesID, season)
	if err := c.doRequest(ctx, path, nil, &r); err != nil {
		return nil, err
	}
	return MapEpisodes(season, r.Episodes), nil
}

// Trending returns this week's popular titles of a kind
func (c *Client) Trending(ctx context.Context, kind domain.MediaKind) ([]domain.MediaItem, error) {
	var r pagedResults
	path := fmt.Sprintf("/trending/%s/week", kindPath(kind))
	if err := c.doRequest(ctx, path, nil, &r); err != nil {
		return nil, err
	}
	return MapMediaItems(r.Results, kind), nil
}

// Search finds movies and series by name
func (c *Client) Search(ctx context.Context, query string) ([]domain.MediaItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	var r pagedResults
	q := url.Values{"query": {query}, "include_adult": {strconv.FormatBool(false)}}
	if err := c.doRequest(ctx, "/search/multi", q, &r); err != nil {
		return nil, err
	}
	return MapMediaItems(r.Results, domain.KindMovie), nil
}

// ImageURL turns a relative artwork path into an absolute URL
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.imageBaseURL + "/" + strings.TrimPrefix(path, "/")
}
