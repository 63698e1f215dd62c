// Package consumet resolves playable streams through a Consumet-compatible API.
package consumet

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
	"github.com/mmcdole/marquee/internal/subtitle"
)

const defaultTimeout = 20 * time.Second

// Client implements domain.StreamRepository
type Client struct {
	baseURL    string
	provider   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a stream resolver for one provider, e.g. "flixhq"
func NewClient(baseURL, provider string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == "" {
		provider = "flixhq"
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		provider: provider,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs a GET under /movies/{provider} and decodes the body
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if c.baseURL == "" {
		return domain.ErrNotConfigured
	}

	reqURL := fmt.Sprintf("%s/movies/%s%s", c.baseURL, c.provider, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("consumet request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("consumet request failed", "error", err)
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Error("consumet request error", "status", resp.StatusCode, "message", apiErr.Message)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, apiErr.Message)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetStream searches by title, disambiguates by year, resolves the episode
// for series and returns the provider's sources and subtitle tracks.
func (c *Client) GetStream(ctx context.Context, q domain.StreamQuery) (*domain.StreamResult, error) {
	start := time.Now()

	var search searchResponse
	if err := c.doRequest(ctx, "/"+url.PathEscape(q.Title), nil, &search); err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Title, err)
	}

	match, ok := pickResult(search.Results, q.Title, q.Kind, q.Year)
	if !ok {
		return nil, fmt.Errorf("search %q: %w", q.Title, domain.ErrNoStream)
	}
	c.logger.Debug("consumet match", "query", q.Title, "year", q.Year, "id", match.ID, "title", match.Title)

	var info infoResponse
	if err := c.doRequest(ctx, "/info", url.Values{"id": {match.ID}}, &info); err != nil {
		return nil, fmt.Errorf("info %s: %w", match.ID, err)
	}

	episodeID, ok := pickEpisode(info.Episodes, q.Kind, q.Season, q.Episode)
	if !ok {
		return nil, fmt.Errorf("episode S%02dE%02d of %s: %w", q.Season, q.Episode, match.ID, domain.ErrNoStream)
	}

	var watch watchResponse
	query := url.Values{"episodeId": {episodeID}, "mediaId": {match.ID}}
	if err := c.doRequest(ctx, "/watch", query, &watch); err != nil {
		return nil, fmt.Errorf("watch %s: %w", episodeID, err)
	}
	if len(watch.Sources) == 0 {
		return nil, fmt.Errorf("watch %s: %w", episodeID, domain.ErrNoStream)
	}

	result := mapWatch(watch, c.provider)
	c.logger.Info("stream resolved",
		"title", q.Title, "provider", c.provider, "sources", len(result.Sources),
		"subtitles", len(result.Subtitles), "duration", time.Since(start))
	return result, nil
}

func mapWatch(w watchResponse, provider string) *domain.StreamResult {
	result := &domain.StreamResult{
		Headers:  w.Headers,
		Provider: provider,
	}

	for _, s := range w.Sources {
		if s.URL == "" {
			continue
		}
		result.Sources = append(result.Sources, domain.StreamSource{
			URL:     s.URL,
			Quality: s.Quality,
			IsM3U8:  s.IsM3U8,
		})
	}
	sortSources(result.Sources)

	for _, t := range w.Subtitles {
		// Seek preview sprites are listed alongside subtitles
		if t.URL == "" || strings.EqualFold(t.Lang, "thumbnails") {
			continue
		}
		result.Subtitles = append(result.Subtitles, domain.Subtitle{
			URL:      t.URL,
			Language: subtitle.LanguageCode(t.Lang),
			Display:  t.Lang,
			Type:     "vtt",
		})
	}

	return result
}
