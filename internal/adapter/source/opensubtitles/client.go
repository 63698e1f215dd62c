// Package opensubtitles resolves subtitles through the OpenSubtitles REST search.
package opensubtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/subtitle"
)

const userAgent = "TemporaryUserAgent"

// fetcher executes a GET, possibly through a privileged helper process
type fetcher interface {
	Fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

// result is one row of a search response
type result struct {
	SubDownloadLink string `json:"SubDownloadLink"`
	SubFileName     string `json:"SubFileName"`
	SubFormat       string `json:"SubFormat"`
	LanguageName    string `json:"LanguageName"`
	ISO639          string `json:"ISO639"`
	SubLanguageID   string `json:"SubLanguageID"`
}

// Resolver implements domain.SubtitleRepository
type Resolver struct {
	baseURL string
	fetcher fetcher
	logger  *slog.Logger
}

// NewResolver creates a resolver that searches baseURL through f
func NewResolver(baseURL string, f fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: f,
		logger:  logger,
	}
}

// Name identifies the provider in logs
func (r *Resolver) Name() string { return "opensubtitles" }

// SearchURL builds the search URL for an IMDb id, scoped to an episode
// when season and episode are both set.
func (r *Resolver) SearchURL(imdbID string, season, episode int) string {
	id := strings.TrimPrefix(strings.ToLower(imdbID), "tt")
	u := fmt.Sprintf("%s/search/imdbid-%s", r.baseURL, id)
	if season > 0 && episode > 0 {
		u += fmt.Sprintf("/season-%d/episode-%d", season, episode)
	}
	return u
}

// Search returns the subtitles listed for an IMDb id. Empty or malformed
// responses give an empty list; only transport failures are errors.
func (r *Resolver) Search(ctx context.Context, imdbID string, season, episode int) ([]domain.Subtitle, error) {
	if imdbID == "" {
		return nil, nil
	}

	searchURL := r.SearchURL(imdbID, season, episode)
	r.logger.Debug("opensubtitles search", "url", searchURL)

	body, err := r.fetcher.Fetch(ctx, searchURL, http.Header{"X-User-Agent": {userAgent}})
	if err != nil {
		return nil, fmt.Errorf("opensubtitles search: %w", err)
	}

	return parseResults(body, r.logger), nil
}

// parseResults maps response rows; anything unparseable yields nil
func parseResults(body []byte, logger *slog.Logger) []domain.Subtitle {
	var rows []result
	if err := json.Unmarshal(body, &rows); err != nil {
		logger.Debug("opensubtitles response not a result list", "error", err, "bodyLen", len(body))
		return nil
	}

	subs := make([]domain.Subtitle, 0, len(rows))
	for _, row := range rows {
		if row.SubDownloadLink == "" {
			continue
		}
		lang := strings.ToLower(row.ISO639)
		if lang == "" {
			lang = subtitle.LanguageCode(row.LanguageName)
		}
		display := row.LanguageName
		if display == "" {
			display = strings.ToUpper(lang)
		}
		subs = append(subs, domain.Subtitle{
			URL:      row.SubDownloadLink,
			Language: lang,
			Display:  display,
			Type:     row.SubFormat,
		})
	}
	return subs
}
