// Package yifysubs scrapes movie subtitles from a YIFY subtitles index.
package yifysubs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/subtitle"
)

// fetcher executes a GET, possibly through a privileged helper process
type fetcher interface {
	Fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

// Resolver implements domain.SubtitleRepository for movies
type Resolver struct {
	baseURL string
	fetcher fetcher
	logger  *slog.Logger
}

// NewResolver creates a resolver for the index at baseURL
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
func (r *Resolver) Name() string { return "yifysubs" }

// Search lists the subtitles of a movie. The index has no episodes, so
// any season/episode scoped request yields nothing.
func (r *Resolver) Search(ctx context.Context, imdbID string, season, episode int) ([]domain.Subtitle, error) {
	if imdbID == "" || season > 0 || episode > 0 {
		return nil, nil
	}

	pageURL := fmt.Sprintf("%s/movie-imdb/%s", r.baseURL, imdbID)
	r.logger.Debug("yifysubs search", "url", pageURL)

	body, err := r.fetcher.Fetch(ctx, pageURL, http.Header{"Accept": {"text/html"}})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("yifysubs search: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		r.logger.Debug("yifysubs page not parseable", "error", err)
		return nil, nil
	}

	return r.parseSubtitles(doc), nil
}

// parseSubtitles reads the subtitle table in page order
func (r *Resolver) parseSubtitles(doc *goquery.Document) []domain.Subtitle {
	var subs []domain.Subtitle

	doc.Find("table.other-subs tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find(".sub-lang").First().Text())
		href, ok := row.Find(`a[href^="/subtitles/"]`).First().Attr("href")
		if label == "" || !ok {
			return
		}

		// The download lives at /subtitle/<slug>.zip next to the /subtitles/<slug> page
		slug := strings.TrimPrefix(href, "/subtitles/")
		subs = append(subs, domain.Subtitle{
			URL:      fmt.Sprintf("%s/subtitle/%s.zip", r.baseURL, slug),
			Language: subtitle.LanguageCode(label),
			Display:  label,
			Type:     "srt",
		})
	})

	return subs
}
