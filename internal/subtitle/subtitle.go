// Package subtitle merges subtitle providers and picks a track to load.
package subtitle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sourcegraph/conc"
)

// Filter returns subtitles in the preferred language. language is an
// ISO 639-1 code or a label such as "Spanish"; known labels are mapped to
// their code and codes compare exactly. An unknown label matches tracks
// whose display label starts with it. An empty language keeps everything.
func Filter(subtitles []domain.Subtitle, language string) []domain.Subtitle {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		return subtitles
	}

	code, known := languageCodes[lang]
	if !known && len(lang) <= 3 {
		code, known = lang, true
	}

	var matched []domain.Subtitle
	for _, sub := range subtitles {
		if known {
			if strings.EqualFold(sub.Language, code) {
				matched = append(matched, sub)
			}
			continue
		}
		if strings.HasPrefix(strings.ToLower(sub.Display), lang) {
			matched = append(matched, sub)
		}
	}

	return matched
}

// BestMatch returns the best subtitle for the language: a non-SDH track
// first, then any match. Nil when nothing matches.
func BestMatch(subtitles []domain.Subtitle, language string) *domain.Subtitle {
	filtered := Filter(subtitles, language)
	if len(filtered) == 0 {
		return nil
	}

	for _, sub := range filtered {
		label := strings.ToLower(sub.Display)
		if !strings.Contains(label, "sdh") && !strings.Contains(label, "hearing") {
			return &sub
		}
	}

	return &filtered[0]
}

// Service queries every configured provider and merges the results
type Service struct {
	providers []domain.SubtitleRepository
	logger    *slog.Logger
}

// NewService creates a subtitle service over the given providers
func NewService(providers []domain.SubtitleRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{providers: providers, logger: logger}
}

// Resolve searches all providers concurrently. Provider failures are
// logged and contribute nothing; the merged list keeps provider order and
// drops duplicate URLs.
func (s *Service) Resolve(ctx context.Context, imdbID string, season, episode int) []domain.Subtitle {
	if imdbID == "" || len(s.providers) == 0 {
		return nil
	}

	results := make([][]domain.Subtitle, len(s.providers))
	var wg conc.WaitGroup
	for i, provider := range s.providers {
		wg.Go(func() {
			start := time.Now()
			subs, err := provider.Search(ctx, imdbID, season, episode)
			if err != nil {
				s.logger.Warn("subtitle provider failed",
					"provider", provider.Name(), "imdbID", imdbID, "error", err, "duration", time.Since(start))
				return
			}
			s.logger.Debug("subtitle provider done",
				"provider", provider.Name(), "count", len(subs), "duration", time.Since(start))
			results[i] = subs
		})
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []domain.Subtitle
	for _, subs := range results {
		for _, sub := range subs {
			if sub.URL == "" || seen[sub.URL] {
				continue
			}
			seen[sub.URL] = true
			merged = append(merged, sub)
		}
	}
	return merged
}
