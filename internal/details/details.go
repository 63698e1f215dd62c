// Package details builds the merged read model behind the detail overlay.
package details

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sourcegraph/conc"
)

const (
	// MaxCast is how many billed names are kept
	MaxCast = 5

	// MaxRecommendations is how many similar titles are kept
	MaxRecommendations = 12
)

// metadata is the subset of the catalog API the aggregator needs
type metadata interface {
	GetDetails(ctx context.Context, id string, kind domain.MediaKind) (*domain.MediaItem, error)
	GetCredits(ctx context.Context, id string, kind domain.MediaKind) ([]domain.CastMember, error)
	GetRecommendations(ctx context.Context, id string, kind domain.MediaKind) ([]domain.MediaItem, error)
	GetLogos(ctx context.Context, id string, kind domain.MediaKind) ([]domain.Logo, error)
	ImageURL(path string) string
}

// Aggregator fetches everything the overlay shows about one item
type Aggregator struct {
	repo   metadata
	logger *slog.Logger
}

// NewAggregator creates an aggregator over repo
func NewAggregator(repo metadata, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{repo: repo, logger: logger}
}

// Fetch runs the details, credits, recommendations and logo lookups
// concurrently and merges them. Failed lookups are logged and leave
// their part empty; a failed detail lookup keeps the summary item.
func (a *Aggregator) Fetch(ctx context.Context, item domain.MediaItem) domain.Details {
	var (
		full   *domain.MediaItem
		cast   []domain.CastMember
		recs   []domain.MediaItem
		logos  []domain.Logo
		wg     conc.WaitGroup
		logMu  sync.Mutex
		failed int
	)

	track := func(name string, start time.Time, err error) {
		logMu.Lock()
		defer logMu.Unlock()
		if err != nil {
			failed++
			a.logger.Warn("detail fetch failed", "part", name, "itemID", item.ID, "error", err, "duration", time.Since(start))
			return
		}
		a.logger.Debug("detail fetch done", "part", name, "itemID", item.ID, "duration", time.Since(start))
	}

	wg.Go(func() {
		start := time.Now()
		var err error
		full, err = a.repo.GetDetails(ctx, item.ID, item.Kind)
		track("details", start, err)
	})
	wg.Go(func() {
		start := time.Now()
		var err error
		cast, err = a.repo.GetCredits(ctx, item.ID, item.Kind)
		track("credits", start, err)
	})
	wg.Go(func() {
		start := time.Now()
		var err error
		recs, err = a.repo.GetRecommendations(ctx, item.ID, item.Kind)
		track("recommendations", start, err)
	})
	wg.Go(func() {
		start := time.Now()
		var err error
		logos, err = a.repo.GetLogos(ctx, item.ID, item.Kind)
		track("images", start, err)
	})
	wg.Wait()

	d := domain.Details{
		Item:            item,
		Cast:            topCast(cast, MaxCast),
		Recommendations: recs,
		LogoURL:         SelectLogo(logos, a.repo.ImageURL),
	}
	if full != nil {
		d.Item = *full
	}
	if len(d.Recommendations) > MaxRecommendations {
		d.Recommendations = d.Recommendations[:MaxRecommendations]
	}

	a.logger.Debug("details loaded", "itemID", item.ID, "cast", len(d.Cast),
		"recommendations", len(d.Recommendations), "logo", d.LogoURL != "", "failed", failed)
	return d
}

func topCast(cast []domain.CastMember, n int) []string {
	if len(cast) > n {
		cast = cast[:n]
	}
	names := make([]string, 0, len(cast))
	for _, c := range cast {
		names = append(names, c.Name)
	}
	return names
}

// SelectLogo picks the English logo, else a language-agnostic one, and
// returns its absolute URL. Empty when neither exists.
func SelectLogo(logos []domain.Logo, imageURL func(string) string) string {
	var agnostic *domain.Logo
	for i := range logos {
		switch logos[i].Language {
		case "en":
			return imageURL(logos[i].FilePath)
		case "":
			if agnostic == nil {
				agnostic = &logos[i]
			}
		}
	}
	if agnostic != nil {
		return imageURL(agnostic.FilePath)
	}
	return ""
}
