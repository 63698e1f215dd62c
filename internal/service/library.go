package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// LibraryService serves the cloud library through TTL caches.
// Staleness is bounded only by the TTL; there is no invalidation.
type LibraryService struct {
	repo   domain.CloudLibraryRepository
	logger *slog.Logger

	library *cache.Store[[]domain.LibraryEntry]
	series  *cache.Store[[]domain.Series]
	issues  *cache.Store[[]domain.Issue]
}

// NewLibraryService creates a library service. A nil repo means the cloud
// library is not configured and every call fails with ErrNotConfigured.
func NewLibraryService(repo domain.CloudLibraryRepository, ttl time.Duration, clock cache.Clock, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		repo:    repo,
		logger:  logger,
		library: cache.New[[]domain.LibraryEntry](ttl, clock),
		series:  cache.New[[]domain.Series](ttl, clock),
		issues:  cache.New[[]domain.Issue](ttl, clock),
	}
}

// Configured reports whether a cloud backend is available
func (s *LibraryService) Configured() bool {
	return s.repo != nil
}

// Library returns the user's library entries, newest first
func (s *LibraryService) Library(ctx context.Context) ([]domain.LibraryEntry, error) {
	if s.repo == nil {
		return nil, domain.ErrNotConfigured
	}
	return s.library.Get(ctx, KeyLibrary, func(ctx context.Context) ([]domain.LibraryEntry, error) {
		entries, err := s.repo.Library(ctx)
		if err != nil {
			s.logger.Error("failed to load library", "error", err)
			return nil, err
		}
		s.logger.Info("loaded library", "count", len(entries))
		return entries, nil
	})
}

// Series returns every series ordered by title
func (s *LibraryService) Series(ctx context.Context) ([]domain.Series, error) {
	if s.repo == nil {
		return nil, domain.ErrNotConfigured
	}
	return s.series.Get(ctx, KeySeries, func(ctx context.Context) ([]domain.Series, error) {
		series, err := s.repo.Series(ctx)
		if err != nil {
			s.logger.Error("failed to load series", "error", err)
			return nil, err
		}
		s.logger.Info("loaded series", "count", len(series))
		return series, nil
	})
}

// Issues returns the issues of one series ordered by number
func (s *LibraryService) Issues(ctx context.Context, seriesID string) ([]domain.Issue, error) {
	if s.repo == nil {
		return nil, domain.ErrNotConfigured
	}
	return s.issues.Get(ctx, PrefixIssues+seriesID, func(ctx context.Context) ([]domain.Issue, error) {
		issues, err := s.repo.Issues(ctx, seriesID)
		if err != nil {
			s.logger.Error("failed to load issues", "seriesID", seriesID, "error", err)
			return nil, err
		}
		s.logger.Debug("loaded issues", "seriesID", seriesID, "count", len(issues))
		return issues, nil
	})
}
