package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sahilm/fuzzy"
	"github.com/sourcegraph/conc"
)

// FilterResult is a filter match with metadata for highlighting
type FilterResult struct {
	Item           domain.MediaItem
	MatchedIndexes []int // Character positions that matched
	Score          int   // Match score (higher is better)
}

// FilterIndex implements sahilm/fuzzy.Source for zero-allocation fuzzy matching
type FilterIndex struct {
	items       []domain.MediaItem
	lowerTitles []string // Pre-computed lowercase titles
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *FilterIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *FilterIndex) Len() int { return len(idx.items) }

// CatalogService browses and searches the metadata catalog
type CatalogService struct {
	repo     domain.MetadataRepository
	trending *cache.Store[[]domain.MediaItem]
	logger   *slog.Logger

	// Filter index over everything shown so far, deduplicated by item
	filterMu      sync.RWMutex
	filterIndex   *FilterIndex
	filterIndexed map[string]bool
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo domain.MetadataRepository, ttl time.Duration, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		repo:          repo,
		trending:      cache.New[[]domain.MediaItem](ttl, nil),
		logger:        logger,
		filterIndex:   &FilterIndex{},
		filterIndexed: make(map[string]bool),
	}
}

// Trending returns trending movies followed by trending series. A failure
// of one kind is logged and the other is still returned; the error is
// only reported when both fail.
func (s *CatalogService) Trending(ctx context.Context) ([]domain.MediaItem, error) {
	kinds := []domain.MediaKind{domain.KindMovie, domain.KindSeries}
	results := make([][]domain.MediaItem, len(kinds))
	errs := make([]error, len(kinds))

	var wg conc.WaitGroup
	for i, kind := range kinds {
		wg.Go(func() {
			results[i], errs[i] = s.trending.Get(ctx, PrefixTrending+string(kind), func(ctx context.Context) ([]domain.MediaItem, error) {
				return s.repo.Trending(ctx, kind)
			})
			if errs[i] != nil {
				s.logger.Warn("failed to load trending", "kind", kind, "error", errs[i])
			}
		})
	}
	wg.Wait()

	if errs[0] != nil && errs[1] != nil {
		return nil, errors.Join(errs...)
	}

	var items []domain.MediaItem
	for _, r := range results {
		items = append(items, r...)
	}
	s.IndexForFilter(items)
	s.logger.Info("loaded trending", "count", len(items))
	return items, nil
}

// Search queries the catalog and orders the results by how closely their
// titles match the query
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.MediaItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return nil, err
	}

	ranked := rankResults(results, query)
	s.IndexForFilter(ranked)
	s.logger.Debug("search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// rankResults sorts items by fuzzy distance to query. Items whose titles
// do not fuzzy-match keep their server order after the matches.
func rankResults(items []domain.MediaItem, query string) []domain.MediaItem {
	if len(items) == 0 {
		return items
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	results := make([]domain.MediaItem, 0, len(items))
	used := make([]bool, len(items))
	for _, r := range ranks {
		if used[r.OriginalIndex] {
			continue
		}
		used[r.OriginalIndex] = true
		results = append(results, items[r.OriginalIndex])
	}
	for i, item := range items {
		if !used[i] {
			results = append(results, item)
		}
	}
	return results
}

// IndexForFilter adds items to the filter index, deduplicating by kind
// and ID. Lowercase titles are computed once here.
func (s *CatalogService) IndexForFilter(items []domain.MediaItem) {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()

	added := 0
	for _, item := range items {
		key := item.Key()
		if s.filterIndexed[key] {
			continue
		}
		s.filterIndexed[key] = true
		s.filterIndex.items = append(s.filterIndex.items, item)
		s.filterIndex.lowerTitles = append(s.filterIndex.lowerTitles, strings.ToLower(item.Title))
		added++
	}

	s.logger.Debug("indexed items for filter", "added", added, "skipped", len(items)-added, "total", len(s.filterIndex.items))
}

// Filter fuzzy matches query against the filter index, best first
func (s *CatalogService) Filter(query string) []FilterResult {
	s.filterMu.RLock()
	defer s.filterMu.RUnlock()

	if query == "" || s.filterIndex.Len() == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), s.filterIndex)
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Item:           s.filterIndex.items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// ClearFilterIndex removes all items from the filter index
func (s *CatalogService) ClearFilterIndex() {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()

	s.filterIndex = &FilterIndex{}
	s.filterIndexed = make(map[string]bool)
	s.logger.Debug("cleared filter index")
}

// FilterIndexCount returns the number of items in the filter index
func (s *CatalogService) FilterIndexCount() int {
	s.filterMu.RLock()
	defer s.filterMu.RUnlock()
	return s.filterIndex.Len()
}

// Episodes returns the episode listing of one season
func (s *CatalogService) Episodes(ctx context.Context, seriesID string, season int) ([]domain.Episode, error) {
	return s.repo.GetEpisodes(ctx, seriesID, season)
}

// ImageURL turns a relative artwork path into an absolute URL
func (s *CatalogService) ImageURL(path string) string {
	return s.repo.ImageURL(path)
}
