package domain

import (
	"context"
)

// MetadataRepository provides catalog metadata for movies and series
type MetadataRepository interface {
	// GetDetails returns the full record for an item
	GetDetails(ctx context.Context, id string, kind MediaKind) (*MediaItem, error)

	// GetCredits returns the cast ordered by billing
	GetCredits(ctx context.Context, id string, kind MediaKind) ([]CastMember, error)

	// GetRecommendations returns similar titles
	GetRecommendations(ctx context.Context, id string, kind MediaKind) ([]MediaItem, error)

	// GetLogos returns the title treatment images
	GetLogos(ctx context.Context, id string, kind MediaKind) ([]Logo, error)

	// GetTrailers returns hosted trailer videos, best candidates first
	GetTrailers(ctx context.Context, id string, kind MediaKind) ([]Trailer, error)

	// GetEpisodes returns the episode listing of one season
	GetEpisodes(ctx context.Context, seriesID string, season int) ([]Episode, error)

	// Trending returns the currently popular titles of a kind
	Trending(ctx context.Context, kind MediaKind) ([]MediaItem, error)

	// Search finds titles of any kind by name
	Search(ctx context.Context, query string) ([]MediaItem, error)

	// ImageURL turns a relative artwork path into an absolute URL
	ImageURL(path string) string
}

// StreamRepository resolves playable streams
type StreamRepository interface {
	GetStream(ctx context.Context, q StreamQuery) (*StreamResult, error)
}

// SubtitleRepository finds subtitle tracks by external id.
// Season and episode are zero for movies.
type SubtitleRepository interface {
	Name() string
	Search(ctx context.Context, imdbID string, season, episode int) ([]Subtitle, error)
}

// CloudLibraryRepository is the read side of the user's cloud library
type CloudLibraryRepository interface {
	// Library returns the user's entries with series joined, ordered by add date
	Library(ctx context.Context) ([]LibraryEntry, error)

	// Series returns all series ordered by title
	Series(ctx context.Context) ([]Series, error)

	// Issues returns the issues of one series ordered by number
	Issues(ctx context.Context, seriesID string) ([]Issue, error)
}

// ResumeStore persists per-series last watched positions on the device
type ResumeStore interface {
	LoadResume(seriesID string) (ResumePosition, bool)
	SaveResume(seriesID string, pos ResumePosition) error
}
