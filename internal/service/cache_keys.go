package service

// Cache keys for cloud library and catalog content
const (
	// KeyLibrary is the cache key for the user's library listing
	KeyLibrary = "library"

	// KeySeries is the cache key for the series listing
	KeySeries = "series"

	// PrefixIssues is the prefix for per-series issue caches (issues:{seriesID})
	PrefixIssues = "issues:"

	// PrefixTrending is the prefix for trending caches (trending:{kind})
	PrefixTrending = "trending:"
)
