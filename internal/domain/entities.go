package domain

import (
	"fmt"
	"strconv"
	"time"
)

// MediaKind distinguishes standalone titles from episodic ones
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// MediaItem is a catalog entry as returned by the metadata API.
// A detail fetch replaces the whole value; fields are never patched.
type MediaItem struct {
	ID           string    // Metadata API identifier
	Kind         MediaKind // movie or series
	Title        string    // Display title (name for series)
	Overview     string    // Plot synopsis
	ReleaseDate  string    // YYYY-MM-DD (first air date for series)
	Rating       float64   // Community rating, 0-10
	PosterPath   string    // Relative artwork path
	BackdropPath string    // Relative artwork path
	Genres       []string
	Runtime      time.Duration // Movies only
	SeasonCount  int           // Series only, 0 when unknown
	IMDBID       string        // External id, e.g. "tt0903747"
}

// Year returns the release year or 0 when the date is missing
func (m MediaItem) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Key identifies the item across kinds. Movie and series ids come from
// separate sequences and overlap.
func (m MediaItem) Key() string {
	return string(m.Kind) + ":" + m.ID
}

// IsSeries reports whether the item is episodic
func (m MediaItem) IsSeries() bool {
	return m.Kind == KindSeries
}

// FormattedRuntime returns the runtime as "2h 14m" or "48m"
func (m MediaItem) FormattedRuntime() string {
	if m.Runtime <= 0 {
		return ""
	}
	h := int(m.Runtime.Hours())
	mins := int(m.Runtime.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// CastMember is a single credited performer
type CastMember struct {
	Name      string
	Character string
	Order     int
}

// Logo is a title treatment image. An empty Language means the logo
// carries no text and suits any locale.
type Logo struct {
	FilePath string
	Language string
}

// Trailer is an externally hosted video
type Trailer struct {
	Key      string // Hosting site video id
	Name     string
	Site     string // e.g. "YouTube"
	Type     string // e.g. "Trailer", "Teaser"
	Official bool
}

// Details is the merged read model behind the detail overlay
type Details struct {
	Item            MediaItem
	Cast            []string    // Top billed names
	Recommendations []MediaItem // Similar titles
	LogoURL         string      // Empty when no suitable logo exists
}

// Episode is a single entry of a season listing
type Episode struct {
	Season    int
	Number    int
	Title     string
	Overview  string
	AirDate   string
	StillPath string
	Runtime   time.Duration
}

// Label returns the "S01E03" style code
func (e Episode) Label() string {
	return fmt.Sprintf("S%02dE%02d", e.Season, e.Number)
}

// ResumePosition is the last watched episode of a series
type ResumePosition struct {
	Season    int       `json:"season"`
	Episode   int       `json:"episode"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StreamQuery identifies what to resolve a playable stream for
type StreamQuery struct {
	Title   string    `json:"title"`
	Kind    MediaKind `json:"kind"`
	Year    int       `json:"year,omitempty"`
	Season  int       `json:"season,omitempty"`
	Episode int       `json:"episode,omitempty"`
}

// Key returns a stable cache key for the query
func (q StreamQuery) Key() string {
	return fmt.Sprintf("%s|%s|%d|%d|%d", q.Kind, q.Title, q.Year, q.Season, q.Episode)
}

// StreamSource is one playable variant of a stream
type StreamSource struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	IsM3U8  bool   `json:"is_m3u8"`
}

// StreamResult is what a stream resolver returns on success
type StreamResult struct {
	Sources   []StreamSource    `json:"sources"`
	Subtitles []Subtitle        `json:"subtitles"`
	Headers   map[string]string `json:"headers,omitempty"`
	Provider  string            `json:"provider"`
}

// Subtitle is a downloadable subtitle track
type Subtitle struct {
	URL      string `json:"url"`
	Language string `json:"language"` // ISO 639-1 code
	Display  string `json:"display"`  // Human readable label
	Type     string `json:"type,omitempty"`
}

// Series is a cloud library series record
type Series struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	Year      int    `json:"year,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
}

// LibraryEntry is a row of the user's cloud library with its series joined in
type LibraryEntry struct {
	ID       string    `json:"id"`
	SeriesID string    `json:"series_id"`
	AddedAt  time.Time `json:"added_at"`
	Series   *Series   `json:"series,omitempty"`
}

// Issue is a single issue of a cloud library series
type Issue struct {
	ID          string `json:"id"`
	SeriesID    string `json:"series_id"`
	Number      int    `json:"number"`
	Title       string `json:"title,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`
}
