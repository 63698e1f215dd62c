// Package overlay implements the detail overlay's state machine: the
// trailer queue, mute, season selection with resume, and the follow-up
// work opening an item needs.
//
// A Controller is owned by one goroutine (the UI loop). The Fetch and
// Load methods only read their arguments and may run elsewhere; their
// results are handed back through the Set and Apply methods, which drop
// anything superseded in the meantime.
package overlay

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// Surface is the video element currently showing a trailer
type Surface interface {
	// Position returns the playback position, false when unknown
	Position() (time.Duration, bool)

	SetMuted(muted bool)
}

// trailerSource looks up trailers (consumer-defined interface)
type trailerSource interface {
	GetTrailers(ctx context.Context, id string, kind domain.MediaKind) ([]domain.Trailer, error)
}

// episodeSource lists a season's episodes (consumer-defined interface)
type episodeSource interface {
	GetEpisodes(ctx context.Context, seriesID string, season int) ([]domain.Episode, error)
}

// prefetcher warms the stream cache (consumer-defined interface)
type prefetcher interface {
	Prefetch(ctx context.Context, q domain.StreamQuery)
}

// OpenOptions adjusts how an item is opened
type OpenOptions struct {
	// TrailerOverride plays this trailer instead of looking one up
	TrailerOverride string

	// TrailerStart resumes the override trailer at this position
	TrailerStart time.Duration
}

// OpenPlan is the follow-up work an Open needs. Every field describes an
// independent task; none of them blocks showing the overlay.
type OpenPlan struct {
	Session uint64 // tags SetTrailers for this open

	LoadTrailers bool
	TrailerStart time.Duration

	Prefetch domain.StreamQuery

	FetchEpisodes bool
	Season        int
	EpisodeGen    uint64
}

// CloseReport is handed to the caller when the overlay closes so other
// views can continue the trailer where it stopped
type CloseReport struct {
	Item       domain.MediaItem
	TrailerKey string
	Position   time.Duration
}

// PlayTarget is what the play action starts
type PlayTarget struct {
	Season     int // 0 for movies
	Episode    int // 0 for movies
	FromResume bool
}

// Controller holds the state of an open detail overlay
type Controller struct {
	trailers trailerSource
	episodes episodeSource
	prefetch prefetcher
	resume   domain.ResumeStore
	logger   *slog.Logger

	session    domain.Generation
	episodeGen domain.Generation

	open        bool
	item        domain.MediaItem
	queue       []string
	failed      map[string]bool // trailer keys that errored this session
	override    bool
	muted       bool
	season      int
	resumePos   *domain.ResumePosition
	episodeList []domain.Episode
}

// NewController creates a controller. resume and prefetch may be nil.
func NewController(
	trailers trailerSource,
	episodes episodeSource,
	prefetch prefetcher,
	resume domain.ResumeStore,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		trailers: trailers,
		episodes: episodes,
		prefetch: prefetch,
		resume:   resume,
		logger:   logger,
	}
}

// Open resets the overlay for item and returns the follow-up work
func (c *Controller) Open(item domain.MediaItem, opts OpenOptions) OpenPlan {
	c.open = true
	c.item = item
	c.queue = nil
	c.failed = nil
	c.override = false
	c.muted = false
	c.season = 0
	c.resumePos = nil
	c.episodeList = nil

	plan := OpenPlan{Session: c.session.Next()}
	// outstanding episode fetches belong to the previous item
	c.episodeGen.Next()

	if opts.TrailerOverride != "" {
		c.queue = []string{opts.TrailerOverride}
		c.override = true
		plan.TrailerStart = opts.TrailerStart
	} else {
		plan.LoadTrailers = true
	}

	plan.Prefetch = domain.StreamQuery{Title: item.Title, Kind: item.Kind, Year: item.Year()}

	if item.IsSeries() {
		c.loadResume()
		c.season = 1
		if c.resumePos != nil {
			c.season = c.resumePos.Season
			plan.Prefetch.Season = c.resumePos.Season
			plan.Prefetch.Episode = c.resumePos.Episode
		} else {
			plan.Prefetch.Season = 1
			plan.Prefetch.Episode = 1
		}
		plan.FetchEpisodes = true
		plan.Season = c.season
		plan.EpisodeGen = c.episodeGen.Next()
	}

	c.logger.Debug("overlay opened", "itemID", item.ID, "kind", item.Kind,
		"season", c.season, "resume", c.resumePos != nil, "override", c.override)
	return plan
}

// loadResume reads the persisted position once per open and keeps it
// only when it fits the item's known season count
func (c *Controller) loadResume() {
	if c.resume == nil {
		return
	}
	pos, ok := c.resume.LoadResume(c.item.ID)
	if !ok {
		return
	}
	if pos.Season < 1 || pos.Episode < 1 || (c.item.SeasonCount > 0 && pos.Season > c.item.SeasonCount) {
		c.logger.Debug("discarding resume position", "itemID", c.item.ID,
			"season", pos.Season, "episode", pos.Episode, "seasons", c.item.SeasonCount)
		return
	}
	c.resumePos = &pos
}

// UpdateItem replaces the open item with a fuller record for the same id.
// When the new season count invalidates the resume position the season
// falls back to 1 and a new episode fetch is requested.
func (c *Controller) UpdateItem(item domain.MediaItem) (refetch bool, season int, gen uint64) {
	if !c.open || item.ID != c.item.ID || item.Kind != c.item.Kind {
		return false, 0, 0
	}
	c.item = item

	if c.resumePos == nil || item.SeasonCount == 0 || c.resumePos.Season <= item.SeasonCount {
		return false, 0, 0
	}

	c.logger.Debug("resume position beyond season count", "itemID", item.ID,
		"season", c.resumePos.Season, "seasons", item.SeasonCount)
	c.resumePos = nil
	if c.season <= item.SeasonCount {
		return false, 0, 0
	}
	gen = c.SelectSeason(1)
	return true, 1, gen
}

// LoadTrailers looks up trailer keys for item, best first. Errors are
// logged and yield no trailers.
func (c *Controller) LoadTrailers(ctx context.Context, item domain.MediaItem) []string {
	trailers, err := c.trailers.GetTrailers(ctx, item.ID, item.Kind)
	if err != nil {
		c.logger.Warn("failed to load trailers", "itemID", item.ID, "error", err)
		return nil
	}
	keys := make([]string, 0, len(trailers))
	for _, t := range trailers {
		if t.Key != "" {
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// SetTrailers installs looked up trailers unless the overlay has been
// reopened since or an override trailer is playing
func (c *Controller) SetTrailers(session uint64, keys []string) bool {
	if !c.session.IsCurrent(session) || !c.open || c.override {
		return false
	}
	c.queue = nil
	for _, k := range keys {
		if !c.failed[k] {
			c.queue = append(c.queue, k)
		}
	}
	return true
}

// Prefetch warms the stream for q. Best effort; nothing is reported back.
func (c *Controller) Prefetch(ctx context.Context, q domain.StreamQuery) {
	if c.prefetch == nil || q.Title == "" {
		return
	}
	c.prefetch.Prefetch(ctx, q)
}

// SelectSeason switches the season and returns the generation that the
// episode fetch for it must carry. Earlier fetches are superseded.
func (c *Controller) SelectSeason(season int) uint64 {
	if season < 1 {
		season = 1
	}
	if c.item.SeasonCount > 0 && season > c.item.SeasonCount {
		season = c.item.SeasonCount
	}
	c.season = season
	c.episodeList = nil
	return c.episodeGen.Next()
}

// FetchEpisodes lists season's episodes for seriesID. Errors are logged
// and yield an empty list.
func (c *Controller) FetchEpisodes(ctx context.Context, seriesID string, season int) []domain.Episode {
	start := time.Now()
	eps, err := c.episodes.GetEpisodes(ctx, seriesID, season)
	if err != nil {
		c.logger.Warn("failed to load episodes", "seriesID", seriesID, "season", season, "error", err)
		return nil
	}
	c.logger.Debug("loaded episodes", "seriesID", seriesID, "season", season,
		"count", len(eps), "duration", time.Since(start))
	return eps
}

// ApplyEpisodes stores eps if gen is the latest episode request
func (c *Controller) ApplyEpisodes(gen uint64, eps []domain.Episode) bool {
	if !c.episodeGen.IsCurrent(gen) {
		return false
	}
	c.episodeList = eps
	return true
}

// TrailerError drops key from the queue. Once the queue is empty the
// overlay shows the static artwork instead of video. When the failed key
// was an override, the override is dropped and lookup reports true: the
// caller should run LoadTrailers for the current session.
func (c *Controller) TrailerError(key string) (lookup bool) {
	if c.failed == nil {
		c.failed = make(map[string]bool)
	}
	c.failed[key] = true
	for i, k := range c.queue {
		if k == key {
			c.queue = append(c.queue[:i:i], c.queue[i+1:]...)
			break
		}
	}
	if len(c.queue) > 0 {
		return false
	}
	if c.override {
		c.override = false
		c.logger.Debug("override trailer failed, looking up trailers", "itemID", c.item.ID)
		return true
	}
	c.logger.Debug("trailer queue exhausted", "itemID", c.item.ID)
	return false
}

// Session returns the tag of the current open, for SetTrailers
func (c *Controller) Session() uint64 { return c.session.Current() }

// ToggleMute flips mute for the rest of this overlay session and applies
// it to surface when one is active
func (c *Controller) ToggleMute(surface Surface) bool {
	c.muted = !c.muted
	if surface != nil {
		surface.SetMuted(c.muted)
	}
	return c.muted
}

// Close ends the session and reports where the active trailer stopped.
// The position is 0 without a trailer or when the surface cannot tell.
func (c *Controller) Close(surface Surface) CloseReport {
	report := CloseReport{Item: c.item}
	if key, ok := c.Trailer(); ok {
		report.TrailerKey = key
		if surface != nil {
			if pos, ok := surface.Position(); ok && pos > 0 {
				report.Position = pos
			}
		}
	}

	c.open = false
	c.session.Next()
	c.episodeGen.Next()
	return report
}

// PlayTarget returns what the play action should start
func (c *Controller) PlayTarget() PlayTarget {
	if !c.item.IsSeries() {
		return PlayTarget{}
	}
	if c.resumePos != nil {
		return PlayTarget{Season: c.resumePos.Season, Episode: c.resumePos.Episode, FromResume: true}
	}
	return PlayTarget{Season: 1, Episode: 1}
}

// IsOpen reports whether an item is shown
func (c *Controller) IsOpen() bool { return c.open }

// Item returns the open item
func (c *Controller) Item() domain.MediaItem { return c.item }

// Trailer returns the trailer at the head of the queue
func (c *Controller) Trailer() (string, bool) {
	if len(c.queue) == 0 {
		return "", false
	}
	return c.queue[0], true
}

// Queue returns a copy of the remaining trailers
func (c *Controller) Queue() []string {
	return append([]string(nil), c.queue...)
}

// VideoEnabled reports whether a trailer should be playing. When false
// the static backdrop or poster is shown.
func (c *Controller) VideoEnabled() bool { return len(c.queue) > 0 }

// Muted reports the session's mute state
func (c *Controller) Muted() bool { return c.muted }

// Season returns the selected season, 0 for movies
func (c *Controller) Season() int { return c.season }

// Episodes returns the episodes of the selected season
func (c *Controller) Episodes() []domain.Episode { return c.episodeList }

// Resume returns the validated resume position
func (c *Controller) Resume() (domain.ResumePosition, bool) {
	if c.resumePos == nil {
		return domain.ResumePosition{}, false
	}
	return *c.resumePos, true
}
