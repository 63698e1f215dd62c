package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/subtitle"
)

// streamCacheTTL bounds how long a resolved stream is reused. Provider
// stream URLs are signed and expire, so this is shorter than the
// library TTL.
const streamCacheTTL = 5 * time.Minute

// launcher abstracts media player launching (consumer-defined interface)
type launcher interface {
	Launch(url string, opts adapter.LaunchOptions) (*adapter.Process, error)
}

// streamResolver resolves playable streams (consumer-defined interface)
type streamResolver interface {
	GetStream(ctx context.Context, q domain.StreamQuery) (*domain.StreamResult, error)
}

// subtitleResolver finds external subtitle tracks (consumer-defined interface)
type subtitleResolver interface {
	Resolve(ctx context.Context, imdbID string, season, episode int) []domain.Subtitle
}

// PlayRequest is what the user asked to play. Season and Episode are
// zero for movies.
type PlayRequest struct {
	Item    domain.MediaItem
	Season  int
	Episode int
}

// Query returns the stream query for the request
func (r PlayRequest) Query() domain.StreamQuery {
	return domain.StreamQuery{
		Title:   r.Item.Title,
		Kind:    r.Item.Kind,
		Year:    r.Item.Year(),
		Season:  r.Season,
		Episode: r.Episode,
	}
}

// Playback is a running player session
type Playback struct {
	Player   string
	Source   domain.StreamSource
	Subtitle *domain.Subtitle
	done     chan error
}

// Wait blocks until the player exits and any resume position is saved
func (p *Playback) Wait() error {
	return <-p.done
}

// PlaybackService resolves streams and hands them to an external player
type PlaybackService struct {
	streams   streamResolver
	subtitles subtitleResolver
	launcher  launcher
	resume    domain.ResumeStore
	language  string
	cache     *cache.Store[*domain.StreamResult]
	logger    *slog.Logger
}

// NewPlaybackService creates a new playback service. subtitles and resume
// may be nil; language "" disables subtitle selection.
func NewPlaybackService(
	streams streamResolver,
	subtitles subtitleResolver,
	launcher launcher,
	resume domain.ResumeStore,
	language string,
	logger *slog.Logger,
) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		streams:   streams,
		subtitles: subtitles,
		launcher:  launcher,
		resume:    resume,
		language:  language,
		cache:     cache.New[*domain.StreamResult](streamCacheTTL, nil),
		logger:    logger,
	}
}

// Prefetch resolves the stream for q into the cache so a later Play
// starts quickly. It is best effort: failures are logged and dropped.
func (s *PlaybackService) Prefetch(ctx context.Context, q domain.StreamQuery) {
	start := time.Now()
	if _, err := s.stream(ctx, q); err != nil {
		s.logger.Debug("stream prefetch failed", "title", q.Title, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("stream prefetched", "title", q.Title, "duration", time.Since(start))
}

func (s *PlaybackService) stream(ctx context.Context, q domain.StreamQuery) (*domain.StreamResult, error) {
	return s.cache.Get(ctx, q.Key(), func(ctx context.Context) (*domain.StreamResult, error) {
		res, err := s.streams.GetStream(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(res.Sources) == 0 {
			return nil, fmt.Errorf("%w: provider returned no sources", domain.ErrNoStream)
		}
		return res, nil
	})
}

// Play resolves a stream and launches the player. For series the played
// season and episode are persisted as the resume position once the
// player exits.
func (s *PlaybackService) Play(ctx context.Context, req PlayRequest) (*Playback, error) {
	q := req.Query()
	res, err := s.stream(ctx, q)
	if err != nil {
		s.logger.Error("failed to resolve stream", "title", q.Title, "season", q.Season, "episode", q.Episode, "error", err)
		return nil, err
	}

	source := res.Sources[0]
	opts := adapter.LaunchOptions{
		Title:   playbackTitle(req),
		Headers: res.Headers,
	}

	sub := s.pickSubtitle(ctx, req, res.Subtitles)
	if sub != nil {
		opts.SubtitleURL = sub.URL
	}

	s.logger.Info("launching playback", "title", opts.Title, "provider", res.Provider,
		"quality", source.Quality, "subtitle", sub != nil)

	proc, err := s.launcher.Launch(source.URL, opts)
	if err != nil {
		return nil, err
	}

	pb := &Playback{Player: proc.Player, Source: source, Subtitle: sub, done: make(chan error, 1)}
	go func() {
		err := proc.Wait()
		s.saveResume(req)
		pb.done <- err
		close(pb.done)
	}()
	return pb, nil
}

// pickSubtitle merges stream-provided tracks with external providers and
// returns the best track for the configured language
func (s *PlaybackService) pickSubtitle(ctx context.Context, req PlayRequest, streamSubs []domain.Subtitle) *domain.Subtitle {
	if s.language == "" {
		return nil
	}

	all := append([]domain.Subtitle{}, streamSubs...)
	if s.subtitles != nil && req.Item.IMDBID != "" {
		all = append(all, s.subtitles.Resolve(ctx, req.Item.IMDBID, req.Season, req.Episode)...)
	}
	return subtitle.BestMatch(all, s.language)
}

func (s *PlaybackService) saveResume(req PlayRequest) {
	if s.resume == nil || !req.Item.IsSeries() || req.Season < 1 || req.Episode < 1 {
		return
	}
	pos := domain.ResumePosition{Season: req.Season, Episode: req.Episode}
	if err := s.resume.SaveResume(req.Item.ID, pos); err != nil {
		s.logger.Warn("failed to save resume position", "seriesID", req.Item.ID, "error", err)
	}
}

func playbackTitle(req PlayRequest) string {
	if req.Item.IsSeries() && req.Season > 0 {
		ep := domain.Episode{Season: req.Season, Number: req.Episode}
		return req.Item.Title + " " + ep.Label()
	}
	return req.Item.Title
}
