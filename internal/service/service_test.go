package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeCloud struct {
	libraryCalls atomic.Int32
	issueCalls   atomic.Int32
	err          error
}

func (f *fakeCloud) Library(context.Context) ([]domain.LibraryEntry, error) {
	f.libraryCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.LibraryEntry{{ID: "1", SeriesID: "s1"}}, nil
}

func (f *fakeCloud) Series(context.Context) ([]domain.Series, error) {
	return []domain.Series{{ID: "s1", Title: "Saga"}}, nil
}

func (f *fakeCloud) Issues(_ context.Context, seriesID string) ([]domain.Issue, error) {
	f.issueCalls.Add(1)
	return []domain.Issue{{ID: seriesID + "-1", SeriesID: seriesID, Number: 1}}, nil
}

func TestLibraryServiceCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	repo := &fakeCloud{}
	svc := NewLibraryService(repo, 10*time.Minute, clock, adapter.NullLogger())

	first, err := svc.Library(context.Background())
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	second, err := svc.Library(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, repo.libraryCalls.Load())

	clock.Advance(time.Minute)
	_, err = svc.Library(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, repo.libraryCalls.Load())
}

func TestLibraryServiceIssuesKeyedBySeries(t *testing.T) {
	repo := &fakeCloud{}
	svc := NewLibraryService(repo, 0, nil, adapter.NullLogger())

	a, err := svc.Issues(context.Background(), "a")
	require.NoError(t, err)
	b, err := svc.Issues(context.Background(), "b")
	require.NoError(t, err)
	_, err = svc.Issues(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "a-1", a[0].ID)
	assert.Equal(t, "b-1", b[0].ID)
	assert.EqualValues(t, 2, repo.issueCalls.Load())
}

func TestLibraryServiceErrorsNotCached(t *testing.T) {
	repo := &fakeCloud{err: domain.ErrServerOffline}
	svc := NewLibraryService(repo, 0, nil, adapter.NullLogger())

	_, err := svc.Library(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)

	repo.err = nil
	entries, err := svc.Library(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.EqualValues(t, 2, repo.libraryCalls.Load())
}

func TestLibraryServiceNotConfigured(t *testing.T) {
	svc := NewLibraryService(nil, 0, nil, adapter.NullLogger())
	assert.False(t, svc.Configured())

	_, err := svc.Library(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = svc.Series(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = svc.Issues(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

type fakeStreams struct {
	calls atomic.Int32
	err   error
	last  domain.StreamQuery
	mu    sync.Mutex
}

func (f *fakeStreams) GetStream(_ context.Context, q domain.StreamQuery) (*domain.StreamResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = q
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StreamResult{
		Provider:  "fake",
		Sources:   []domain.StreamSource{{URL: "https://cdn/auto.m3u8", Quality: "auto"}},
		Subtitles: []domain.Subtitle{{URL: "https://cdn/fr.vtt", Language: "fr", Display: "French"}},
		Headers:   map[string]string{"Referer": "https://host/"},
	}, nil
}

type fakeSubtitles struct {
	subs []domain.Subtitle
}

func (f *fakeSubtitles) Resolve(context.Context, string, int, int) []domain.Subtitle {
	return f.subs
}

type fakeLauncher struct {
	url  string
	opts adapter.LaunchOptions
	err  error
}

func (f *fakeLauncher) Launch(url string, opts adapter.LaunchOptions) (*adapter.Process, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.url = url
	f.opts = opts
	return &adapter.Process{Player: "fake"}, nil
}

func newResumeStore(t *testing.T) *store.DeviceStore {
	t.Helper()
	s, err := store.NewDeviceStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlaySeriesSavesResumeOnExit(t *testing.T) {
	streams := &fakeStreams{}
	subs := &fakeSubtitles{subs: []domain.Subtitle{
		{URL: "https://subs/en-sdh.srt", Language: "en", Display: "English SDH"},
		{URL: "https://subs/en.srt", Language: "en", Display: "English"},
	}}
	launch := &fakeLauncher{}
	resume := newResumeStore(t)

	svc := NewPlaybackService(streams, subs, launch, resume, "en", adapter.NullLogger())
	item := domain.MediaItem{ID: "1396", Kind: domain.KindSeries, Title: "Breaking Bad", ReleaseDate: "2008-01-20", IMDBID: "tt0903747"}

	pb, err := svc.Play(context.Background(), PlayRequest{Item: item, Season: 2, Episode: 5})
	require.NoError(t, err)
	require.NoError(t, pb.Wait())

	assert.Equal(t, "fake", pb.Player)
	assert.Equal(t, "https://cdn/auto.m3u8", launch.url)
	assert.Equal(t, "Breaking Bad S02E05", launch.opts.Title)
	assert.Equal(t, "https://subs/en.srt", launch.opts.SubtitleURL)
	assert.Equal(t, "https://host/", launch.opts.Headers["Referer"])
	assert.Equal(t, domain.StreamQuery{Title: "Breaking Bad", Kind: domain.KindSeries, Year: 2008, Season: 2, Episode: 5}, streams.last)

	pos, ok := resume.LoadResume("1396")
	require.True(t, ok)
	assert.Equal(t, 2, pos.Season)
	assert.Equal(t, 5, pos.Episode)
}

func TestPlayMovieDoesNotSaveResume(t *testing.T) {
	resume := newResumeStore(t)
	svc := NewPlaybackService(&fakeStreams{}, nil, &fakeLauncher{}, resume, "", adapter.NullLogger())

	pb, err := svc.Play(context.Background(), PlayRequest{Item: domain.MediaItem{ID: "438631", Kind: domain.KindMovie, Title: "Dune"}})
	require.NoError(t, err)
	require.NoError(t, pb.Wait())
	assert.Nil(t, pb.Subtitle)

	_, ok := resume.LoadResume("438631")
	assert.False(t, ok)
}

func TestPrefetchWarmsCacheForPlay(t *testing.T) {
	streams := &fakeStreams{}
	launch := &fakeLauncher{}
	svc := NewPlaybackService(streams, nil, launch, nil, "fr", adapter.NullLogger())
	req := PlayRequest{Item: domain.MediaItem{ID: "1", Kind: domain.KindMovie, Title: "Amélie", ReleaseDate: "2001-04-25"}}

	svc.Prefetch(context.Background(), req.Query())
	pb, err := svc.Play(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, pb.Wait())

	assert.EqualValues(t, 1, streams.calls.Load())
	require.NotNil(t, pb.Subtitle)
	assert.Equal(t, "https://cdn/fr.vtt", pb.Subtitle.URL)
}

func TestPrefetchSwallowsErrors(t *testing.T) {
	streams := &fakeStreams{err: domain.ErrNoStream}
	svc := NewPlaybackService(streams, nil, &fakeLauncher{}, nil, "", adapter.NullLogger())

	svc.Prefetch(context.Background(), domain.StreamQuery{Title: "x"})

	_, err := svc.Play(context.Background(), PlayRequest{Item: domain.MediaItem{Title: "x"}})
	assert.ErrorIs(t, err, domain.ErrNoStream)
	assert.EqualValues(t, 2, streams.calls.Load())
}

func TestPlayLaunchFailure(t *testing.T) {
	svc := NewPlaybackService(&fakeStreams{}, nil, &fakeLauncher{err: errors.New("no player")}, nil, "", adapter.NullLogger())
	_, err := svc.Play(context.Background(), PlayRequest{Item: domain.MediaItem{Title: "x"}})
	assert.EqualError(t, err, "no player")
}

type fakeMetadata struct {
	domain.MetadataRepository
	trendingErr map[domain.MediaKind]error
	trending    atomic.Int32
	search      []domain.MediaItem
}

func (f *fakeMetadata) Trending(_ context.Context, kind domain.MediaKind) ([]domain.MediaItem, error) {
	f.trending.Add(1)
	if err := f.trendingErr[kind]; err != nil {
		return nil, err
	}
	if kind == domain.KindMovie {
		return []domain.MediaItem{{ID: "1", Kind: kind, Title: "Dune"}}, nil
	}
	return []domain.MediaItem{{ID: "1", Kind: kind, Title: "Severance"}, {ID: "2", Kind: kind, Title: "Dark"}}, nil
}

func (f *fakeMetadata) Search(context.Context, string) ([]domain.MediaItem, error) {
	return f.search, nil
}

func TestTrendingMergesKindsAndCaches(t *testing.T) {
	repo := &fakeMetadata{}
	svc := NewCatalogService(repo, cache.DefaultTTL, adapter.NullLogger())

	items, err := svc.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Dune", items[0].Title)
	assert.Equal(t, domain.KindSeries, items[1].Kind)

	_, err = svc.Trending(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, repo.trending.Load())

	// movie and series with the same id are distinct filter entries
	assert.Equal(t, 3, svc.FilterIndexCount())
}

func TestTrendingPartialFailure(t *testing.T) {
	repo := &fakeMetadata{trendingErr: map[domain.MediaKind]error{domain.KindMovie: domain.ErrServerOffline}}
	svc := NewCatalogService(repo, 0, adapter.NullLogger())

	items, err := svc.Trending(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	repo.trendingErr[domain.KindSeries] = domain.ErrServerOffline
	svc = NewCatalogService(repo, 0, adapter.NullLogger())
	_, err = svc.Trending(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestSearchRanksClosestTitlesFirst(t *testing.T) {
	repo := &fakeMetadata{search: []domain.MediaItem{
		{ID: "1", Title: "The Office Christmas Party"},
		{ID: "2", Title: "Something Else"},
		{ID: "3", Title: "The Office"},
	}}
	svc := NewCatalogService(repo, 0, adapter.NullLogger())

	got, err := svc.Search(context.Background(), "the office")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
	assert.Equal(t, "2", got[2].ID)

	got, err = svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFilter(t *testing.T) {
	svc := NewCatalogService(&fakeMetadata{}, 0, adapter.NullLogger())
	svc.IndexForFilter([]domain.MediaItem{
		{ID: "1", Kind: domain.KindSeries, Title: "Mr. Robot"},
		{ID: "2", Kind: domain.KindMovie, Title: "RoboCop"},
		{ID: "1", Kind: domain.KindSeries, Title: "Mr. Robot"},
	})
	assert.Equal(t, 2, svc.FilterIndexCount())

	results := svc.Filter("robot")
	require.NotEmpty(t, results)
	assert.Equal(t, "Mr. Robot", results[0].Item.Title)
	assert.NotEmpty(t, results[0].MatchedIndexes)

	assert.Nil(t, svc.Filter(""))

	svc.ClearFilterIndex()
	assert.Equal(t, 0, svc.FilterIndexCount())
}
