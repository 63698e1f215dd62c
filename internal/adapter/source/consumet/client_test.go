package consumet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movies/flixhq/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movies/flixhq/info":
			switch r.URL.Query().Get("id") {
			case "tv/watch-breaking-bad-39506":
				w.Write([]byte(`{"id": "tv/watch-breaking-bad-39506", "episodes": [
					{"id": "e-1-1", "season": 1, "number": 1},
					{"id": "e-2-5", "season": 2, "number": 5}
				]}`))
			case "movie/watch-dune-2021":
				w.Write([]byte(`{"id": "movie/watch-dune-2021", "episodes": [{"id": "dune-2021-ep"}]}`))
			default:
				http.NotFound(w, r)
			}
		case "/movies/flixhq/watch":
			w.Write([]byte(`{
				"headers": {"Referer": "https://host/"},
				"sources": [
					{"url": "https://cdn/360.m3u8", "quality": "360", "isM3U8": true},
					{"url": "https://cdn/auto.m3u8", "quality": "auto", "isM3U8": true},
					{"url": "https://cdn/1080.m3u8", "quality": "1080p", "isM3U8": true}
				],
				"subtitles": [
					{"url": "https://cdn/en.vtt", "lang": "English"},
					{"url": "https://cdn/sprites.vtt", "lang": "thumbnails"},
					{"url": "https://cdn/es.vtt", "lang": "Spanish - Latin America"}
				]
			}`))
			assert.NotEmpty(t, r.URL.Query().Get("episodeId"))
			assert.NotEmpty(t, r.URL.Query().Get("mediaId"))
		case "/movies/flixhq/Breaking Bad":
			w.Write([]byte(`{"results": [
				{"id": "movie/watch-breaking-bad-movie", "title": "Breaking Bad: The Movie", "type": "Movie"},
				{"id": "tv/watch-breaking-bad-39506", "title": "Breaking Bad", "type": "TV Series", "releaseDate": "2008"}
			]}`))
		case "/movies/flixhq/Dune":
			w.Write([]byte(`{"results": [
				{"id": "movie/watch-dune-1984", "title": "Dune", "type": "Movie", "releaseDate": "1984-12-14"},
				{"id": "movie/watch-dune-2021", "title": "Dune", "type": "Movie", "releaseDate": "2021-10-22"}
			]}`))
		default:
			w.Write([]byte(`{"results": []}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetStreamSeriesEpisode(t *testing.T) {
	srv := newFakeProvider(t)
	c := NewClient(srv.URL, "flixhq", nil)

	res, err := c.GetStream(context.Background(), domain.StreamQuery{
		Title: "Breaking Bad", Kind: domain.KindSeries, Year: 2008, Season: 2, Episode: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "flixhq", res.Provider)
	require.Len(t, res.Sources, 3)
	assert.Equal(t, "auto", res.Sources[0].Quality)
	assert.Equal(t, "1080p", res.Sources[1].Quality)
	assert.Equal(t, "360", res.Sources[2].Quality)
	assert.Equal(t, "https://host/", res.Headers["Referer"])

	require.Len(t, res.Subtitles, 2)
	assert.Equal(t, "en", res.Subtitles[0].Language)
	assert.Equal(t, "es", res.Subtitles[1].Language)
}

func TestGetStreamDisambiguatesByYear(t *testing.T) {
	srv := newFakeProvider(t)
	c := NewClient(srv.URL, "", nil)

	res, err := c.GetStream(context.Background(), domain.StreamQuery{Title: "Dune", Kind: domain.KindMovie, Year: 2021})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Sources)
}

func TestGetStreamNoMatch(t *testing.T) {
	srv := newFakeProvider(t)
	c := NewClient(srv.URL, "flixhq", nil)

	_, err := c.GetStream(context.Background(), domain.StreamQuery{Title: "Nothing", Kind: domain.KindMovie})
	assert.ErrorIs(t, err, domain.ErrNoStream)
}

func TestGetStreamMissingEpisode(t *testing.T) {
	srv := newFakeProvider(t)
	c := NewClient(srv.URL, "flixhq", nil)

	_, err := c.GetStream(context.Background(), domain.StreamQuery{
		Title: "Breaking Bad", Kind: domain.KindSeries, Season: 9, Episode: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNoStream)
}

func TestPickResult(t *testing.T) {
	results := []searchResult{
		{ID: "a", Title: "The Office", Type: "TV Series", ReleaseDate: "2001"},
		{ID: "b", Title: "The Office", Type: "TV Series", ReleaseDate: "2005"},
		{ID: "c", Title: "The Office Christmas Party", Type: "Movie", ReleaseDate: "2016"},
	}

	got, ok := pickResult(results, "The Office", domain.KindSeries, 2005)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	got, ok = pickResult(results, "The Office", domain.KindSeries, 0)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	got, ok = pickResult(results, "office party", domain.KindMovie, 0)
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)

	_, ok = pickResult(results[:2], "anything", domain.KindMovie, 0)
	assert.False(t, ok)
}

func TestReleaseYear(t *testing.T) {
	assert.Equal(t, 2008, releaseYear("2008-01-20"))
	assert.Equal(t, 1999, releaseYear("Released: 1999"))
	assert.Equal(t, 0, releaseYear(""))
}

func TestPickEpisodeDefaultsToFirst(t *testing.T) {
	eps := []episode{{ID: "x", Season: 1, Number: 1}, {ID: "y", Season: 1, Number: 2}}
	id, ok := pickEpisode(eps, domain.KindSeries, 0, 0)
	require.True(t, ok)
	assert.Equal(t, "x", id)
}
