package opensubtitles

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body []byte
	err  error

	gotURL    string
	gotHeader http.Header
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string, header http.Header) ([]byte, error) {
	s.gotURL = rawURL
	s.gotHeader = header
	return s.body, s.err
}

func TestSearchURL(t *testing.T) {
	r := NewResolver("https://rest.example/", &stubFetcher{}, nil)

	assert.Equal(t, "https://rest.example/search/imdbid-0133093", r.SearchURL("tt0133093", 0, 0))
	assert.Equal(t, "https://rest.example/search/imdbid-0903747/season-2/episode-5", r.SearchURL("tt0903747", 2, 5))
	assert.Equal(t, "https://rest.example/search/imdbid-0903747", r.SearchURL("tt0903747", 2, 0))
}

func TestSearchMapsRows(t *testing.T) {
	f := &stubFetcher{body: []byte(`[
		{"SubDownloadLink": "https://dl/1.gz", "LanguageName": "English", "ISO639": "en", "SubFormat": "srt"},
		{"SubDownloadLink": "https://dl/2.gz", "LanguageName": "Spanish", "SubFormat": "srt"},
		{"SubDownloadLink": "https://dl/3.gz", "LanguageName": "Elvish", "SubFormat": "vtt"},
		{"LanguageName": "German"}
	]`)}
	r := NewResolver("https://rest.example", f, nil)

	subs, err := r.Search(context.Background(), "tt0133093", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.Subtitle{
		{URL: "https://dl/1.gz", Language: "en", Display: "English", Type: "srt"},
		{URL: "https://dl/2.gz", Language: "es", Display: "Spanish", Type: "srt"},
		{URL: "https://dl/3.gz", Language: "en", Display: "Elvish", Type: "vtt"},
	}, subs)
	assert.Equal(t, "TemporaryUserAgent", f.gotHeader.Get("X-User-Agent"))
}

func TestSearchEmptyAndMalformed(t *testing.T) {
	for _, body := range []string{``, `[]`, `{"error": "rate limited"}`, `<html>`} {
		r := NewResolver("https://rest.example", &stubFetcher{body: []byte(body)}, nil)
		subs, err := r.Search(context.Background(), "tt1", 0, 0)
		assert.NoError(t, err, body)
		assert.Empty(t, subs, body)
	}
}

func TestSearchTransportFailure(t *testing.T) {
	r := NewResolver("https://rest.example", &stubFetcher{err: domain.ErrServerOffline}, nil)
	_, err := r.Search(context.Background(), "tt1", 0, 0)
	assert.True(t, errors.Is(err, domain.ErrServerOffline))
}
