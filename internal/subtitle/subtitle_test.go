package subtitle

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"English", "en"},
		{"  French ", "fr"},
		{"English - SDH", "en"},
		{"Portuguese (Brazil)", "pt"},
		{"Spanish [CC]", "es"},
		{"de", "de"},
		{"Klingon", DefaultLanguage},
		{"", DefaultLanguage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LanguageCode(tt.label), tt.label)
	}
}

func TestBestMatch(t *testing.T) {
	subs := []domain.Subtitle{
		{URL: "a", Language: "fr", Display: "French"},
		{URL: "b", Language: "en", Display: "English - SDH"},
		{URL: "c", Language: "en", Display: "English"},
	}

	got := BestMatch(subs, "en")
	require.NotNil(t, got)
	assert.Equal(t, "c", got.URL)

	got = BestMatch(subs[:2], "en")
	require.NotNil(t, got)
	assert.Equal(t, "b", got.URL)

	assert.Nil(t, BestMatch(subs, "ja"))
	assert.Len(t, Filter(subs, ""), 3)
}

func TestFilterComparesCodesExactly(t *testing.T) {
	subs := []domain.Subtitle{
		{URL: "fr", Language: "fr", Display: "French"},
		{URL: "sl", Language: "sl", Display: "Slovenian"},
		{URL: "en", Language: "en", Display: "English"},
	}

	got := BestMatch(subs, "en")
	require.NotNil(t, got)
	assert.Equal(t, "en", got.URL)

	assert.Empty(t, Filter(subs[1:2], "en"))

	got = BestMatch(subs, "French")
	require.NotNil(t, got)
	assert.Equal(t, "fr", got.URL)

	got = BestMatch(subs, "slov")
	require.NotNil(t, got)
	assert.Equal(t, "sl", got.URL)
}

type fakeProvider struct {
	name string
	subs []domain.Subtitle
	err  error

	gotSeason, gotEpisode int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(_ context.Context, _ string, season, episode int) ([]domain.Subtitle, error) {
	f.gotSeason, f.gotEpisode = season, episode
	return f.subs, f.err
}

func TestServiceMergesProviders(t *testing.T) {
	first := &fakeProvider{name: "first", subs: []domain.Subtitle{
		{URL: "https://x/1.srt", Language: "en"},
		{URL: "https://x/2.srt", Language: "fr"},
	}}
	broken := &fakeProvider{name: "broken", err: errors.New("offline")}
	second := &fakeProvider{name: "second", subs: []domain.Subtitle{
		{URL: "https://x/2.srt", Language: "fr"},
		{URL: "https://y/3.srt", Language: "de"},
	}}

	svc := NewService([]domain.SubtitleRepository{first, broken, second}, nil)
	got := svc.Resolve(context.Background(), "tt0903747", 2, 5)

	urls := make([]string, 0, len(got))
	for _, s := range got {
		urls = append(urls, s.URL)
	}
	assert.Equal(t, []string{"https://x/1.srt", "https://x/2.srt", "https://y/3.srt"}, urls)
	assert.Equal(t, 2, first.gotSeason)
	assert.Equal(t, 5, second.gotEpisode)
}

func TestServiceWithoutID(t *testing.T) {
	p := &fakeProvider{name: "p", subs: []domain.Subtitle{{URL: "u"}}}
	svc := NewService([]domain.SubtitleRepository{p}, nil)
	assert.Empty(t, svc.Resolve(context.Background(), "", 0, 0))
}
