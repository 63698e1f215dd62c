package store

import (
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeRoundTripPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := NewDeviceStore(dir)
	require.NoError(t, err)

	_, ok := s.LoadResume("1396")
	assert.False(t, ok)

	require.NoError(t, s.SaveResume("1396", resumeAt(3, 7)))
	require.NoError(t, s.Close())

	reopened, err := NewDeviceStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	pos, ok := reopened.LoadResume("1396")
	require.True(t, ok)
	assert.Equal(t, 3, pos.Season)
	assert.Equal(t, 7, pos.Episode)
	assert.False(t, pos.UpdatedAt.IsZero())
}

func TestMalformedResumeReadsAsAbsent(t *testing.T) {
	s, err := NewDeviceStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.setRaw(bucketResume, "1396", []byte(`{"season":`)))

	_, ok := s.LoadResume("1396")
	assert.False(t, ok)
}

func TestResumeWithoutEpisodeReadsAsAbsent(t *testing.T) {
	s, err := NewDeviceStore("")
	require.NoError(t, err)

	require.NoError(t, s.setRaw(bucketResume, "1396", []byte(`{"season":2}`)))

	_, ok := s.LoadResume("1396")
	assert.False(t, ok)
}

func TestMemoryOnlyMode(t *testing.T) {
	s, err := NewDeviceStore("")
	require.NoError(t, err)

	require.NoError(t, s.SaveResume("42", resumeAt(1, 2)))
	pos, ok := s.LoadResume("42")
	require.True(t, ok)
	assert.Equal(t, 2, pos.Episode)

	s.ClearResume("42")
	_, ok = s.LoadResume("42")
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}

func TestTrailerPosition(t *testing.T) {
	s, err := NewDeviceStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	matrix := domain.MediaItem{ID: "603", Kind: domain.KindMovie}
	require.NoError(t, s.SaveTrailerPosition(matrix, TrailerPosition{Key: "vKQi3bBA1y8", Position: 42 * time.Second}))

	tp, ok := s.LoadTrailerPosition(matrix)
	require.True(t, ok)
	assert.Equal(t, "vKQi3bBA1y8", tp.Key)
	assert.Equal(t, 42*time.Second, tp.Position)

	require.NoError(t, s.SaveTrailerPosition(matrix, TrailerPosition{Key: "vKQi3bBA1y8"}))
	_, ok = s.LoadTrailerPosition(matrix)
	assert.False(t, ok)
}

func TestTrailerPositionKeyedByKind(t *testing.T) {
	s, err := NewDeviceStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	show := domain.MediaItem{ID: "1399", Kind: domain.KindSeries}
	film := domain.MediaItem{ID: "1399", Kind: domain.KindMovie}
	require.NoError(t, s.SaveTrailerPosition(show, TrailerPosition{Key: "show-trailer", Position: 30 * time.Second}))

	_, ok := s.LoadTrailerPosition(film)
	assert.False(t, ok)

	require.NoError(t, s.SaveTrailerPosition(film, TrailerPosition{Key: "film-trailer", Position: 5 * time.Second}))
	tp, ok := s.LoadTrailerPosition(show)
	require.True(t, ok)
	assert.Equal(t, "show-trailer", tp.Key)

	require.NoError(t, s.SaveTrailerPosition(show, TrailerPosition{}))
	_, ok = s.LoadTrailerPosition(show)
	assert.False(t, ok)
	tp, ok = s.LoadTrailerPosition(film)
	require.True(t, ok)
	assert.Equal(t, "film-trailer", tp.Key)
}

func resumeAt(season, episode int) domain.ResumePosition {
	return domain.ResumePosition{Season: season, Episode: episode}
}
