package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGeneration(t *testing.T) {
	var g Generation
	assert.False(t, g.IsCurrent(0))

	first := g.Next()
	assert.True(t, g.IsCurrent(first))

	second := g.Next()
	assert.False(t, g.IsCurrent(first))
	assert.True(t, g.IsCurrent(second))
	assert.Equal(t, second, g.Current())
}

func TestGenerationConcurrentNextIsUnique(t *testing.T) {
	var g Generation
	var mu sync.Mutex
	seen := make(map[uint64]bool)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := g.Next()
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.EqualValues(t, 50, g.Current())
}

func TestMediaItemHelpers(t *testing.T) {
	m := MediaItem{ReleaseDate: "2021-10-22", Runtime: 155 * time.Minute}
	assert.Equal(t, 2021, m.Year())
	assert.Equal(t, "2h 35m", m.FormattedRuntime())
	assert.False(t, m.IsSeries())

	assert.Equal(t, 0, MediaItem{ReleaseDate: "tbd"}.Year())
	assert.Equal(t, 0, MediaItem{}.Year())
	assert.Equal(t, "48m", MediaItem{Runtime: 48 * time.Minute}.FormattedRuntime())
	assert.Empty(t, MediaItem{}.FormattedRuntime())
}

func TestEpisodeLabelAndQueryKey(t *testing.T) {
	assert.Equal(t, "S01E03", Episode{Season: 1, Number: 3}.Label())

	a := StreamQuery{Title: "Dark", Kind: KindSeries, Season: 1, Episode: 1}
	b := StreamQuery{Title: "Dark", Kind: KindSeries, Season: 1, Episode: 2}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), StreamQuery{Title: "Dark", Kind: KindSeries, Season: 1, Episode: 1}.Key())
}

func TestListItems(t *testing.T) {
	var items []ListItem = []ListItem{
		&MediaItem{ID: "1", Kind: KindSeries, Title: "The Office", ReleaseDate: "2005-03-24", SeasonCount: 9},
		&LibraryEntry{ID: "e1", SeriesID: "s1", Series: &Series{Title: "Saga", Publisher: "Image"}},
		&Issue{ID: "i1", Number: 12, Title: "Finale", ReleaseDate: "2018-07-04", PageCount: 32},
	}

	assert.Equal(t, "Office", items[0].GetSortTitle())
	assert.Equal(t, "2005 · 9 Seasons", items[0].GetDescription())
	assert.Equal(t, "series", items[0].GetItemType())
	assert.True(t, items[0].CanOpen())

	assert.Equal(t, "Saga", items[1].GetTitle())
	assert.Equal(t, "Image", items[1].GetDescription())
	assert.False(t, items[1].CanOpen())

	assert.Equal(t, "#12 Finale", items[2].GetTitle())
	assert.Equal(t, 2018, items[2].GetYear())
	assert.Equal(t, "32 pages", items[2].GetDescription())
	assert.Equal(t, "00012", items[2].GetSortTitle())
}
