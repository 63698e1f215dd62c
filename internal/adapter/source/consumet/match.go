package consumet

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/domain"
)

// typeLabel is the provider's name for a media kind
func typeLabel(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "TV Series"
	}
	return "Movie"
}

// releaseYear extracts the year from "2008", "2008-01-20" or "Released: 2008"
func releaseYear(s string) int {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
		if len(field) == 4 {
			if y, err := strconv.Atoi(field); err == nil {
				return y
			}
		}
	}
	return 0
}

// pickResult chooses the search result that best matches the title, kind
// and year. Titles are ranked by fuzzy distance and a matching release
// year breaks ties. Returns false when nothing fits.
func pickResult(results []searchResult, title string, kind domain.MediaKind, year int) (searchResult, bool) {
	var candidates []searchResult
	for _, r := range results {
		if r.Type == "" || r.Type == typeLabel(kind) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return searchResult{}, false
	}

	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}

	ranks := fuzzy.RankFindNormalizedFold(title, titles)
	if len(ranks) == 0 {
		// The provider matched on something other than the title
		// (alternate names); trust its ordering.
		return byYear(candidates, year), true
	}
	sort.Stable(ranks)

	best := ranks[0].Distance
	var closest []searchResult
	for _, rank := range ranks {
		if rank.Distance != best {
			break
		}
		closest = append(closest, candidates[rank.OriginalIndex])
	}

	if year > 0 {
		for _, c := range closest {
			if releaseYear(c.ReleaseDate) == year {
				return c, true
			}
		}
		// A remake or reboot can rank lower than an older namesake
		for _, rank := range ranks {
			c := candidates[rank.OriginalIndex]
			if releaseYear(c.ReleaseDate) == year {
				return c, true
			}
		}
	}
	return closest[0], true
}

// byYear returns the first candidate released in year, else the first one
func byYear(candidates []searchResult, year int) searchResult {
	if year > 0 {
		for _, c := range candidates {
			if releaseYear(c.ReleaseDate) == year {
				return c
			}
		}
	}
	return candidates[0]
}

// pickEpisode returns the provider's episode id for a season/episode.
// Movies have a single entry.
func pickEpisode(episodes []episode, kind domain.MediaKind, season, number int) (string, bool) {
	if len(episodes) == 0 {
		return "", false
	}
	if kind != domain.KindSeries {
		return episodes[0].ID, true
	}
	if season < 1 {
		season = 1
	}
	if number < 1 {
		number = 1
	}
	for _, ep := range episodes {
		if ep.Season == season && ep.Number == number {
			return ep.ID, true
		}
	}
	return "", false
}

// qualityRank orders sources: adaptive first, then highest resolution
func qualityRank(q string) int {
	q = strings.ToLower(strings.TrimSpace(q))
	switch q {
	case "auto", "default", "":
		return 100000
	}
	n, err := strconv.Atoi(strings.TrimSuffix(q, "p"))
	if err != nil {
		return 0
	}
	return n
}

func sortSources(sources []domain.StreamSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		return qualityRank(sources[i].Quality) > qualityRank(sources[j].Quality)
	})
}
