package tmdb

import (
	"sort"
	"strconv"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// kindPath maps a media kind to its API path segment
func kindPath(kind domain.MediaKind) string {
	if kind == domain.KindSeries {
		return "tv"
	}
	return "movie"
}

// kindFromType maps a media_type field back to a kind
func kindFromType(mediaType string, fallback domain.MediaKind) (domain.MediaKind, bool) {
	switch mediaType {
	case "movie":
		return domain.KindMovie, true
	case "tv":
		return domain.KindSeries, true
	case "":
		return fallback, true
	default:
		return "", false // person and friends
	}
}

// MapMediaItem converts an API record to a domain item
func MapMediaItem(r mediaResult, kind domain.MediaKind) domain.MediaItem {
	item := domain.MediaItem{
		ID:           strconv.Itoa(r.ID),
		Kind:         kind,
		Title:        r.Title,
		Overview:     r.Overview,
		ReleaseDate:  r.ReleaseDate,
		Rating:       r.VoteAverage,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		SeasonCount:  r.NumberOfSeasons,
		IMDBID:       r.IMDBID,
	}

	if kind == domain.KindSeries {
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
		if len(r.EpisodeRunTime) > 0 {
			item.Runtime = time.Duration(r.EpisodeRunTime[0]) * time.Minute
		}
	} else {
		item.Runtime = time.Duration(r.Runtime) * time.Minute
	}
	if item.Title == "" {
		item.Title = r.Name
	}

	if r.ExternalIDs != nil && r.ExternalIDs.IMDBID != "" {
		item.IMDBID = r.ExternalIDs.IMDBID
	}

	for _, g := range r.Genres {
		item.Genres = append(item.Genres, g.Name)
	}

	return item
}

// MapMediaItems converts list results, dropping entries that are not
// movies or series
func MapMediaItems(results []mediaResult, fallback domain.MediaKind) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(results))
	for _, r := range results {
		kind, ok := kindFromType(r.MediaType, fallback)
		if !ok {
			continue
		}
		items = append(items, MapMediaItem(r, kind))
	}
	return items
}

// MapCast converts credits ordered by billing
func MapCast(entries []castEntry) []domain.CastMember {
	cast := make([]domain.CastMember, 0, len(entries))
	for _, e := range entries {
		cast = append(cast, domain.CastMember{
			Name:      e.Name,
			Character: e.Character,
			Order:     e.Order,
		})
	}
	sort.SliceStable(cast, func(i, j int) bool {
		return cast[i].Order < cast[j].Order
	})
	return cast
}

// MapLogos converts logo images, keeping the API's ordering
func MapLogos(entries []imageEntry) []domain.Logo {
	logos := make([]domain.Logo, 0, len(entries))
	for _, e := range entries {
		logo := domain.Logo{FilePath: e.FilePath}
		if e.ISO639 != nil {
			logo.Language = *e.ISO639
		}
		logos = append(logos, logo)
	}
	return logos
}

// MapTrailers keeps hosted trailers and teasers, official trailers first
func MapTrailers(entries []videoEntry) []domain.Trailer {
	var trailers []domain.Trailer
	for _, e := range entries {
		if e.Site != "YouTube" || e.Key == "" {
			continue
		}
		if e.Type != "Trailer" && e.Type != "Teaser" {
			continue
		}
		trailers = append(trailers, domain.Trailer{
			Key:      e.Key,
			Name:     e.Name,
			Site:     e.Site,
			Type:     e.Type,
			Official: e.Official,
		})
	}

	rank := func(t domain.Trailer) int {
		r := 0
		if t.Type != "Trailer" {
			r += 2
		}
		if !t.Official {
			r++
		}
		return r
	}
	sort.SliceStable(trailers, func(i, j int) bool {
		return rank(trailers[i]) < rank(trailers[j])
	})
	return trailers
}

// MapEpisodes converts a season listing
func MapEpisodes(season int, entries []episodeEntry) []domain.Episode {
	episodes := make([]domain.Episode, 0, len(entries))
	for _, e := range entries {
		n := e.SeasonNumber
		if n == 0 {
			n = season
		}
		episodes = append(episodes, domain.Episode{
			Season:    n,
			Number:    e.EpisodeNumber,
			Title:     e.Name,
			Overview:  e.Overview,
			AirDate:   e.AirDate,
			StillPath: e.StillPath,
			Runtime:   time.Duration(e.Runtime) * time.Minute,
		})
	}
	return episodes
}
