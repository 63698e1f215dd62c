package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/overlay"
	"github.com/mmcdole/marquee/internal/service"
)

// Command factories for async operations

// LoadTrendingCmd loads the trending rows
func LoadTrendingCmd(svc *service.CatalogService, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		items, err := svc.Trending(ctx)
		if err != nil {
			return ListErrMsg{Gen: gen, ErrMsg: ErrMsg{Err: err, Context: "loading trending"}}
		}
		return TrendingLoadedMsg{Gen: gen, Items: items}
	}
}

// SearchCmd searches the catalog
func SearchCmd(svc *service.CatalogService, query string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results, err := svc.Search(ctx, query)
		if err != nil {
			return ListErrMsg{Gen: gen, ErrMsg: ErrMsg{Err: err, Context: "searching"}}
		}
		return SearchResultsMsg{Gen: gen, Query: query, Results: results}
	}
}

// LoadLibraryCmd loads the user's cloud library
func LoadLibraryCmd(svc *service.LibraryService, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		entries, err := svc.Library(ctx)
		if err != nil {
			return ListErrMsg{Gen: gen, ErrMsg: ErrMsg{Err: err, Context: "loading library"}}
		}
		return LibraryLoadedMsg{Gen: gen, Entries: entries}
	}
}

// LoadIssuesCmd loads the issues of a library series
func LoadIssuesCmd(svc *service.LibraryService, seriesID, title string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		issues, err := svc.Issues(ctx, seriesID)
		if err != nil {
			return ListErrMsg{Gen: gen, ErrMsg: ErrMsg{Err: err, Context: "loading issues"}}
		}
		return IssuesLoadedMsg{Gen: gen, SeriesID: seriesID, Title: title, Issues: issues}
	}
}

// LoadDetailsCmd runs the detail aggregation for an overlay request
func LoadDetailsCmd(loader *details.Loader, ticket details.Ticket, item domain.MediaItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return DetailsLoadedMsg{Ticket: ticket, Details: loader.Fetch(ctx, item)}
	}
}

// LoadTrailersCmd looks up trailers for an overlay session
func LoadTrailersCmd(ctrl *overlay.Controller, session uint64, item domain.MediaItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return TrailersLoadedMsg{Session: session, Keys: ctrl.LoadTrailers(ctx, item)}
	}
}

// LoadEpisodesCmd lists one season's episodes
func LoadEpisodesCmd(ctrl *overlay.Controller, gen uint64, seriesID string, season int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return EpisodesLoadedMsg{Gen: gen, Season: season, Episodes: ctrl.FetchEpisodes(ctx, seriesID, season)}
	}
}

// PrefetchCmd warms the stream cache. It reports nothing back.
func PrefetchCmd(ctrl *overlay.Controller, q domain.StreamQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		ctrl.Prefetch(ctx, q)
		return nil
	}
}

// PlayCmd resolves a stream and launches the player
func PlayCmd(svc *service.PlaybackService, req service.PlayRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		pb, err := svc.Play(ctx, req)
		if err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Title: req.Item.Title, Playback: pb}
	}
}

// WaitPlaybackCmd blocks until the player exits
func WaitPlaybackCmd(title string, pb *service.Playback) tea.Cmd {
	return func() tea.Msg {
		return PlaybackFinishedMsg{Title: title, Err: pb.Wait()}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
