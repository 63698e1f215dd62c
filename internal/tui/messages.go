package tui

import (
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ListErrMsg reports a failed browse list load for generation Gen
type ListErrMsg struct {
	Gen uint64
	ErrMsg
}

// TrendingLoadedMsg signals that the trending rows are ready
type TrendingLoadedMsg struct {
	Gen   uint64
	Items []domain.MediaItem
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	Gen     uint64
	Query   string
	Results []domain.MediaItem
}

// LibraryLoadedMsg signals that the cloud library has been loaded
type LibraryLoadedMsg struct {
	Gen     uint64
	Entries []domain.LibraryEntry
}

// IssuesLoadedMsg signals that a series' issues have been loaded
type IssuesLoadedMsg struct {
	Gen      uint64
	SeriesID string
	Title    string
	Issues   []domain.Issue
}

// DetailsLoadedMsg carries the aggregated details for an overlay request
type DetailsLoadedMsg struct {
	Ticket  details.Ticket
	Details domain.Details
}

// TrailersLoadedMsg carries looked up trailer keys for an overlay session
type TrailersLoadedMsg struct {
	Session uint64
	Keys    []string
}

// EpisodesLoadedMsg carries a season listing for an episode request
type EpisodesLoadedMsg struct {
	Gen      uint64
	Season   int
	Episodes []domain.Episode
}

// PlaybackStartedMsg signals that the player has been launched
type PlaybackStartedMsg struct {
	Title    string
	Playback *service.Playback
}

// PlaybackFinishedMsg signals that the player exited
type PlaybackFinishedMsg struct {
	Title string
	Err   error
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
