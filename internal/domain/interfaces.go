package domain

import (
	"fmt"
	"strings"
)

// ListItem is the polymorphic interface for rows displayed in the browse list.
// Catalog titles, cloud library entries and issues implement it directly.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title
	GetTitle() string

	// GetSortTitle returns the title used for alphabetical sorting (handles "The", "A", etc.)
	GetSortTitle() string

	// GetYear returns the release year (0 if not applicable)
	GetYear() int

	// GetDescription returns secondary info for display (e.g., "2024 · 2h 14m", "3 Seasons")
	GetDescription() string

	// GetItemType returns the type identifier: "movie", "series", "library", "issue"
	GetItemType() string

	// CanOpen returns true if the item opens the detail overlay
	CanOpen() bool
}

// sortTitle drops a leading article so "The Office" sorts under O
func sortTitle(title string) string {
	lower := strings.ToLower(title)
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(lower, article) {
			return title[len(article):]
		}
	}
	return title
}

// ListItem interface implementation for MediaItem

func (m *MediaItem) GetID() string        { return m.ID }
func (m *MediaItem) GetTitle() string     { return m.Title }
func (m *MediaItem) GetSortTitle() string { return sortTitle(m.Title) }
func (m *MediaItem) GetYear() int         { return m.Year() }
func (m *MediaItem) GetItemType() string  { return string(m.Kind) }
func (m *MediaItem) CanOpen() bool        { return true }

func (m *MediaItem) GetDescription() string {
	var parts []string
	if y := m.Year(); y > 0 {
		parts = append(parts, fmt.Sprintf("%d", y))
	}
	switch {
	case m.IsSeries() && m.SeasonCount == 1:
		parts = append(parts, "1 Season")
	case m.IsSeries() && m.SeasonCount > 1:
		parts = append(parts, fmt.Sprintf("%d Seasons", m.SeasonCount))
	case m.Runtime > 0:
		parts = append(parts, m.FormattedRuntime())
	}
	return strings.Join(parts, " · ")
}

// ListItem interface implementation for LibraryEntry

func (e *LibraryEntry) GetID() string { return e.ID }

func (e *LibraryEntry) GetTitle() string {
	if e.Series != nil {
		return e.Series.Title
	}
	return e.SeriesID
}

func (e *LibraryEntry) GetSortTitle() string { return sortTitle(e.GetTitle()) }
func (e *LibraryEntry) GetItemType() string  { return "library" }
func (e *LibraryEntry) CanOpen() bool        { return false }

func (e *LibraryEntry) GetYear() int {
	if e.Series != nil {
		return e.Series.Year
	}
	return 0
}

func (e *LibraryEntry) GetDescription() string {
	var parts []string
	if e.Series != nil && e.Series.Publisher != "" {
		parts = append(parts, e.Series.Publisher)
	}
	if !e.AddedAt.IsZero() {
		parts = append(parts, "added "+e.AddedAt.Format("2006-01-02"))
	}
	return strings.Join(parts, " · ")
}

// ListItem interface implementation for Issue

func (i *Issue) GetID() string        { return i.ID }
func (i *Issue) GetSortTitle() string { return fmt.Sprintf("%05d", i.Number) }
func (i *Issue) GetItemType() string  { return "issue" }
func (i *Issue) CanOpen() bool        { return false }

func (i *Issue) GetTitle() string {
	if i.Title != "" {
		return fmt.Sprintf("#%d %s", i.Number, i.Title)
	}
	return fmt.Sprintf("#%d", i.Number)
}

func (i *Issue) GetYear() int {
	if len(i.ReleaseDate) < 4 {
		return 0
	}
	var y int
	fmt.Sscanf(i.ReleaseDate[:4], "%d", &y)
	return y
}

func (i *Issue) GetDescription() string {
	if i.PageCount > 0 {
		return fmt.Sprintf("%d pages", i.PageCount)
	}
	return i.ReleaseDate
}
