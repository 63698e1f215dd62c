package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// OverlayState is everything the detail overlay shows for the open item
type OverlayState struct {
	Item     domain.MediaItem
	Details  *domain.Details // nil until the aggregated fetch lands
	Season   int
	Episodes []domain.Episode
	Resume   *domain.ResumePosition
	Queued   int // trailers left in the queue, including the active one
}

// Inspector renders the detail overlay for the open item
type Inspector struct {
	state      *OverlayState
	preview    *TrailerPreview
	width      int
	height     int
	offset     int // body scroll offset
	maxVisible int
}

// NewInspector creates a new inspector component
func NewInspector(preview *TrailerPreview) Inspector {
	return Inspector{preview: preview}
}

// SetState sets what to display. Scroll resets when the item changes.
func (i *Inspector) SetState(state *OverlayState) {
	if state == nil || i.state == nil || state.Item.ID != i.state.Item.ID {
		i.offset = 0
	}
	i.state = state
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.state != nil
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// Reserve border, scroll indicators, title and blank line
	i.maxVisible = height - InspectorBorderHeight - InspectorScrollIndicators - 2
	if i.maxVisible < 1 {
		i.maxVisible = 1
	}
}

// ScrollDown scrolls the body by one line
func (i *Inspector) ScrollDown() { i.offset++ }

// ScrollUp scrolls the body back by one line
func (i *Inspector) ScrollUp() {
	if i.offset > 0 {
		i.offset--
	}
}

// View renders the component
func (i Inspector) View() string {
	style := styles.OverlayStyle

	frameW, frameH := style.GetFrameSize()
	contentWidth := i.width - frameW - 1
	if contentWidth < 10 {
		contentWidth = 10
	}
	content := i.renderInspector(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Details", contentWidth))

	// Three-zone layout: header is fixed, body scrolls, footer is fixed
	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := i.maxVisible - len(headerLines) - len(footerLines)
	if availableForBody < 1 {
		availableForBody = 1
	}

	totalBodyLines := len(bodyLines)
	maxOffset := max(totalBodyLines-availableForBody, 0)
	offset := min(i.offset, maxOffset)

	end := min(offset+availableForBody, totalBodyLines)
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < totalBodyLines {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, strings.Join(headerLines, "\n"))
	}
	parts = append(parts, up)
	if len(visibleBody) > 0 {
		parts = append(parts, strings.Join(visibleBody, "\n"))
	}
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, strings.Join(footerLines, "\n"))
	}

	return style.
		Width(i.width - frameW).
		Height(i.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) renderInspector(width int) inspectorContent {
	if i.state == nil {
		return inspectorContent{body: styles.DimStyle.Render("No item selected")}
	}
	return inspectorContent{
		header: i.renderHeader(width),
		body:   i.renderBody(width),
		footer: i.renderFooter(width),
	}
}

func (i Inspector) renderHeader(width int) string {
	s := i.state
	item := s.Item
	if s.Details != nil {
		item = s.Details.Item
	}

	var b strings.Builder

	// Title treatment: logo when one exists, else the plain title
	if s.Details != nil && s.Details.LogoURL != "" {
		b.WriteString(styles.DimStyle.Render(styles.Truncate("logo "+s.Details.LogoURL, width)))
		b.WriteString("\n")
	}
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(item.Title, width)))
	b.WriteString("\n")

	var metaParts []string
	if y := item.Year(); y > 0 {
		metaParts = append(metaParts, fmt.Sprintf("%d", y))
	}
	switch {
	case item.IsSeries() && item.SeasonCount == 1:
		metaParts = append(metaParts, "1 Season")
	case item.IsSeries() && item.SeasonCount > 1:
		metaParts = append(metaParts, fmt.Sprintf("%d Seasons", item.SeasonCount))
	case item.Runtime > 0:
		metaParts = append(metaParts, item.FormattedRuntime())
	}
	if len(item.Genres) > 0 {
		metaParts = append(metaParts, strings.Join(item.Genres, ", "))
	}
	if len(metaParts) > 0 {
		b.WriteString(styles.DimStyle.Render(styles.Truncate(strings.Join(metaParts, " · "), width)))
		b.WriteString("\n")
	}

	if item.Rating > 0 {
		b.WriteString(ratingStyle(item.Rating).Render(fmt.Sprintf("★ %.1f", item.Rating)))
		b.WriteString("\n")
	}

	if i.preview != nil {
		b.WriteString(i.preview.View(width))
		if s.Queued > 1 {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  +%d", s.Queued-1)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func ratingStyle(rating float64) lipgloss.Style {
	switch {
	case rating >= 7:
		return lipgloss.NewStyle().Foreground(styles.Green)
	case rating >= 5:
		return styles.RatingStyle
	default:
		return lipgloss.NewStyle().Foreground(styles.Red)
	}
}

func (i Inspector) renderBody(width int) string {
	s := i.state
	bodyWidth := min(width-2, 80)

	var sections []string

	overview := s.Item.Overview
	if s.Details != nil && s.Details.Item.Overview != "" {
		overview = s.Details.Item.Overview
	}
	if overview != "" {
		sections = append(sections, styles.SubtitleStyle.Render(wordWrap(overview, bodyWidth)))
	}

	if s.Details == nil {
		sections = append(sections, styles.DimStyle.Render("Loading details..."))
	} else if len(s.Details.Cast) > 0 {
		sections = append(sections, styles.DimStyle.Render(wordWrap("Cast: "+strings.Join(s.Details.Cast, ", "), bodyWidth)))
	}

	if s.Item.IsSeries() {
		sections = append(sections, i.renderEpisodes(width))
	}

	if s.Details != nil && len(s.Details.Recommendations) > 0 {
		var b strings.Builder
		b.WriteString(styles.AccentStyle.Render("More Like This"))
		for _, rec := range s.Details.Recommendations {
			b.WriteString("\n")
			b.WriteString(styles.NormalItemStyle.Render(styles.Truncate(rec.Title, width-2)))
		}
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n\n")
}

func (i Inspector) renderEpisodes(width int) string {
	s := i.state
	var b strings.Builder

	seasonLabel := fmt.Sprintf("Season %d", s.Season)
	if count := s.Item.SeasonCount; count > 1 {
		seasonLabel = fmt.Sprintf("‹ Season %d of %d ›", s.Season, count)
	}
	b.WriteString(styles.AccentStyle.Render(seasonLabel))

	if len(s.Episodes) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("No episodes"))
		return b.String()
	}

	for _, ep := range s.Episodes {
		b.WriteString("\n")
		marker := "  "
		if s.Resume != nil && s.Resume.Season == ep.Season && s.Resume.Episode == ep.Number {
			marker = "▶ "
		}
		line := fmt.Sprintf("%s%2d. %s", marker, ep.Number, ep.Title)
		if ep.Runtime > 0 {
			line += fmt.Sprintf(" (%dm)", int(ep.Runtime.Minutes()))
		}
		b.WriteString(styles.NormalItemStyle.Render(styles.Truncate(line, width-2)))
	}
	return b.String()
}

func (i Inspector) renderFooter(width int) string {
	s := i.state
	var label string
	switch {
	case !s.Item.IsSeries():
		label = "▶ Play"
	case s.Resume != nil:
		label = fmt.Sprintf("▶ Resume S%d:E%d", s.Resume.Season, s.Resume.Episode)
	default:
		label = "▶ Play S1:E1"
	}

	var b strings.Builder
	b.WriteString(styles.DimStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.BadgeStyle.Render(label))
	return b.String()
}

// splitLines splits a string into lines, returning empty slice for empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
