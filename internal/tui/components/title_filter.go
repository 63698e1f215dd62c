package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// titleFilterRows is how many matches the modal shows at once
const titleFilterRows = 10

// TitleFilter is a modal that fuzzy filters every title loaded this
// session. Matching runs synchronously on each keystroke through match.
type TitleFilter struct {
	match   func(query string) []service.FilterResult
	input   textinput.Model
	results []service.FilterResult
	cursor  int
	offset  int
	visible bool
	width   int
	height  int
}

// NewTitleFilter creates the modal around a match function
func NewTitleFilter(match func(query string) []service.FilterResult) TitleFilter {
	ti := textinput.New()
	ti.Placeholder = "Type to filter loaded titles..."
	ti.CharLimit = 100
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return TitleFilter{match: match, input: ti}
}

// Show opens the modal with an empty query
func (f *TitleFilter) Show() {
	f.visible = true
	f.input.SetValue("")
	f.input.Focus()
	f.results = nil
	f.cursor, f.offset = 0, 0
}

// Hide closes the modal
func (f *TitleFilter) Hide() {
	f.visible = false
	f.input.Blur()
}

// IsVisible reports whether the modal is open
func (f TitleFilter) IsVisible() bool { return f.visible }

// SetSize updates the space the modal is centered in
func (f *TitleFilter) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.input.Width = f.modalWidth() - 8
}

// Results returns the current matches
func (f TitleFilter) Results() []service.FilterResult { return f.results }

// Update handles a message. picked is non-nil when the user chose a title;
// the modal hides itself in that case.
func (f TitleFilter) Update(msg tea.Msg) (TitleFilter, tea.Cmd, *domain.MediaItem) {
	if !f.visible {
		return f, nil, nil
	}

	var cmd tea.Cmd
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		f.input, cmd = f.input.Update(msg)
		return f, cmd, nil
	}

	switch {
	case key.Matches(keyMsg, TitleFilterKeys.Dismiss):
		f.Hide()
	case key.Matches(keyMsg, TitleFilterKeys.Pick):
		if f.cursor < len(f.results) {
			item := f.results[f.cursor].Item
			f.Hide()
			return f, nil, &item
		}
	case key.Matches(keyMsg, TitleFilterKeys.Next):
		f.moveCursor(1)
	case key.Matches(keyMsg, TitleFilterKeys.Prev):
		f.moveCursor(-1)
	default:
		before := f.input.Value()
		f.input, cmd = f.input.Update(msg)
		if f.input.Value() != before {
			f.refresh()
		}
	}
	return f, cmd, nil
}

func (f *TitleFilter) refresh() {
	f.cursor, f.offset = 0, 0
	f.results = nil
	if q := strings.TrimSpace(f.input.Value()); q != "" && f.match != nil {
		f.results = f.match(q)
	}
}

// moveCursor moves by delta and keeps the cursor inside the visible window
func (f *TitleFilter) moveCursor(delta int) {
	if len(f.results) == 0 {
		return
	}
	f.cursor = max(0, min(len(f.results)-1, f.cursor+delta))
	if f.cursor < f.offset {
		f.offset = f.cursor
	}
	if f.cursor >= f.offset+titleFilterRows {
		f.offset = f.cursor - titleFilterRows + 1
	}
}

func (f TitleFilter) modalWidth() int {
	return max(40, min(80, f.width*2/3))
}

// View renders the modal centered in its area
func (f TitleFilter) View() string {
	if !f.visible {
		return ""
	}
	width := f.modalWidth()

	lines := []string{
		styles.ModalTitleStyle.Render("Filter"),
		f.input.View(),
		"",
	}

	switch {
	case len(f.results) == 0 && strings.TrimSpace(f.input.Value()) != "":
		lines = append(lines, styles.DimStyle.Render("No matches"))
	case len(f.results) > 0:
		end := min(len(f.results), f.offset+titleFilterRows)
		for i := f.offset; i < end; i++ {
			lines = append(lines, f.renderResult(f.results[i], i == f.cursor, width-6))
		}
		if len(f.results) > titleFilterRows {
			lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("%d of %d", f.cursor+1, len(f.results))))
		}
	}

	modal := styles.ModalStyle.Width(width).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, modal)
}

func (f TitleFilter) renderResult(r service.FilterResult, selected bool, width int) string {
	badge := "MOV"
	if r.Item.IsSeries() {
		badge = "TV "
	}

	var suffix string
	if y := r.Item.Year(); y > 0 {
		suffix = fmt.Sprintf(" (%d)", y)
	}

	title := styles.Truncate(r.Item.Title, width-len(badge)-len(suffix)-2)
	matched := r.MatchedIndexes
	if title != r.Item.Title {
		matched = nil
	}

	marker := "  "
	if selected {
		marker = styles.AccentStyle.Render("› ")
	}
	return marker + styles.DimBadgeStyle.Render(badge) + " " +
		highlightRunes(title, matched, selected) + styles.DimStyle.Render(suffix)
}

// highlightRunes renders text with the runes at matched positions emphasized
func highlightRunes(text string, matched []int, selected bool) string {
	plain, hit := lipgloss.NewStyle().Foreground(styles.LightGray), styles.MatchHighlightStyle
	if selected {
		plain = lipgloss.NewStyle().Foreground(styles.White).Bold(true)
		hit = styles.MatchHighlightSelectedStyle
	}

	isHit := make(map[int]bool, len(matched))
	for _, i := range matched {
		isHit[i] = true
	}

	var b strings.Builder
	runes := []rune(text)
	for start := 0; start < len(runes); {
		end := start
		for end < len(runes) && isHit[end] == isHit[start] {
			end++
		}
		style := plain
		if isHit[start] {
			style = hit
		}
		b.WriteString(style.Render(string(runes[start:end])))
		start = end
	}
	return b.String()
}
