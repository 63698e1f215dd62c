package components

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// searchHistoryLimit caps how many past queries the prompt keeps
const searchHistoryLimit = 8

// SearchPrompt asks for a catalog query. Submitted queries are kept
// newest first and can be recalled with up/down.
type SearchPrompt struct {
	input   textinput.Model
	history []string
	recall  int // index into history, -1 while editing a fresh query
	visible bool
}

// NewSearchPrompt creates a hidden prompt
func NewSearchPrompt() SearchPrompt {
	ti := textinput.New()
	ti.Placeholder = "Titles, people, genres"
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "› "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchPrompt{input: ti, recall: -1}
}

// Show opens the prompt prefilled with the last query
func (p *SearchPrompt) Show(last string) {
	p.visible = true
	p.recall = -1
	p.input.SetValue(last)
	p.input.CursorEnd()
	p.input.Focus()
}

// Hide closes the prompt
func (p *SearchPrompt) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible reports whether the prompt is open
func (p SearchPrompt) IsVisible() bool { return p.visible }

// History returns past queries, newest first
func (p SearchPrompt) History() []string { return p.history }

// Update handles a message. query is non-empty when the user submitted
// one; the prompt hides itself and records it in that case.
func (p SearchPrompt) Update(msg tea.Msg) (SearchPrompt, tea.Cmd, string) {
	if !p.visible {
		return p, nil, ""
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, SearchPromptKeys.Submit):
			q := strings.TrimSpace(p.input.Value())
			if q == "" {
				return p, nil, ""
			}
			p.remember(q)
			p.Hide()
			return p, nil, q

		case key.Matches(keyMsg, SearchPromptKeys.Cancel):
			p.Hide()
			return p, nil, ""

		case key.Matches(keyMsg, SearchPromptKeys.Older):
			p.step(1)
			return p, nil, ""

		case key.Matches(keyMsg, SearchPromptKeys.Newer):
			p.step(-1)
			return p, nil, ""
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, ""
}

func (p *SearchPrompt) remember(q string) {
	p.history = slices.DeleteFunc(p.history, func(h string) bool { return strings.EqualFold(h, q) })
	p.history = append([]string{q}, p.history...)
	if len(p.history) > searchHistoryLimit {
		p.history = p.history[:searchHistoryLimit]
	}
}

// step walks the history; stepping past the newest entry clears the input
func (p *SearchPrompt) step(delta int) {
	if len(p.history) == 0 {
		return
	}
	p.recall = max(-1, min(len(p.history)-1, p.recall+delta))
	if p.recall < 0 {
		p.input.SetValue("")
	} else {
		p.input.SetValue(p.history[p.recall])
	}
	p.input.CursorEnd()
}

// View renders the prompt box
func (p SearchPrompt) View() string {
	if !p.visible {
		return ""
	}

	const width = 46
	row := lipgloss.NewStyle().Width(width).Background(styles.SlateDark)

	lines := []string{
		row.Foreground(styles.White).Bold(true).Render("Search"),
		row.Render(""),
		row.Render(p.input.View()),
	}
	if len(p.history) > 0 {
		hint := "↑ " + styles.Truncate(strings.Join(p.history, " · "), width-2)
		lines = append(lines, row.Render(""), row.Inherit(styles.DimStyle).Render(hint))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.MarqueeRed).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
