package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	MarqueeRed = lipgloss.Color("#E50914")
	SlateDark  = lipgloss.Color("#141414")
	SlateLight = lipgloss.Color("#2F2F2F")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#B3B3B3")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#46D369")
	Red        = lipgloss.Color("#EF4444")
	Gold       = lipgloss.Color("#E5A00D")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func rounded(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}

// Text
var (
	TitleStyle    = fg(White).Bold(true)
	SubtitleStyle = fg(LightGray)
	DimStyle      = fg(DimGray)
	AccentStyle   = fg(MarqueeRed)
	ErrorStyle    = fg(Red)
	RatingStyle   = fg(Gold).Bold(true)
	SpinnerStyle  = fg(MarqueeRed)
)

// Frames and panels
var (
	ActiveBorder   = rounded(MarqueeRed)
	InactiveBorder = rounded(DimGray)
	OverlayStyle   = rounded(MarqueeRed).Padding(1, 2)

	ModalStyle      = rounded(MarqueeRed).Padding(1, 2).Background(SlateDark)
	ModalTitleStyle = fg(White).Bold(true).MarginBottom(1)
)

// Rows, badges and filter matches
var (
	NormalItemStyle = fg(LightGray).Padding(0, 1)

	BadgeStyle    = fg(White).Background(MarqueeRed).Padding(0, 1)
	DimBadgeStyle = fg(LightGray).Background(SlateLight).Padding(0, 1)

	FilterStyle       = fg(MarqueeRed)
	FilterPromptStyle = fg(MarqueeRed).Bold(true)

	MatchHighlightStyle         = fg(MarqueeRed).Bold(true)
	MatchHighlightSelectedStyle = MatchHighlightStyle.Background(SlateLight)
)

// Truncate shortens s to width display cells, ending in "..." when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// RowPart is one styled segment of a list row. A nil Foreground uses the
// row's default color.
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Bold       bool
}

// RenderListRow renders parts as one row of width cells with a one-cell
// margin on each side. Every segment is styled on its own so a selected
// row keeps its background across ANSI resets.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	base := fg(LightGray)
	if selected {
		base = fg(White).Background(SlateLight)
	}

	var b strings.Builder
	b.WriteString(base.Render(" "))

	used := 0
	for _, p := range parts {
		style := base.Bold(p.Bold)
		if p.Foreground != nil {
			style = style.Foreground(*p.Foreground)
		}
		b.WriteString(style.Render(p.Text))
		used += lipgloss.Width(p.Text)
	}

	if fill := width - used - 2; fill > 0 {
		b.WriteString(base.Render(strings.Repeat(" ", fill)))
	}
	b.WriteString(base.Render(" "))
	return b.String()
}
