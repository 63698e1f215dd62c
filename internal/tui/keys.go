package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Browse
	Open    key.Binding
	Back    key.Binding
	Filter  key.Binding
	Global  key.Binding
	Search  key.Binding
	Library key.Binding
	Refresh key.Binding

	// Overlay
	Close        key.Binding
	Play         key.Binding
	Mute         key.Binding
	PrevSeason   key.Binding
	NextSeason   key.Binding
	TrailerError key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding

	// Other
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Global: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter everything"),
		),
		Search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search"),
		),
		Library: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "cloud library"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc/q", "close"),
		),
		Play: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "play"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		PrevSeason: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous season"),
		),
		NextSeason: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next season"),
		),
		TrailerError: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "skip trailer"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Keys is the global key map instance
var Keys = DefaultKeyMap()
