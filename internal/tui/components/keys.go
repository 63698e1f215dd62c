package components

import "github.com/charmbracelet/bubbles/key"

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// ListColumnKeyMap defines cursor and filter keys for a list column
type ListColumnKeyMap struct {
	Up, Down         key.Binding
	Home, End        key.Binding
	HalfUp, HalfDown key.Binding
	PageUp, PageDown key.Binding

	Filter      key.Binding
	AcceptQuery key.Binding
	ClearQuery  key.Binding
}

// TitleFilterKeyMap defines keys for the title filter modal
type TitleFilterKeyMap struct {
	Prev, Next key.Binding
	Pick       key.Binding
	Dismiss    key.Binding
}

// SearchPromptKeyMap defines keys for the search prompt
type SearchPromptKeyMap struct {
	Submit, Cancel key.Binding
	Older, Newer   key.Binding
}

var (
	ListColumnKeys = ListColumnKeyMap{
		Up:       bind("k/↑", "up", "k", "up"),
		Down:     bind("j/↓", "down", "j", "down"),
		Home:     bind("g", "first", "g", "home"),
		End:      bind("G", "last", "G", "end"),
		HalfUp:   bind("C-u", "half page up", "ctrl+u"),
		HalfDown: bind("C-d", "half page down", "ctrl+d"),
		PageUp:   bind("PgUp", "page up", "pgup"),
		PageDown: bind("PgDn", "page down", "pgdown"),

		Filter:      bind("/", "filter", "/"),
		AcceptQuery: bind("enter", "keep filter", "enter"),
		ClearQuery:  bind("esc", "clear filter", "esc"),
	}

	TitleFilterKeys = TitleFilterKeyMap{
		Prev:    bind("↑/C-p", "previous", "up", "ctrl+p"),
		Next:    bind("↓/C-n", "next", "down", "ctrl+n"),
		Pick:    bind("enter", "open", "enter"),
		Dismiss: bind("esc", "close", "esc"),
	}

	SearchPromptKeys = SearchPromptKeyMap{
		Submit: bind("enter", "search", "enter"),
		Cancel: bind("esc", "cancel", "esc"),
		Older:  bind("↑", "older query", "up"),
		Newer:  bind("↓", "newer query", "down"),
	}
)
