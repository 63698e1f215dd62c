package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/overlay"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// BrowseMode is what the browse list currently shows
type BrowseMode int

const (
	ModeTrending BrowseMode = iota
	ModeSearch
	ModeLibrary
	ModeIssues
)

// Deps holds the services the TUI drives
type Deps struct {
	Catalog  *service.CatalogService
	Library  *service.LibraryService
	Playback *service.PlaybackService
	Loader   *details.Loader
	Overlay  *overlay.Controller
	Device   *store.DeviceStore

	// Now drives the trailer preview clock; nil uses time.Now
	Now func() time.Time
}

// Model is the main application model
type Model struct {
	Catalog  *service.CatalogService
	Library  *service.LibraryService
	Playback *service.PlaybackService
	Loader   *details.Loader
	Overlay  *overlay.Controller
	Device   *store.DeviceStore

	// Browse list and what it shows
	Browse      *components.ListColumn
	Mode        BrowseMode
	SearchQuery string
	listGen     *domain.Generation

	// Detail overlay
	Preview   *components.TrailerPreview
	Inspector components.Inspector

	// Modals
	SearchPrompt components.SearchPrompt
	TitleFilter  components.TitleFilter
	ShowHelp     bool

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// Status
	Loading      bool
	Playing      string // title of the running player, empty when idle
	SpinnerFrame int
	StatusMsg    string
	StatusIsErr  bool
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	preview := components.NewTrailerPreview(deps.Now)
	browse := components.NewListColumn("Trending Now")
	browse.SetFocused(true)
	browse.SetLoading(true)
	return Model{
		Catalog:      deps.Catalog,
		Library:      deps.Library,
		Playback:     deps.Playback,
		Loader:       deps.Loader,
		Overlay:      deps.Overlay,
		Device:       deps.Device,
		Browse:       browse,
		Mode:         ModeTrending,
		Loading:      true,
		listGen:      &domain.Generation{},
		Preview:      preview,
		Inspector:    components.NewInspector(preview),
		SearchPrompt: components.NewSearchPrompt(),
		TitleFilter:  components.NewTitleFilter(deps.Catalog.Filter),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadTrendingCmd(m.Catalog, m.listGen.Next()),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.Browse.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(100 * time.Millisecond)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case TrendingLoadedMsg:
		if !m.listGen.IsCurrent(msg.Gen) {
			return m, nil
		}
		m.Loading = false
		m.Browse.SetTitle("Trending Now")
		m.Browse.SetItems(mediaRows(msg.Items))
		return m, nil

	case SearchResultsMsg:
		if !m.listGen.IsCurrent(msg.Gen) {
			return m, nil
		}
		m.Loading = false
		m.Browse.SetTitle(fmt.Sprintf("Results for %q", msg.Query))
		m.Browse.SetItems(mediaRows(msg.Results))
		return m, nil

	case LibraryLoadedMsg:
		if !m.listGen.IsCurrent(msg.Gen) {
			return m, nil
		}
		m.Loading = false
		rows := make([]domain.ListItem, len(msg.Entries))
		for i := range msg.Entries {
			rows[i] = &msg.Entries[i]
		}
		m.Browse.SetTitle("My Library")
		m.Browse.SetItems(rows)
		return m, nil

	case IssuesLoadedMsg:
		if !m.listGen.IsCurrent(msg.Gen) {
			return m, nil
		}
		m.Loading = false
		rows := make([]domain.ListItem, len(msg.Issues))
		for i := range msg.Issues {
			rows[i] = &msg.Issues[i]
		}
		m.Browse.SetTitle("My Library › " + msg.Title)
		m.Browse.SetItems(rows)
		return m, nil

	case ListErrMsg:
		if !m.listGen.IsCurrent(msg.Gen) {
			return m, nil
		}
		m.Loading = false
		m.Browse.SetLoading(false)
		cmd := m.setStatus(msg.Error(), true)
		return m, cmd

	case DetailsLoadedMsg:
		if !m.Overlay.IsOpen() || m.Overlay.Item().ID != msg.Ticket.ItemID {
			return m, nil
		}
		if !m.Loader.Apply(msg.Ticket, msg.Details) {
			return m, nil
		}
		var cmd tea.Cmd
		if refetch, season, gen := m.Overlay.UpdateItem(msg.Details.Item); refetch {
			cmd = LoadEpisodesCmd(m.Overlay, gen, msg.Details.Item.ID, season)
		}
		m.syncInspector()
		return m, cmd

	case TrailersLoadedMsg:
		if m.Overlay.SetTrailers(msg.Session, msg.Keys) {
			m.startHeadTrailer(0)
			m.syncInspector()
		}
		return m, nil

	case EpisodesLoadedMsg:
		if m.Overlay.ApplyEpisodes(msg.Gen, msg.Episodes) {
			m.syncInspector()
		}
		return m, nil

	case PlaybackStartedMsg:
		m.Loading = false
		m.Playing = msg.Title
		label := msg.Title
		if msg.Playback.Subtitle != nil {
			label += " [" + msg.Playback.Subtitle.Language + "]"
		}
		status := m.setStatus("Playing "+label+" in "+msg.Playback.Player, false)
		return m, tea.Batch(status, WaitPlaybackCmd(msg.Title, msg.Playback))

	case PlaybackFinishedMsg:
		m.Playing = ""
		if msg.Err != nil {
			cmd := m.setStatus(fmt.Sprintf("Player exited: %v", msg.Err), true)
			return m, cmd
		}
		cmd := m.setStatus("Finished "+msg.Title, false)
		return m, cmd

	case ErrMsg:
		m.Loading = false
		cmd := m.setStatus(msg.Error(), true)
		return m, cmd
	}

	return m, nil
}

// handleKeyMsg routes keys to the topmost surface
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.SearchPrompt.IsVisible() {
		var cmd tea.Cmd
		var query string
		m.SearchPrompt, cmd, query = m.SearchPrompt.Update(msg)
		if query != "" {
			cmd = m.search(query)
		}
		return m, cmd
	}

	if m.TitleFilter.IsVisible() {
		var cmd tea.Cmd
		var picked *domain.MediaItem
		m.TitleFilter, cmd, picked = m.TitleFilter.Update(msg)
		if picked != nil {
			m.Browse.SelectByID(picked.ID)
			cmd = m.openOverlay(*picked)
		}
		return m, cmd
	}

	if m.Overlay.IsOpen() {
		return m.handleOverlayKey(msg)
	}

	// Filter typing owns every key
	if m.Browse.IsFilterTyping() {
		return m, m.Browse.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Browse.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Global):
		if m.Catalog.FilterIndexCount() == 0 {
			cmd := m.setStatus("Nothing loaded to filter yet", false)
			return m, cmd
		}
		m.TitleFilter.Show()
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.SearchPrompt.Show(m.SearchQuery)
		return m, nil

	case key.Matches(msg, Keys.Library):
		if !m.Library.Configured() {
			cmd := m.setStatus("Cloud library is not configured", true)
			return m, cmd
		}
		cmd := m.loadLibrary()
		return m, cmd

	case key.Matches(msg, Keys.Refresh):
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, Keys.Open):
		cmd := m.openSelected()
		return m, cmd

	case key.Matches(msg, Keys.Back):
		if m.Browse.IsFiltering() {
			m.Browse.ClearFilter()
			return m, nil
		}
		cmd := m.back()
		return m, cmd
	}

	return m, m.Browse.Update(msg)
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Close):
		m.closeOverlay()
		return m, nil

	case key.Matches(msg, Keys.Play):
		cmd := m.play()
		return m, cmd

	case key.Matches(msg, Keys.Mute):
		m.Overlay.ToggleMute(m.surface())
		m.syncInspector()
		return m, nil

	case key.Matches(msg, Keys.PrevSeason), key.Matches(msg, Keys.NextSeason):
		item := m.Overlay.Item()
		if !item.IsSeries() {
			return m, nil
		}
		next := m.Overlay.Season() + 1
		if key.Matches(msg, Keys.PrevSeason) {
			next = m.Overlay.Season() - 1
		}
		if next < 1 || (item.SeasonCount > 0 && next > item.SeasonCount) {
			return m, nil
		}
		gen := m.Overlay.SelectSeason(next)
		m.syncInspector()
		return m, LoadEpisodesCmd(m.Overlay, gen, item.ID, m.Overlay.Season())

	case key.Matches(msg, Keys.TrailerError):
		k := m.Preview.Key()
		if k == "" {
			return m, nil
		}
		var cmd tea.Cmd
		if m.Overlay.TrailerError(k) {
			cmd = LoadTrailersCmd(m.Overlay, m.Overlay.Session(), m.Overlay.Item())
		}
		m.startHeadTrailer(0)
		m.syncInspector()
		return m, cmd

	case key.Matches(msg, Keys.ScrollDown):
		m.Inspector.ScrollDown()
		return m, nil

	case key.Matches(msg, Keys.ScrollUp):
		m.Inspector.ScrollUp()
		return m, nil

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil
	}
	return m, nil
}

// openSelected acts on the row under the cursor
func (m *Model) openSelected() tea.Cmd {
	switch item := m.Browse.SelectedItem().(type) {
	case *domain.MediaItem:
		return m.openOverlay(*item)
	case *domain.LibraryEntry:
		return m.loadIssues(item.SeriesID, item.GetTitle())
	case *domain.Issue:
		return m.setStatus(item.GetTitle()+" is read in the web reader", false)
	}
	return nil
}

// openOverlay shows the detail overlay for item and starts its
// independent follow-up loads
func (m *Model) openOverlay(item domain.MediaItem) tea.Cmd {
	var opts overlay.OpenOptions
	if m.Device != nil {
		if tp, ok := m.Device.LoadTrailerPosition(item); ok {
			opts = overlay.OpenOptions{TrailerOverride: tp.Key, TrailerStart: tp.Position}
		}
	}

	plan := m.Overlay.Open(item, opts)
	ticket := m.Loader.Begin(item)

	m.Preview.Stop()
	m.startHeadTrailer(plan.TrailerStart)
	m.syncInspector()

	cmds := []tea.Cmd{
		LoadDetailsCmd(m.Loader, ticket, item),
		PrefetchCmd(m.Overlay, plan.Prefetch),
	}
	if plan.LoadTrailers {
		cmds = append(cmds, LoadTrailersCmd(m.Overlay, plan.Session, item))
	}
	if plan.FetchEpisodes {
		cmds = append(cmds, LoadEpisodesCmd(m.Overlay, plan.EpisodeGen, item.ID, plan.Season))
	}
	return tea.Batch(cmds...)
}

// closeOverlay ends the overlay session and remembers where the trailer stopped
func (m *Model) closeOverlay() {
	report := m.Overlay.Close(m.surface())
	m.Preview.Stop()
	m.Inspector.SetState(nil)

	if m.Device == nil {
		return
	}
	// No trailer or no position clears any earlier record
	tp := store.TrailerPosition{Key: report.TrailerKey, Position: report.Position}
	if err := m.Device.SaveTrailerPosition(report.Item, tp); err != nil {
		m.StatusMsg = "Could not save trailer position"
		m.StatusIsErr = true
	}
}

// startHeadTrailer plays the head of the trailer queue, or stops the
// preview when the queue is empty
func (m *Model) startHeadTrailer(at time.Duration) {
	key, ok := m.Overlay.Trailer()
	if !ok {
		m.Preview.Stop()
		return
	}
	if key == m.Preview.Key() {
		return
	}
	m.Preview.Start(key, at, m.Overlay.Muted())
}

// surface returns the active video surface, nil without one
func (m *Model) surface() overlay.Surface {
	if !m.Preview.Playing() {
		return nil
	}
	return m.Preview
}

func (m *Model) play() tea.Cmd {
	if m.Playing != "" {
		return m.setStatus(m.Playing+" is already playing", false)
	}
	item := m.Overlay.Item()
	if d, ok := m.Loader.Current(); ok && d.Item.ID == item.ID {
		item = d.Item
	}
	target := m.Overlay.PlayTarget()
	m.Loading = true
	return PlayCmd(m.Playback, service.PlayRequest{Item: item, Season: target.Season, Episode: target.Episode})
}

// syncInspector copies the overlay state into the inspector view
func (m *Model) syncInspector() {
	if !m.Overlay.IsOpen() {
		m.Inspector.SetState(nil)
		return
	}
	state := &components.OverlayState{
		Item:     m.Overlay.Item(),
		Season:   m.Overlay.Season(),
		Episodes: m.Overlay.Episodes(),
		Queued:   len(m.Overlay.Queue()),
	}
	if d, ok := m.Loader.Current(); ok {
		state.Details = &d
	}
	if pos, ok := m.Overlay.Resume(); ok {
		state.Resume = &pos
	}
	m.Inspector.SetState(state)
}

func (m *Model) loadTrending() tea.Cmd {
	m.Mode = ModeTrending
	m.Loading = true
	m.Browse.SetTitle("Trending Now")
	m.Browse.SetLoading(true)
	return LoadTrendingCmd(m.Catalog, m.listGen.Next())
}

func (m *Model) search(query string) tea.Cmd {
	m.Mode = ModeSearch
	m.SearchQuery = query
	m.Loading = true
	m.Browse.SetTitle(fmt.Sprintf("Searching %q", query))
	m.Browse.SetLoading(true)
	return SearchCmd(m.Catalog, query, m.listGen.Next())
}

func (m *Model) loadLibrary() tea.Cmd {
	m.Mode = ModeLibrary
	m.Loading = true
	m.Browse.SetTitle("My Library")
	m.Browse.SetLoading(true)
	return LoadLibraryCmd(m.Library, m.listGen.Next())
}

func (m *Model) loadIssues(seriesID, title string) tea.Cmd {
	m.Mode = ModeIssues
	m.Loading = true
	m.Browse.SetTitle("My Library › " + title)
	m.Browse.SetLoading(true)
	return LoadIssuesCmd(m.Library, seriesID, title, m.listGen.Next())
}

// reload refreshes the current list
func (m *Model) reload() tea.Cmd {
	switch m.Mode {
	case ModeSearch:
		return m.search(m.SearchQuery)
	case ModeLibrary, ModeIssues:
		return m.loadLibrary()
	default:
		return m.loadTrending()
	}
}

// back returns to the parent list
func (m *Model) back() tea.Cmd {
	switch m.Mode {
	case ModeIssues:
		return m.loadLibrary()
	case ModeSearch, ModeLibrary:
		return m.loadTrending()
	}
	return nil
}

// setStatus shows a temporary status message
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(5 * time.Second)
}

func (m *Model) updateLayout() {
	// Footer takes one line
	m.Browse.SetSize(m.Width, m.Height-1)
	m.TitleFilter.SetSize(m.Width, m.Height-1)
	m.Inspector.SetSize(min(m.Width-4, 100), m.Height-3)
}

func mediaRows(items []domain.MediaItem) []domain.ListItem {
	rows := make([]domain.ListItem, len(items))
	for i := range items {
		rows[i] = &items[i]
	}
	return rows
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	var body string
	switch {
	case m.SearchPrompt.IsVisible():
		body = lipgloss.Place(m.Width, m.Height-1, lipgloss.Center, lipgloss.Center, m.SearchPrompt.View())
	case m.TitleFilter.IsVisible():
		body = m.TitleFilter.View()
	case m.Overlay.IsOpen():
		body = lipgloss.Place(m.Width, m.Height-1, lipgloss.Center, lipgloss.Center, m.Inspector.View())
	default:
		body = m.Browse.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

// renderFooter renders the status bar: status left, hints center, help right
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Loading:
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	case m.Playing != "":
		left = styles.AccentStyle.Render("▶ ") + styles.DimStyle.Render(m.Playing)
	}

	var center string
	if m.Overlay.IsOpen() {
		hints := []key.Binding{Keys.Play, Keys.Mute, Keys.TrailerError, Keys.Close}
		if m.Overlay.Item().IsSeries() {
			hints = append([]key.Binding{Keys.PrevSeason, Keys.NextSeason}, hints...)
		}
		center = renderHints(hints)
	} else {
		center = renderHints([]key.Binding{Keys.Search, Keys.Library, Keys.Global})
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func renderHints(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = styles.AccentStyle.Render(h.Key) + styles.DimStyle.Render(" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
BROWSE                          DETAILS
  j/k        Up/down               p      Play / resume
  g/G        First/last item       m      Mute trailer
  Ctrl+u/d   Scroll half page      [ ]    Previous/next season
  Enter      Open                  x      Skip trailer
  Esc        Back                  j/k    Scroll
                                   Esc/q  Close

SEARCH                          OTHER
  /          Filter this list      r      Refresh
  f          Filter everything     l      Cloud library
  s          Search catalog        q      Quit
                                   ?      This help

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// RenderSpinner renders the spinner frame
func RenderSpinner(frame int) string {
	frames := components.SpinnerFrames
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}
