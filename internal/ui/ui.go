// Package ui implements the interactive library browser using bubbletea's Elm
// architecture.
//
// The [Model] shows the catalog as a filterable list: a search input narrows
// it on every keystroke and tab cycles through the playlists, both feeding
// [catalog.Project]. Transport keys drive the playback controller directly,
// and controller state changes arrive back as messages through a channel so
// the now-playing line always reflects the sink.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/postify/postify/internal/catalog"
	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/player"
)

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	play     key.Binding
	pause    key.Binding
	next     key.Binding
	prev     key.Binding
	stop     key.Binding
	search   key.Binding
	playlist key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		play:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		playlist: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "playlist")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.pause, k.next, k.prev, k.stop, k.search, k.playlist, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.play},
		{k.pause, k.next, k.prev, k.stop},
		{k.search, k.playlist, k.quit},
	}
}

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track *models.Track
}

func (i trackItem) FilterValue() string { return i.track.DisplayTitle() }
func (i trackItem) Title() string       { return i.track.DisplayTitle() }
func (i trackItem) Description() string {
	desc := i.track.DisplayArtist()
	if i.track.Type == models.TypeRemoteStream {
		desc = fmt.Sprintf("%s • stream", desc)
	}
	return desc
}

// playerEventMsg carries a controller state change into the Elm loop.
type playerEventMsg struct {
	state   player.State
	trackID string
	err     error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	catalog    *catalog.Catalog
	controller *player.Controller
	events     chan playerEventMsg

	width     int
	height    int
	trackList list.Model
	projected []*models.Track
	search    textinput.Model
	searching bool

	nowPlaying playerEventMsg
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model over the catalog and playback controller.
// It registers itself as the controller's notifier.
func NewModel(ctx context.Context, cat *catalog.Catalog, ctrl *player.Controller) *Model {
	m := &Model{
		ctx:        ctx,
		catalog:    cat,
		controller: ctrl,
		events:     make(chan playerEventMsg, 16),
		search:     textinput.New(),
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.search.Placeholder = "titre ou artiste"
	m.search.Prompt = "/ "
	m.search.CharLimit = 64

	ctrl.SetNotifier(func(state player.State, trackID string, err error) {
		// drop rather than stall the controller when the loop lags
		select {
		case m.events <- playerEventMsg{state: state, trackID: trackID, err: err}:
		default:
		}
	})

	m.trackList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.trackList.SetFilteringEnabled(false)
	m.trackList.SetShowHelp(false)
	m.reproject()
	return m
}

// Init starts listening for controller events.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleBrowseKeys(msg)

	case playerEventMsg:
		m.nowPlaying = msg
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// View renders the library list, the now-playing line and the help footer.
func (m *Model) View() string {
	var search string
	if m.searching || m.search.Value() != "" {
		search = m.search.View() + "\n"
	}
	return fmt.Sprintf("%s%s\n%s\n%s",
		search,
		m.trackList.View(),
		m.renderNowPlaying(),
		m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.controller.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.playlist):
		m.cyclePlaylist()
		return m, nil

	case key.Matches(msg, m.keys.play):
		index := m.trackList.Index()
		if index >= 0 && index < len(m.projected) {
			ids := make([]string, len(m.projected))
			for i, track := range m.projected {
				ids[i] = track.ID
			}
			m.err = m.controller.PlayAt(m.ctx, ids, index)
		}
		return m, nil

	case key.Matches(msg, m.keys.pause):
		m.err = m.controller.TogglePlayPause()
		return m, nil

	case key.Matches(msg, m.keys.next):
		m.err = m.controller.Advance(m.ctx, +1)
		return m, nil

	case key.Matches(msg, m.keys.prev):
		m.err = m.controller.Advance(m.ctx, -1)
		return m, nil

	case key.Matches(msg, m.keys.stop):
		m.err = m.controller.Stop()
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// handleSearchKeys feeds keystrokes into the search input and reprojects the
// list after every one.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.reproject()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.reproject()
	return m, cmd
}

// cyclePlaylist activates the next playlist in registry order, wrapping back
// to the ALL pseudo-playlist.
func (m *Model) cyclePlaylist() {
	playlists := m.catalog.Playlists()
	if len(playlists) == 0 {
		return
	}
	active := m.catalog.Active()
	next := 0
	for i, name := range playlists {
		if name == active {
			next = (i + 1) % len(playlists)
			break
		}
	}
	m.catalog.SetActive(playlists[next])
	m.reproject()
}

// reproject recomputes the visible track list from the active playlist and
// the current search query.
func (m *Model) reproject() {
	m.projected = catalog.Project(m.catalog.Tracks(), m.catalog.Active(), m.search.Value())
	items := make([]list.Item, len(m.projected))
	for i, track := range m.projected {
		items[i] = trackItem{track: track}
	}
	m.trackList.SetItems(items)
	m.trackList.Title = fmt.Sprintf("%s (%d)", m.catalog.Active(), len(m.projected))
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) renderNowPlaying() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.nowPlaying.err != nil {
		return styles.err.Render(fmt.Sprintf("Playback error: %v", m.nowPlaying.err))
	}

	switch m.nowPlaying.state {
	case player.StatePlaying, player.StatePaused, player.StateLoading:
		title := m.nowPlaying.trackID
		artist := ""
		if track, ok := m.catalog.Get(m.nowPlaying.trackID); ok {
			title = track.DisplayTitle()
			artist = track.DisplayArtist()
		}
		line := fmt.Sprintf("[%s] %s - %s", m.nowPlaying.state, artist, title)
		if m.nowPlaying.state == player.StatePaused {
			return styles.warn.Render(line)
		}
		return styles.ok.Render(line)
	case player.StateEnded:
		return styles.help.Render("[ended]")
	default:
		return styles.help.Render("[idle]")
	}
}
