// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Home, People, Inbox, and Status tabs over the DoFo stores
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/charm"
	"github.com/harperreed/dofo/db"
	"github.com/harperreed/dofo/feed"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/people"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/store"
	"github.com/harperreed/dofo/urgency"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewLog
	ViewCircles
	ViewConfirm
)

// Tab is one of the top-level screens.
type Tab int

const (
	TabHome Tab = iota
	TabPeople
	TabInbox
	TabStatus
)

var tabNames = []string{"Home", "People", "Inbox", "Status"}

// Options carries the optional collaborators. Zero values are fine.
type Options struct {
	State   *state.Store
	Charm   *charm.Client
	Imports *db.ImportLog
	Logger  *zap.Logger
	Now     func() time.Time
	Policy  urgency.Policy
}

// Model is the main bubbletea model
type Model struct {
	set  store.Set
	opts Options

	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int
	feed        *feed.Feed
	people      []models.Person
	inbox       []models.InboxItem

	// Detail view state
	selected *models.Person
	actions  []models.DailyAction

	// Log form state
	formInputs []textinput.Model
	focusIndex int

	// Confirmation state
	pending confirmation

	// Status tab state
	syncStates []db.SyncState

	// Circles view state
	dashboard string

	message string
	width   int
	height  int
	err     error
}

// NewModel creates a new TUI model and loads the first screen.
func NewModel(set store.Set, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := Model{
		set:      set,
		opts:     opts,
		viewMode: ViewList,
		tab:      TabHome,
		width:    80,
		height:   24,
	}
	m.reload()
	return m
}

func (m Model) now() time.Time {
	if m.opts.Now != nil {
		return m.opts.Now()
	}
	return time.Now()
}

// reload refreshes every list from the stores.
func (m *Model) reload() {
	ctx := context.Background()

	name := ""
	if m.opts.State != nil {
		if prefs, err := m.opts.State.Preferences(); err == nil {
			name = prefs.Name
		}
	}
	f, err := feed.Build(ctx, m.set.Actions, name, m.now())
	if err != nil {
		m.err = err
		return
	}
	m.feed = f

	list, err := m.set.People.List(ctx)
	if err != nil {
		m.err = err
		return
	}
	people.Sort(list, people.SortHealth)
	m.people = list

	inbox, err := m.set.Inbox.List(ctx, false)
	if err != nil {
		m.err = err
		return
	}
	m.inbox = inbox

	m.syncStates = nil
	if m.opts.Imports != nil {
		states, err := m.opts.Imports.States(ctx)
		if err != nil {
			m.opts.Logger.Warn("failed to load import states", zap.Error(err))
		}
		m.syncStates = states
	}
	m.err = nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewLog:
		return m.renderLogView()
	case ViewCircles:
		return m.renderCirclesView()
	case ViewConfirm:
		return m.renderConfirmView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The log form takes typed text, so only ctrl+c quits there.
	if msg.String() == "ctrl+c" || (msg.String() == "q" && m.viewMode != ViewLog) {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewLog:
		return m.handleLogKeys(msg)
	case ViewCircles:
		return m.handleCirclesKeys(msg)
	case ViewConfirm:
		return m.handleConfirmKeys(msg)
	}

	return m, nil
}

// Run starts the full-screen program.
func Run(set store.Set, opts Options) error {
	_, err := tea.NewProgram(NewModel(set, opts), tea.WithAltScreen()).Run()
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
