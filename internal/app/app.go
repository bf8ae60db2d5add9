package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/inbox-triage/internal/backend"
	chatcore "github.com/nhle/inbox-triage/internal/chat"
	"github.com/nhle/inbox-triage/internal/credential"
	"github.com/nhle/inbox-triage/internal/keys"
	"github.com/nhle/inbox-triage/internal/model"
	appsync "github.com/nhle/inbox-triage/internal/sync"
	"github.com/nhle/inbox-triage/internal/triage"
	"github.com/nhle/inbox-triage/internal/ui"
	chatview "github.com/nhle/inbox-triage/internal/ui/chat"
	"github.com/nhle/inbox-triage/internal/ui/command"
	"github.com/nhle/inbox-triage/internal/ui/dashboard"
	helpview "github.com/nhle/inbox-triage/internal/ui/help"
	"github.com/nhle/inbox-triage/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewChat
	ViewHelp
	ViewCommand
	ViewSettings
)

// Deps are the collaborators the root model is built from.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Client     *backend.Client
	Token      string

	// Credentials may be nil when no keyring is available; a token typed
	// into settings is then used for the session only.
	Credentials *credential.Store
	Log         *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing and the
// layout around the active view.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	ready        bool

	cfg         model.AppConfig
	configPath  string
	client      *backend.Client
	token       string
	credentials *credential.Store
	log         *zap.Logger

	notice     *notice
	board      *triage.Board
	dispatcher *chatcore.Dispatcher
	poller     *appsync.Poller

	dashboard    dashboard.Model
	chatView     chatview.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model
}

// New creates the root model.
func New(d Deps) Model {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := *d.Config
	k := keys.DefaultKeyMap()
	n := &notice{}

	loader := triage.NewLoader(d.Client, triage.NewEmailStore(), cfg.Backend.BatchSize, log)
	board := triage.NewBoard(loader, triage.NewDetails(n))
	dispatcher := chatcore.NewDispatcher(d.Client, cfg.Chat.RedirectDelay(), log)

	return Model{
		currentView:  ViewDashboard,
		keys:         k,
		cfg:          cfg,
		configPath:   d.ConfigPath,
		client:       d.Client,
		token:        d.Token,
		credentials:  d.Credentials,
		log:          log.Named("app"),
		notice:       n,
		board:        board,
		dispatcher:   dispatcher,
		poller:       appsync.New(cfg.Backend.RefreshInterval(), log),
		dashboard:    dashboard.New(board, k, log, 80, 24),
		chatView:     chatview.New(dispatcher, cfg.Chat.DashboardPath, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		settingsView: settings.New(cfg, 80, 24),
	}
}

// Init loads the dashboard and starts auto refresh when configured.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dashboard.Init(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.ready {
			m.layout = m.layout.Resize(msg.Width, msg.Height)
		} else {
			m.layout = ui.NewLayout(msg.Width, msg.Height)
			m.ready = true
		}
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.dashboard.SetSize(w, h)
		m.chatView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	// Load results and the spinner belong to the dashboard even while
	// another view is shown.
	case dashboard.EmailsLoadedMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd

	case chatview.ReplyMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case ui.NavigateMsg:
		if msg.Redirect() && !m.redirectCurrent(msg) {
			m.log.Debug("dropping stale redirect", zap.Int("visit", msg.Visit))
			return m, nil
		}
		cmd := m.navigate(msg.Path)
		return m, cmd

	case appsync.TickMsg:
		m.log.Debug("auto refresh tick")
		load := m.dashboard.Load(false)
		return m, tea.Batch(load, m.poller.WaitForNextTick())

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg, helpview.ClosedMsg:
		m.currentView = m.previousView
		return m, nil

	case settings.SavedMsg:
		cmd := m.applySettings(msg)
		return m, cmd

	case settings.ClosedMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		m.notice.Clear()
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that switch views. Views with text
// input only give up ctrl+c.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}
	if m.currentView != ViewDashboard {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(), true
	case key.Matches(msg, m.keys.Help):
		m.open(ViewHelp)
		return nil, true
	case key.Matches(msg, m.keys.Command):
		m.open(ViewCommand)
		return m.commandView.Focus(), true
	case key.Matches(msg, m.keys.Chat):
		return m.navigate(ui.PathChat), true
	case key.Matches(msg, m.keys.Settings):
		return m.navigate(ui.PathSettings), true
	}
	return nil, false
}

// navigate switches to the view at path. Arriving at the dashboard from
// elsewhere reloads it; asking for the view already shown does nothing,
// which also makes a late chat redirect harmless.
func (m *Model) navigate(path string) tea.Cmd {
	switch path {
	case m.cfg.Chat.DashboardPath:
		if m.currentView == ViewDashboard {
			return nil
		}
		m.currentView = ViewDashboard
		return m.dashboard.Load(false)

	case ui.PathChat:
		if m.currentView == ViewChat {
			return nil
		}
		m.open(ViewChat)
		return m.chatView.Enter()

	case ui.PathSettings:
		if m.currentView == ViewSettings {
			return nil
		}
		m.settingsView = settings.New(m.cfg, m.layout.ContentWidth(), m.layout.ContentHeight())
		m.open(ViewSettings)
		return m.settingsView.Init()
	}

	m.log.Warn("unknown navigation target", zap.String("path", path))
	return nil
}

// redirectCurrent reports whether a chat redirect still belongs to the
// visit on screen. Leaving chat, even to come straight back, cancels it.
func (m Model) redirectCurrent(msg ui.NavigateMsg) bool {
	return m.currentView == ViewChat && msg.Visit == m.chatView.Visit()
}

func (m *Model) open(v ViewState) {
	if m.currentView != v {
		m.previousView = m.currentView
	}
	m.currentView = v
}

func (m *Model) quit() tea.Cmd {
	m.poller.Stop()
	return tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.header())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(ui.Status{
		Notice: m.notice.Text(),
		Hints:  m.hints(),
	})

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewChat:
		return m.chatView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// header describes the top bar from the dashboard state, which stays
// current while other views are shown.
func (m Model) header() ui.Header {
	snap := m.dashboard.Snapshot()
	h := ui.Header{
		Title:     "Inbox Triage",
		Stats:     snap.Stats,
		Loading:   m.dashboard.StatusText(),
		UpdatedAt: snap.UpdatedAt,
	}
	if m.poller.Running() {
		h.AutoRefresh = m.poller.Interval()
	}
	return h
}

// hints lists the keys of the active view.
func (m Model) hints() string {
	switch m.currentView {
	case ViewHelp:
		return "any key close help"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewChat:
		return "enter send | pgup/pgdn scroll | esc dashboard"
	case ViewSettings:
		return "enter next | esc cancel"
	default:
		return "q quit | ? help | 0-4 filter | r refresh | enter details | a chat | s settings"
	}
}
