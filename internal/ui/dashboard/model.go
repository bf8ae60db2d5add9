package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/inbox-triage/internal/keys"
	"github.com/nhle/inbox-triage/internal/theme"
	"github.com/nhle/inbox-triage/internal/triage"
)

// EmailsLoadedMsg carries a finished fetch back to the UI loop.
type EmailsLoadedMsg struct {
	Result triage.Result
}

// headerLines is the space taken by the stats line, filter bar and error
// banner above the list.
const headerLines = 4

// Model is the email dashboard view.
type Model struct {
	board   *triage.Board
	list    list.Model
	spinner spinner.Model
	keys    *keys.KeyMap
	log     *zap.Logger
	snap    triage.Snapshot
	width   int
	height  int
}

// New creates a dashboard over board. log may be nil.
func New(board *triage.Board, k *keys.KeyMap, log *zap.Logger, width, height int) Model {
	if log == nil {
		log = zap.NewNop()
	}

	l := list.New([]list.Item{}, CardDelegate{}, width, listHeight(height))
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	m := Model{
		board:   board,
		list:    l,
		spinner: sp,
		keys:    k,
		log:     log.Named("dashboard"),
		width:   width,
		height:  height,
	}
	m.sync()
	return m
}

// Init loads the email set, as on first arrival at the dashboard.
func (m Model) Init() tea.Cmd {
	return m.Load(false)
}

// Load starts a fetch. The loading indicator shows immediately; the
// result arrives as an EmailsLoadedMsg. A refresh returns the filter to
// "all" once the load completes.
func (m *Model) Load(refresh bool) tea.Cmd {
	loader := m.board.Loader()
	ticket := loader.Begin(refresh)
	m.snap.Loading = true

	fetch := func() tea.Msg {
		return EmailsLoadedMsg{Result: loader.Fetch(context.Background(), ticket)}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

// Refresh reloads the set and resets the filter.
func (m *Model) Refresh() tea.Cmd {
	return m.Load(true)
}

// SetFilter changes the active filter and re-renders the list.
func (m *Model) SetFilter(f triage.Filter) error {
	if err := m.board.SetFilter(f); err != nil {
		return err
	}
	m.sync()
	return nil
}

// Snapshot returns what the dashboard currently shows.
func (m Model) Snapshot() triage.Snapshot {
	return m.snap
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailsLoadedMsg:
		outcome := m.board.Loader().Complete(msg.Result)
		m.board.Apply(outcome)
		m.sync()
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	for _, fk := range m.filterKeys() {
		if key.Matches(msg, fk.binding) {
			m.applyFilter(fk.filter)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.Refresh()
		return m, cmd

	case key.Matches(msg, m.keys.Select):
		if item, ok := m.list.SelectedItem().(CardItem); ok {
			m.board.Select(item.Card.ID)
		}
		return m, nil
	}

	// Navigation keys go to the list.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

type filterKey struct {
	binding key.Binding
	filter  triage.Filter
}

func (m Model) filterKeys() []filterKey {
	return []filterKey{
		{m.keys.FilterAll, triage.FilterAll},
		{m.keys.FilterHigh, triage.FilterHigh},
		{m.keys.FilterMedium, triage.FilterMedium},
		{m.keys.FilterLow, triage.FilterLow},
		{m.keys.FilterAction, triage.FilterAction},
	}
}

// applyFilter sets f, logging a rejected value. The key bindings only
// name known filters, so a rejection means the bindings and the filter
// list have drifted apart.
func (m *Model) applyFilter(f triage.Filter) {
	if err := m.SetFilter(f); err != nil {
		m.log.Error("filter rejected", zap.String("filter", string(f)), zap.Error(err))
	}
}

// sync takes a fresh snapshot from the board and rebuilds the list items.
func (m *Model) sync() {
	m.snap = m.board.Snapshot()

	items := make([]list.Item, len(m.snap.View.Cards))
	for i, c := range m.snap.View.Cards {
		items[i] = CardItem{Card: c}
	}
	m.list.SetItems(items)
	if m.list.Index() >= len(items) {
		m.list.Select(0)
	}
}

// View renders the dashboard.
func (m Model) View() string {
	sections := []string{
		m.renderStats(),
		m.renderFilterBar(),
	}
	if m.snap.Error != "" {
		sections = append(sections, theme.ErrorStyle.Render(m.snap.Error))
	} else {
		sections = append(sections, "")
	}

	body := m.list.View()
	if m.snap.View.Empty() {
		body = m.renderPlaceholder()
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// StatusText is shown in the header: the spinner while loading.
func (m Model) StatusText() string {
	if m.loading() {
		return m.spinner.View() + " Loading emails..."
	}
	return ""
}

// loading reads the loader directly; Init runs on a copy of the model, so
// the snapshot can lag behind the first load.
func (m Model) loading() bool {
	return m.board.Loader().Loading()
}

func (m Model) renderStats() string {
	s := m.snap.Stats
	return theme.MutedStyle.Render(fmt.Sprintf(
		"Total %d · Urgent %d · Action required %d",
		s.Total, s.Urgent, s.Actionable,
	))
}

func (m Model) renderFilterBar() string {
	parts := make([]string, 0, len(m.snap.Indicators))
	for i, ind := range m.snap.Indicators {
		label := fmt.Sprintf("%d %s", i, ind.Filter.Label())
		if ind.Active {
			parts = append(parts, theme.FilterActiveStyle.Render("[x] "+label))
		} else {
			parts = append(parts, theme.FilterStyle.Render("[ ] "+label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderPlaceholder() string {
	text := m.snap.View.Placeholder
	if m.loading() && !m.board.Loader().Store().Loaded() {
		text = m.spinner.View() + " Loading emails..."
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(listHeight(m.height)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
}

func listHeight(height int) int {
	h := height - headerLines
	if h < 3 {
		return 3
	}
	return h
}
