package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	chatcore "github.com/nhle/inbox-triage/internal/chat"
	"github.com/nhle/inbox-triage/internal/keys"
	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/internal/theme"
	"github.com/nhle/inbox-triage/internal/ui"
)

// ReplyMsg carries the backend's answer to a chat message.
type ReplyMsg struct {
	Reply chatcore.Reply
}

// Model is the assistant chat view.
type Model struct {
	dispatcher    *chatcore.Dispatcher
	dashboardPath string
	input         textarea.Model
	viewport      viewport.Model
	waiting       bool
	visit         int
	keys          *keys.KeyMap
	width         int
	height        int
}

// New creates a chat view. Redirect replies navigate to dashboardPath.
func New(
	d *chatcore.Dispatcher,
	dashboardPath string,
	k *keys.KeyMap,
	width, height int,
) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your inbox..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vp := viewport.New(width-4, viewportHeight(height))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		dispatcher:    d,
		dashboardPath: dashboardPath,
		visit:         1,
		input:         ta,
		viewport:      vp,
		keys:          k,
		width:         width,
		height:        height,
	}
	m.refreshViewport()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Waiting reports whether a message is awaiting its reply.
func (m Model) Waiting() bool {
	return m.waiting
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReplyMsg:
		return m.handleReply(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	if taCmd != nil {
		cmds = append(cmds, taCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	if vpCmd != nil {
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		path := m.dashboardPath
		return m, func() tea.Msg { return ui.NavigateMsg{Path: path} }

	case msg.Type == tea.KeyEnter:
		if m.waiting {
			return m, nil
		}
		text, ok := m.dispatcher.Submit(m.input.Value())
		if !ok {
			return m, nil
		}

		m.input.Reset()
		m.waiting = true
		m.refreshViewport()
		focus := m.input.Focus()
		return m, tea.Batch(focus, m.send(text))

	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleReply shows the assistant's reply and, for a redirect, schedules
// navigation once the delay has passed. The reply is on screen before the
// timer starts.
func (m Model) handleReply(msg ReplyMsg) (Model, tea.Cmd) {
	m.waiting = false
	effect := m.dispatcher.Receive(msg.Reply)
	m.refreshViewport()

	if !effect.Redirect {
		return m, nil
	}
	path, visit := m.dashboardPath, m.visit
	return m, tea.Tick(effect.After, func(time.Time) tea.Msg {
		return ui.NavigateMsg{Path: path, Visit: visit}
	})
}

func (m Model) send(text string) tea.Cmd {
	d := m.dispatcher
	return func() tea.Msg {
		return ReplyMsg{Reply: d.Call(context.Background(), text)}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	entries := m.dispatcher.Transcript().Entries()
	if len(entries) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Ask about your emails. Try \"what needs my attention?\" " +
				"or \"schedule a meeting\".")
	}

	contentStyle := lipgloss.NewStyle().
		Foreground(theme.ColorWhite).
		Width(m.width - 6)

	var sections []string
	for _, e := range entries {
		var label string
		switch e.Role {
		case model.RoleUser:
			label = theme.UserStyle.Render("You:")
		default:
			label = theme.AssistantStyle.Render("Assistant:")
		}

		text := contentStyle.Render(e.Text)
		if e.Failed {
			text = theme.ErrorStyle.Render(e.Text)
		}
		sections = append(sections, label, text, "")
	}

	if m.waiting {
		sections = append(sections, theme.HelpStyle.Render("..."))
	}

	return strings.Join(sections, "\n")
}

// View renders the chat view.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Assistant")

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-6, 80), 0)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = viewportHeight(height)
	m.refreshViewport()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Enter starts a new visit to the chat view. Redirects scheduled during an
// earlier visit no longer match Visit.
func (m *Model) Enter() tea.Cmd {
	m.visit++
	return m.Focus()
}

// Visit returns the current visit number.
func (m Model) Visit() int {
	return m.visit
}

func viewportHeight(height int) int {
	h := height - 8
	if h < 4 {
		return 4
	}
	return h
}
