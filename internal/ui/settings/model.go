package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/internal/theme"
)

// SavedMsg is emitted when the form is submitted. Token is only set when
// the user typed a new one.
type SavedMsg struct {
	Config model.AppConfig
	Token  string
}

// ClosedMsg is emitted when the form is dismissed without saving.
type ClosedMsg struct{}

// values holds the form fields. It lives behind a pointer so the huh
// bindings survive the model being copied.
type values struct {
	BaseURL    string
	BatchSize  string
	RefreshSec string
	RedirectMs string
	Token      string
}

// Model is the settings form.
type Model struct {
	form   *huh.Form
	vals   *values
	base   model.AppConfig
	width  int
	height int
}

// New builds a form pre-filled from cfg.
func New(cfg model.AppConfig, width, height int) Model {
	vals := &values{
		BaseURL:    cfg.Backend.BaseURL,
		BatchSize:  strconv.Itoa(cfg.Backend.BatchSize),
		RefreshSec: strconv.Itoa(cfg.Backend.RefreshIntervalSec),
		RedirectMs: strconv.Itoa(cfg.Chat.RedirectDelayMs),
	}
	m := Model{vals: vals, base: cfg, width: width, height: height}
	m.form = m.buildForm()
	return m
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Root of the triage backend").
				Placeholder("http://localhost:5000").
				Value(&m.vals.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Batch size").
				Description(fmt.Sprintf("Emails fetched per load (1-%d)", model.MaxBatchSize)).
				Value(&m.vals.BatchSize).
				Validate(validateRange("Batch size", 1, model.MaxBatchSize)),
			huh.NewInput().
				Title("Auto refresh (seconds)").
				Description(fmt.Sprintf("0 disables; minimum %d", model.MinRefreshIntervalSec)).
				Value(&m.vals.RefreshSec).
				Validate(validateRefresh),
			huh.NewInput().
				Title("Chat redirect delay (ms)").
				Description("Pause before a chat reply opens the dashboard").
				Value(&m.vals.RedirectMs).
				Validate(validateRange("Delay", 1, 60000)),
			huh.NewInput().
				Title("Backend token").
				Description("Leave empty to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&m.vals.Token),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update forwards input to the form and reports completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := apply(m.base, *m.vals)
		if err != nil {
			// Validation already ran on every field; nothing else can fail.
			return m, func() tea.Msg { return ClosedMsg{} }
		}
		saved := SavedMsg{Config: cfg, Token: strings.TrimSpace(m.vals.Token)}
		return m, func() tea.Msg { return saved }

	case huh.StateAborted:
		return m, func() tea.Msg { return ClosedMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Settings")

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View()))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 80 {
		return 80
	}
	if w < 30 {
		return 30
	}
	return w
}

// apply folds the form values into base.
func apply(base model.AppConfig, v values) (model.AppConfig, error) {
	cfg := base

	batch, err := strconv.Atoi(strings.TrimSpace(v.BatchSize))
	if err != nil {
		return cfg, fmt.Errorf("batch size: %w", err)
	}
	refresh, err := strconv.Atoi(strings.TrimSpace(v.RefreshSec))
	if err != nil {
		return cfg, fmt.Errorf("refresh interval: %w", err)
	}
	redirect, err := strconv.Atoi(strings.TrimSpace(v.RedirectMs))
	if err != nil {
		return cfg, fmt.Errorf("redirect delay: %w", err)
	}

	cfg.Backend.BaseURL = strings.TrimSpace(v.BaseURL)
	cfg.Backend.BatchSize = batch
	cfg.Backend.RefreshIntervalSec = refresh
	cfg.Chat.RedirectDelayMs = redirect
	cfg.Normalize()
	return cfg, nil
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

func validateRange(field string, lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%s must be between %d and %d", field, lo, hi)
		}
		return nil
	}
}

func validateRefresh(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("interval must be a number")
	}
	if n != 0 && n < model.MinRefreshIntervalSec {
		return fmt.Errorf("interval must be 0 or at least %d", model.MinRefreshIntervalSec)
	}
	return nil
}
