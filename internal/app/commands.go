package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/inbox-triage/internal/credential"
	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/internal/triage"
	"github.com/nhle/inbox-triage/internal/ui"
	"github.com/nhle/inbox-triage/internal/ui/command"
	"github.com/nhle/inbox-triage/internal/ui/settings"
)

// executeCommand handles a command line from the command palette.
func (m *Model) executeCommand(line string) tea.Cmd {
	name, arg := command.Parse(line)

	switch name {
	case "refresh", "r":
		m.currentView = ViewDashboard
		return m.dashboard.Refresh()

	case "filter", "f":
		f, err := triage.ParseFilter(arg)
		if err != nil {
			m.notice.Notify(fmt.Sprintf("Unknown filter %q (all, high, medium, low, action)", arg))
			return nil
		}
		m.currentView = ViewDashboard
		if err := m.dashboard.SetFilter(f); err != nil {
			m.log.Error("filter rejected", zap.String("filter", arg), zap.Error(err))
			m.notice.Notify(err.Error())
		}
		return nil

	case "chat", "assistant":
		return m.navigate(ui.PathChat)

	case "emails", "dashboard":
		return m.navigate(m.cfg.Chat.DashboardPath)

	case "settings", "config":
		return m.navigate(ui.PathSettings)

	case "help":
		m.open(ViewHelp)
		return nil

	case "quit", "q":
		return m.quit()
	}

	m.notice.Notify(fmt.Sprintf("Unknown command: %s", strings.TrimSpace(line)))
	return nil
}

// applySettings persists a submitted settings form and applies it to the
// running session, then returns to the dashboard with a fresh load.
func (m *Model) applySettings(msg settings.SavedMsg) tea.Cmd {
	cfg := msg.Config

	if msg.Token != "" {
		m.token = msg.Token
		if m.credentials != nil {
			if err := m.credentials.Set(credential.BackendTokenKey, msg.Token); err != nil {
				m.log.Warn("storing backend token failed", zap.Error(err))
			}
		}
	}

	if m.configPath != "" {
		if err := model.SaveConfig(m.configPath, &cfg); err != nil {
			m.log.Error("saving config failed", zap.Error(err))
			m.notice.Notify(fmt.Sprintf("Error saving settings: %v", err))
		} else {
			m.notice.Notify("Settings saved")
		}
	}

	m.cfg = cfg
	m.client.Reconfigure(cfg.Backend.BaseURL, m.token)
	m.board.Loader().SetBatchSize(cfg.Backend.BatchSize)
	m.dispatcher.SetRedirectDelay(cfg.Chat.RedirectDelay())

	var restart tea.Cmd
	if cfg.Backend.RefreshInterval() != m.poller.Interval() {
		restart = m.poller.Restart(cfg.Backend.RefreshInterval())
	}

	m.currentView = ViewDashboard
	return tea.Batch(m.dashboard.Load(false), restart)
}
