package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/inbox-triage/internal/theme"
	"github.com/nhle/inbox-triage/internal/triage"
)

// CardItem wraps a triage.Card so it can be used in a bubbles/list.
type CardItem struct {
	Card triage.Card
}

// FilterValue returns the string used for fuzzy filtering.
func (i CardItem) FilterValue() string { return i.Card.Subject }

// Title returns the card subject.
func (i CardItem) Title() string { return i.Card.Subject }

// Description returns the sender and category line.
func (i CardItem) Description() string {
	return strings.Join([]string{i.Card.Sender, i.Card.Category}, " | ")
}

// CardDelegate implements list.ItemDelegate for email cards.
type CardDelegate struct{}

// Height returns the number of lines each card takes.
func (d CardDelegate) Height() int { return 4 }

// Spacing returns the number of blank lines between cards.
func (d CardDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d CardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single card.
func (d CardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(CardItem)
	if !ok {
		return
	}
	width := m.Width() - 4
	if width < 20 {
		width = 20
	}

	fmt.Fprint(w, renderCard(ci.Card, width, index == m.Index()))
}

// renderCard lays a card out over four lines: badges and subject, the
// sender with classification details, the summary, then the reasoning.
func renderCard(c triage.Card, width int, selected bool) string {
	var badges []string
	if c.ActionRequired {
		badges = append(badges, theme.ActionBadgeStyle.Render("●"))
	}
	badges = append(badges, theme.UrgencyStyle(string(c.Urgency)).Render(c.Severity))

	subject := lipgloss.NewStyle().Bold(true).Render(truncate(c.Subject, width-12))
	head := strings.Join(append(badges, subject), " ")

	details := []string{c.Sender}
	if c.Category != "" {
		details = append(details, c.Category)
	}
	details = append(details, fmt.Sprintf("%d%%", c.Confidence))
	meta := theme.MutedStyle.Render(strings.Join(details, " · "))
	if c.Meeting {
		meta += " " + theme.MeetingBadgeStyle.Render("meeting")
	}

	summary := truncate(c.Summary, width)
	reason := ""
	if c.Reason != "" {
		reason = theme.MutedStyle.Render(truncate("Why: "+c.Reason, width))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, head, meta, summary, reason)
	if selected {
		return theme.SelectedCardStyle.Render(body)
	}
	return theme.CardStyle.Render(body)
}

// truncate shortens s to at most n display columns.
func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > n-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
