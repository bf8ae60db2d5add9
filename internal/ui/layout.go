package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/internal/theme"
)

// The header and status bar are one line each.
const (
	headerLines    = 1
	statusBarLines = 1
)

// Layout splits the terminal into header, content and status bar.
type Layout struct {
	Width  int
	Height int
}

// Header describes the top bar.
type Header struct {
	Title string
	Stats model.Stats

	// Loading replaces the refresh details while a load is in flight.
	Loading string

	UpdatedAt   time.Time
	AutoRefresh time.Duration
}

// Status describes the bottom bar. A notice takes precedence over hints.
type Status struct {
	Notice string
	Hints  string
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// Resize returns the layout adjusted to a new terminal size.
func (l Layout) Resize(width, height int) Layout {
	l.Width = width
	l.Height = height
	return l
}

// ContentWidth returns the width of the content area.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-headerLines-statusBarLines, 0)
}

// RenderHeader draws the title with the inbox counts on the left and the
// load state on the right.
func (l Layout) RenderHeader(h Header) string {
	left := h.Title
	if h.Stats.Total > 0 {
		left += fmt.Sprintf("  %d emails, %d urgent", h.Stats.Total, h.Stats.Urgent)
	}
	return fillRow(theme.HeaderStyle, l.Width, left, h.right())
}

func (h Header) right() string {
	if h.Loading != "" {
		return h.Loading
	}
	var s string
	if !h.UpdatedAt.IsZero() {
		s = "updated " + h.UpdatedAt.Format("15:04")
	}
	if h.AutoRefresh > 0 {
		if s != "" {
			s += " · "
		}
		s += "every " + h.AutoRefresh.String()
	}
	return s
}

// RenderStatusBar draws the notice if there is one, else the key hints.
func (l Layout) RenderStatusBar(s Status) string {
	if s.Notice != "" {
		return fillRow(theme.NoticeStyle, l.Width, s.Notice, "")
	}
	return fillRow(theme.StatusBarStyle, l.Width, s.Hints, "")
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fillRow renders left and right text on one bar of the given width, the
// gap painted in the bar's background.
func fillRow(style lipgloss.Style, width int, left, right string) string {
	l := style.Render(left)
	var r string
	if right != "" {
		r = style.Render(right)
	}

	gap := max(width-lipgloss.Width(l)-lipgloss.Width(r), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, l, filler, r)
}
