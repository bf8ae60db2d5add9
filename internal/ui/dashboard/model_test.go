package dashboard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/inbox-triage/internal/backend"
	"github.com/nhle/inbox-triage/internal/keys"
	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/internal/triage"
	"github.com/nhle/inbox-triage/tests/testutil"
)

func sampleSet() []model.EmailRecord {
	return []model.EmailRecord{
		testutil.Email("1", model.UrgencyHigh, true),
		testutil.Email("2", model.UrgencyLow, false),
		testutil.Email("3", model.UrgencyMedium, true),
		testutil.Email("4", model.UrgencyHigh, false),
	}
}

type harness struct {
	fb       *testutil.FakeBackend
	m        Model
	notified []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fb: testutil.NewFakeBackend(t)}

	c, err := backend.NewClient(h.fb.Config(), "", nil)
	require.NoError(t, err)

	details := triage.NewDetails(triage.NotifierFunc(func(msg string) {
		h.notified = append(h.notified, msg)
	}))
	board := triage.NewBoard(triage.NewLoader(c, triage.NewEmailStore(), 20, nil), details)
	h.m = New(board, keys.DefaultKeyMap(), nil, 100, 40)
	return h
}

// deliver runs cmd and feeds every message back into the model.
func (h *harness) deliver(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range testutil.RunCmd(cmd) {
		var next tea.Cmd
		h.m, next = h.m.Update(msg)
		_ = next
	}
}

func (h *harness) press(t *testing.T, k string) {
	t.Helper()
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(testutil.Key(k))
	h.deliver(t, cmd)
}

func TestDashboard_InitialLoad(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmails(sampleSet())

	cmd := h.m.Init()
	assert.True(t, h.m.loading(), "indicator shown before the response")

	h.deliver(t, cmd)
	s := h.m.Snapshot()
	assert.False(t, s.Loading)
	assert.Len(t, s.View.Cards, 4)
	assert.Equal(t, model.Stats{Total: 4, Urgent: 2, Actionable: 2}, s.Stats)

	out := h.m.View()
	assert.Contains(t, out, "Total 4")
	assert.Contains(t, out, "[x] 0 All")
	assert.Empty(t, h.m.StatusText())
}

func TestDashboard_RejectedFilterIsLogged(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmails(sampleSet())
	h.deliver(t, h.m.Init())
	require.NoError(t, h.m.SetFilter(triage.FilterLow))

	core, logs := observer.New(zap.ErrorLevel)
	h.m.log = zap.New(core)

	h.m.applyFilter(triage.Filter("urgent"))
	assert.Equal(t, triage.FilterLow, h.m.Snapshot().Active, "active filter unchanged")

	entries := logs.FilterMessage("filter rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "urgent", entries[0].ContextMap()["filter"])
}

func TestDashboard_FilterKeys(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmails(sampleSet())
	h.deliver(t, h.m.Init())

	h.press(t, "1")
	assert.Equal(t, triage.FilterHigh, h.m.Snapshot().Active)
	assert.Len(t, h.m.Snapshot().View.Cards, 2)
	assert.Contains(t, h.m.View(), "[x] 1 High")

	h.press(t, "4")
	assert.Len(t, h.m.Snapshot().View.Cards, 2)

	h.press(t, "2")
	assert.Len(t, h.m.Snapshot().View.Cards, 1)

	h.press(t, "0")
	assert.Len(t, h.m.Snapshot().View.Cards, 4)
	assert.Len(t, h.fb.Requests(), 1, "filtering never refetches")
}

func TestDashboard_RefreshResetsFilter(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmails(sampleSet())
	h.deliver(t, h.m.Init())
	h.press(t, "1")

	h.fb.SetEmails(append(sampleSet(), testutil.Email("5", model.UrgencyLow, true)))
	h.press(t, "r")

	s := h.m.Snapshot()
	assert.Equal(t, triage.FilterAll, s.Active)
	assert.Len(t, s.View.Cards, 5)
}

func TestDashboard_LoadErrorBanner(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmailsError(500, "quota exceeded")
	h.deliver(t, h.m.Init())

	out := h.m.View()
	assert.Contains(t, out, "Error loading emails: quota exceeded")
	assert.Contains(t, out, triage.EmptyPlaceholder)
	assert.False(t, h.m.loading())
}

func TestDashboard_EmptySetShowsPlaceholder(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmails([]model.EmailRecord{})
	h.deliver(t, h.m.Init())

	assert.Contains(t, h.m.View(), "No emails found")
}

func TestDashboard_SelectAnnouncesID(t *testing.T) {
	h := newHarness(t)
	h.fb.SetEmails(sampleSet())
	h.deliver(t, h.m.Init())

	h.press(t, "enter")
	assert.Equal(t, []string{"Email details for ID: 1"}, h.notified)
}

func TestRenderCard(t *testing.T) {
	c := triage.Card{
		ID:             "9",
		ActionRequired: true,
		Subject:        "Quarterly review",
		Sender:         "Dana",
		Urgency:        model.UrgencyHigh,
		Severity:       "HIGH",
		Summary:        "Needs sign-off by Friday",
		Category:       "finance",
		Reason:         "deadline tomorrow",
		Meeting:        true,
		Confidence:     87,
	}
	out := renderCard(c, 80, false)

	for _, want := range []string{"HIGH", "Quarterly review", "Dana", "finance", "87%", "meeting", "Needs sign-off", "Why: deadline tomorrow"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, CardDelegate{}.Height(), lipgloss.Height(out))
}

func TestRenderCard_NoReasonLeavesLineBlank(t *testing.T) {
	out := renderCard(triage.Card{Subject: "Lunch", Severity: "LOW", Summary: "Friday lunch"}, 80, false)
	assert.Contains(t, out, "Friday lunch")
	assert.NotContains(t, out, "Why:")
	assert.Equal(t, CardDelegate{}.Height(), lipgloss.Height(out))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefghij", 5))
}
