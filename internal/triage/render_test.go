package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/tests/testutil"
)

func TestRender_EmptyYieldsOnePlaceholder(t *testing.T) {
	for _, in := range [][]model.EmailRecord{nil, {}} {
		v := Render(in)
		assert.True(t, v.Empty())
		assert.Equal(t, EmptyPlaceholder, v.Placeholder)
		assert.Empty(t, v.Cards)
	}
}

func TestRender_OneCardPerRecord(t *testing.T) {
	set := sampleSet()
	v := Render(set)

	require.Len(t, v.Cards, len(set))
	assert.Empty(t, v.Placeholder)
	for i, c := range v.Cards {
		assert.Equal(t, set[i].ID, c.ID)
		assert.Equal(t, set[i].ActionRequired, c.ActionRequired)
	}
}

func TestRender_CardFields(t *testing.T) {
	r := testutil.Email("x", model.UrgencyHigh, true)
	r.Confidence = 0.873
	r.IsMeetingRequest = true

	c := Render([]model.EmailRecord{r}).Cards[0]
	assert.Equal(t, 87, c.Confidence)
	assert.Equal(t, "HIGH", c.Severity)
	assert.Equal(t, model.UrgencyHigh, c.Urgency)
	assert.Equal(t, "Sender", c.Sender)
	assert.Equal(t, r.Subject, c.Subject)
	assert.Equal(t, r.AISummary, c.Summary)
	assert.Equal(t, r.AICategory, c.Category)
	assert.Equal(t, r.AIReason, c.Reason)
	assert.True(t, c.ActionRequired)
	assert.True(t, c.Meeting)
}

func TestRender_IgnoresFilterState(t *testing.T) {
	set := sampleSet()
	var s FilterState
	require.NoError(t, s.Set(FilterHigh))

	assert.Len(t, Render(set).Cards, len(set))
}

func TestConfidencePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.873, 87},
		{0.875, 88},
		{0.7, 70},
		{1, 100},
		{1.2, 100},
		{-0.1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidencePercent(tt.in), "ConfidencePercent(%v)", tt.in)
	}
}

func TestSenderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice Smith <alice@example.com>", "Alice Smith"},
		{"bob@example.com", "bob@example.com"},
		{"=?UTF-8?Q?Ren=C3=A9e?= <renee@example.com>", "Renée"},
		{"not an address", "not an address"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SenderName(tt.in), "SenderName(%q)", tt.in)
	}
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.messages = append(n.messages, message)
}

func TestDetails_OpenPassesID(t *testing.T) {
	n := &recordingNotifier{}
	NewDetails(n).Open("msg-42")

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "msg-42")
}
