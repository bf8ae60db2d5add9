package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		in   string
		want Urgency
	}{
		{"low", UrgencyLow},
		{"medium", UrgencyMedium},
		{"high", UrgencyHigh},
		{"", UrgencyMedium},
		{"CRITICAL", UrgencyMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseUrgency(tt.in), "ParseUrgency(%q)", tt.in)
	}
}

func TestEmailRecordNormalize(t *testing.T) {
	r := EmailRecord{AIUrgency: "urgent", Confidence: 1.4}.Normalize()
	assert.Equal(t, UrgencyMedium, r.AIUrgency)
	assert.Equal(t, 1.0, r.Confidence)

	r = EmailRecord{AIUrgency: UrgencyHigh, Confidence: -0.2}.Normalize()
	assert.Equal(t, UrgencyHigh, r.AIUrgency)
	assert.Equal(t, 0.0, r.Confidence)
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionRedirectEmails, ParseAction("redirect_emails"))
	assert.Equal(t, ActionNone, ParseAction(""))
	assert.Equal(t, ActionNone, ParseAction("show_meetings"))
}
