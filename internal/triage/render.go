package triage

import (
	"math"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/inbox-triage/internal/model"
)

// EmptyPlaceholder is shown instead of cards when there is nothing to list.
const EmptyPlaceholder = "No emails found"

// Card describes one email as the dashboard should show it.
type Card struct {
	ID             string
	ActionRequired bool
	Subject        string
	Sender         string
	Urgency        model.Urgency
	Severity       string
	Summary        string
	Category       string
	Reason         string
	Meeting        bool

	// Confidence is the classifier confidence as a whole percentage.
	Confidence int
}

// ListView is the rendered form of an email sequence: either a single
// placeholder or one card per record, never both.
type ListView struct {
	Placeholder string
	Cards       []Card
}

// Empty reports whether the view is the placeholder.
func (v ListView) Empty() bool {
	return len(v.Cards) == 0
}

// Render projects records into a ListView. It depends on nothing but its
// input.
func Render(records []model.EmailRecord) ListView {
	if len(records) == 0 {
		return ListView{Placeholder: EmptyPlaceholder}
	}

	cards := make([]Card, len(records))
	for i, r := range records {
		cards[i] = renderCard(r)
	}
	return ListView{Cards: cards}
}

func renderCard(r model.EmailRecord) Card {
	urgency := model.ParseUrgency(string(r.AIUrgency))
	return Card{
		ID:             r.ID,
		ActionRequired: r.ActionRequired,
		Subject:        r.Subject,
		Sender:         SenderName(r.Sender),
		Urgency:        urgency,
		Severity:       strings.ToUpper(string(urgency)),
		Summary:        r.AISummary,
		Category:       r.AICategory,
		Reason:         r.AIReason,
		Meeting:        r.IsMeetingRequest,
		Confidence:     ConfidencePercent(r.Confidence),
	}
}

// ConfidencePercent returns round(confidence*100), kept within 0..100.
func ConfidencePercent(confidence float64) int {
	pct := int(math.Round(confidence * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// SenderName returns the display name of an RFC 5322 sender, decoding
// encoded words. It falls back to the address, then to the raw string.
func SenderName(sender string) string {
	addr, err := mail.ParseAddress(sender)
	if err != nil {
		return strings.TrimSpace(sender)
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}
