package model

// Urgency is the backend-assigned severity of an email.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency normalizes a raw urgency value. Unknown values resolve to
// medium, which is what the classifier itself assigns when processing fails.
func ParseUrgency(s string) Urgency {
	switch Urgency(s) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return Urgency(s)
	default:
		return UrgencyMedium
	}
}

// EmailRecord is a single AI-annotated email as returned by the backend.
// Records are immutable on the client.
type EmailRecord struct {
	// ID is opaque and unique within a fetched set.
	ID string `json:"id"`

	Subject string `json:"subject"`
	Sender  string `json:"sender"`

	// AISummary is the one or two sentence summary produced by the classifier.
	AISummary string `json:"ai_summary"`

	// AICategory is the classifier's category (meeting, task, information, ...).
	AICategory string `json:"ai_category"`

	// AIReason is the classifier's short explanation for its verdict.
	AIReason string `json:"ai_reason"`

	AIUrgency Urgency `json:"ai_urgency"`

	// ActionRequired flags emails that demand a response or a task.
	ActionRequired bool `json:"action_required"`

	// Confidence is the classifier's certainty, always within [0, 1].
	Confidence float64 `json:"confidence"`

	// IsMeetingRequest is set when the classifier detected a meeting request.
	IsMeetingRequest bool `json:"is_meeting_request,omitempty"`
}

// Normalize returns a copy of r with urgency and confidence forced into
// their valid domains.
func (r EmailRecord) Normalize() EmailRecord {
	r.AIUrgency = ParseUrgency(string(r.AIUrgency))
	switch {
	case r.Confidence < 0:
		r.Confidence = 0
	case r.Confidence > 1:
		r.Confidence = 1
	}
	return r
}

// Stats are the inbox-wide aggregate counts.
type Stats struct {
	Total      int
	Urgent     int
	Actionable int
}
