package model

import "time"

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatEntry is one line of the chat transcript.
type ChatEntry struct {
	ID   string
	Role Role
	Text string
	At   time.Time

	// Failed marks assistant entries that report a failed exchange.
	Failed bool
}

// Action is a structured directive attached to a chat reply.
type Action string

const (
	ActionNone           Action = ""
	ActionRedirectEmails Action = "redirect_emails"
)

// ParseAction maps a raw action value to a known Action. Anything other
// than a recognized directive is treated as absent.
func ParseAction(s string) Action {
	if Action(s) == ActionRedirectEmails {
		return ActionRedirectEmails
	}
	return ActionNone
}

// ActionResponse is the backend's reply to a chat message.
type ActionResponse struct {
	Reply  string
	Action Action
}
