package triage

import "fmt"

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// Details is the collaborator a card selection hands its id to. The full
// details view does not exist yet; selection only announces the id.
type Details struct {
	notifier Notifier
}

// NewDetails creates a Details that reports through n.
func NewDetails(n Notifier) *Details {
	return &Details{notifier: n}
}

// Open signals that the email with the given id was selected.
func (d *Details) Open(id string) {
	d.notifier.Notify(fmt.Sprintf("Email details for ID: %s", id))
}
