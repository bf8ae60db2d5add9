package chat

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/inbox-triage/internal/model"
)

// FailureMessage is the assistant entry appended when an exchange fails.
const FailureMessage = "Sorry, something went wrong. Please try again."

// DefaultRedirectDelay is how long a redirect waits so the reply can be read.
const DefaultRedirectDelay = 2 * time.Second

// Sender delivers a user message to the assistant backend.
type Sender interface {
	SendChat(ctx context.Context, message string) (model.ActionResponse, error)
}

// Reply is the result of one backend exchange.
type Reply struct {
	Message  string
	Response model.ActionResponse
	Err      error
}

// Effect is the side effect a received reply asks the UI to perform.
type Effect struct {
	// Redirect asks for navigation to the email dashboard once After has
	// elapsed. Once scheduled it is not cancelled.
	Redirect bool
	After    time.Duration
}

// Dispatcher drives one chat session. Submit and Receive run on the UI
// loop; Call is the only blocking step and runs inside a command.
type Dispatcher struct {
	sender        Sender
	transcript    *Transcript
	redirectDelay time.Duration
	log           *zap.Logger
}

// NewDispatcher creates a Dispatcher with an empty transcript. A
// non-positive redirectDelay falls back to DefaultRedirectDelay.
func NewDispatcher(sender Sender, redirectDelay time.Duration, log *zap.Logger) *Dispatcher {
	if redirectDelay <= 0 {
		redirectDelay = DefaultRedirectDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		sender:        sender,
		transcript:    NewTranscript(),
		redirectDelay: redirectDelay,
		log:           log.Named("chat"),
	}
}

// Transcript returns the session transcript.
func (d *Dispatcher) Transcript() *Transcript {
	return d.transcript
}

// RedirectDelay returns the delay applied before a redirect.
func (d *Dispatcher) RedirectDelay() time.Duration {
	return d.redirectDelay
}

// SetRedirectDelay changes the delay for redirects received from now on.
// Redirects already scheduled keep their timer.
func (d *Dispatcher) SetRedirectDelay(delay time.Duration) {
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	d.redirectDelay = delay
}

// Submit records a user message. Blank input is ignored and returns false.
func (d *Dispatcher) Submit(text string) (string, bool) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return "", false
	}
	d.transcript.Append(model.RoleUser, msg, false)
	return msg, true
}

// Call sends msg to the backend.
func (d *Dispatcher) Call(ctx context.Context, msg string) Reply {
	resp, err := d.sender.SendChat(ctx, msg)
	return Reply{Message: msg, Response: resp, Err: err}
}

// Receive appends the assistant's side of an exchange and reports the
// effect the reply asks for. Only a redirect_emails action has one.
func (d *Dispatcher) Receive(r Reply) Effect {
	if r.Err != nil {
		d.log.Warn("chat exchange failed", zap.Error(r.Err))
		d.transcript.Append(model.RoleAssistant, FailureMessage, true)
		return Effect{}
	}

	d.transcript.Append(model.RoleAssistant, r.Response.Reply, false)
	if r.Response.Action != model.ActionRedirectEmails {
		return Effect{}
	}

	d.log.Debug("redirect scheduled", zap.Duration("after", d.redirectDelay))
	return Effect{Redirect: true, After: d.redirectDelay}
}

// Send runs a whole exchange synchronously.
func (d *Dispatcher) Send(ctx context.Context, text string) (Effect, bool) {
	msg, ok := d.Submit(text)
	if !ok {
		return Effect{}, false
	}
	return d.Receive(d.Call(ctx, msg)), true
}
