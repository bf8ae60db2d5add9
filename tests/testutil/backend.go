package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nhle/inbox-triage/internal/model"
)

// FakeBackend is an in-process stand-in for the triage backend. Responses
// can be swapped between calls; every received request is recorded.
type FakeBackend struct {
	Server *httptest.Server

	mu           sync.Mutex
	emailsStatus int
	emailsBody   interface{}
	chatStatus   int
	chatBody     interface{}
	requests     []*http.Request
	chatMessages []string
}

// NewFakeBackend starts a fake backend that serves an empty, successful
// email set and an empty chat reply until told otherwise. It shuts down
// when the test completes.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		emailsStatus: http.StatusOK,
		emailsBody:   map[string]interface{}{"success": true, "emails": []model.EmailRecord{}},
		chatStatus:   http.StatusOK,
		chatBody:     map[string]interface{}{"reply": ""},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/emails", fb.handleEmails)
	mux.HandleFunc("/chat", fb.handleChat)

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Server.Close)

	return fb
}

// URL returns the base URL of the fake backend.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// Config returns a backend config pointing at the fake.
func (fb *FakeBackend) Config() model.BackendConfig {
	return model.BackendConfig{
		BaseURL:    fb.Server.URL,
		TimeoutSec: 5,
		BatchSize:  20,
	}
}

// SetEmails makes GET /api/emails succeed with the given records.
func (fb *FakeBackend) SetEmails(records []model.EmailRecord) {
	fb.SetEmailsResponse(http.StatusOK, map[string]interface{}{
		"success": true,
		"emails":  records,
	})
}

// SetEmailsError makes GET /api/emails fail with success:false.
func (fb *FakeBackend) SetEmailsError(status int, reason string) {
	fb.SetEmailsResponse(status, map[string]interface{}{
		"success": false,
		"error":   reason,
	})
}

// SetEmailsResponse sets a raw status and body for GET /api/emails. A
// string body is written verbatim; anything else is JSON encoded.
func (fb *FakeBackend) SetEmailsResponse(status int, body interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.emailsStatus = status
	fb.emailsBody = body
}

// SetChatReply makes POST /chat answer with reply and action. An empty
// action is omitted from the body.
func (fb *FakeBackend) SetChatReply(reply, action string) {
	body := map[string]interface{}{"reply": reply}
	if action != "" {
		body["action"] = action
	}
	fb.SetChatResponse(http.StatusOK, body)
}

// SetChatResponse sets a raw status and body for POST /chat.
func (fb *FakeBackend) SetChatResponse(status int, body interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.chatStatus = status
	fb.chatBody = body
}

// Requests returns a copy of every request received so far.
func (fb *FakeBackend) Requests() []*http.Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]*http.Request, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// ChatMessages returns the message field of every chat request received.
func (fb *FakeBackend) ChatMessages() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, len(fb.chatMessages))
	copy(out, fb.chatMessages)
	return out
}

func (fb *FakeBackend) handleEmails(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.requests = append(fb.requests, r.Clone(r.Context()))
	status, body := fb.emailsStatus, fb.emailsBody
	fb.mu.Unlock()

	writeBody(w, status, body)
}

func (fb *FakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &req)

	fb.mu.Lock()
	fb.requests = append(fb.requests, r.Clone(r.Context()))
	fb.chatMessages = append(fb.chatMessages, req.Message)
	status, body := fb.chatStatus, fb.chatBody
	fb.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "session", Value: "fake-session", Path: "/"})
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body interface{}) {
	if s, ok := body.(string); ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, s)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Email builds a record with the fields tests usually care about.
func Email(id string, urgency model.Urgency, actionRequired bool) model.EmailRecord {
	return model.EmailRecord{
		ID:             id,
		Subject:        "Subject " + id,
		Sender:         "Sender <sender-" + id + "@example.com>",
		AISummary:      "Summary of " + id,
		AICategory:     "information",
		AIReason:       "Rule-based categorization",
		AIUrgency:      urgency,
		ActionRequired: actionRequired,
		Confidence:     0.7,
	}
}
