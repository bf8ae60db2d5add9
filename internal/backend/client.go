package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/nhle/inbox-triage/internal/model"
)

const (
	emailsPath = "/api/emails"
	chatPath   = "/chat"

	maxBodyBytes = 8 << 20
)

// Client is a thin HTTP client for the triage backend. It keeps a cookie
// jar because the chat endpoint tracks conversation state in a session
// cookie, and tags every request with an X-Request-ID for the log.
type Client struct {
	httpClient *http.Client
	log        *zap.Logger

	mu      sync.RWMutex
	baseURL string
	token   string
}

// NewClient creates a backend client. token may be empty; when set it is
// sent as a Bearer credential.
func NewClient(
	cfg model.BackendConfig,
	token string,
	log *zap.Logger,
) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		log: log.Named("backend"),
	}, nil
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Reconfigure points the client at a new backend root and token. Requests
// already in flight finish against the old values; the session cookie jar
// is kept.
func (c *Client) Reconfigure(baseURL, token string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.token = token
	c.mu.Unlock()
}

func (c *Client) endpoint() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.token
}

// emailsEnvelope is the body of GET /api/emails.
type emailsEnvelope struct {
	Success bool         `json:"success"`
	Emails  *[]wireEmail `json:"emails"`
	Error   string       `json:"error"`
}

// wireEmail accepts ids encoded either as JSON strings or numbers.
type wireEmail struct {
	ID json.RawMessage `json:"id"`
	model.EmailRecord
}

func (w wireEmail) record() model.EmailRecord {
	r := w.EmailRecord
	r.ID = rawID(w.ID)
	return r.Normalize()
}

// rawID renders an id as text. A missing or null id is empty.
func rawID(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Message string `json:"message"`
}

// chatReply is the body returned by POST /chat.
type chatReply struct {
	Reply  *string `json:"reply"`
	Action string  `json:"action"`
}

// FetchEmails retrieves the current set of annotated emails. batchSize is
// sent as the batch_size query parameter when positive.
func (c *Client) FetchEmails(
	ctx context.Context,
	batchSize int,
) ([]model.EmailRecord, error) {
	const op = "fetch emails"

	path := emailsPath
	if batchSize > 0 {
		q := url.Values{}
		q.Set("batch_size", strconv.Itoa(batchSize))
		path += "?" + q.Encode()
	}

	var env emailsEnvelope
	status, err := c.do(ctx, http.MethodGet, path, nil, &env)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if !env.Success {
		if env.Error == "" {
			return nil, &TransportError{
				Op:  op,
				Err: fmt.Errorf("status %d without error reason: %w", status, ErrMissingField),
			}
		}
		return nil, &ApplicationError{Op: op, Status: status, Reason: env.Error}
	}

	if env.Emails == nil {
		return nil, &TransportError{
			Op:  op,
			Err: fmt.Errorf("emails: %w", ErrMissingField),
		}
	}

	records := make([]model.EmailRecord, 0, len(*env.Emails))
	for i, w := range *env.Emails {
		r := w.record()
		if r.ID == "" {
			c.log.Warn("email without id",
				zap.Int("index", i),
				zap.String("subject", r.Subject),
			)
		}
		records = append(records, r)
	}
	return records, nil
}

// SendChat posts a user message and returns the assistant's reply.
func (c *Client) SendChat(
	ctx context.Context,
	message string,
) (model.ActionResponse, error) {
	const op = "send chat"

	var reply chatReply
	status, err := c.do(ctx, http.MethodPost, chatPath, chatRequest{Message: message}, &reply)
	if err != nil {
		return model.ActionResponse{}, &TransportError{Op: op, Err: err}
	}
	if status < 200 || status >= 300 {
		return model.ActionResponse{}, &TransportError{
			Op:  op,
			Err: fmt.Errorf("unexpected status %d", status),
		}
	}
	if reply.Reply == nil {
		return model.ActionResponse{}, &TransportError{
			Op:  op,
			Err: fmt.Errorf("reply: %w", ErrMissingField),
		}
	}

	return model.ActionResponse{
		Reply:  *reply.Reply,
		Action: model.ParseAction(reply.Action),
	}, nil
}

// do builds the request, sends it, and decodes the JSON body into result.
// A non-2xx status is not an error by itself; the returned status lets the
// caller decide, since the backend reports failures inside the envelope.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	baseURL, token := c.endpoint()
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return 0, fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("reading response failed", zap.Error(err))
		return resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	log.Debug("request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(respBody)),
	)

	if err := json.Unmarshal(respBody, result); err != nil {
		log.Warn("decoding response failed",
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return resp.StatusCode, fmt.Errorf(
			"decoding response (%d): %w", resp.StatusCode, err,
		)
	}

	return resp.StatusCode, nil
}
