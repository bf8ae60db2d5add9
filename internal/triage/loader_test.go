package triage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inbox-triage/internal/backend"
	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/tests/testutil"
)

// stubFetcher returns queued responses in order.
type stubFetcher struct {
	records    [][]model.EmailRecord
	errs       []error
	batchSizes []int
}

func (f *stubFetcher) push(records []model.EmailRecord, err error) {
	f.records = append(f.records, records)
	f.errs = append(f.errs, err)
}

func (f *stubFetcher) FetchEmails(_ context.Context, batchSize int) ([]model.EmailRecord, error) {
	f.batchSizes = append(f.batchSizes, batchSize)
	if len(f.records) == 0 {
		return nil, errors.New("no response queued")
	}
	r, err := f.records[0], f.errs[0]
	f.records, f.errs = f.records[1:], f.errs[1:]
	return r, err
}

func newTestLoader(f EmailFetcher) *Loader {
	return NewLoader(f, NewEmailStore(), 20, nil)
}

func TestLoader_SuccessReplacesStore(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet(), nil)
	l := newTestLoader(f)

	out := l.Load(context.Background(), false)
	assert.True(t, out.Applied)
	assert.NoError(t, out.Err)
	assert.False(t, l.Loading())
	assert.True(t, l.Store().Loaded())
	assert.Equal(t, sampleSet(), l.Store().All())
	assert.Equal(t, []int{20}, f.batchSizes)
}

func TestLoader_UpdatedAtTracksSuccessfulLoads(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet(), nil)
	f.push(nil, &backend.TransportError{Op: "fetch emails", Err: errors.New("timeout")})
	l := newTestLoader(f)

	at := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	l.Store().now = func() time.Time { return at }
	assert.True(t, l.Store().UpdatedAt().IsZero())

	l.Load(context.Background(), false)
	assert.Equal(t, at, l.Store().UpdatedAt())

	l.Store().now = func() time.Time { return at.Add(time.Hour) }
	l.Load(context.Background(), false)
	assert.Equal(t, at, l.Store().UpdatedAt(), "a failed load keeps the old timestamp")
}

func TestLoader_LoadingShownUntilComplete(t *testing.T) {
	f := &stubFetcher{}
	f.push(nil, &backend.TransportError{Op: "fetch emails", Err: errors.New("dial tcp: refused")})
	l := newTestLoader(f)

	ticket := l.Begin(false)
	assert.True(t, l.Loading())

	res := l.Fetch(context.Background(), ticket)
	assert.True(t, l.Loading())

	l.Complete(res)
	assert.False(t, l.Loading(), "indicator must clear on failure too")
}

func TestLoader_ApplicationErrorKeepsStore(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet()[:2], nil)
	f.push(nil, &backend.ApplicationError{Op: "fetch emails", Status: 500, Reason: "quota exceeded"})
	l := newTestLoader(f)

	l.Load(context.Background(), false)
	out := l.Load(context.Background(), false)

	require.Error(t, out.Err)
	assert.False(t, out.Applied)
	assert.Equal(t, "Error loading emails: quota exceeded", out.Message)
	assert.Equal(t, sampleSet()[:2], l.Store().All())
}

func TestLoader_TransportErrorIsGeneric(t *testing.T) {
	f := &stubFetcher{}
	cause := &backend.TransportError{Op: "fetch emails", Err: errors.New("lookup backend: no such host")}
	f.push(nil, fmt.Errorf("wrapped: %w", cause))
	l := newTestLoader(f)

	out := l.Load(context.Background(), false)
	assert.Equal(t, NetworkErrorMessage, out.Message)
	assert.NotContains(t, out.Message, "no such host")
	assert.False(t, l.Store().Loaded())
	assert.Empty(t, l.Store().All())
}

func TestLoader_StaleResultDiscarded(t *testing.T) {
	f := &stubFetcher{}
	older := []model.EmailRecord{testutil.Email("old", model.UrgencyLow, false)}
	newer := []model.EmailRecord{testutil.Email("new", model.UrgencyHigh, true)}
	l := newTestLoader(f)

	first := l.Begin(false)
	second := l.Begin(false)

	out := l.Complete(Result{Ticket: second, Records: newer})
	assert.True(t, out.Applied)

	out = l.Complete(Result{Ticket: first, Records: older})
	assert.True(t, out.Stale)
	assert.Equal(t, newer, l.Store().All())
}

func TestLoader_StaleCompletionKeepsIndicator(t *testing.T) {
	l := newTestLoader(&stubFetcher{})

	first := l.Begin(false)
	_ = l.Begin(false)

	l.Complete(Result{Ticket: first})
	assert.True(t, l.Loading(), "newer load still in flight")
}

func TestLoader_RefreshSurvivesSupersession(t *testing.T) {
	l := newTestLoader(&stubFetcher{})

	refresh := l.Begin(true)
	assert.True(t, refresh.Refresh)

	background := l.Begin(false)
	assert.True(t, background.Refresh)

	out := l.Complete(Result{Ticket: background})
	assert.True(t, out.Refresh)

	next := l.Begin(false)
	assert.False(t, next.Refresh)
}

func TestLoader_SetBatchSize(t *testing.T) {
	f := &stubFetcher{}
	f.push(nil, nil)
	l := newTestLoader(f)
	l.SetBatchSize(75)

	l.Load(context.Background(), false)
	assert.Equal(t, []int{75}, f.batchSizes)
}

func TestLoader_AgainstFakeBackend(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetEmailsError(500, "quota exceeded")
	c, err := backend.NewClient(fb.Config(), "", nil)
	require.NoError(t, err)

	l := NewLoader(c, NewEmailStore(), 20, nil)
	out := l.Load(context.Background(), false)

	assert.Contains(t, out.Message, "quota exceeded")
	assert.Empty(t, l.Store().All())
	assert.False(t, l.Loading())
}
