package triage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inbox-triage/internal/backend"
	"github.com/nhle/inbox-triage/internal/model"
	"github.com/nhle/inbox-triage/tests/testutil"
)

func newTestBoard(f *stubFetcher, n Notifier) *Board {
	var d *Details
	if n != nil {
		d = NewDetails(n)
	}
	return NewBoard(newTestLoader(f), d)
}

func TestBoard_SnapshotBeforeLoad(t *testing.T) {
	b := newTestBoard(&stubFetcher{}, nil)
	s := b.Snapshot()

	assert.Equal(t, FilterAll, s.Active)
	assert.True(t, s.View.Empty())
	assert.Equal(t, model.Stats{}, s.Stats)
	assert.False(t, s.Loading)
}

func TestBoard_StatsIgnoreActiveFilter(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet(), nil)
	b := newTestBoard(f, nil)
	b.Apply(b.Loader().Load(context.Background(), false))

	require.NoError(t, b.SetFilter(FilterMedium))
	s := b.Snapshot()

	assert.Len(t, s.View.Cards, 1)
	assert.Equal(t, model.Stats{Total: 5, Urgent: 2, Actionable: 3}, s.Stats)
}

func TestBoard_RefreshAfterFilterReturnsToAll(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet()[:2], nil)
	refreshed := append(sampleSet(), testutil.Email("6", model.UrgencyMedium, false))
	f.push(refreshed, nil)
	b := newTestBoard(f, nil)
	b.Apply(b.Loader().Load(context.Background(), false))

	require.NoError(t, b.SetFilter(FilterHigh))
	assert.Len(t, b.Snapshot().View.Cards, 1)

	b.Apply(b.Loader().Load(context.Background(), true))
	s := b.Snapshot()

	assert.Equal(t, FilterAll, s.Active)
	assert.Len(t, s.View.Cards, len(refreshed))
	for _, ind := range s.Indicators {
		assert.Equal(t, ind.Filter == FilterAll, ind.Active)
	}
}

func TestBoard_BackgroundLoadReappliesFilter(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet()[:1], nil)
	f.push(sampleSet(), nil)
	b := newTestBoard(f, nil)
	b.Apply(b.Loader().Load(context.Background(), false))

	require.NoError(t, b.SetFilter(FilterLow))
	assert.True(t, b.Snapshot().View.Empty())

	b.Apply(b.Loader().Load(context.Background(), false))
	s := b.Snapshot()

	assert.Equal(t, FilterLow, s.Active)
	assert.Equal(t, []string{"2", "5"}, cardIDs(s.View))
}

func TestBoard_FailedRefreshShowsErrorAndResetsFilter(t *testing.T) {
	f := &stubFetcher{}
	f.push(sampleSet(), nil)
	f.push(nil, &backend.ApplicationError{Op: "fetch emails", Reason: "quota exceeded"})
	f.push(sampleSet(), nil)
	b := newTestBoard(f, nil)
	b.Apply(b.Loader().Load(context.Background(), false))
	require.NoError(t, b.SetFilter(FilterAction))

	b.Apply(b.Loader().Load(context.Background(), true))
	s := b.Snapshot()
	assert.Contains(t, s.Error, "quota exceeded")
	assert.Equal(t, FilterAll, s.Active)
	assert.Len(t, s.View.Cards, 5, "previous set still shown")

	b.Apply(b.Loader().Load(context.Background(), false))
	assert.Empty(t, b.Snapshot().Error)
}

func TestBoard_StaleOutcomeIgnored(t *testing.T) {
	b := newTestBoard(&stubFetcher{}, nil)
	require.NoError(t, b.SetFilter(FilterHigh))

	b.Apply(Outcome{Stale: true, Refresh: true, Message: "ignored"})
	assert.Equal(t, FilterHigh, b.ActiveFilter())
	assert.Empty(t, b.Snapshot().Error)
}

func TestBoard_SelectNotifiesDetails(t *testing.T) {
	n := &recordingNotifier{}
	b := newTestBoard(&stubFetcher{}, n)

	b.Select("abc")
	b.Select("")
	assert.Equal(t, []string{"Email details for ID: abc"}, n.messages)
}

func cardIDs(v ListView) []string {
	out := make([]string, len(v.Cards))
	for i, c := range v.Cards {
		out[i] = c.ID
	}
	return out
}
