package triage

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/inbox-triage/internal/backend"
	"github.com/nhle/inbox-triage/internal/model"
)

const (
	// LoadErrorPrefix labels a failure the backend reported itself.
	LoadErrorPrefix = "Error loading emails: "

	// NetworkErrorMessage is shown when the backend could not be reached.
	NetworkErrorMessage = "Network error: unable to load emails. Please try again."
)

// EmailFetcher retrieves the current email set from the backend.
type EmailFetcher interface {
	FetchEmails(ctx context.Context, batchSize int) ([]model.EmailRecord, error)
}

// Ticket identifies one load. Only the most recently issued ticket may
// change the store; results carrying an older ticket are discarded.
type Ticket struct {
	seq uint64

	// Refresh is set when the load was asked to return the dashboard to
	// the unfiltered view once it completes.
	Refresh bool
}

// Result is the raw outcome of a fetch, produced off the UI loop.
type Result struct {
	Ticket  Ticket
	Records []model.EmailRecord
	Err     error
}

// Outcome tells the view what a completed load changed.
type Outcome struct {
	// Stale is set when a newer load superseded this one; nothing changed.
	Stale bool

	// Applied is set when the store now holds the fetched set.
	Applied bool

	// Refresh mirrors Ticket.Refresh.
	Refresh bool

	// Err is the failure, if any; Message is its user-facing text.
	Err     error
	Message string
}

// Loader fills an EmailStore from the backend and tracks the loading
// indicator.
type Loader struct {
	fetcher   EmailFetcher
	store     *EmailStore
	batchSize int
	log       *zap.Logger

	mu             sync.Mutex
	seq            uint64
	loading        bool
	pendingRefresh bool
}

// NewLoader creates a Loader that writes into store.
func NewLoader(
	fetcher EmailFetcher,
	store *EmailStore,
	batchSize int,
	log *zap.Logger,
) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		fetcher:   fetcher,
		store:     store,
		batchSize: batchSize,
		log:       log.Named("loader"),
	}
}

// Store returns the store this loader writes to.
func (l *Loader) Store() *EmailStore {
	return l.store
}

// SetBatchSize changes the batch size used by subsequent loads.
func (l *Loader) SetBatchSize(n int) {
	l.mu.Lock()
	l.batchSize = n
	l.mu.Unlock()
}

// Loading reports whether the latest load is still in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Begin starts a load and shows the loading indicator. A refresh request
// survives being superseded: the load that finally lands carries it.
func (l *Loader) Begin(refresh bool) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	l.loading = true
	if refresh {
		l.pendingRefresh = true
	}
	return Ticket{seq: l.seq, Refresh: l.pendingRefresh}
}

// Fetch performs the backend call for t. It does not touch the store and
// is safe to run outside the UI loop.
func (l *Loader) Fetch(ctx context.Context, t Ticket) Result {
	l.mu.Lock()
	batchSize := l.batchSize
	l.mu.Unlock()

	records, err := l.fetcher.FetchEmails(ctx, batchSize)
	return Result{Ticket: t, Records: records, Err: err}
}

// Complete applies a fetch result. The loading indicator is cleared on
// every exit path of the latest load, success or failure. On failure the
// store keeps its previous content.
func (l *Loader) Complete(res Result) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Ticket.seq != l.seq {
		l.log.Debug("discarding stale load",
			zap.Uint64("ticket", res.Ticket.seq),
			zap.Uint64("latest", l.seq),
		)
		return Outcome{Stale: true}
	}

	l.loading = false
	l.pendingRefresh = false
	out := Outcome{Refresh: res.Ticket.Refresh}

	if res.Err != nil {
		out.Err = res.Err
		out.Message = loadErrorMessage(res.Err)
		l.log.Warn("load failed", zap.Error(res.Err))
		return out
	}

	l.store.replace(res.Records)
	out.Applied = true
	l.log.Info("emails loaded", zap.Int("count", len(res.Records)))
	return out
}

// Load runs a whole load synchronously.
func (l *Loader) Load(ctx context.Context, refresh bool) Outcome {
	t := l.Begin(refresh)
	return l.Complete(l.Fetch(ctx, t))
}

// loadErrorMessage turns a load failure into the text shown to the user.
// Transport causes stay in the log.
func loadErrorMessage(err error) string {
	var appErr *backend.ApplicationError
	if errors.As(err, &appErr) {
		return LoadErrorPrefix + appErr.Reason
	}
	return NetworkErrorMessage
}
