package triage

import (
	"time"

	"github.com/nhle/inbox-triage/internal/model"
)

// Snapshot is everything the dashboard needs to draw itself.
type Snapshot struct {
	Stats      model.Stats
	Indicators []Indicator
	Active     Filter
	View       ListView
	Loading    bool

	// Error is the inline message from the last failed load, if any.
	Error string

	// UpdatedAt is when the shown set arrived; zero before the first load.
	UpdatedAt time.Time
}

// Board owns the dashboard state: the loader (and through it the store),
// the active filter, and the last load error.
type Board struct {
	loader  *Loader
	filter  FilterState
	details *Details
	errMsg  string
}

// NewBoard creates a Board over loader. details may be nil.
func NewBoard(loader *Loader, details *Details) *Board {
	return &Board{loader: loader, details: details}
}

// Loader returns the board's loader.
func (b *Board) Loader() *Loader {
	return b.loader
}

// ActiveFilter returns the active filter.
func (b *Board) ActiveFilter() Filter {
	return b.filter.Active()
}

// SetFilter changes the active filter. The store is not touched; only the
// visible subset changes.
func (b *Board) SetFilter(f Filter) error {
	return b.filter.Set(f)
}

// Apply folds a completed load into the board. A refresh returns the
// filter to "all"; otherwise the active filter is simply re-applied to
// the new set on the next Snapshot.
func (b *Board) Apply(o Outcome) {
	if o.Stale {
		return
	}
	if o.Err != nil {
		b.errMsg = o.Message
	} else if o.Applied {
		b.errMsg = ""
	}
	if o.Refresh {
		b.filter.Reset()
	}
}

// Select hands the id of a selected card to the details collaborator.
func (b *Board) Select(id string) {
	if b.details != nil && id != "" {
		b.details.Open(id)
	}
}

// Snapshot computes stats over the full set and renders the filtered view.
func (b *Board) Snapshot() Snapshot {
	store := b.loader.Store()
	all := store.All()
	active := b.filter.Active()

	return Snapshot{
		Stats:      ComputeStats(all),
		Indicators: b.filter.Indicators(),
		Active:     active,
		View:       Render(ApplyFilter(active, all)),
		Loading:    b.loader.Loading(),
		Error:      b.errMsg,
		UpdatedAt:  store.UpdatedAt(),
	}
}
