package triage

import (
	"fmt"

	"github.com/nhle/inbox-triage/internal/model"
)

// Filter is a dashboard filter category.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterHigh   Filter = "high"
	FilterMedium Filter = "medium"
	FilterLow    Filter = "low"
	FilterAction Filter = "action"
)

// Filters lists every category in display order.
var Filters = []Filter{FilterAll, FilterHigh, FilterMedium, FilterLow, FilterAction}

// ParseFilter resolves a category name.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Label returns the filter's display name.
func (f Filter) Label() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterHigh:
		return "High"
	case FilterMedium:
		return "Medium"
	case FilterLow:
		return "Low"
	case FilterAction:
		return "Action Required"
	default:
		return string(f)
	}
}

// Indicator is the selected state of one filter button.
type Indicator struct {
	Filter Filter
	Active bool
}

// FilterState tracks the single active filter. The zero value has "all"
// active.
type FilterState struct {
	active Filter
}

// Active returns the active filter.
func (s *FilterState) Active() Filter {
	if s.active == "" {
		return FilterAll
	}
	return s.active
}

// Set makes f the only active filter. Unknown categories are rejected and
// leave the state untouched.
func (s *FilterState) Set(f Filter) error {
	if _, err := ParseFilter(string(f)); err != nil {
		return err
	}
	s.active = f
	return nil
}

// Reset returns the state to "all".
func (s *FilterState) Reset() {
	s.active = FilterAll
}

// Indicators returns one indicator per filter, derived from the active
// filter so exactly one is ever marked.
func (s *FilterState) Indicators() []Indicator {
	active := s.Active()
	out := make([]Indicator, len(Filters))
	for i, f := range Filters {
		out[i] = Indicator{Filter: f, Active: f == active}
	}
	return out
}

// ApplyFilter returns the subsequence of set matching f, in set order.
// set itself is never modified.
func ApplyFilter(f Filter, set []model.EmailRecord) []model.EmailRecord {
	out := make([]model.EmailRecord, 0, len(set))
	for _, r := range set {
		if matches(f, r) {
			out = append(out, r)
		}
	}
	return out
}

func matches(f Filter, r model.EmailRecord) bool {
	switch f {
	case FilterAll:
		return true
	case FilterAction:
		return r.ActionRequired
	case FilterHigh, FilterMedium, FilterLow:
		return r.AIUrgency == model.Urgency(f)
	default:
		return false
	}
}
