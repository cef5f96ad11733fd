// Package engine is the rating aggregation and filter core. Every function
// here is a pure computation over a materialized rating snapshot: no I/O, no
// shared state, safe for concurrent callers.
package engine

import (
	"fmt"
	"time"

	"github.com/slurp-civic/slurp-api/internal/domain"
)

// TimeRange bounds how far back a matching record's timestamp may reach.
type TimeRange string

const (
	TimeRangeAll         TimeRange = "ALL"
	TimeRangeLastWeek    TimeRange = "LAST_WEEK"
	TimeRangeLastMonth   TimeRange = "LAST_MONTH"
	TimeRangeLastQuarter TimeRange = "LAST_QUARTER"
	TimeRangeLastYear    TimeRange = "LAST_YEAR"
)

// Days returns the day count a range maps to; ok is false for ALL.
func (tr TimeRange) Days() (int, bool) {
	switch tr {
	case TimeRangeLastWeek:
		return 7, true
	case TimeRangeLastMonth:
		return 30, true
	case TimeRangeLastQuarter:
		return 90, true
	case TimeRangeLastYear:
		return 365, true
	default:
		return 0, false
	}
}

// ParseTimeRange converts a wire value into a TimeRange.
func ParseTimeRange(raw string) (TimeRange, error) {
	switch TimeRange(raw) {
	case TimeRangeAll, TimeRangeLastWeek, TimeRangeLastMonth, TimeRangeLastQuarter, TimeRangeLastYear:
		return TimeRange(raw), nil
	default:
		return "", fmt.Errorf("unknown time range %q", raw)
	}
}

// FilterState is the caller-owned selection across the seven filter
// dimensions plus the rating and time bounds. An empty dimension field means
// unset and imposes no constraint.
//
// Mutate selections through the Select methods only: selecting a parent
// dimension clears its dependents in the same call, so a stale child
// selection is never observable. A FilterState is owned by exactly one
// caller; callers that share one must serialize mutate-then-recompute
// themselves.
type FilterState struct {
	Governorate       string
	Delegation        string
	MacroSector       string
	MesoSector        string
	IndicatorCategory string
	IndicatorType     string
	ActorName         string
	TimeRange         TimeRange
	MinRating         float64
	MaxRating         float64
}

// NewFilterState returns the no-op filter: nothing selected, full rating
// range, all time.
func NewFilterState() FilterState {
	return FilterState{
		TimeRange: TimeRangeAll,
		MinRating: 0,
		MaxRating: 5,
	}
}

// SelectGovernorate sets the governorate and clears the dependent delegation.
func (f *FilterState) SelectGovernorate(v string) {
	f.Governorate = v
	f.Delegation = ""
}

// SelectDelegation sets the delegation selection.
func (f *FilterState) SelectDelegation(v string) {
	f.Delegation = v
}

// SelectMacroSector sets the macro-sector and clears the dependent
// meso-sector along with the actor selection underneath it.
func (f *FilterState) SelectMacroSector(v string) {
	f.MacroSector = v
	f.MesoSector = ""
	f.ActorName = ""
}

// SelectMesoSector sets the meso-sector and clears the dependent actor.
func (f *FilterState) SelectMesoSector(v string) {
	f.MesoSector = v
	f.ActorName = ""
}

// SelectIndicatorCategory sets the category and clears the dependent type.
func (f *FilterState) SelectIndicatorCategory(v string) {
	f.IndicatorCategory = v
	f.IndicatorType = ""
}

// SelectIndicatorType sets the indicator type selection.
func (f *FilterState) SelectIndicatorType(v string) {
	f.IndicatorType = v
}

// SelectActor sets the actor selection.
func (f *FilterState) SelectActor(v string) {
	f.ActorName = v
}

// SetTimeRange sets the time bound.
func (f *FilterState) SetTimeRange(tr TimeRange) {
	f.TimeRange = tr
}

// SetRatingRange sets the inclusive rating bounds.
func (f *FilterState) SetRatingRange(min, max float64) {
	f.MinRating = min
	f.MaxRating = max
}

// Matches reports whether a record satisfies the filter at the given instant.
// Every set dimension must equal the record's field exactly, the rating must
// lie within [MinRating, MaxRating], and for a bounded time range the record
// must be strictly newer than now minus the range's day count. Total over any
// well-formed record.
func Matches(r domain.Rating, f FilterState, now time.Time) bool {
	if f.Governorate != "" && r.Governorate != f.Governorate {
		return false
	}
	if f.Delegation != "" && r.Delegation != f.Delegation {
		return false
	}
	if f.MacroSector != "" && r.MacroSector != f.MacroSector {
		return false
	}
	if f.MesoSector != "" && r.MesoSector != f.MesoSector {
		return false
	}
	if f.IndicatorCategory != "" && r.IndicatorCategory != f.IndicatorCategory {
		return false
	}
	if f.IndicatorType != "" && r.IndicatorType != f.IndicatorType {
		return false
	}
	if f.ActorName != "" && r.ActorName != f.ActorName {
		return false
	}
	if r.Rating < f.MinRating || r.Rating > f.MaxRating {
		return false
	}
	if days, ok := f.TimeRange.Days(); ok {
		cutoff := now.AddDate(0, 0, -days)
		if !r.SubmittedAt.After(cutoff) {
			return false
		}
	}
	return true
}

// Apply returns the subset of records matching the filter, preserving input
// order.
func Apply(records []domain.Rating, f FilterState, now time.Time) []domain.Rating {
	matched := make([]domain.Rating, 0, len(records))
	for _, r := range records {
		if Matches(r, f, now) {
			matched = append(matched, r)
		}
	}
	return matched
}
