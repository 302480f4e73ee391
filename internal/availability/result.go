package availability

import (
	"time"

	"librarybookings/internal/constraint"
	"librarybookings/internal/dates"
	"librarybookings/internal/interval"
	"librarybookings/internal/models"
	"librarybookings/internal/sweep"
)

// ReasonAliases renames sweep tags to the names published in
// UnavailableByDate.
var ReasonAliases = map[sweep.Reason]sweep.Reason{
	sweep.ReasonCore: sweep.ReasonBooking,
}

// ApplyAliases rewrites the reason tags of m in place and returns it.
func ApplyAliases(m sweep.Map) sweep.Map {
	for _, byItem := range m {
		for _, set := range byItem {
			for from, to := range ReasonAliases {
				if set.Has(from) {
					delete(set, from)
					set.Add(to)
				}
			}
		}
	}
	return m
}

// Result is the outcome of one computation.
type Result struct {
	// ID correlates log lines of this computation.
	ID string `json:"id"`
	// Disable reports whether a day cannot be chosen. It reuses the index
	// built by Compute and is safe to call repeatedly.
	Disable           func(time.Time) bool  `json:"-"`
	UnavailableByDate sweep.Map             `json:"unavailableByDate"`
	Window            Window                `json:"window"`
	Rules             models.EffectiveRules `json:"-"`
	Strategy          constraint.Strategy   `json:"-"`
	Stats             interval.BuildStats   `json:"stats"`
	// Excluded counts intervals dropped for the booking being edited.
	Excluded int `json:"excluded"`

	tree  *interval.Tree
	items []models.ID
	loc   *time.Location
}

// Highlighting returns the range styling for a start date, or nil.
func (r *Result) Highlighting(start time.Time) *constraint.Highlighting {
	return r.Strategy.Highlighting(dates.DayIn(start, r.loc), r.Rules)
}

// Tree returns the interval index the computation used.
func (r *Result) Tree() *interval.Tree {
	return r.tree
}

// Items returns the candidate item ids.
func (r *Result) Items() []models.ID {
	return r.items
}

// Statistics summarizes the window.
func (r *Result) Statistics() sweep.Stats {
	return sweep.Statistics(r.tree.All(), r.Window.Start, r.Window.End, r.items)
}

// Gaps lists free spans of item within the window, largest first.
func (r *Result) Gaps(item models.ID, minDays int) []sweep.Gap {
	return sweep.FindGaps(r.tree.All(), item, r.Window.Start, r.Window.End, minDays)
}

// DisabledDays returns every disabled day of the window.
func (r *Result) DisabledDays() []time.Time {
	var out []time.Time
	for d := r.Window.Start; !d.After(r.Window.End); d = d.AddDate(0, 0, 1) {
		if r.Disable(d) {
			out = append(out, d)
		}
	}
	return out
}
