package constraint

import (
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/interval"
	"librarybookings/internal/models"
)

// Filter selects which intervals count as conflicts. Nil accepts all.
type Filter func(*interval.Interval) bool

// CoreOnly counts bookings and checkouts but not lead/trail buffers.
func CoreOnly(iv *interval.Interval) bool {
	return iv.Category().IsCore()
}

// Candidates is the set of items a date is checked against. With Selected
// set only that item matters; otherwise a date conflicts only when every
// item in Items is blocked.
type Candidates struct {
	Tree     *interval.Tree
	Items    []models.ID
	Selected models.ID
}

// AnyItem reports whether no specific item is selected.
func (c Candidates) AnyItem() bool {
	return c.Selected.IsZero()
}

// Empty reports whether there is nothing to book.
func (c Candidates) Empty() bool {
	return c.AnyItem() && len(c.Items) == 0
}

// ConflictAt checks the calendar day of t.
func (c Candidates) ConflictAt(t time.Time, filter Filter) bool {
	if c.Tree == nil {
		return false
	}
	instant := dates.StartOfDay(t)
	if !c.AnyItem() {
		return matches(c.Tree.Query(instant, c.Selected), filter)
	}
	return c.allBlocked(c.Tree.Query(instant, models.NoID), filter)
}

// ConflictIn checks the days [from, to]. For a selected item any conflict in
// the range counts. In any-item mode the range conflicts when at least one
// day has every item blocked.
func (c Candidates) ConflictIn(from, to time.Time, filter Filter) bool {
	if c.Tree == nil || dates.Before(to, from) {
		return false
	}
	if !c.AnyItem() {
		hits := c.Tree.QueryRange(dates.StartOfDay(from), dates.EndOfDay(to), c.Selected)
		return matches(hits, filter)
	}
	conflict := false
	dates.Each(from, to, func(d time.Time) bool {
		if c.allBlocked(c.Tree.Query(d, models.NoID), filter) {
			conflict = true
			return false
		}
		return true
	})
	return conflict
}

func (c Candidates) allBlocked(hits []*interval.Interval, filter Filter) bool {
	if len(c.Items) == 0 {
		return false
	}
	blocked := make(map[models.ID]struct{}, len(hits))
	for _, iv := range hits {
		if filter == nil || filter(iv) {
			blocked[iv.ItemID()] = struct{}{}
		}
	}
	for _, id := range c.Items {
		if _, ok := blocked[id]; !ok {
			return false
		}
	}
	return true
}

func matches(hits []*interval.Interval, filter Filter) bool {
	for _, iv := range hits {
		if filter == nil || filter(iv) {
			return true
		}
	}
	return false
}
