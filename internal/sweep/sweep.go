// Package sweep aggregates interval sets into per-day unavailability using a
// sweep line over start and end events.
package sweep

import (
	"encoding/json"
	"sort"
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/interval"
	"librarybookings/internal/models"
)

// Reason tags why an item is unavailable on a day.
type Reason string

const (
	ReasonCore     Reason = "core"
	ReasonBooking  Reason = "booking"
	ReasonCheckout Reason = "checkout"
	ReasonLead     Reason = "lead"
	ReasonTrail    Reason = "trail"
)

// ReasonFor maps an interval category to the tag recorded by the sweep.
// Bookings are tagged core; query spans have no tag.
func ReasonFor(c interval.Category) (Reason, bool) {
	switch c {
	case interval.CategoryBooking:
		return ReasonCore, true
	case interval.CategoryCheckout:
		return ReasonCheckout, true
	case interval.CategoryLead:
		return ReasonLead, true
	case interval.CategoryTrail:
		return ReasonTrail, true
	default:
		return "", false
	}
}

// ReasonSet is a set of reason tags.
type ReasonSet map[Reason]struct{}

// Add inserts r.
func (s ReasonSet) Add(r Reason) {
	s[r] = struct{}{}
}

// Has reports whether r is in the set.
func (s ReasonSet) Has(r Reason) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the tags in lexical order.
func (s ReasonSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array of tags.
func (s ReasonSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Map is keyed by YYYY-MM-DD, then by item id. An item appears under a day
// only when one of its intervals covers that day.
type Map map[string]map[models.ID]ReasonSet

// Blocked reports whether item has any reason recorded on day.
func (m Map) Blocked(day time.Time, item models.ID) bool {
	return len(m[dates.Key(day)][item]) > 0
}

type event struct {
	at    time.Time
	start bool
	iv    *interval.Interval
}

// Process computes the unavailability map for [viewStart, viewEnd]. Every day
// of the window is present as a key. When itemIDs is non-empty only those
// items are recorded.
func Process(intervals []*interval.Interval, viewStart, viewEnd time.Time, itemIDs []models.ID) Map {
	out := make(Map)
	wanted := itemFilter(itemIDs)
	days(intervals, viewStart, viewEnd, func(day time.Time, active []*interval.Interval) {
		key := dates.Key(day)
		byItem := make(map[models.ID]ReasonSet)
		for _, iv := range active {
			if wanted != nil {
				if _, ok := wanted[iv.ItemID()]; !ok {
					continue
				}
			}
			reason, ok := ReasonFor(iv.Category())
			if !ok {
				continue
			}
			set := byItem[iv.ItemID()]
			if set == nil {
				set = make(ReasonSet)
				byItem[iv.ItemID()] = set
			}
			set.Add(reason)
		}
		out[key] = byItem
	})
	return out
}

// days runs the sweep and calls fn once per day of the window with the
// intervals that actually cover that day.
func days(intervals []*interval.Interval, viewStart, viewEnd time.Time, fn func(day time.Time, active []*interval.Interval)) {
	first := dates.StartOfDay(viewStart)
	last := dates.StartOfDay(viewEnd)
	if last.Before(first) {
		return
	}
	horizon := last.AddDate(0, 0, 1)

	events := make([]event, 0, 2*len(intervals))
	for _, iv := range intervals {
		if iv.End().Before(first) || !iv.Start().Before(horizon) {
			continue
		}
		end := dates.AddDays(iv.End(), 1)
		if end.After(horizon) {
			end = horizon
		}
		events = append(events,
			event{at: iv.Start(), start: true, iv: iv},
			event{at: end, iv: iv},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].start && !events[j].start
	})

	active := make(map[*interval.Interval]struct{})
	next := 0
	covering := make([]*interval.Interval, 0, 16)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		eod := dates.EndOfDay(day)
		for next < len(events) && !events[next].at.After(eod) {
			ev := events[next]
			if ev.start {
				active[ev.iv] = struct{}{}
			} else {
				delete(active, ev.iv)
			}
			next++
		}
		covering = covering[:0]
		for iv := range active {
			if iv.CoversDay(day) {
				covering = append(covering, iv)
			}
		}
		fn(day, covering)
	}
}

func itemFilter(itemIDs []models.ID) map[models.ID]struct{} {
	if len(itemIDs) == 0 {
		return nil
	}
	set := make(map[models.ID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
	return set
}
