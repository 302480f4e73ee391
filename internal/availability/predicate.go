package availability

import (
	"time"

	"librarybookings/internal/constraint"
	"librarybookings/internal/dates"
	"librarybookings/internal/models"
)

// predicate is the disable check bound to one computation. It only reads
// its fields, so one predicate can be shared between goroutines.
type predicate struct {
	today    time.Time
	loc      *time.Location
	rules    models.EffectiveRules
	strategy constraint.Strategy
	selected []time.Time
	cand     constraint.Candidates
}

// disable reports whether date cannot be picked given the current selection.
func (p *predicate) disable(date time.Time) bool {
	d := dates.DayIn(date, p.loc)

	if d.Before(p.today) {
		return true
	}
	if p.cand.Empty() {
		return true
	}

	switch len(p.selected) {
	case 0:
		if p.strategy.ScreenStart(d, p.cand, p.rules) {
			return true
		}
	case 1:
		switch p.strategy.Intermediate(d, p.selected[0], p.rules) {
		case constraint.Allow:
			return false
		case constraint.Disable:
			return true
		}
	}

	if p.cand.ConflictAt(d, nil) {
		return true
	}

	switch len(p.selected) {
	case 0:
		if lead := p.rules.LeadDays; lead > 0 {
			if p.cand.ConflictIn(dates.AddDays(d, -lead), dates.AddDays(d, -1), constraint.CoreOnly) {
				return true
			}
		}
	case 1:
		start := p.selected[0]
		if d.Before(start) {
			return true
		}
		if !p.rules.HasDueDateOverride(start) && p.rules.MaxPeriod > 0 && dates.Span(start, d) > p.rules.MaxPeriod {
			return true
		}
		if trail := p.rules.TrailDays; trail > 0 {
			if p.cand.ConflictIn(dates.AddDays(d, 1), dates.AddDays(d, trail), constraint.CoreOnly) {
				return true
			}
		}
	}
	return false
}
