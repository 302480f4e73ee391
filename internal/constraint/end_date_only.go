package constraint

import (
	"fmt"
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/models"
)

// EndDateOnly is the fixed-duration mode: the patron picks a start and the
// end follows from the calculated due date or the max period.
type EndDateOnly struct{}

func (EndDateOnly) sealed() {}

func (EndDateOnly) Mode() models.ConstraintMode { return models.ModeEndDateOnly }

// TargetEnd prefers a due date on or after start, then start+MaxPeriod-1.
// Without either there is no fixed end.
func (EndDateOnly) TargetEnd(start time.Time, rules models.EffectiveRules) (time.Time, bool) {
	start = dates.StartOfDay(start)
	if rules.DueDate != nil && !dates.Before(*rules.DueDate, start) {
		return dates.StartOfDay(*rules.DueDate), true
	}
	if rules.MaxPeriod > 0 {
		return dates.AddDays(start, rules.MaxPeriod-1), true
	}
	return time.Time{}, false
}

// ScreenStart rejects date when the whole fixed span cannot be booked. In
// any-item mode that means some day of the span has every item blocked.
func (s EndDateOnly) ScreenStart(date time.Time, c Candidates, rules models.EffectiveRules) bool {
	end, ok := s.TargetEnd(date, rules)
	if !ok {
		return false
	}
	return c.ConflictIn(date, end, nil)
}

// Intermediate keeps the days inside the span selectable and disables
// everything past the fixed end.
func (s EndDateOnly) Intermediate(date, start time.Time, rules models.EffectiveRules) Intermediate {
	end, ok := s.TargetEnd(start, rules)
	if !ok {
		return Continue
	}
	switch {
	case dates.After(date, end):
		return Disable
	case dates.After(date, start) && dates.Before(date, end):
		return Allow
	default:
		return Continue
	}
}

func (s EndDateOnly) Highlighting(start time.Time, rules models.EffectiveRules) *Highlighting {
	end, ok := s.TargetEnd(start, rules)
	if !ok {
		return nil
	}
	start = dates.StartOfDay(start)
	var blocked []time.Time
	if dates.DaysBetween(start, end) > 1 {
		blocked = dates.Range(dates.AddDays(start, 1), dates.AddDays(end, -1))
	}
	return &Highlighting{
		StartDate:                start,
		TargetEndDate:            end,
		BlockedIntermediateDates: blocked,
		ConstraintMode:           models.ModeEndDateOnly,
		MaxPeriod:                rules.MaxPeriod,
	}
}

func (s EndDateOnly) EnforceEnd(start, end time.Time, rules models.EffectiveRules) error {
	target, ok := s.TargetEnd(start, rules)
	if !ok || dates.SameDay(end, target) {
		return nil
	}
	return fmt.Errorf("%w: expected %s, got %s", ErrEndDateMismatch, dates.Key(target), dates.Key(end))
}
