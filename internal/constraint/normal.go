package constraint

import (
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/models"
)

// Normal lets the patron pick both ends freely within the ordinary checks.
type Normal struct{}

func (Normal) sealed() {}

func (Normal) Mode() models.ConstraintMode { return models.ModeNormal }

func (Normal) TargetEnd(time.Time, models.EffectiveRules) (time.Time, bool) {
	return time.Time{}, false
}

func (Normal) ScreenStart(time.Time, Candidates, models.EffectiveRules) bool {
	return false
}

func (Normal) Intermediate(time.Time, time.Time, models.EffectiveRules) Intermediate {
	return Continue
}

// Highlighting spans the longest allowed booking when a max period is set.
func (Normal) Highlighting(start time.Time, rules models.EffectiveRules) *Highlighting {
	if rules.MaxPeriod <= 0 {
		return nil
	}
	start = dates.StartOfDay(start)
	return &Highlighting{
		StartDate:      start,
		TargetEndDate:  dates.AddDays(start, rules.MaxPeriod-1),
		ConstraintMode: models.ModeNormal,
		MaxPeriod:      rules.MaxPeriod,
	}
}

func (Normal) EnforceEnd(time.Time, time.Time, models.EffectiveRules) error {
	return nil
}
