// Package constraint implements the booking constraint modes. Each mode
// decides how start dates are screened, how dates between a chosen start and
// its fixed end behave, and which end dates are acceptable.
package constraint

import (
	"errors"
	"time"

	"librarybookings/internal/models"
)

// ErrEndDateMismatch is returned when a fixed-duration booking ends on a
// date other than its computed end.
var ErrEndDateMismatch = errors.New("end date must match the calculated end date")

// Intermediate is the decision for a candidate end date once a start is chosen.
type Intermediate int

const (
	// Continue leaves the decision to the remaining checks.
	Continue Intermediate = iota
	// Allow keeps the date selectable without further checks.
	Allow
	// Disable rejects the date.
	Disable
)

func (i Intermediate) String() string {
	switch i {
	case Allow:
		return "allow"
	case Disable:
		return "disable"
	default:
		return "continue"
	}
}

// Highlighting describes how a UI should style the range following a start date.
type Highlighting struct {
	StartDate                time.Time             `json:"startDate"`
	TargetEndDate            time.Time             `json:"targetEndDate"`
	BlockedIntermediateDates []time.Time           `json:"blockedIntermediateDates"`
	ConstraintMode           models.ConstraintMode `json:"constraintMode"`
	MaxPeriod                int                   `json:"maxPeriod"`
}

// Strategy is one booking constraint mode. The set is closed: obtain one
// through For.
type Strategy interface {
	Mode() models.ConstraintMode
	// TargetEnd returns the fixed end date for start, if the mode has one.
	TargetEnd(start time.Time, rules models.EffectiveRules) (time.Time, bool)
	// ScreenStart reports whether date must be rejected as a start date.
	ScreenStart(date time.Time, c Candidates, rules models.EffectiveRules) bool
	// Intermediate classifies date as an end candidate for start.
	Intermediate(date, start time.Time, rules models.EffectiveRules) Intermediate
	// Highlighting returns the range styling for start, or nil.
	Highlighting(start time.Time, rules models.EffectiveRules) *Highlighting
	// EnforceEnd checks a submitted end date.
	EnforceEnd(start, end time.Time, rules models.EffectiveRules) error

	sealed()
}

// For returns the strategy for mode. Unknown and empty modes are normal.
func For(mode models.ConstraintMode) Strategy {
	switch mode {
	case models.ModeEndDateOnly:
		return EndDateOnly{}
	case models.ModeNormal:
		return Normal{}
	default:
		return Normal{}
	}
}
