package models

import (
	"fmt"
	"time"

	"librarybookings/internal/dates"

	"gopkg.in/yaml.v3"
)

// ConstraintMode selects how booking end dates are chosen.
type ConstraintMode string

const (
	// ModeNormal lets the patron pick both start and end dates.
	ModeNormal ConstraintMode = "normal"
	// ModeEndDateOnly fixes the end date from policy once a start is picked.
	ModeEndDateOnly ConstraintMode = "end_date_only"
)

// Valid reports whether the mode is known. The empty mode means normal.
func (m ConstraintMode) Valid() bool {
	switch m {
	case "", ModeNormal, ModeEndDateOnly:
		return true
	default:
		return false
	}
}

// RuleSet is the circulation rule set applying to a booking request.
type RuleSet struct {
	LeadPeriod      int            `json:"bookings_lead_period" yaml:"bookings_lead_period"`
	TrailPeriod     int            `json:"bookings_trail_period" yaml:"bookings_trail_period"`
	MaxPeriod       int            `json:"maxPeriod,omitempty" yaml:"maxPeriod,omitempty"`
	IssueLength     int            `json:"issuelength,omitempty" yaml:"issuelength,omitempty"`
	RenewalPeriod   int            `json:"renewalperiod,omitempty" yaml:"renewalperiod,omitempty"`
	RenewalsAllowed int            `json:"renewalsallowed,omitempty" yaml:"renewalsallowed,omitempty"`
	ConstraintMode  ConstraintMode `json:"booking_constraint_mode,omitempty" yaml:"booking_constraint_mode,omitempty"`

	// CalculatedDueDate is the due date computed by the circulation backend
	// for the requested start, when it has one.
	CalculatedDueDate *time.Time `json:"calculated_due_date,omitempty" yaml:"-"`
	// CalculatedPeriodDays overrides the day-count period in end_date_only mode.
	CalculatedPeriodDays int `json:"calculated_period_days,omitempty" yaml:"calculated_period_days,omitempty"`
}

// EffectiveRules is the normalized view of a RuleSet used by the engine.
type EffectiveRules struct {
	LeadDays  int
	TrailDays int
	MaxPeriod int
	Mode      ConstraintMode
	DueDate   *time.Time
}

// Effective derives the rules actually enforced. The receiver is not modified.
//
// MaxPeriod falls back to the loan period (issuelength) when no explicit
// booking maximum is configured. Renewals never extend it. In end_date_only mode a positive
// CalculatedPeriodDays replaces the day-count period.
func (r RuleSet) Effective() EffectiveRules {
	eff := EffectiveRules{
		LeadDays:  max(r.LeadPeriod, 0),
		TrailDays: max(r.TrailPeriod, 0),
		MaxPeriod: r.MaxPeriod,
		Mode:      r.ConstraintMode,
	}
	if eff.Mode == "" {
		eff.Mode = ModeNormal
	}
	if eff.MaxPeriod <= 0 && r.IssueLength > 0 {
		eff.MaxPeriod = r.IssueLength
	}
	if eff.MaxPeriod < 0 {
		eff.MaxPeriod = 0
	}
	if eff.Mode == ModeEndDateOnly && r.CalculatedPeriodDays > 0 {
		eff.MaxPeriod = r.CalculatedPeriodDays
	}
	if r.CalculatedDueDate != nil && !r.CalculatedDueDate.IsZero() {
		due := dates.StartOfDay(*r.CalculatedDueDate)
		eff.DueDate = &due
	}
	return eff
}

// HasDueDateOverride reports whether the backend due date replaces the
// day-count end date for a booking starting on start. That needs end_date_only
// mode and a due date that is not before start.
func (e EffectiveRules) HasDueDateOverride(start time.Time) bool {
	return e.Mode == ModeEndDateOnly && e.DueDate != nil && !dates.Before(*e.DueDate, start)
}

// Validate checks the rule set for values the engine cannot interpret.
func (r RuleSet) Validate() error {
	if !r.ConstraintMode.Valid() {
		return fmt.Errorf("unknown booking_constraint_mode %q", r.ConstraintMode)
	}
	if r.LeadPeriod < 0 || r.TrailPeriod < 0 {
		return fmt.Errorf("lead and trail periods cannot be negative")
	}
	if r.MaxPeriod < 0 || r.IssueLength < 0 {
		return fmt.Errorf("maxPeriod and issuelength cannot be negative")
	}
	return nil
}

// UnmarshalYAML decodes calculated_due_date from a string.
func (r *RuleSet) UnmarshalYAML(value *yaml.Node) error {
	type plain RuleSet
	var raw struct {
		plain             `yaml:",inline"`
		CalculatedDueDate string `yaml:"calculated_due_date"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*r = RuleSet(raw.plain)
	if raw.CalculatedDueDate != "" {
		due, err := dates.Parse(raw.CalculatedDueDate, time.UTC)
		if err != nil {
			return fmt.Errorf("calculated_due_date: %w", err)
		}
		r.CalculatedDueDate = &due
	}
	return nil
}
