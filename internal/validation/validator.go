// Package validation checks a chosen booking date range against the
// circulation rules and the availability of the requested items.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"librarybookings/internal/availability"
	"librarybookings/internal/constraint"
	"librarybookings/internal/dates"
	"librarybookings/internal/logging"
)

var (
	ErrStartRequired   = errors.New("start date is required")
	ErrStartTooSoon    = errors.New("start date is too soon")
	ErrEndBeforeStart  = errors.New("end date is before start date")
	ErrPeriodTooLong   = errors.New("booking period exceeds maximum")
	ErrDateUnavailable = errors.New("date unavailable")
)

// Observer receives the outcome of every validation.
type Observer interface {
	ObserveValidation(valid bool, reasons []string)
}

// Result is the outcome of a validation. Failures are data, not errors.
type Result struct {
	Valid  bool
	Errors []error
	// NewMinEndDate and NewMaxEndDate bound the end date picker for the
	// chosen start.
	NewMinEndDate *time.Time
	NewMaxEndDate *time.Time
}

// Messages returns the error texts in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		out = append(out, err.Error())
	}
	return out
}

// Reasons returns a stable label for every error.
func (r Result) Reasons() []string {
	out := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		out = append(out, Reason(err))
	}
	return out
}

// MarshalJSON encodes errors as messages and end bounds as YYYY-MM-DD.
func (r Result) MarshalJSON() ([]byte, error) {
	type wire struct {
		Valid         bool     `json:"valid"`
		Errors        []string `json:"errors"`
		NewMinEndDate *string  `json:"newMinEndDate"`
		NewMaxEndDate *string  `json:"newMaxEndDate"`
	}
	return json.Marshal(wire{
		Valid:         r.Valid,
		Errors:        r.Messages(),
		NewMinEndDate: dayKey(r.NewMinEndDate),
		NewMaxEndDate: dayKey(r.NewMaxEndDate),
	})
}

func dayKey(t *time.Time) *string {
	if t == nil {
		return nil
	}
	k := dates.Key(*t)
	return &k
}

// Reason maps err to a short label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrStartRequired):
		return "start_required"
	case errors.Is(err, ErrStartTooSoon):
		return "start_too_soon"
	case errors.Is(err, ErrEndBeforeStart):
		return "end_before_start"
	case errors.Is(err, ErrPeriodTooLong):
		return "period_too_long"
	case errors.Is(err, constraint.ErrEndDateMismatch):
		return "end_date_mismatch"
	case errors.Is(err, ErrDateUnavailable):
		return "date_unavailable"
	default:
		return "other"
	}
}

// Validator checks date selections. It is safe for concurrent use.
type Validator struct {
	engine   *availability.Engine
	logger   logging.Logger
	observer Observer
}

// NewValidator creates a validator on top of engine. A nil engine gets the
// default configuration.
func NewValidator(engine *availability.Engine, logger logging.Logger, observer Observer) *Validator {
	logger = logging.OrNop(logger)
	if engine == nil {
		engine = availability.NewEngine(availability.DefaultConfig(), logger, nil)
	}
	return &Validator{engine: engine, logger: logger, observer: observer}
}

// Validate applies every rule to req.SelectedDates and collects all
// failures. The availability scan stops at the first unavailable day.
func (v *Validator) Validate(req availability.Request) Result {
	res := v.validate(req)
	res.Valid = len(res.Errors) == 0
	if v.observer != nil {
		v.observer.ObserveValidation(res.Valid, res.Reasons())
	}
	if !res.Valid {
		v.logger.Info("booking dates rejected", "errors", res.Messages())
	}
	return res
}

func (v *Validator) validate(req availability.Request) Result {
	var res Result
	loc := v.engine.Location()
	rules := v.engine.EffectiveRules(req.Rules)
	strategy := constraint.For(rules.Mode)
	today := v.engine.Today(req.Today)

	var selected []time.Time
	for _, d := range req.SelectedDates {
		if !d.IsZero() {
			selected = append(selected, dates.DayIn(d, loc))
		}
	}
	if len(selected) == 0 {
		res.Errors = append(res.Errors, ErrStartRequired)
		return res
	}
	start := selected[0]

	minEnd := dates.AddDays(start, 1)
	res.NewMinEndDate = &minEnd
	if rules.MaxPeriod > 0 {
		maxEnd := dates.AddDays(start, rules.MaxPeriod-1)
		res.NewMaxEndDate = &maxEnd
	}

	if earliest := dates.AddDays(today, rules.LeadDays); start.Before(earliest) {
		res.Errors = append(res.Errors, fmt.Errorf("%w: earliest start is %s", ErrStartTooSoon, dates.Key(earliest)))
	}

	scanEnd := start
	if len(selected) > 1 {
		end := selected[1]
		if end.Before(start) {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, dates.Key(end), dates.Key(start)))
		} else {
			scanEnd = end
		}
		if !rules.HasDueDateOverride(start) && rules.MaxPeriod > 0 {
			if span := dates.Span(start, end); span > rules.MaxPeriod {
				res.Errors = append(res.Errors, fmt.Errorf("%w: %d days, maximum is %d", ErrPeriodTooLong, span, rules.MaxPeriod))
			}
		}
		if err := strategy.EnforceEnd(start, end, rules); err != nil {
			res.Errors = append(res.Errors, err)
		}
	}

	scan := req
	scan.SelectedDates = selected
	scan.Options = availability.Options{OnDemand: true, VisibleStart: start, VisibleEnd: scanEnd}
	avail := v.engine.Compute(scan)
	dates.Each(start, scanEnd, func(d time.Time) bool {
		if avail.Disable(d) {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %s", ErrDateUnavailable, dates.Key(d)))
			return false
		}
		return true
	})

	return res
}
