// Package availability computes which calendar days can be chosen for a
// booking and which items are unavailable on each day of a window.
package availability

import (
	"time"

	"github.com/google/uuid"

	"librarybookings/internal/constraint"
	"librarybookings/internal/dates"
	"librarybookings/internal/interval"
	"librarybookings/internal/logging"
	"librarybookings/internal/models"
	"librarybookings/internal/sweep"
)

// Config bounds the unavailability window.
type Config struct {
	// PastDays and FutureDays size the default window around today.
	PastDays   int
	FutureDays int
	// BufferDays pads an explicitly requested visible range.
	BufferDays int
	// Location is the time zone calendar days are evaluated in.
	Location *time.Location
}

// DefaultConfig returns a window of 7 days back and 90 days ahead with a
// 7 day buffer around visible ranges, in UTC.
func DefaultConfig() Config {
	return Config{PastDays: 7, FutureDays: 90, BufferDays: 7, Location: time.UTC}
}

// Observer receives a summary of every computation.
type Observer interface {
	ObserveCompute(mode string, stats interval.BuildStats, excluded int)
}

// Options selects the unavailability window.
type Options struct {
	// OnDemand restricts the window to the visible range plus the buffer.
	OnDemand     bool
	VisibleStart time.Time
	VisibleEnd   time.Time
}

// Request is one availability computation.
type Request struct {
	Bookings  []models.Booking
	Checkouts []models.Checkout
	Items     []models.Item
	// SelectedItemID limits checks to one item. Empty means any item.
	SelectedItemID models.ID
	// EditingBookingID is excluded from every conflict check.
	EditingBookingID models.ID
	// SelectedDates holds the chosen start and end, if any.
	SelectedDates []time.Time
	Rules         models.RuleSet
	// Today defaults to the current date.
	Today   time.Time
	Options Options
}

// Window is an inclusive range of days.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Engine computes availability. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	cfg      Config
	logger   logging.Logger
	observer Observer
	now      func() time.Time
}

// NewEngine creates an engine. Zero config values fall back to
// DefaultConfig; logger and observer may be nil.
func NewEngine(cfg Config, logger logging.Logger, observer Observer) *Engine {
	def := DefaultConfig()
	if cfg.PastDays <= 0 {
		cfg.PastDays = def.PastDays
	}
	if cfg.FutureDays <= 0 {
		cfg.FutureDays = def.FutureDays
	}
	if cfg.BufferDays < 0 {
		cfg.BufferDays = def.BufferDays
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	return &Engine{
		cfg:      cfg,
		logger:   logging.OrNop(logger),
		observer: observer,
		now:      time.Now,
	}
}

// Location returns the time zone the engine evaluates days in.
func (e *Engine) Location() *time.Location {
	return e.cfg.Location
}

// Compute builds the interval index once and returns the disable predicate
// and the unavailability map for the request.
func (e *Engine) Compute(req Request) *Result {
	id := uuid.NewString()
	timer := "availability " + id
	e.logger.Time(timer)
	defer e.logger.TimeEnd(timer)

	rules := e.EffectiveRules(req.Rules)
	strategy := constraint.For(rules.Mode)
	today := e.Today(req.Today)
	items := models.ItemIDs(req.Items)
	selected := models.ParseID(req.SelectedItemID)
	editing := models.ParseID(req.EditingBookingID)

	tree, stats := interval.NewBuilder(e.cfg.Location, e.logger).
		Build(req.Bookings, req.Checkouts, rules.LeadDays, rules.TrailDays)

	excluded := 0
	if !editing.IsZero() {
		excluded = tree.RemoveWhere(func(iv *interval.Interval) bool {
			return iv.BookingID() == editing
		})
	}

	p := &predicate{
		today:    today,
		loc:      e.cfg.Location,
		rules:    rules,
		strategy: strategy,
		selected: e.normalizeSelection(req.SelectedDates),
		cand: constraint.Candidates{
			Tree:     tree,
			Items:    items,
			Selected: selected,
		},
	}

	window := e.window(today, req.Options)
	unavailable := ApplyAliases(sweep.Process(tree.All(), window.Start, window.End, items))

	e.logger.Debug("availability computed",
		"computation_id", id,
		"mode", string(rules.Mode),
		"items", len(items),
		"selected_item", selected.String(),
		"editing_booking", editing.String(),
		"excluded_intervals", excluded,
		"intervals", tree.Len(),
		"window_start", dates.Key(window.Start),
		"window_end", dates.Key(window.End),
	)
	if e.observer != nil {
		e.observer.ObserveCompute(string(rules.Mode), stats, excluded)
	}

	return &Result{
		ID:                id,
		Disable:           p.disable,
		UnavailableByDate: unavailable,
		Window:            window,
		Rules:             rules,
		Strategy:          strategy,
		Stats:             stats,
		Excluded:          excluded,
		tree:              tree,
		items:             items,
		loc:               e.cfg.Location,
	}
}

// EffectiveRules derives the enforced rules and moves the calculated due date
// onto the engine location without changing its calendar day.
func (e *Engine) EffectiveRules(rs models.RuleSet) models.EffectiveRules {
	rules := rs.Effective()
	if rules.DueDate != nil {
		due := dates.DayIn(*rules.DueDate, e.cfg.Location)
		rules.DueDate = &due
	}
	return rules
}

// Today returns t's calendar day at midnight in the engine location. A zero t
// means the current day there.
func (e *Engine) Today(t time.Time) time.Time {
	if t.IsZero() {
		t = e.now().In(e.cfg.Location)
	}
	return dates.DayIn(t, e.cfg.Location)
}

// normalizeSelection keeps at most two non-zero dates as start-of-day values.
func (e *Engine) normalizeSelection(selected []time.Time) []time.Time {
	out := make([]time.Time, 0, 2)
	for _, d := range selected {
		if d.IsZero() {
			continue
		}
		out = append(out, dates.DayIn(d, e.cfg.Location))
		if len(out) == 2 {
			break
		}
	}
	return out
}

func (e *Engine) window(today time.Time, opts Options) Window {
	if opts.OnDemand && !opts.VisibleStart.IsZero() && !opts.VisibleEnd.IsZero() {
		start := dates.DayIn(opts.VisibleStart, e.cfg.Location)
		end := dates.DayIn(opts.VisibleEnd, e.cfg.Location)
		if end.Before(start) {
			start, end = end, start
		}
		return Window{
			Start: start.AddDate(0, 0, -e.cfg.BufferDays),
			End:   end.AddDate(0, 0, e.cfg.BufferDays),
		}
	}
	return Window{
		Start: today.AddDate(0, 0, -e.cfg.PastDays),
		End:   today.AddDate(0, 0, e.cfg.FutureDays),
	}
}
