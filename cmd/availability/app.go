package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"librarybookings/internal/availability"
	"librarybookings/internal/config"
	"librarybookings/internal/constraint"
	"librarybookings/internal/dates"
	"librarybookings/internal/events"
	"librarybookings/internal/metrics"
	"librarybookings/internal/models"
	"librarybookings/internal/report"
	"librarybookings/internal/snapshot"
	"librarybookings/internal/sweep"
	"librarybookings/internal/validation"
)

type cliFlags struct {
	configPath   string
	snapshotPath string
	reportPath   string
	itemID       string
	editingID    string
	start        string
	end          string
	today        string
	visibleStart string
	visibleEnd   string
	minGapDays   int
	watch        bool
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("availability", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "path to config.yaml (default $LIBRARYBOOKINGS_CONFIG or "+config.DefaultPath+")")
	fs.StringVar(&f.snapshotPath, "snapshot", "", "snapshot file, overrides snapshot.path")
	fs.StringVar(&f.reportPath, "report", "", "xlsx report path, overrides report.path")
	fs.StringVar(&f.itemID, "item", "", "selected item id (empty: any item)")
	fs.StringVar(&f.editingID, "editing", "", "id of the booking being edited")
	fs.StringVar(&f.start, "start", "", "selected start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "selected end date (YYYY-MM-DD)")
	fs.StringVar(&f.today, "today", "", "evaluate as of this date instead of now")
	fs.StringVar(&f.visibleStart, "visible-start", "", "first visible calendar day; enables on-demand window")
	fs.StringVar(&f.visibleEnd, "visible-end", "", "last visible calendar day")
	fs.IntVar(&f.minGapDays, "min-gap", 1, "shortest free period listed in the report")
	fs.BoolVar(&f.watch, "watch", false, "recompute whenever the snapshot changes")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.end != "" && f.start == "" {
		return f, fmt.Errorf("-end requires -start")
	}
	if (f.visibleStart == "") != (f.visibleEnd == "") {
		return f, fmt.Errorf("-visible-start and -visible-end go together")
	}
	return f, nil
}

type app struct {
	cfg       *config.Config
	flags     cliFlags
	engine    *availability.Engine
	validator *validation.Validator
	out       io.Writer
	logger    *zerolog.Logger
}

type runOutput struct {
	ComputationID     string                   `json:"computationId"`
	Window            availability.Window      `json:"window"`
	DisabledDates     []string                 `json:"disabledDates"`
	UnavailableByDate sweep.Map                `json:"unavailableByDate"`
	Highlighting      *constraint.Highlighting `json:"highlighting,omitempty"`
	Validation        *validation.Result       `json:"validation,omitempty"`
}

// request turns the snapshot and flags into an engine request.
func (a *app) request(snap *snapshot.Snapshot) (availability.Request, error) {
	loc := a.cfg.Location()
	req := availability.Request{
		Bookings:         snap.Bookings,
		Checkouts:        snap.Checkouts,
		Items:            snap.Items,
		SelectedItemID:   models.ParseID(a.flags.itemID),
		EditingBookingID: models.ParseID(a.flags.editingID),
		Rules:            snap.RulesOr(a.cfg.Rules),
	}

	parse := func(name, value string) (time.Time, error) {
		t, err := dates.Parse(value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("-%s: %w", name, err)
		}
		return t, nil
	}

	var err error
	if a.flags.today != "" {
		if req.Today, err = parse("today", a.flags.today); err != nil {
			return req, err
		}
	}
	for _, sel := range []struct{ name, value string }{{"start", a.flags.start}, {"end", a.flags.end}} {
		if sel.value == "" {
			continue
		}
		t, err := parse(sel.name, sel.value)
		if err != nil {
			return req, err
		}
		req.SelectedDates = append(req.SelectedDates, t)
	}
	if a.flags.visibleStart != "" {
		req.Options.OnDemand = true
		if req.Options.VisibleStart, err = parse("visible-start", a.flags.visibleStart); err != nil {
			return req, err
		}
		if req.Options.VisibleEnd, err = parse("visible-end", a.flags.visibleEnd); err != nil {
			return req, err
		}
	}
	return req, nil
}

// run computes availability for snap, prints it as JSON and writes the
// report when a path is configured.
func (a *app) run(snap *snapshot.Snapshot) error {
	req, err := a.request(snap)
	if err != nil {
		return err
	}

	res := a.engine.Compute(req)
	out := runOutput{
		ComputationID:     res.ID,
		Window:            res.Window,
		DisabledDates:     []string{},
		UnavailableByDate: res.UnavailableByDate,
	}
	for _, d := range res.DisabledDays() {
		out.DisabledDates = append(out.DisabledDates, dates.Key(d))
	}
	if len(req.SelectedDates) > 0 {
		out.Highlighting = res.Highlighting(req.SelectedDates[0])
		v := a.validator.Validate(req)
		out.Validation = &v
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if a.cfg.Report.Path != "" {
		if err := report.WriteFile(a.cfg.Report.Path, res, snap.Items, report.Options{MinGapDays: a.flags.minGapDays}); err != nil {
			return err
		}
		a.logger.Info().Str("path", a.cfg.Report.Path).Msg("report written")
	}

	a.logger.Info().
		Str("computation_id", res.ID).
		Int("intervals", res.Stats.Intervals).
		Int("skipped", res.Stats.Skipped).
		Int("disabled_days", len(out.DisabledDates)).
		Msg("availability computed")
	return nil
}

// subscribe wires snapshot events to the run loop. Only reloads are counted;
// the startup load is not one.
func (a *app) subscribe(bus *events.Bus, m *metrics.Metrics) {
	bus.Subscribe(events.SnapshotLoaded, func(e events.Event) error {
		if !e.Initial {
			m.IncSnapshotReload("ok")
		}
		return nil
	})
	bus.Subscribe(events.SnapshotLoaded, func(e events.Event) error {
		return a.run(e.Snapshot)
	})
	bus.Subscribe(events.SnapshotFailed, func(e events.Event) error {
		m.IncSnapshotReload("error")
		a.logger.Error().Err(e.Err).Msg("snapshot reload failed")
		return nil
	})
}
