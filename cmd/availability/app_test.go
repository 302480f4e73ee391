package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarybookings/internal/availability"
	"librarybookings/internal/config"
	"librarybookings/internal/events"
	"librarybookings/internal/metrics"
	"librarybookings/internal/snapshot"
	"librarybookings/internal/validation"
)

const testSnapshot = `
items:
  - item_id: 1
    title: Projector
bookings:
  - booking_id: 10
    item_id: 1
    start_date: 2024-03-05
    end_date: 2024-03-06
rules:
  maxPeriod: 7
`

func newTestApp(t *testing.T, flags cliFlags) (*app, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Parse([]byte("{}"))
	require.NoError(t, err)
	logger := zerolog.Nop()
	engine := availability.NewEngine(cfg.EngineConfig(), nil, nil)
	var buf bytes.Buffer
	return &app{
		cfg:       cfg,
		flags:     flags,
		engine:    engine,
		validator: validation.NewValidator(engine, nil, nil),
		out:       &buf,
		logger:    &logger,
	}, &buf
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-item", "1", "-start", "2024-03-01", "-end", "2024-03-03", "-watch"})
	require.NoError(t, err)
	assert.Equal(t, "1", f.itemID)
	assert.True(t, f.watch)
	assert.Equal(t, 1, f.minGapDays)

	_, err = parseFlags([]string{"-end", "2024-03-03"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-visible-start", "2024-03-03"})
	assert.Error(t, err)
}

func TestApp_Run(t *testing.T) {
	snap, err := snapshot.Parse([]byte(testSnapshot))
	require.NoError(t, err)

	a, buf := newTestApp(t, cliFlags{
		itemID: "1",
		start:  "2024-03-01",
		end:    "2024-03-10",
		today:  "2024-02-28",
	})
	a.cfg.Report.Path = filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, a.run(snap))

	var out struct {
		ComputationID     string                         `json:"computationId"`
		DisabledDates     []string                       `json:"disabledDates"`
		UnavailableByDate map[string]map[string][]string `json:"unavailableByDate"`
		Validation        struct {
			Valid         bool     `json:"valid"`
			Errors        []string `json:"errors"`
			NewMaxEndDate string   `json:"newMaxEndDate"`
		} `json:"validation"`
		Highlighting struct {
			TargetEndDate string `json:"targetEndDate"`
		} `json:"highlighting"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.NotEmpty(t, out.ComputationID)
	assert.Equal(t, []string{"booking"}, out.UnavailableByDate["2024-03-05"]["1"])
	assert.False(t, out.Validation.Valid)
	assert.Len(t, out.Validation.Errors, 2)
	assert.Equal(t, "2024-03-07", out.Validation.NewMaxEndDate)
	assert.Contains(t, out.Highlighting.TargetEndDate, "2024-03-07")

	_, err = os.Stat(a.cfg.Report.Path)
	assert.NoError(t, err)
}

func TestApp_RequestOnDemand(t *testing.T) {
	a, _ := newTestApp(t, cliFlags{visibleStart: "2024-04-01", visibleEnd: "2024-04-30"})
	req, err := a.request(&snapshot.Snapshot{})
	require.NoError(t, err)
	assert.True(t, req.Options.OnDemand)
	assert.Empty(t, req.SelectedDates)

	a, _ = newTestApp(t, cliFlags{start: "March"})
	_, err = a.request(&snapshot.Snapshot{})
	assert.Error(t, err)
}

func TestApp_SubscribeCountsOnlyReloads(t *testing.T) {
	snap, err := snapshot.Parse([]byte(testSnapshot))
	require.NoError(t, err)

	a, buf := newTestApp(t, cliFlags{today: "2024-02-28"})
	m := metrics.New()
	bus := events.NewBus(nil)
	a.subscribe(bus, m)

	assert.Equal(t, 0, bus.Publish(events.Event{Type: events.SnapshotLoaded, Snapshot: snap, Initial: true}))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SnapshotReloadsTotal.WithLabelValues("ok")))
	assert.NotEmpty(t, buf.String())

	assert.Equal(t, 0, bus.Publish(events.Event{Type: events.SnapshotLoaded, Snapshot: snap}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotReloadsTotal.WithLabelValues("ok")))

	bus.Publish(events.Event{Type: events.SnapshotFailed, Err: os.ErrNotExist})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotReloadsTotal.WithLabelValues("error")))
}
