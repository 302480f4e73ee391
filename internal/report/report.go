// Package report exports an availability computation as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"librarybookings/internal/availability"
	"librarybookings/internal/dates"
	"librarybookings/internal/models"
)

// Sheet names.
const (
	SheetCalendar = "Calendar"
	SheetSummary  = "Summary"
	SheetGaps     = "Free periods"
)

// Options tunes the export.
type Options struct {
	// MinGapDays hides free periods shorter than this.
	MinGapDays int
}

// Build fills a workbook with the day by item calendar of res, a summary
// sheet and the free periods of every item. Items without a title are
// labelled by id.
func Build(res *availability.Result, items []models.Item, opts Options) (*Workbook, error) {
	w := NewWorkbook()
	if err := writeCalendar(w, res, items); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := writeSummary(w, res, items); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := writeGaps(w, res, items, opts.MinGapDays); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Write builds the workbook and writes it to wr.
func Write(wr io.Writer, res *availability.Result, items []models.Item, opts Options) error {
	w, err := Build(res, items, opts)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Save(wr); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteFile builds the workbook and saves it to path.
func WriteFile(path string, res *availability.Result, items []models.Item, opts Options) error {
	w, err := Build(res, items, opts)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.SaveToFile(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func writeCalendar(w *Workbook, res *availability.Result, items []models.Item) error {
	if err := w.AddSheet(SheetCalendar); err != nil {
		return err
	}
	header := []string{"Date"}
	for _, item := range items {
		header = append(header, item.Label())
	}
	header = append(header, "Disabled")
	if err := w.WriteHeader(header); err != nil {
		return err
	}

	var err error
	dates.Each(res.Window.Start, res.Window.End, func(d time.Time) bool {
		key := dates.Key(d)
		row := []interface{}{key}
		for _, item := range items {
			row = append(row, strings.Join(res.UnavailableByDate[key][item.ItemID].Sorted(), ", "))
		}
		row = append(row, res.Disable(d))
		err = w.WriteRow(row)
		return err == nil
	})
	return err
}

func writeSummary(w *Workbook, res *availability.Result, items []models.Item) error {
	if err := w.AddSheet(SheetSummary); err != nil {
		return err
	}
	stats := res.Statistics()
	if err := w.WriteHeader([]string{"Metric", "Value"}); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Window start", dates.Key(res.Window.Start)},
		{"Window end", dates.Key(res.Window.End)},
		{"Constraint mode", string(res.Rules.Mode)},
		{"Indexed intervals", res.Stats.Intervals},
		{"Skipped records", res.Stats.Skipped},
		{"Peak concurrent", stats.PeakConcurrent},
		{"Peak date", stats.PeakDate},
		{"Free days", stats.FreeDays},
		{"Partially booked days", stats.PartialDays},
		{"Fully booked days", stats.FullDays},
	}
	for _, item := range items {
		rows = append(rows, []interface{}{"Blocked days: " + item.Label(), stats.Utilization[item.ItemID]})
	}
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

func writeGaps(w *Workbook, res *availability.Result, items []models.Item, minDays int) error {
	if err := w.AddSheet(SheetGaps); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{"Item", "From", "To", "Days"}); err != nil {
		return err
	}
	for _, item := range items {
		for _, gap := range res.Gaps(item.ItemID, minDays) {
			row := []interface{}{item.Label(), dates.Key(gap.Start), dates.Key(gap.End), gap.Days}
			if err := w.WriteRow(row); err != nil {
				return err
			}
		}
	}
	return nil
}
