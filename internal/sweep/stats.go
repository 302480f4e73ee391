package sweep

import (
	"sort"
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/interval"
	"librarybookings/internal/models"
)

// DayClass classifies a day by how many items are blocked.
type DayClass string

const (
	DayFree    DayClass = "free"
	DayPartial DayClass = "partial"
	DayFull    DayClass = "full"
)

// Stats summarizes a window of intervals.
type Stats struct {
	// PeakConcurrent is the largest number of bookings and checkouts covering
	// a single day; PeakDate is the first day it was reached.
	PeakConcurrent int
	PeakDate       string
	// Utilization counts the blocked days per item.
	Utilization map[models.ID]int
	Days        map[string]DayClass
	FreeDays    int
	PartialDays int
	FullDays    int
}

// Statistics computes peak usage, utilization and day classes over
// [viewStart, viewEnd]. A day is full when every item in itemIDs is blocked.
func Statistics(intervals []*interval.Interval, viewStart, viewEnd time.Time, itemIDs []models.ID) Stats {
	stats := Stats{
		Utilization: make(map[models.ID]int, len(itemIDs)),
		Days:        make(map[string]DayClass),
	}
	for _, id := range itemIDs {
		stats.Utilization[id] = 0
	}
	wanted := itemFilter(itemIDs)

	days(intervals, viewStart, viewEnd, func(day time.Time, active []*interval.Interval) {
		blocked := make(map[models.ID]struct{})
		concurrent := 0
		for _, iv := range active {
			if wanted != nil {
				if _, ok := wanted[iv.ItemID()]; !ok {
					continue
				}
			}
			if iv.Category() == interval.CategoryQuery {
				continue
			}
			blocked[iv.ItemID()] = struct{}{}
			if iv.Category().IsCore() {
				concurrent++
			}
		}
		for id := range blocked {
			stats.Utilization[id]++
		}
		if concurrent > stats.PeakConcurrent {
			stats.PeakConcurrent = concurrent
			stats.PeakDate = dates.Key(day)
		}

		class := classify(len(blocked), len(itemIDs))
		stats.Days[dates.Key(day)] = class
		switch class {
		case DayFree:
			stats.FreeDays++
		case DayPartial:
			stats.PartialDays++
		case DayFull:
			stats.FullDays++
		}
	})
	return stats
}

func classify(blocked, total int) DayClass {
	switch {
	case blocked == 0:
		return DayFree
	case total > 0 && blocked >= total:
		return DayFull
	default:
		return DayPartial
	}
}

// Gap is a run of consecutive free days for one item.
type Gap struct {
	Start time.Time
	End   time.Time
	Days  int
}

// FindGaps returns the free spans of itemID inside [viewStart, viewEnd] that
// are at least minGapDays long, largest first. Ties keep calendar order.
func FindGaps(intervals []*interval.Interval, itemID models.ID, viewStart, viewEnd time.Time, minGapDays int) []Gap {
	if minGapDays < 1 {
		minGapDays = 1
	}
	var (
		gaps []Gap
		open *Gap
	)
	closeGap := func() {
		if open != nil && open.Days >= minGapDays {
			gaps = append(gaps, *open)
		}
		open = nil
	}

	days(intervals, viewStart, viewEnd, func(day time.Time, active []*interval.Interval) {
		free := true
		for _, iv := range active {
			if iv.ItemID() == itemID && iv.Category() != interval.CategoryQuery {
				free = false
				break
			}
		}
		if !free {
			closeGap()
			return
		}
		if open == nil {
			open = &Gap{Start: day}
		}
		open.End = day
		open.Days++
	})
	closeGap()

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Days > gaps[j].Days
	})
	return gaps
}
