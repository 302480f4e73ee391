package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarybookings/internal/dates"
	"librarybookings/internal/interval"
	"librarybookings/internal/models"
)

func TestStatistics(t *testing.T) {
	ivs := []*interval.Interval{
		span(t, "2024-03-02", "2024-03-04", "1", interval.CategoryBooking),
		span(t, "2024-03-01", "2024-03-01", "1", interval.CategoryLead),
		span(t, "2024-03-03", "2024-03-05", "2", interval.CategoryCheckout),
	}
	items := []models.ID{"1", "2", "3"}

	stats := Statistics(ivs, day("2024-03-01"), day("2024-03-06"), items)

	assert.Equal(t, 2, stats.PeakConcurrent)
	assert.Equal(t, "2024-03-03", stats.PeakDate)
	assert.Equal(t, map[models.ID]int{"1": 4, "2": 3, "3": 0}, stats.Utilization)
	assert.Equal(t, DayPartial, stats.Days["2024-03-03"])
	assert.Equal(t, DayFree, stats.Days["2024-03-06"])
	assert.Equal(t, 1, stats.FreeDays)
	assert.Equal(t, 5, stats.PartialDays)
	assert.Equal(t, 0, stats.FullDays)
}

func TestStatistics_FullDay(t *testing.T) {
	ivs := []*interval.Interval{
		span(t, "2024-03-02", "2024-03-02", "1", interval.CategoryBooking),
		span(t, "2024-03-02", "2024-03-03", "2", interval.CategoryTrail),
	}
	stats := Statistics(ivs, day("2024-03-01"), day("2024-03-03"), []models.ID{"1", "2"})

	assert.Equal(t, DayFree, stats.Days["2024-03-01"])
	assert.Equal(t, DayFull, stats.Days["2024-03-02"])
	assert.Equal(t, DayPartial, stats.Days["2024-03-03"])
	assert.Equal(t, 1, stats.PeakConcurrent)
}

func TestFindGaps(t *testing.T) {
	ivs := []*interval.Interval{
		span(t, "2024-03-03", "2024-03-04", "1", interval.CategoryBooking),
		span(t, "2024-03-10", "2024-03-10", "1", interval.CategoryTrail),
		span(t, "2024-03-05", "2024-03-20", "2", interval.CategoryBooking),
	}

	gaps := FindGaps(ivs, "1", day("2024-03-01"), day("2024-03-15"), 1)
	require.Len(t, gaps, 3)
	assert.Equal(t, "2024-03-05", dates.Key(gaps[0].Start))
	assert.Equal(t, "2024-03-09", dates.Key(gaps[0].End))
	assert.Equal(t, 5, gaps[0].Days)
	assert.Equal(t, 5, gaps[1].Days)
	assert.Equal(t, "2024-03-11", dates.Key(gaps[1].Start))
	assert.Equal(t, 2, gaps[2].Days)

	gaps = FindGaps(ivs, "1", day("2024-03-01"), day("2024-03-15"), 3)
	assert.Len(t, gaps, 2)
}

func TestFindGaps_FullyBooked(t *testing.T) {
	ivs := []*interval.Interval{
		span(t, "2024-02-01", "2024-04-01", "1", interval.CategoryCheckout),
	}
	assert.Empty(t, FindGaps(ivs, "1", day("2024-03-01"), day("2024-03-15"), 0))
}
