package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2024, 2, 15, 13, 45, 10, 0, time.UTC)

	assert.Equal(t, day(2024, 2, 15), StartOfDay(ts))
	assert.Equal(t, time.Date(2024, 2, 15, 23, 59, 59, 999999999, time.UTC), EndOfDay(ts))
	assert.True(t, EndOfDay(ts).Add(time.Nanosecond).Equal(day(2024, 2, 16)))
}

func TestDayIn(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)
	east := time.FixedZone("UTC+9", 9*60*60)

	got := DayIn(day(2024, 2, 15), west)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, west), got)
	assert.Equal(t, "2024-02-15", Key(got))

	late := time.Date(2024, 2, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-15", Key(DayIn(late, east)))
	assert.Equal(t, day(2024, 2, 15), DayIn(late, nil))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{name: "same day", a: day(2024, 2, 15), b: day(2024, 2, 15).Add(20 * time.Hour), want: 0},
		{name: "forward", a: day(2024, 2, 15), b: day(2024, 2, 20), want: 5},
		{name: "backward", a: day(2024, 2, 20), b: day(2024, 2, 15), want: -5},
		{name: "leap year february", a: day(2024, 2, 28), b: day(2024, 3, 1), want: 2},
		{name: "year boundary", a: day(2023, 12, 31), b: day(2024, 1, 1), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestDaysBetween_IgnoresDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skip("tzdata not available")
	}
	a := time.Date(2024, 3, 30, 0, 0, 0, 0, loc)
	b := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, 3, Span(a, b))
}

func TestBeforeAfter(t *testing.T) {
	morning := time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 2, 15, 20, 0, 0, 0, time.UTC)

	assert.False(t, Before(morning, evening))
	assert.False(t, After(evening, morning))
	assert.True(t, Before(morning, day(2024, 2, 16)))
	assert.True(t, After(day(2024, 2, 16), evening))
}

func TestRange(t *testing.T) {
	days := Range(day(2024, 2, 28), day(2024, 3, 2))
	require.Len(t, days, 4)
	assert.Equal(t, "2024-02-28", Key(days[0]))
	assert.Equal(t, "2024-02-29", Key(days[1]))
	assert.Equal(t, "2024-03-02", Key(days[3]))

	assert.Empty(t, Range(day(2024, 3, 2), day(2024, 3, 1)))
}

func TestEach_StopsEarly(t *testing.T) {
	var seen []string
	Each(day(2024, 1, 1), day(2024, 1, 10), func(d time.Time) bool {
		seen = append(seen, Key(d))
		return len(seen) < 3
	})
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, seen)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", in: "2024-02-15", want: day(2024, 2, 15)},
		{name: "sql timestamp", in: "2024-02-20 23:59:59", want: time.Date(2024, 2, 20, 23, 59, 59, 0, time.UTC)},
		{name: "rfc3339", in: "2024-02-15T10:00:00Z", want: time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", in: " 2024-02-15 ", want: day(2024, 2, 15)},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "15.02.2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in, time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
