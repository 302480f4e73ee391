package interval

import (
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/logging"
	"librarybookings/internal/models"
)

// BuildStats summarizes one index build.
type BuildStats struct {
	Bookings  int
	Checkouts int
	Intervals int
	Skipped   int
	Duration  time.Duration
}

// Builder turns booking and checkout records into an interval tree.
type Builder struct {
	loc    *time.Location
	logger logging.Logger
}

// NewBuilder creates a builder. Record dates are converted to loc before
// being truncated to calendar days; nil means UTC.
func NewBuilder(loc *time.Location, logger logging.Logger) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{loc: loc, logger: logging.OrNop(logger)}
}

// Build indexes bookings (with their lead/trail buffers) and checkouts.
// Invalid records are logged and skipped; they never abort the build.
func (b *Builder) Build(bookings []models.Booking, checkouts []models.Checkout, leadDays, trailDays int) (*Tree, BuildStats) {
	started := time.Now()
	tree := NewTree()
	stats := BuildStats{}

	for i := range bookings {
		booking := &bookings[i]
		if err := booking.Validate(); err != nil {
			stats.Skipped++
			b.logger.Warn("skipping booking", "booking_id", booking.BookingID.String(), "reason", err.Error())
			continue
		}
		ivs, err := b.bookingIntervals(booking, leadDays, trailDays)
		if err != nil {
			stats.Skipped++
			b.logger.Warn("skipping booking", "booking_id", booking.BookingID.String(), "reason", err.Error())
			continue
		}
		for _, iv := range ivs {
			tree.Insert(iv)
		}
		stats.Bookings++
	}

	for i := range checkouts {
		checkout := &checkouts[i]
		if err := checkout.Validate(); err != nil {
			stats.Skipped++
			b.logger.Warn("skipping checkout", "checkout_id", checkout.CheckoutID.String(), "reason", err.Error())
			continue
		}
		iv, err := NewDays(
			dates.DayIn(checkout.CheckoutDate, b.loc),
			dates.DayIn(checkout.DueDate, b.loc),
			checkout.ItemID,
			CategoryCheckout,
			Metadata{CheckoutID: checkout.CheckoutID, PatronID: checkout.PatronID},
		)
		if err != nil {
			stats.Skipped++
			b.logger.Warn("skipping checkout", "checkout_id", checkout.CheckoutID.String(), "reason", err.Error())
			continue
		}
		tree.Insert(iv)
		stats.Checkouts++
	}

	stats.Intervals = tree.Len()
	stats.Duration = time.Since(started)
	b.logger.Debug("interval index built",
		"bookings", stats.Bookings,
		"checkouts", stats.Checkouts,
		"intervals", stats.Intervals,
		"skipped", stats.Skipped,
		"height", tree.Height(),
	)
	return tree, stats
}

// bookingIntervals returns the booking span plus its lead and trail buffers.
// Nothing is returned unless every interval is valid.
func (b *Builder) bookingIntervals(booking *models.Booking, leadDays, trailDays int) ([]*Interval, error) {
	start := dates.DayIn(booking.StartDate, b.loc)
	end := dates.DayIn(booking.EndDate, b.loc)
	meta := Metadata{BookingID: booking.BookingID, PatronID: booking.PatronID}

	core, err := NewDays(start, end, booking.ItemID, CategoryBooking, meta)
	if err != nil {
		return nil, err
	}
	out := []*Interval{core}

	if leadDays > 0 {
		leadMeta := meta
		leadMeta.BufferDays = leadDays
		lead, err := NewDays(start.AddDate(0, 0, -leadDays), start.AddDate(0, 0, -1), booking.ItemID, CategoryLead, leadMeta)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}

	if trailDays > 0 {
		trailMeta := meta
		trailMeta.BufferDays = trailDays
		trail, err := NewDays(end.AddDate(0, 0, 1), end.AddDate(0, 0, trailDays), booking.ItemID, CategoryTrail, trailMeta)
		if err != nil {
			return nil, err
		}
		out = append(out, trail)
	}

	return out, nil
}
