// Package interval provides the item-tagged time spans used for conflict
// detection and an AVL interval tree indexing them.
package interval

import (
	"errors"
	"fmt"
	"time"

	"librarybookings/internal/dates"
	"librarybookings/internal/models"
)

// ErrInvalidInterval is returned when an interval would end before it starts.
var ErrInvalidInterval = errors.New("interval start is after end")

// Category classifies why an interval blocks an item.
type Category string

const (
	CategoryBooking  Category = "booking"
	CategoryCheckout Category = "checkout"
	CategoryLead     Category = "lead"
	CategoryTrail    Category = "trail"
	CategoryQuery    Category = "query"
)

// IsCore reports whether the category is an actual booking or loan rather
// than a buffer or a synthetic query span.
func (c Category) IsCore() bool {
	return c == CategoryBooking || c == CategoryCheckout
}

// Metadata carries the identifiers of the record an interval came from.
type Metadata struct {
	BookingID  models.ID
	PatronID   models.ID
	CheckoutID models.ID
	BufferDays int
}

// Interval is an immutable span [start, end], inclusive on both ends.
type Interval struct {
	start    time.Time
	end      time.Time
	itemID   models.ID
	category Category
	meta     Metadata
}

// New builds an interval. It fails when start is after end.
func New(start, end time.Time, itemID models.ID, category Category, meta Metadata) (*Interval, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s (item %s, %s)",
			ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339), itemID, category)
	}
	return &Interval{
		start:    start,
		end:      end,
		itemID:   itemID,
		category: category,
		meta:     meta,
	}, nil
}

// NewDays builds an interval covering whole calendar days [first, last].
func NewDays(first, last time.Time, itemID models.ID, category Category, meta Metadata) (*Interval, error) {
	return New(dates.StartOfDay(first), dates.EndOfDay(last), itemID, category, meta)
}

// Start returns the inclusive start instant.
func (iv *Interval) Start() time.Time { return iv.start }

// End returns the inclusive end instant.
func (iv *Interval) End() time.Time { return iv.end }

// ItemID returns the item the interval blocks.
func (iv *Interval) ItemID() models.ID { return iv.itemID }

// Category returns the interval category.
func (iv *Interval) Category() Category { return iv.category }

// Metadata returns the source record identifiers.
func (iv *Interval) Metadata() Metadata { return iv.meta }

// BookingID is a shortcut for Metadata().BookingID.
func (iv *Interval) BookingID() models.ID { return iv.meta.BookingID }

// Contains reports whether t lies within the interval.
func (iv *Interval) Contains(t time.Time) bool {
	return !t.Before(iv.start) && !t.After(iv.end)
}

// Overlaps reports whether the two closed intervals share at least one instant.
func (iv *Interval) Overlaps(other *Interval) bool {
	return !iv.start.After(other.end) && !other.start.After(iv.end)
}

// CoversDay reports whether the interval touches any instant of day's calendar day.
func (iv *Interval) CoversDay(day time.Time) bool {
	return !iv.start.After(dates.EndOfDay(day)) && !iv.end.Before(dates.StartOfDay(day))
}

// String returns a compact description for logs.
func (iv *Interval) String() string {
	return fmt.Sprintf("%s[%s..%s item=%s]", iv.category,
		dates.Key(iv.start), dates.Key(iv.end), iv.itemID)
}
