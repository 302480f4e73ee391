package models

import (
	"errors"
	"time"

	"librarybookings/internal/dates"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingItemID is returned for records without an item identifier.
	ErrMissingItemID = errors.New("missing item_id")
	// ErrMissingDates is returned for records without a start or end date.
	ErrMissingDates = errors.New("missing required dates")
	// ErrInvertedDates is returned for records ending before they start.
	ErrInvertedDates = errors.New("end date is before start date")
)

// Booking represents an existing reservation of an item.
type Booking struct {
	BookingID ID        `json:"booking_id" yaml:"booking_id"`
	ItemID    ID        `json:"item_id" yaml:"item_id"`
	PatronID  ID        `json:"patron_id,omitempty" yaml:"patron_id,omitempty"`
	StartDate time.Time `json:"start_date" yaml:"-"`
	EndDate   time.Time `json:"end_date" yaml:"-"`
}

// Validate checks the fields the interval builder depends on.
func (b *Booking) Validate() error {
	if b.ItemID.IsZero() {
		return ErrMissingItemID
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return ErrMissingDates
	}
	if dates.Before(b.EndDate, b.StartDate) {
		return ErrInvertedDates
	}
	return nil
}

// OverlapsWith checks if this booking shares at least one calendar day with other.
// Both ranges are inclusive on both ends.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return !dates.Before(b.EndDate, other.StartDate) && !dates.Before(other.EndDate, b.StartDate)
}

// ContainsDate checks if the booking covers a specific calendar day.
func (b *Booking) ContainsDate(date time.Time) bool {
	return !dates.Before(date, b.StartDate) && !dates.After(date, b.EndDate)
}

// UnmarshalYAML decodes dates from strings. Unparseable dates are left zero so
// the record is skipped by the builder instead of failing the whole document.
func (b *Booking) UnmarshalYAML(value *yaml.Node) error {
	type plain Booking
	var raw struct {
		plain     `yaml:",inline"`
		StartDate string `yaml:"start_date"`
		EndDate   string `yaml:"end_date"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*b = Booking(raw.plain)
	b.StartDate, _ = dates.Parse(raw.StartDate, time.UTC)
	b.EndDate, _ = dates.Parse(raw.EndDate, time.UTC)
	return nil
}

// Checkout represents an active loan of an item.
type Checkout struct {
	CheckoutID   ID        `json:"checkout_id" yaml:"checkout_id"`
	ItemID       ID        `json:"item_id" yaml:"item_id"`
	PatronID     ID        `json:"patron_id,omitempty" yaml:"patron_id,omitempty"`
	CheckoutDate time.Time `json:"checkout_date" yaml:"-"`
	DueDate      time.Time `json:"due_date" yaml:"-"`
}

// Validate checks the fields the interval builder depends on.
func (c *Checkout) Validate() error {
	if c.ItemID.IsZero() {
		return ErrMissingItemID
	}
	if c.CheckoutDate.IsZero() || c.DueDate.IsZero() {
		return ErrMissingDates
	}
	if dates.Before(c.DueDate, c.CheckoutDate) {
		return ErrInvertedDates
	}
	return nil
}

// UnmarshalYAML decodes dates from strings and accepts issue_id as an alias
// of checkout_id.
func (c *Checkout) UnmarshalYAML(value *yaml.Node) error {
	type plain Checkout
	var raw struct {
		plain        `yaml:",inline"`
		IssueID      ID     `yaml:"issue_id"`
		CheckoutDate string `yaml:"checkout_date"`
		DueDate      string `yaml:"due_date"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = Checkout(raw.plain)
	if c.CheckoutID.IsZero() {
		c.CheckoutID = raw.IssueID
	}
	c.CheckoutDate, _ = dates.Parse(raw.CheckoutDate, time.UTC)
	c.DueDate, _ = dates.Parse(raw.DueDate, time.UTC)
	return nil
}
