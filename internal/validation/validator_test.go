package validation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarybookings/internal/availability"
	"librarybookings/internal/constraint"
	"librarybookings/internal/dates"
	"librarybookings/internal/models"
)

func day(s string) time.Time {
	return dates.MustParse(s)
}

type recordingObserver struct {
	valid   []bool
	reasons [][]string
}

func (o *recordingObserver) ObserveValidation(valid bool, reasons []string) {
	o.valid = append(o.valid, valid)
	o.reasons = append(o.reasons, reasons)
}

func request(selected ...string) availability.Request {
	req := availability.Request{
		Items:          []models.Item{{ItemID: "1"}},
		SelectedItemID: "1",
		Today:          day("2024-02-20"),
	}
	for _, s := range selected {
		req.SelectedDates = append(req.SelectedDates, day(s))
	}
	return req
}

func TestValidate_MaxPeriod(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	req := request("2024-03-01", "2024-03-06")
	req.Rules = models.RuleSet{MaxPeriod: 7}
	res := v.Validate(req)
	assert.True(t, res.Valid, res.Messages())
	assert.Empty(t, res.Errors)

	req = request("2024-03-01", "2024-03-10")
	req.Rules = models.RuleSet{MaxPeriod: 7}
	res = v.Validate(req)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrPeriodTooLong)
	assert.Contains(t, res.Messages()[0], "10 days, maximum is 7")
}

func TestValidate_StartRequired(t *testing.T) {
	res := NewValidator(nil, nil, nil).Validate(request())
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrStartRequired)
	assert.Nil(t, res.NewMinEndDate)
}

func TestValidate_EndBounds(t *testing.T) {
	req := request("2024-03-01")
	req.Rules = models.RuleSet{MaxPeriod: 7}
	res := NewValidator(nil, nil, nil).Validate(req)

	assert.True(t, res.Valid)
	require.NotNil(t, res.NewMinEndDate)
	require.NotNil(t, res.NewMaxEndDate)
	assert.Equal(t, "2024-03-02", dates.Key(*res.NewMinEndDate))
	assert.Equal(t, "2024-03-07", dates.Key(*res.NewMaxEndDate))

	res = NewValidator(nil, nil, nil).Validate(request("2024-03-01"))
	assert.Nil(t, res.NewMaxEndDate)
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	req := request("2024-02-21", "2024-02-19")
	req.Rules = models.RuleSet{LeadPeriod: 3}
	obs := &recordingObserver{}
	res := NewValidator(nil, nil, obs).Validate(req)

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[0], ErrStartTooSoon)
	assert.ErrorIs(t, res.Errors[1], ErrEndBeforeStart)
	assert.Equal(t, []bool{false}, obs.valid)
	assert.Equal(t, []string{"start_too_soon", "end_before_start"}, obs.reasons[0])
}

func TestValidate_EndDateMismatch(t *testing.T) {
	rules := models.RuleSet{MaxPeriod: 5, ConstraintMode: models.ModeEndDateOnly}

	req := request("2024-03-01", "2024-03-05")
	req.Rules = rules
	assert.True(t, NewValidator(nil, nil, nil).Validate(req).Valid)

	req = request("2024-03-01", "2024-03-04")
	req.Rules = rules
	res := NewValidator(nil, nil, nil).Validate(req)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], constraint.ErrEndDateMismatch)
	assert.NotErrorIs(t, res.Errors[0], ErrPeriodTooLong)
}

func TestValidate_DueDateSkipsPeriodCheck(t *testing.T) {
	due := day("2024-03-14")
	req := request("2024-03-01", "2024-03-14")
	req.Rules = models.RuleSet{MaxPeriod: 5, ConstraintMode: models.ModeEndDateOnly, CalculatedDueDate: &due}

	res := NewValidator(nil, nil, nil).Validate(req)
	assert.True(t, res.Valid, res.Messages())
}

func TestValidate_PastDueDateKeepsPeriodCheck(t *testing.T) {
	due := day("2024-03-05")
	req := request("2024-03-10", "2024-03-20")
	req.Rules = models.RuleSet{MaxPeriod: 5, ConstraintMode: models.ModeEndDateOnly, CalculatedDueDate: &due}

	res := NewValidator(nil, nil, nil).Validate(req)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[0], ErrPeriodTooLong)
	assert.ErrorIs(t, res.Errors[1], constraint.ErrEndDateMismatch)
	assert.Contains(t, res.Messages()[1], "expected 2024-03-14")
}

func TestValidate_IssueLengthIsMaxPeriod(t *testing.T) {
	req := request("2024-03-01", "2024-03-10")
	req.Rules = models.RuleSet{IssueLength: 7, RenewalPeriod: 7, RenewalsAllowed: 2}

	res := NewValidator(nil, nil, nil).Validate(req)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrPeriodTooLong)
	require.NotNil(t, res.NewMaxEndDate)
	assert.Equal(t, "2024-03-07", dates.Key(*res.NewMaxEndDate))
}

func TestValidate_LocationWestOfUTC(t *testing.T) {
	cfg := availability.DefaultConfig()
	cfg.Location = time.FixedZone("UTC-5", -5*60*60)
	v := NewValidator(availability.NewEngine(cfg, nil, nil), nil, nil)

	req := request("2024-03-01", "2024-03-05")
	req.Bookings = []models.Booking{
		{BookingID: "9", ItemID: "1", StartDate: day("2024-03-06"), EndDate: day("2024-03-08")},
	}
	res := v.Validate(req)
	assert.True(t, res.Valid, res.Messages())
	require.NotNil(t, res.NewMinEndDate)
	assert.Equal(t, "2024-03-02", dates.Key(*res.NewMinEndDate))

	req = request("2024-03-01", "2024-03-06")
	req.Bookings = []models.Booking{
		{BookingID: "9", ItemID: "1", StartDate: day("2024-03-06"), EndDate: day("2024-03-08")},
	}
	res = v.Validate(req)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrDateUnavailable)
	assert.Contains(t, res.Messages()[0], "2024-03-06")
}

func TestValidate_DateUnavailable(t *testing.T) {
	req := request("2024-03-01", "2024-03-10")
	req.Bookings = []models.Booking{
		{BookingID: "9", ItemID: "1", StartDate: day("2024-03-04"), EndDate: day("2024-03-05")},
		{BookingID: "10", ItemID: "1", StartDate: day("2024-03-08"), EndDate: day("2024-03-08")},
	}
	res := NewValidator(nil, nil, nil).Validate(req)

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrDateUnavailable)
	assert.Contains(t, res.Errors[0].Error(), "2024-03-04")

	req.EditingBookingID = "9"
	res = NewValidator(nil, nil, nil).Validate(req)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "2024-03-08")
}

func TestResult_MarshalJSON(t *testing.T) {
	req := request("2024-03-01", "2024-03-10")
	req.Rules = models.RuleSet{MaxPeriod: 7}
	res := NewValidator(nil, nil, nil).Validate(req)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"valid": false,
		"errors": ["booking period exceeds maximum: 10 days, maximum is 7"],
		"newMinEndDate": "2024-03-02",
		"newMaxEndDate": "2024-03-07"
	}`, string(data))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "date_unavailable", Reason(ErrDateUnavailable))
	assert.Equal(t, "end_date_mismatch", Reason(constraint.ErrEndDateMismatch))
	assert.Equal(t, "other", Reason(assert.AnError))
}
