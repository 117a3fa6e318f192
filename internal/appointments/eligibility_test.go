package appointments

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/fertilitycare/patient-portal/internal/backend"
)

func clock(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func slotBooking(date, start, bookingStatus string) backend.Booking {
	return backend.Booking{
		BookingID:   "BK-1",
		DoctorID:    "D-1",
		DateBooking: date,
		Status:      bookingStatus,
		Slot:        &backend.Slot{StartTime: start, EndTime: "09:00"},
	}
}

func TestEvaluateExactlyAtThresholdIsRefused(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T08:00:00+07:00"))

	e := calc.Evaluate(slotBooking("2025-06-10", "08:00", "pending"))

	assert.Equal(t, 24, e.HoursRemaining)
	assert.Equal(t, "24 hours", e.TimeRemainingLabel)
	assert.Equal(t, "Còn 24 giờ", e.TimeRemainingText)
	assert.Equal(t, SourceSlot, e.Source)
	assert.True(t, e.DateInFuture)
	assert.False(t, e.CanCancel)
	assert.Equal(t, "Không thể hủy lịch hẹn khi Còn 24 giờ đến lịch hẹn. Vui lòng liên hệ trực tiếp với phòng khám để hủy lịch hẹn.", e.RefusalReason)
}

func TestEvaluateAboveThresholdIsPermitted(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T07:00:00+07:00"))

	e := calc.Evaluate(slotBooking("2025-06-10", "08:00", "pending"))

	assert.Equal(t, 25, e.HoursRemaining)
	assert.True(t, e.CanCancel)
	assert.Empty(t, e.RefusalReason)
	require.NotNil(t, e.AppointmentAt)
	assert.True(t, e.AppointmentAt.Equal(time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)))
}

func TestEvaluateTerminalStatusesNeverCancel(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-01T08:00:00+07:00"))

	for _, s := range []string{"Đã khám", "done", "EXAMINED", "cancelled", "Canceled", "Đã hủy", norm.NFD.String("ĐÃ HỦY")} {
		t.Run(s, func(t *testing.T) {
			e := calc.Evaluate(slotBooking("2025-06-10", "08:00", s))
			assert.Greater(t, e.HoursRemaining, 200)
			assert.False(t, e.CanCancel)
			assert.Equal(t, "Lịch hẹn này không thể hủy.", e.RefusalReason)
		})
	}
}

func TestEvaluateRoundsHalfHoursUp(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T07:30:00+07:00"))

	e := calc.Evaluate(slotBooking("2025-06-10", "08:00", "pending"))

	assert.Equal(t, 25, e.HoursRemaining)
	assert.True(t, e.CanCancel)
}

func TestEvaluateAcceptsSlotWithSeconds(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T08:00:00+07:00"))

	e := calc.Evaluate(slotBooking("2025-06-10T00:00:00", "10:00:00", "pending"))

	assert.Equal(t, SourceSlot, e.Source)
	assert.Equal(t, 26, e.HoursRemaining)
}

func TestEvaluateFallsBackToBookingDateWithoutSlot(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T10:00:00+07:00"))

	e := calc.Evaluate(backend.Booking{BookingID: "BK-2", DateBooking: "2025-06-12T10:00:00+07:00", Status: "pending"})

	assert.Equal(t, SourceDate, e.Source)
	assert.Equal(t, 72, e.HoursRemaining)
	assert.Equal(t, "3 days", e.TimeRemainingLabel)
	assert.Equal(t, "Còn 3 ngày", e.TimeRemainingText)
	assert.True(t, e.CanCancel)
}

func TestEvaluateFallsBackWhenSlotUnparsable(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T00:00:00Z"))

	e := calc.Evaluate(slotBooking("2025-06-10", "8am", "pending"))

	assert.Equal(t, SourceDate, e.Source)
	assert.Equal(t, 24, e.HoursRemaining)
}

func TestEvaluateMalformedDateNeverFails(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-09T00:00:00Z"))

	for _, b := range []backend.Booking{
		{BookingID: "BK-3", DateBooking: "not a date", Status: "pending"},
		{BookingID: "BK-4", DateBooking: "", Status: "pending", Slot: &backend.Slot{StartTime: "08:00"}},
	} {
		e := calc.Evaluate(b)
		assert.Equal(t, 0, e.HoursRemaining)
		assert.Equal(t, SourceUnknown, e.Source)
		assert.Nil(t, e.AppointmentAt)
		assert.False(t, e.DateInFuture)
		assert.False(t, e.CanCancel)
		assert.Equal(t, "under 1 hour", e.TimeRemainingLabel)
	}
}

func TestEvaluatePastAppointment(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-11T08:00:00+07:00"))

	e := calc.Evaluate(slotBooking("2025-06-10", "08:00", "pending"))

	assert.Equal(t, -24, e.HoursRemaining)
	assert.Equal(t, "past due", e.TimeRemainingLabel)
	assert.Equal(t, "Đã quá thời gian hẹn", e.TimeRemainingText)
	assert.False(t, e.DateInFuture)
	assert.Equal(t, "Lịch hẹn này không thể hủy.", e.RefusalReason)
}

func TestEvaluateCustomThreshold(t *testing.T) {
	calc := NewCalculator(Policy{MinHoursToCancel: 48}, clock("2025-06-09T08:00:00+07:00"))

	e := calc.Evaluate(slotBooking("2025-06-11", "08:00", "pending"))

	assert.Equal(t, 48, e.HoursRemaining)
	assert.False(t, e.CanCancel)
	assert.Equal(t, ClinicZone, calc.Policy().Zone)
}

func TestFormatTimeRemaining(t *testing.T) {
	tests := []struct {
		hours float64
		en    string
		vi    string
	}{
		{-5, "past due", "Đã quá thời gian hẹn"},
		{0, "under 1 hour", "Còn dưới 1 giờ"},
		{0.5, "under 1 hour", "Còn dưới 1 giờ"},
		{1, "1 hour", "Còn 1 giờ"},
		{5, "5 hours", "Còn 5 giờ"},
		{24, "24 hours", "Còn 24 giờ"},
		{25, "1 day 1 hour", "Còn 1 ngày 1 giờ"},
		{30, "1 day 6 hours", "Còn 1 ngày 6 giờ"},
		{48, "2 days", "Còn 2 ngày"},
		{49, "2 days 1 hour", "Còn 2 ngày 1 giờ"},
		{100, "4 days 4 hours", "Còn 4 ngày 4 giờ"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.hours), func(t *testing.T) {
			assert.Equal(t, tt.en, FormatTimeRemaining(tt.hours))
			assert.Equal(t, tt.vi, FormatTimeRemainingVI(tt.hours))
		})
	}
}

func TestJSRound(t *testing.T) {
	assert.Equal(t, 3, jsRound(2.5))
	assert.Equal(t, -2, jsRound(-2.5))
	assert.Equal(t, -3, jsRound(-2.6))
	assert.Equal(t, 0, jsRound(0.49))
}

func TestParseBookingDate(t *testing.T) {
	bare, ok := parseBookingDate("2025-06-10", ClinicZone)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), bare.UTC())

	local, ok := parseBookingDate("2025-06-10T08:00:00", ClinicZone)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC), local.UTC())

	withMillis, ok := parseBookingDate("2025-06-10T08:00:00.000Z", ClinicZone)
	require.True(t, ok)
	assert.Equal(t, 8, withMillis.Hour())

	_, ok = parseBookingDate("10/06/2025", ClinicZone)
	assert.False(t, ok)
}
