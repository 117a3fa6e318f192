// Package appointments computes how long a patient has until an appointment,
// whether it may still be cancelled, and the detail view built around it.
package appointments

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/status"
)

// DefaultMinHoursToCancel is the cancellation cut-off. An appointment may be
// cancelled only while strictly more hours than this remain.
const DefaultMinHoursToCancel = 24

// ClinicZone is the clinic's wall-clock zone. Slot times carry no zone and are
// always read in it.
var ClinicZone = time.FixedZone("UTC+7", 7*60*60)

const (
	msgNotCancellable = "Lịch hẹn này không thể hủy."
	msgTooLateFormat  = "Không thể hủy lịch hẹn khi %s đến lịch hẹn. Vui lòng liên hệ trực tiếp với phòng khám để hủy lịch hẹn."
)

// Policy holds the clinic's cancellation rules.
type Policy struct {
	MinHoursToCancel int
	Zone             *time.Location
}

// DefaultPolicy returns the 24 hour rule in the clinic zone.
func DefaultPolicy() Policy {
	return Policy{MinHoursToCancel: DefaultMinHoursToCancel, Zone: ClinicZone}
}

// Source names how the appointment instant was determined.
type Source string

const (
	SourceSlot    Source = "slot"
	SourceDate    Source = "date"
	SourceUnknown Source = "unknown"
)

// Eligibility is the outcome of evaluating one booking at one instant.
type Eligibility struct {
	HoursRemaining     int        `json:"hoursRemaining"`
	TimeRemainingText  string     `json:"timeRemainingText"`
	TimeRemainingLabel string     `json:"timeRemainingLabel"`
	CanCancel          bool       `json:"canCancel"`
	DateInFuture       bool       `json:"dateInFuture"`
	AppointmentAt      *time.Time `json:"appointmentAt,omitempty"`
	Source             Source     `json:"source"`
	RefusalReason      string     `json:"refusalReason,omitempty"`
}

// Calculator evaluates bookings against a policy. It never fails: missing or
// malformed dates degrade to zero hours remaining.
type Calculator struct {
	policy Policy
	now    func() time.Time
}

// NewCalculator builds a calculator; a nil clock means time.Now.
func NewCalculator(policy Policy, now func() time.Time) *Calculator {
	if policy.Zone == nil {
		policy.Zone = ClinicZone
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{policy: policy, now: now}
}

// Policy returns the rules the calculator applies.
func (c *Calculator) Policy() Policy { return c.policy }

// Evaluate computes the remaining time and cancellation permission of b.
func (c *Calculator) Evaluate(b backend.Booking) Eligibility {
	now := c.now()

	at, source := c.appointmentInstant(b)
	var hours int
	if source != SourceUnknown {
		hours = jsRound(at.Sub(now).Hours())
	}

	e := Eligibility{
		HoursRemaining:     hours,
		TimeRemainingText:  FormatTimeRemainingVI(float64(hours)),
		TimeRemainingLabel: FormatTimeRemaining(float64(hours)),
		Source:             source,
	}
	if source != SourceUnknown {
		e.AppointmentAt = &at
	}
	if booked, ok := parseBookingDate(b.DateBooking, c.policy.Zone); ok {
		e.DateInFuture = booked.After(now)
	}

	switch {
	case status.ParseBooking(b.Status).IsTerminal() || !e.DateInFuture:
		e.RefusalReason = msgNotCancellable
	case hours <= c.policy.MinHoursToCancel:
		e.RefusalReason = fmt.Sprintf(msgTooLateFormat, e.TimeRemainingText)
	default:
		e.CanCancel = true
	}
	return e
}

// appointmentInstant prefers the slot start on the booking's calendar date and
// falls back to the stored booking date.
func (c *Calculator) appointmentInstant(b backend.Booking) (time.Time, Source) {
	if b.Slot != nil && strings.TrimSpace(b.Slot.StartTime) != "" {
		date, _, _ := strings.Cut(strings.TrimSpace(b.DateBooking), "T")
		if at, err := parseSlotInstant(date, strings.TrimSpace(b.Slot.StartTime), c.policy.Zone); err == nil {
			return at, SourceSlot
		}
	}
	if at, ok := parseBookingDate(b.DateBooking, c.policy.Zone); ok {
		return at, SourceDate
	}
	return time.Time{}, SourceUnknown
}

func parseSlotInstant(date, start string, zone *time.Location) (time.Time, error) {
	if at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, zone); err == nil {
		return at, nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", date+" "+start, zone)
}

// parseBookingDate reads dateBooking the way browsers do: an RFC 3339 value
// is absolute, a bare date is UTC midnight, and a zoneless date-time is local
// to the clinic.
func parseBookingDate(raw string, zone *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, zone); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// jsRound rounds half toward positive infinity, matching Math.round.
func jsRound(x float64) int {
	return int(math.Floor(x + 0.5))
}

// FormatTimeRemaining renders hours as English text ("1 day 6 hours").
func FormatTimeRemaining(hours float64) string {
	switch {
	case hours < 0:
		return "past due"
	case hours < 1:
		return "under 1 hour"
	case hours <= 24:
		return plural(hours, "hour")
	}
	days, rest := splitDays(hours)
	if rest == 0 {
		return plural(days, "day")
	}
	return plural(days, "day") + " " + plural(rest, "hour")
}

// FormatTimeRemainingVI renders hours as the Vietnamese text shown to patients.
func FormatTimeRemainingVI(hours float64) string {
	switch {
	case hours < 0:
		return "Đã quá thời gian hẹn"
	case hours < 1:
		return "Còn dưới 1 giờ"
	case hours <= 24:
		return "Còn " + formatNumber(hours) + " giờ"
	}
	days, rest := splitDays(hours)
	if rest == 0 {
		return "Còn " + formatNumber(days) + " ngày"
	}
	return "Còn " + formatNumber(days) + " ngày " + formatNumber(rest) + " giờ"
}

func splitDays(hours float64) (float64, float64) {
	return math.Floor(hours / 24), math.Mod(hours, 24)
}

func plural(n float64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return formatNumber(n) + " " + unit + "s"
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
