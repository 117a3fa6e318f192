// Package status turns the backend's free-form status strings into closed
// enumerations. Every comparison in the portal runs on these values, never on
// raw strings.
package status

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Canonical applies the single normalization step used before any status
// comparison: NFC composition, trimming and Unicode case folding.
func Canonical(raw string) string {
	s := norm.NFC.String(strings.TrimSpace(raw))
	return cases.Fold().String(s)
}

// compact drops word separators so "in-progress", "In Progress" and
// "InProgress" collapse to the same key.
func compact(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// BookingStatus is the canonical state of a booking.
type BookingStatus string

const (
	BookingPending         BookingStatus = "pending"
	BookingAwaitingPayment BookingStatus = "awaiting_payment"
	BookingCancelled       BookingStatus = "cancelled"
	BookingExamined        BookingStatus = "examined"
	BookingExpired         BookingStatus = "expired"
	BookingUnknown         BookingStatus = "unknown"
)

var bookingAliases = map[string]BookingStatus{
	"pending":        BookingPending,
	"đã đặt lịch":    BookingPending,
	"chờ thanh toán": BookingAwaitingPayment,
	"cancelled":      BookingCancelled,
	"canceled":       BookingCancelled,
	"đã hủy":         BookingCancelled,
	"đã huỷ":         BookingCancelled,
	"done":           BookingExamined,
	"examined":       BookingExamined,
	"đã khám":        BookingExamined,
	"expired":        BookingExpired,
	"đã quá hạn":     BookingExpired,
}

// ParseBooking maps an English or Vietnamese booking status onto its canonical value.
func ParseBooking(raw string) BookingStatus {
	if s, ok := bookingAliases[Canonical(raw)]; ok {
		return s
	}
	return BookingUnknown
}

// IsTerminal reports whether no further patient action is possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingExamined || s == BookingCancelled
}

// BookingLabel returns the Vietnamese label shown to patients; unknown values
// are displayed as received.
func BookingLabel(raw string) string {
	switch ParseBooking(raw) {
	case BookingPending:
		return "Đã đặt lịch"
	case BookingAwaitingPayment:
		return "Chờ thanh toán"
	case BookingCancelled:
		return "Đã hủy"
	case BookingExamined:
		return "Đã khám"
	case BookingExpired:
		return "Đã quá hạn"
	default:
		return raw
	}
}

// ProcessStatus is the state of one treatment stage.
type ProcessStatus string

const (
	ProcessPending    ProcessStatus = "Pending"
	ProcessInProgress ProcessStatus = "InProgress"
	ProcessCompleted  ProcessStatus = "Completed"
	ProcessUnknown    ProcessStatus = "Unknown"
)

// ParseProcess maps a treatment-process status onto its canonical value.
func ParseProcess(raw string) ProcessStatus {
	switch compact(Canonical(raw)) {
	case "pending":
		return ProcessPending
	case "inprogress":
		return ProcessInProgress
	case "completed":
		return ProcessCompleted
	default:
		return ProcessUnknown
	}
}

// PlanBucket is one of the three filter buckets of the treatment dashboard.
type PlanBucket string

const (
	PlanInProgress PlanBucket = "in-progress"
	PlanCompleted  PlanBucket = "completed"
	PlanCancelled  PlanBucket = "cancelled"
)

var planAliases = map[string]PlanBucket{
	"in-progress":    PlanInProgress,
	"đang thực hiện": PlanInProgress,
	"completed":      PlanCompleted,
	"đã hoàn thành":  PlanCompleted,
	"cancelled":      PlanCancelled,
	"đã hủy":         PlanCancelled,
	"đã huỷ":         PlanCancelled,
}

// PlanStatus returns the displayed status of a plan: the raw value lower-cased,
// with localized spellings of the three buckets mapped onto them.
func PlanStatus(raw string) string {
	if b, ok := planAliases[Canonical(raw)]; ok {
		return string(b)
	}
	return strings.ToLower(raw)
}

// ParsePlanBucket reports which bucket a displayed plan status belongs to.
// ok is false for statuses no filter recognizes.
func ParsePlanBucket(displayed string) (PlanBucket, bool) {
	b, ok := planAliases[Canonical(displayed)]
	return b, ok
}

// PlanLabel is the Vietnamese badge text for a displayed plan status. Anything
// outside the three buckets renders as cancelled, as the dashboard always has.
func PlanLabel(displayed string) string {
	b, _ := ParsePlanBucket(displayed)
	switch b {
	case PlanInProgress:
		return "Đang thực hiện"
	case PlanCompleted:
		return "Đã hoàn thành"
	default:
		return "Đã hủy"
	}
}

// PaymentStatus values sent by the payment gateway integration.
const (
	PaymentDone     = "done"
	PaymentTryAgain = "tryAgain"
	PaymentPending  = "pending"
)

// IsPaymentDone reports a settled payment.
func IsPaymentDone(raw string) bool { return Canonical(raw) == Canonical(PaymentDone) }

// IsPaymentPending reports a payment waiting for the gateway.
func IsPaymentPending(raw string) bool { return Canonical(raw) == PaymentPending }

// PaymentLabel is the patient-facing description of a payment state.
func PaymentLabel(raw string) string {
	switch Canonical(raw) {
	case "":
		return "Thông tin sẽ được cập nhật sau khi thanh toán"
	case Canonical(PaymentDone):
		return "Bạn đã thanh toán, chờ cập nhật mới nhất từ hệ thống"
	case Canonical(PaymentTryAgain):
		return "Vui lòng thanh toán"
	default:
		return raw
	}
}

// ExaminationLabel is the patient-facing description of an examination state.
func ExaminationLabel(raw string) string {
	switch compact(Canonical(raw)) {
	case "":
		return "Không có thông tin"
	case "completed":
		return "Đã hoàn thành"
	case "inprogress":
		return "Đang tiến hành"
	case "scheduled":
		return "Đã lên lịch"
	default:
		return raw
	}
}
