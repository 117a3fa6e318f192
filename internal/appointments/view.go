package appointments

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/status"
)

const (
	cancelFeeNotice  = "Khi hủy lịch hẹn, bạn sẽ mất phí đặt lịch."
	noInformation    = "Không có thông tin"
	notAvailable     = "N/A"
	paymentRetryNote = "Bạn đã hoàn tất thủ tục thanh toán, vui lòng chờ lịch hẹn và khám bệnh."
)

// urgentHours marks appointments close enough to be highlighted.
const urgentHours = 24

// AppointmentView is the display-ready booking detail.
type AppointmentView struct {
	BookingID         string           `json:"bookingId"`
	DateBooking       string           `json:"dateBooking"`
	DateLabel         string           `json:"dateLabel"`
	StartTime         string           `json:"startTime"`
	EndTime           string           `json:"endTime"`
	Status            string           `json:"status"`
	StatusLabel       string           `json:"statusLabel"`
	RawStatus         string           `json:"rawStatus"`
	Note              string           `json:"note"`
	Description       string           `json:"description"`
	Service           ServiceView      `json:"service"`
	Doctor            DoctorView       `json:"doctor"`
	Payment           *PaymentView     `json:"payment,omitempty"`
	Examination       *ExaminationView `json:"examination,omitempty"`
	Eligibility       Eligibility      `json:"eligibility"`
	ShowTimeRemaining bool             `json:"showTimeRemaining"`
	Urgent            bool             `json:"urgent"`
	CancelFeeNotice   string           `json:"cancelFeeNotice,omitempty"`
	PaymentPrompt     *PaymentPrompt   `json:"paymentPrompt,omitempty"`
}

type ServiceView struct {
	Name       string   `json:"name"`
	Price      *float64 `json:"price,omitempty"`
	PriceLabel string   `json:"priceLabel"`
}

type DoctorView struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

type PaymentView struct {
	PaymentID   string   `json:"paymentId"`
	TotalAmount *float64 `json:"totalAmount,omitempty"`
	AmountLabel string   `json:"amountLabel"`
	Method      string   `json:"method"`
	Status      string   `json:"status"`
	StatusLabel string   `json:"statusLabel"`
	RetryNotice string   `json:"retryNotice,omitempty"`
}

type ExaminationView struct {
	ExaminationID   string `json:"examinationId"`
	ExaminationDate string `json:"examinationDate"`
	DateLabel       string `json:"dateLabel"`
	Description     string `json:"description"`
	Result          string `json:"result"`
	Status          string `json:"status"`
	StatusLabel     string `json:"statusLabel"`
}

// PaymentPrompt asks the patient to finish paying for a booking.
type PaymentPrompt struct {
	Headline    string   `json:"headline"`
	Message     string   `json:"message"`
	ServiceName string   `json:"serviceName"`
	DoctorName  string   `json:"doctorName"`
	Amount      *float64 `json:"amount,omitempty"`
	AmountLabel string   `json:"amountLabel"`
	PayNowLink  string   `json:"payNowLink,omitempty"`
}

// BuildView assembles the detail view of b from its eligibility.
func BuildView(b backend.Booking, e Eligibility) AppointmentView {
	v := AppointmentView{
		BookingID:         b.BookingID,
		DateBooking:       b.DateBooking,
		DateLabel:         formatDate(b.DateBooking),
		Status:            string(status.ParseBooking(b.Status)),
		StatusLabel:       status.BookingLabel(b.Status),
		RawStatus:         b.Status,
		Note:              orDefault(b.Note, "Không có ghi chú"),
		Description:       orDefault(b.Description, "Không có mô tả"),
		Eligibility:       e,
		ShowTimeRemaining: e.DateInFuture,
		Urgent:            e.HoursRemaining < urgentHours,
	}
	if b.Slot != nil {
		v.StartTime = b.Slot.StartTime
		v.EndTime = b.Slot.EndTime
	}

	v.Service = ServiceView{Name: noInformation, PriceLabel: notAvailable}
	if b.Service != nil {
		v.Service.Name = orDefault(b.Service.Name, noInformation)
		v.Service.Price = b.Service.Price
		v.Service.PriceLabel = formatAmount(b.Service.Price)
	}

	v.Doctor = DoctorView{Name: noInformation, Specialization: noInformation, Email: noInformation, Phone: noInformation}
	if b.Doctor != nil {
		v.Doctor = DoctorView{
			Name:           orDefault(b.Doctor.DoctorName, noInformation),
			Specialization: orDefault(b.Doctor.Specialization, noInformation),
			Email:          orDefault(b.Doctor.Email, noInformation),
			Phone:          orDefault(b.Doctor.Phone, noInformation),
		}
	}

	if p := b.Payment; p != nil {
		v.Payment = &PaymentView{
			PaymentID:   p.PaymentID,
			TotalAmount: p.TotalAmount,
			AmountLabel: formatAmount(p.TotalAmount),
			Method:      orDefault(p.Method, noInformation),
			Status:      p.Status,
			StatusLabel: status.PaymentLabel(p.Status),
		}
		if status.Canonical(p.Status) == status.Canonical(status.PaymentTryAgain) {
			v.Payment.RetryNotice = paymentRetryNote
		}
	}

	if x := b.Examination; x != nil {
		v.Examination = &ExaminationView{
			ExaminationID:   x.ExaminationID,
			ExaminationDate: x.ExaminationDate,
			DateLabel:       formatDate(x.ExaminationDate),
			Description:     orDefault(x.ExaminationDescription, "Không có mô tả"),
			Result:          orDefault(x.Result, "Chưa có kết quả"),
			Status:          x.Status,
			StatusLabel:     status.ExaminationLabel(x.Status),
		}
	}

	if e.CanCancel {
		v.CancelFeeNotice = cancelFeeNotice
	}
	v.PaymentPrompt = buildPaymentPrompt(b)
	return v
}

// buildPaymentPrompt returns nil unless the booking still waits on payment.
func buildPaymentPrompt(b backend.Booking) *PaymentPrompt {
	bookingStatus := status.ParseBooking(b.Status)
	if bookingStatus == status.BookingCancelled {
		return nil
	}
	paymentPending := b.Payment != nil && status.IsPaymentPending(b.Payment.Status)
	if bookingStatus != status.BookingPending && b.Payment != nil && !paymentPending {
		return nil
	}

	p := &PaymentPrompt{
		Headline:    "Hoàn tất thanh toán",
		Message:     "Lịch hẹn của bạn sẽ được cập nhật sau khi thanh toán thành công.",
		ServiceName: notAvailable,
		DoctorName:  notAvailable,
		PayNowLink:  "/patient/payment/" + b.BookingID,
	}
	if paymentPending {
		p.Headline = "Lịch hẹn sẽ được cập nhật sau"
	}
	if b.Payment != nil && status.IsPaymentDone(b.Payment.Status) {
		p.Message = "Bạn đã thanh toán thành công. Vui lòng chờ admin xác nhận, lịch hẹn sẽ được cập nhật trạng thái."
		p.PayNowLink = ""
	}
	if b.Service != nil && b.Service.Name != "" {
		p.ServiceName = b.Service.Name
	}
	if b.Doctor != nil && b.Doctor.DoctorName != "" {
		p.DoctorName = b.Doctor.DoctorName
	}

	switch {
	case b.Payment != nil && b.Payment.TotalAmount != nil && *b.Payment.TotalAmount != 0:
		p.Amount = b.Payment.TotalAmount
	case b.Service != nil && b.Service.Price != nil:
		p.Amount = b.Service.Price
	}
	p.AmountLabel = formatAmount(p.Amount)
	return p
}

// formatDate renders an ISO date as d/m/yyyy on the UTC calendar.
func formatDate(raw string) string {
	t, ok := parseBookingDate(raw, ClinicZone)
	if !ok {
		return raw
	}
	return t.UTC().Format("2/1/2006")
}

// formatAmount renders a VND amount with Vietnamese digit grouping.
func formatAmount(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return message.NewPrinter(language.Vietnamese).Sprint(number.Decimal(*v, number.MaxFractionDigits(3))) + " VND"
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
