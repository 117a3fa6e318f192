package appointments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fertilitycare/patient-portal/internal/backend"
)

func ptr(v float64) *float64 { return &v }

func TestBuildViewCancellable(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-05T08:00:00+07:00"))
	b := slotBooking("2025-06-10", "08:00", "pending")
	b.Service = &backend.Service{Name: "Khám hiếm muộn", Price: ptr(500000)}
	b.Doctor = &backend.Doctor{DoctorName: "BS. Lan", Specialization: "IVF"}
	b.Payment = &backend.Payment{PaymentID: "P-1", TotalAmount: ptr(500000), Status: "done"}

	v := BuildView(b, calc.Evaluate(b))

	assert.Equal(t, "pending", v.Status)
	assert.Equal(t, "Đã đặt lịch", v.StatusLabel)
	assert.Equal(t, "10/6/2025", v.DateLabel)
	assert.Equal(t, "08:00", v.StartTime)
	assert.Equal(t, "Không có ghi chú", v.Note)
	assert.Equal(t, "Không có mô tả", v.Description)
	assert.Equal(t, "BS. Lan", v.Doctor.Name)
	assert.Equal(t, "Không có thông tin", v.Doctor.Email)
	assert.Equal(t, "500.000 VND", v.Service.PriceLabel)
	assert.True(t, v.ShowTimeRemaining)
	assert.False(t, v.Urgent)
	assert.Equal(t, "Khi hủy lịch hẹn, bạn sẽ mất phí đặt lịch.", v.CancelFeeNotice)
	require.NotNil(t, v.Payment)
	assert.Equal(t, "Bạn đã thanh toán, chờ cập nhật mới nhất từ hệ thống", v.Payment.StatusLabel)

	// pending booking still prompts, but a settled payment has no pay link
	require.NotNil(t, v.PaymentPrompt)
	assert.Empty(t, v.PaymentPrompt.PayNowLink)
	assert.Equal(t, "Hoàn tất thanh toán", v.PaymentPrompt.Headline)
}

func TestBuildViewUrgentWithoutFeeNotice(t *testing.T) {
	calc := NewCalculator(DefaultPolicy(), clock("2025-06-10T02:00:00+07:00"))
	b := slotBooking("2025-06-10", "08:00", "Đã khám")
	b.Payment = &backend.Payment{PaymentID: "P-1", Status: "done"}

	v := BuildView(b, calc.Evaluate(b))

	assert.True(t, v.Urgent)
	assert.Empty(t, v.CancelFeeNotice)
	assert.Nil(t, v.PaymentPrompt)
	assert.Equal(t, "examined", v.Status)
}

func TestPaymentPrompt(t *testing.T) {
	t.Run("missing payment uses service price", func(t *testing.T) {
		b := backend.Booking{BookingID: "BK-9", Status: "Đã khám", Service: &backend.Service{Name: "IUI", Price: ptr(1500000)}}
		p := buildPaymentPrompt(b)
		require.NotNil(t, p)
		assert.Equal(t, "Hoàn tất thanh toán", p.Headline)
		assert.Equal(t, "/patient/payment/BK-9", p.PayNowLink)
		assert.Equal(t, 1500000.0, *p.Amount)
		assert.Equal(t, "1.500.000 VND", p.AmountLabel)
		assert.Equal(t, "IUI", p.ServiceName)
		assert.Equal(t, "N/A", p.DoctorName)
	})

	t.Run("pending payment changes headline", func(t *testing.T) {
		b := backend.Booking{BookingID: "BK-9", Status: "Chờ thanh toán", Payment: &backend.Payment{Status: "Pending", TotalAmount: ptr(200000)}}
		p := buildPaymentPrompt(b)
		require.NotNil(t, p)
		assert.Equal(t, "Lịch hẹn sẽ được cập nhật sau", p.Headline)
		assert.Equal(t, 200000.0, *p.Amount)
		assert.NotEmpty(t, p.PayNowLink)
	})

	t.Run("cancelled bookings never prompt", func(t *testing.T) {
		for _, s := range []string{"cancelled", "Đã hủy"} {
			assert.Nil(t, buildPaymentPrompt(backend.Booking{Status: s}))
		}
	})

	t.Run("settled non-pending booking has no prompt", func(t *testing.T) {
		b := backend.Booking{Status: "Đã khám", Payment: &backend.Payment{Status: "done"}}
		assert.Nil(t, buildPaymentPrompt(b))
	})

	t.Run("no amount anywhere", func(t *testing.T) {
		p := buildPaymentPrompt(backend.Booking{Status: "pending"})
		require.NotNil(t, p)
		assert.Nil(t, p.Amount)
		assert.Equal(t, "N/A", p.AmountLabel)
	})
}

func TestBuildViewExaminationLabels(t *testing.T) {
	b := backend.Booking{
		BookingID:   "BK-5",
		DateBooking: "2025-06-10",
		Status:      "Đã khám",
		Examination: &backend.Examination{ExaminationID: "E-1", ExaminationDate: "2025-06-10", Status: "Completed"},
	}
	v := BuildView(b, Eligibility{})

	require.NotNil(t, v.Examination)
	assert.Equal(t, "Đã hoàn thành", v.Examination.StatusLabel)
	assert.Equal(t, "Chưa có kết quả", v.Examination.Result)
	assert.Equal(t, "Không có mô tả", v.Examination.Description)
	assert.Equal(t, "Không có thông tin", v.Service.Name)
	assert.Equal(t, "N/A", v.Service.PriceLabel)
}

func TestFormatDateKeepsUnparsable(t *testing.T) {
	assert.Equal(t, "hôm nay", formatDate("hôm nay"))
	assert.Equal(t, "1/12/2025", formatDate("2025-12-01T00:00:00Z"))
}
