package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/observability/metrics"
	"github.com/fertilitycare/patient-portal/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, logging.Default(), WithMetrics(metrics.NewPortalMetrics(prometheus.NewRegistry())))
}

func TestClient_GetMyBookings_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/Booking/my-bookings" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"bookingId":"BK-1","doctorId":"D-1","dateBooking":"2025-06-10","status":"pending",
			"slot":{"startTime":"08:00","endTime":"08:30"},"service":{"name":"Tư vấn IVF","price":500000},
			"doctor":null,"payment":null,"examination":null}]`))
	})

	bookings, err := client.GetMyBookings(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "BK-1", bookings[0].BookingID)
	require.NotNil(t, bookings[0].Slot)
	assert.Equal(t, "08:00", bookings[0].Slot.StartTime)
	require.NotNil(t, bookings[0].Service.Price)
	assert.Equal(t, 500000.0, *bookings[0].Service.Price)
	assert.Nil(t, bookings[0].Doctor)
	assert.Nil(t, bookings[0].Payment)
}

func TestClient_GetMyBookings_Envelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"bookingId":"BK-2","status":"Đã hủy"}]}`))
	})

	bookings, err := client.GetMyBookings(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Đã hủy", bookings[0].Status)
}

func TestClient_GetMyBookings_NullBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	bookings, err := client.GetMyBookings(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestClient_CancelBooking(t *testing.T) {
	var gotPath, gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.CancelBooking(context.Background(), "tok", "BK-9"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/Booking/cancel/BK-9", gotPath)
}

func TestClient_CancelBooking_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Lịch hẹn đã được thanh toán"}`))
	})

	err := client.CancelBooking(context.Background(), "tok", "BK-9")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetworkFailure, apperr.KindOf(err))
	assert.Equal(t, "Lịch hẹn đã được thanh toán", apperr.MessageOf(err))
}

func TestClient_GetPatientIDFromUserID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/Patient/by-user/U-1" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"patientId":"P-1"}}`))
	})

	id, err := client.GetPatientIDFromUserID(context.Background(), "tok", "U-1")
	require.NoError(t, err)
	assert.Equal(t, "P-1", id)
}

func TestClient_GetPatientIDFromUserID_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no patient", http.StatusNotFound)
	})

	_, err := client.GetPatientIDFromUserID(context.Background(), "tok", "U-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestClient_GetTreatmentPlans(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/TreatmentPlan/patient/P-1" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"treatmentPlanId":"TP-1","doctorId":"D-1","method":"IVF","startDate":"2025-05-01",
			"status":"In-Progress","doctor":{"doctorName":"BS. Trần Minh"},
			"treatmentProcesses":[{"method":"Kích thích buồng trứng","status":"Completed","actualDate":"2025-05-03"}]}]`))
	})

	plans, err := client.GetTreatmentPlansByPatient(context.Background(), "tok", "P-1")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "BS. Trần Minh", plans[0].Doctor.DoctorName)
	require.Len(t, plans[0].TreatmentProcesses, 1)
	assert.Equal(t, "Completed", plans[0].TreatmentProcesses[0].Status)
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"bookingId":`))
	})

	_, err := client.GetMyBookings(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetworkFailure, apperr.KindOf(err))
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()
	client := NewClient(ts.URL, nil)

	_, err := client.GetMyBookings(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetworkFailure, apperr.KindOf(err))
}
