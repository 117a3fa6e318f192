package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/session"
)

func newTestRouter(t *testing.T, src *fakeSource, now string) http.Handler {
	t.Helper()
	h := NewHandler(newTestService(t, src, &memoryRecorder{}, now), nil)
	r := chi.NewRouter()
	r.Mount("/api/v1/appointments", h.Routes())
	return r
}

func withPatient(req *http.Request) *http.Request {
	return req.WithContext(session.WithIdentity(req.Context(), patient))
}

func TestHandlerRequiresSession(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, "2025-06-05T08:00:00+07:00")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/BK-1", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandlerDetail(t *testing.T) {
	src := &fakeSource{bookings: []backend.Booking{slotBooking("2025-06-10", "08:00", "pending")}}
	router := newTestRouter(t, src, "2025-06-05T08:00:00+07:00")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withPatient(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/BK-1", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var view AppointmentView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "BK-1", view.BookingID)
	assert.True(t, view.Eligibility.CanCancel)
	assert.Equal(t, "Còn 5 ngày", view.Eligibility.TimeRemainingText)
}

func TestHandlerCancelPolicyViolation(t *testing.T) {
	src := &fakeSource{bookings: []backend.Booking{slotBooking("2025-06-10", "08:00", "pending")}}
	router := newTestRouter(t, src, "2025-06-09T20:00:00+07:00")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withPatient(httptest.NewRequest(http.MethodPost, "/api/v1/appointments/BK-1/cancel", nil)))

	require.Equal(t, http.StatusConflict, rr.Code)
	var body apperr.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, apperr.KindPolicyViolation, body.Error.Kind)
	assert.Contains(t, body.Error.Message, "Còn 12 giờ")
	assert.Empty(t, src.cancelCalls)
}

func TestHandlerCancelSuccess(t *testing.T) {
	src := &fakeSource{bookings: []backend.Booking{slotBooking("2025-06-10", "08:00", "pending")}}
	router := newTestRouter(t, src, "2025-06-01T08:00:00+07:00")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withPatient(httptest.NewRequest(http.MethodPost, "/api/v1/appointments/BK-1/cancel", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	var res CancelResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, MsgCancelled, res.Message)
	assert.Equal(t, "cancelled", res.Appointment.Status)
}

func TestHandlerListAndNotFound(t *testing.T) {
	src := &fakeSource{bookings: []backend.Booking{slotBooking("2025-06-10", "08:00", "pending")}}
	router := newTestRouter(t, src, "2025-06-01T08:00:00+07:00")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withPatient(httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Appointments []AppointmentView `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Appointments, 1)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/BK-9", nil).WithContext(session.WithIdentity(context.Background(), patient))
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
