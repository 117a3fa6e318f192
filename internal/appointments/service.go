package appointments

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/audit"
	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/observability/metrics"
	"github.com/fertilitycare/patient-portal/internal/session"
	"github.com/fertilitycare/patient-portal/internal/status"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

var appointmentsTracer = otel.Tracer("fertilitycare.internal.appointments")

// MsgCancelled confirms a successful cancellation.
const MsgCancelled = "Hủy lịch hẹn thành công!"

// BookingSource is the part of the clinic backend the service needs.
type BookingSource interface {
	GetMyBookings(ctx context.Context, token string) ([]backend.Booking, error)
	CancelBooking(ctx context.Context, token, bookingID string) error
}

// CancelResult is returned after the backend accepted a cancellation.
type CancelResult struct {
	Message     string          `json:"message"`
	Appointment AppointmentView `json:"appointment"`
}

// Service serves appointment views and cancellations for the signed-in patient.
type Service struct {
	source   BookingSource
	calc     *Calculator
	recorder audit.Recorder
	metrics  *metrics.PortalMetrics
	logger   *logging.Logger
}

// NewService wires the service. A nil recorder disables auditing.
func NewService(source BookingSource, calc *Calculator, recorder audit.Recorder, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if source == nil {
		panic("appointments: booking source required")
	}
	if calc == nil {
		calc = NewCalculator(DefaultPolicy(), nil)
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, calc: calc, recorder: recorder, metrics: m, logger: logger}
}

// List returns every booking of the patient as a view.
func (s *Service) List(ctx context.Context, id session.Identity) ([]AppointmentView, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.list")
	defer span.End()
	span.SetAttributes(attribute.String("portal.user_id", id.UserID))

	bookings, err := s.source.GetMyBookings(ctx, id.Token)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.WithMessage(err, apperr.MsgBookingLoadFailed)
	}
	views := make([]AppointmentView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, BuildView(b, s.evaluate(b)))
	}
	return views, nil
}

// Detail returns one booking of the patient.
func (s *Service) Detail(ctx context.Context, id session.Identity, bookingID string) (AppointmentView, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.detail")
	defer span.End()
	span.SetAttributes(
		attribute.String("portal.user_id", id.UserID),
		attribute.String("portal.booking_id", bookingID),
	)

	b, err := s.find(ctx, id, bookingID)
	if err != nil {
		span.RecordError(err)
		return AppointmentView{}, err
	}
	return BuildView(b, s.evaluate(b)), nil
}

// Cancel checks the cancellation policy and, when it allows, asks the backend
// to cancel. Refusals never reach the backend.
func (s *Service) Cancel(ctx context.Context, id session.Identity, bookingID string) (CancelResult, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("portal.user_id", id.UserID),
		attribute.String("portal.booking_id", bookingID),
	)

	b, err := s.find(ctx, id, bookingID)
	if err != nil {
		span.RecordError(err)
		return CancelResult{}, err
	}

	e := s.evaluate(b)
	span.SetAttributes(
		attribute.Int("portal.hours_remaining", e.HoursRemaining),
		attribute.Bool("portal.can_cancel", e.CanCancel),
	)
	if !e.CanCancel {
		s.record(ctx, id, b.BookingID, audit.OutcomeRefused, e.RefusalReason, e.HoursRemaining)
		s.logger.Info("cancellation refused", "user_id", id.UserID, "booking_id", b.BookingID, "hours_remaining", e.HoursRemaining)
		return CancelResult{}, apperr.PolicyViolation(e.RefusalReason)
	}

	if err := s.source.CancelBooking(ctx, id.Token, b.BookingID); err != nil {
		span.RecordError(err)
		s.record(ctx, id, b.BookingID, audit.OutcomeFailed, err.Error(), e.HoursRemaining)
		s.logger.Error("cancellation failed", "user_id", id.UserID, "booking_id", b.BookingID, "error", err)
		if apperr.KindOf(err) == apperr.KindInternal {
			return CancelResult{}, apperr.WithMessage(err, apperr.MsgCancelFailed)
		}
		return CancelResult{}, err
	}

	s.record(ctx, id, b.BookingID, audit.OutcomeCancelled, "", e.HoursRemaining)
	s.logger.Info("booking cancelled", "user_id", id.UserID, "booking_id", b.BookingID)

	b.Status = string(status.BookingCancelled)
	return CancelResult{Message: MsgCancelled, Appointment: BuildView(b, s.evaluate(b))}, nil
}

func (s *Service) find(ctx context.Context, id session.Identity, bookingID string) (backend.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return backend.Booking{}, apperr.Invalid(apperr.MsgBookingIDMissing)
	}
	bookings, err := s.source.GetMyBookings(ctx, id.Token)
	if err != nil {
		return backend.Booking{}, apperr.WithMessage(err, apperr.MsgBookingLoadFailed)
	}
	for _, b := range bookings {
		if b.BookingID == bookingID {
			return b, nil
		}
	}
	return backend.Booking{}, apperr.NotFound(apperr.MsgBookingNotFound)
}

func (s *Service) evaluate(b backend.Booking) Eligibility {
	e := s.calc.Evaluate(b)
	s.metrics.ObserveEligibility(e.CanCancel, string(e.Source))
	return e
}

func (s *Service) record(ctx context.Context, id session.Identity, bookingID string, outcome audit.Outcome, reason string, hours int) {
	s.metrics.ObserveCancellation(string(outcome))
	entry := audit.Entry{
		UserID:         id.UserID,
		BookingID:      bookingID,
		Outcome:        outcome,
		Reason:         reason,
		HoursRemaining: hours,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record cancellation audit", "booking_id", bookingID, "error", err)
	}
}
