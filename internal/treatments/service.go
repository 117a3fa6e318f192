package treatments

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/observability/metrics"
	"github.com/fertilitycare/patient-portal/internal/session"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

var treatmentsTracer = otel.Tracer("fertilitycare.internal.treatments")

// PlanSource is the part of the clinic backend the dashboard reads.
type PlanSource interface {
	GetMyBookings(ctx context.Context, token string) ([]backend.Booking, error)
	GetTreatmentPlansByPatient(ctx context.Context, token, patientID string) ([]backend.TreatmentPlan, error)
}

// PatientResolver maps a signed-in user onto the patient record id.
type PatientResolver interface {
	PatientID(ctx context.Context, id session.Identity) (string, error)
}

// Service assembles the treatment dashboard.
type Service struct {
	source   PlanSource
	patients PatientResolver
	metrics  *metrics.PortalMetrics
	logger   *logging.Logger
}

func NewService(source PlanSource, patients PatientResolver, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if source == nil || patients == nil {
		panic("treatments: plan source and patient resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, patients: patients, metrics: m, logger: logger}
}

// List maps every plan of the patient and applies f.
func (s *Service) List(ctx context.Context, id session.Identity, f Filter) (TreatmentList, error) {
	ctx, span := treatmentsTracer.Start(ctx, "treatments.list")
	defer span.End()
	span.SetAttributes(
		attribute.String("portal.user_id", id.UserID),
		attribute.String("portal.filter", f.Bucket),
	)

	if id.UserID == "" {
		return TreatmentList{}, apperr.Unauthenticated()
	}

	patientID, err := s.patients.PatientID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return TreatmentList{}, s.translate(err)
	}

	var (
		plans    []backend.TreatmentPlan
		bookings []backend.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plans, err = s.source.GetTreatmentPlansByPatient(gctx, id.Token, patientID)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = s.source.GetMyBookings(gctx, id.Token)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return TreatmentList{}, s.translate(err)
	}

	treatments := make([]Treatment, 0, len(plans))
	for _, plan := range plans {
		treatments = append(treatments, MapToTreatment(plan, bookings))
	}

	list := f.Apply(treatments)
	for _, d := range list.Diagnostics {
		s.metrics.ObserveUnbucketedStatus(d.Status)
		s.logger.Warn("treatment status matches no filter bucket", "treatment_id", d.TreatmentID, "status", d.Status, "patient_id", patientID)
	}
	span.SetAttributes(attribute.Int("portal.treatments", len(list.Treatments)))
	return list, nil
}

func (s *Service) translate(err error) error {
	if apperr.KindOf(err) == apperr.KindUnauthenticated {
		return apperr.New(apperr.KindUnauthenticated, apperr.MsgSignInRequired, err)
	}
	return apperr.WithMessage(err, apperr.MsgTreatmentsFailed)
}
