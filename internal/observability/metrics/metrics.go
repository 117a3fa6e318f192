package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for the patient portal flows.
type PortalMetrics struct {
	backendLatency     *prometheus.HistogramVec
	eligibilityTotal   *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	unbucketedTotal    *prometheus.CounterVec
	patientIDCache     *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fertilitycare",
			Subsystem: "portal",
			Name:      "backend_request_seconds",
			Help:      "Latency of clinic backend API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		eligibilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilitycare",
			Subsystem: "portal",
			Name:      "eligibility_evaluations_total",
			Help:      "Appointment eligibility evaluations by outcome",
		}, []string{"can_cancel", "source"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilitycare",
			Subsystem: "portal",
			Name:      "cancellations_total",
			Help:      "Booking cancellation attempts by outcome",
		}, []string{"outcome"}),
		unbucketedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilitycare",
			Subsystem: "portal",
			Name:      "unbucketed_plan_status_total",
			Help:      "Treatment plans whose status matches no dashboard filter",
		}, []string{"status"}),
		patientIDCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilitycare",
			Subsystem: "portal",
			Name:      "patient_id_cache_total",
			Help:      "Patient id resolution cache lookups",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.backendLatency, m.eligibilityTotal, m.cancellationsTotal, m.unbucketedTotal, m.patientIDCache)
	return m
}

func (m *PortalMetrics) ObserveBackendRequest(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(endpoint, status).Observe(seconds)
}

// ObserveEligibility records one evaluation; source is "slot", "date" or "unknown".
func (m *PortalMetrics) ObserveEligibility(canCancel bool, source string) {
	if m == nil {
		return
	}
	label := "false"
	if canCancel {
		label = "true"
	}
	m.eligibilityTotal.WithLabelValues(label, source).Inc()
}

func (m *PortalMetrics) ObserveCancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *PortalMetrics) ObserveUnbucketedStatus(status string) {
	if m == nil {
		return
	}
	m.unbucketedTotal.WithLabelValues(status).Inc()
}

func (m *PortalMetrics) ObservePatientIDCache(result string) {
	if m == nil {
		return
	}
	m.patientIDCache.WithLabelValues(result).Inc()
}
