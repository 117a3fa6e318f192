// Package patients resolves the patient record behind a signed-in user.
package patients

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fertilitycare/patient-portal/internal/observability/metrics"
	"github.com/fertilitycare/patient-portal/internal/session"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

// DefaultTTL bounds how long a cached user→patient mapping is trusted.
const DefaultTTL = 10 * time.Minute

// Lookup fetches the patient id from the clinic backend.
type Lookup interface {
	GetPatientIDFromUserID(ctx context.Context, token, userID string) (string, error)
}

// Resolver caches user→patient mappings in Redis. The cache is optional: a
// nil client or a failing Redis falls through to the backend.
type Resolver struct {
	lookup  Lookup
	redis   *redis.Client
	ttl     time.Duration
	metrics *metrics.PortalMetrics
	logger  *logging.Logger
}

func NewResolver(lookup Lookup, redisClient *redis.Client, ttl time.Duration, m *metrics.PortalMetrics, logger *logging.Logger) *Resolver {
	if lookup == nil {
		panic("patients: lookup required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{lookup: lookup, redis: redisClient, ttl: ttl, metrics: m, logger: logger}
}

func (r *Resolver) key(userID string) string {
	return "portal:patient_id:" + userID
}

// PatientID returns the patient id of the signed-in user.
func (r *Resolver) PatientID(ctx context.Context, id session.Identity) (string, error) {
	if r.redis != nil {
		patientID, err := r.redis.Get(ctx, r.key(id.UserID)).Result()
		switch {
		case err == nil && patientID != "":
			r.metrics.ObservePatientIDCache("hit")
			return patientID, nil
		case errors.Is(err, redis.Nil):
			r.metrics.ObservePatientIDCache("miss")
		case err != nil:
			r.metrics.ObservePatientIDCache("error")
			r.logger.Warn("patient id cache read failed", "user_id", id.UserID, "error", err)
		}
	}

	patientID, err := r.lookup.GetPatientIDFromUserID(ctx, id.Token, id.UserID)
	if err != nil {
		return "", err
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, r.key(id.UserID), patientID, r.ttl).Err(); err != nil {
			r.logger.Warn("patient id cache write failed", "user_id", id.UserID, "error", err)
		}
	}
	return patientID, nil
}
