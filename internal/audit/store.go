// Package audit keeps a trail of booking cancellation attempts, including the
// ones refused by the cancellation policy before reaching the clinic backend.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outcome of a cancellation attempt.
type Outcome string

const (
	OutcomeCancelled Outcome = "cancelled"
	OutcomeRefused   Outcome = "refused"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one audited cancellation attempt.
type Entry struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"user_id"`
	BookingID      string    `json:"booking_id"`
	Outcome        Outcome   `json:"outcome"`
	Reason         string    `json:"reason,omitempty"`
	HoursRemaining int       `json:"hours_remaining"`
	CreatedAt      time.Time `json:"created_at"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder drops entries; used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

type auditDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store writes audit entries to Postgres.
type Store struct {
	db  auditDB
	now func() time.Time
}

// NewStore creates a store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("audit: pgx pool required")
	}
	return &Store{db: pool, now: time.Now}
}

// NewStoreWithDB allows injecting mocks for tests.
func NewStoreWithDB(db auditDB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record inserts entry, filling ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	query := `
		INSERT INTO cancellation_audit (id, user_id, booking_id, outcome, reason, hours_remaining, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.Exec(ctx, query, entry.ID, entry.UserID, entry.BookingID, string(entry.Outcome), entry.Reason, entry.HoursRemaining, entry.CreatedAt); err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// ListForBooking returns the attempts for one booking, newest first.
func (s *Store) ListForBooking(ctx context.Context, bookingID string, limit int32) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, booking_id, outcome, reason, hours_remaining, created_at
		FROM cancellation_audit
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, bookingID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var outcome string
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookingID, &outcome, &e.Reason, &e.HoursRemaining, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
