package session

import (
	"context"
	"encoding/json"
	"time"
)

// TTL is how long a client session stays valid without renewal.
const TTL = 24 * time.Hour

type Session struct {
	SessionID    string          `db:"session_id"`
	LicenseID    int64           `db:"license_id"`
	Data         json.RawMessage `db:"session_data"`
	ClientIP     string          `db:"client_ip"`
	UserAgent    string          `db:"user_agent"`
	StartedAt    time.Time       `db:"started_at"`
	LastActivity time.Time       `db:"last_activity"`
	ExpiresAt    time.Time       `db:"expires_at"`
	IsActive     bool            `db:"is_active"`
}

type Repository interface {
	Create(ctx context.Context, s *Session) error
	// Deactivate marks the session inactive and returns its license id so
	// the caller can refresh the session count. ierr.ErrNotFound if absent.
	Deactivate(ctx context.Context, sessionID string) (int64, error)
	DeleteByLicense(ctx context.Context, licenseID int64) error
	PurgeExpired(ctx context.Context) (int64, error)
	// RefreshSessionCount recomputes license_keys.current_sessions from the
	// active, unexpired session rows. The counter is never adjusted in place.
	RefreshSessionCount(ctx context.Context, licenseID int64) error
	// RefreshAllSessionCounts recomputes the counter for every license,
	// used after bulk purges.
	RefreshAllSessionCounts(ctx context.Context) error
}
