package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/session"
	"github.com/ayabid/license-admin-api/internal/ierr"
)

type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger.Named("SessionRepository"),
	}
}

var _ session.Repository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
        INSERT INTO license_sessions (
            session_id, license_id, session_data, client_ip, user_agent,
            started_at, last_activity, expires_at, is_active
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
    `
	_, err := queryerFrom(ctx, r.db).Exec(ctx, query,
		s.SessionID,
		s.LicenseID,
		s.Data,
		s.ClientIP,
		s.UserAgent,
		s.StartedAt,
		s.LastActivity,
		s.ExpiresAt,
	)
	if err != nil {
		r.logger.Error("Failed to create license session",
			zap.String("session_id", s.SessionID),
			zap.Int64("license_id", s.LicenseID),
			zap.Error(err),
		)
		return fmt.Errorf("database error on create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) (int64, error) {
	query := `
        UPDATE license_sessions
        SET is_active = FALSE, last_activity = now()
        WHERE session_id = $1
        RETURNING license_id
    `
	var licenseID int64
	err := queryerFrom(ctx, r.db).QueryRow(ctx, query, sessionID).Scan(&licenseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: session %s", ierr.ErrNotFound, sessionID)
		}
		r.logger.Error("Failed to deactivate session", zap.String("session_id", sessionID), zap.Error(err))
		return 0, fmt.Errorf("database error on deactivate session: %w", err)
	}
	return licenseID, nil
}

func (r *SessionRepository) DeleteByLicense(ctx context.Context, licenseID int64) error {
	_, err := queryerFrom(ctx, r.db).Exec(ctx,
		`DELETE FROM license_sessions WHERE license_id = $1`, licenseID)
	if err != nil {
		r.logger.Error("Failed to delete sessions for license", zap.Int64("license_id", licenseID), zap.Error(err))
		return fmt.Errorf("database error on delete sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	cmdTag, err := queryerFrom(ctx, r.db).Exec(ctx,
		`DELETE FROM license_sessions WHERE expires_at < now()`)
	if err != nil {
		r.logger.Error("Failed to purge expired sessions", zap.Error(err))
		return 0, fmt.Errorf("database error on purge sessions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// RefreshSessionCount recomputes current_sessions from the live session
// rows. The counter must never be incremented or decremented in place.
func (r *SessionRepository) RefreshSessionCount(ctx context.Context, licenseID int64) error {
	query := `
        UPDATE license_keys SET current_sessions = (
            SELECT COUNT(*) FROM license_sessions
            WHERE license_id = $1 AND is_active = TRUE AND expires_at > now()
        )
        WHERE license_id = $1
    `
	if _, err := queryerFrom(ctx, r.db).Exec(ctx, query, licenseID); err != nil {
		r.logger.Error("Failed to refresh session count", zap.Int64("license_id", licenseID), zap.Error(err))
		return fmt.Errorf("database error on refresh session count: %w", err)
	}
	return nil
}

func (r *SessionRepository) RefreshAllSessionCounts(ctx context.Context) error {
	query := `
        UPDATE license_keys lk SET current_sessions = (
            SELECT COUNT(*) FROM license_sessions ls
            WHERE ls.license_id = lk.license_id AND ls.is_active = TRUE AND ls.expires_at > now()
        )
    `
	if _, err := queryerFrom(ctx, r.db).Exec(ctx, query); err != nil {
		r.logger.Error("Failed to refresh session counts", zap.Error(err))
		return fmt.Errorf("database error on refresh session counts: %w", err)
	}
	return nil
}
