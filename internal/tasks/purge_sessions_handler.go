package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/session"
)

// SessionPurgeHandler removes sessions past their expiry and brings the
// per-license session counters back in line.
type SessionPurgeHandler struct {
	sessions session.Repository
	logger   *zap.Logger
}

func NewSessionPurgeHandler(sessions session.Repository, logger *zap.Logger) *SessionPurgeHandler {
	return &SessionPurgeHandler{
		sessions: sessions,
		logger:   logger.Named("SessionPurgeHandler"),
	}
}

func (h *SessionPurgeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeSessionPurge {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	purged, err := h.sessions.PurgeExpired(ctx)
	if err != nil {
		h.logger.Error("Failed to purge expired sessions", zap.Error(err))
		return fmt.Errorf("purge expired sessions: %w", err)
	}

	if purged > 0 {
		if err := h.sessions.RefreshAllSessionCounts(ctx); err != nil {
			h.logger.Error("Failed to refresh session counts after purge", zap.Error(err))
			return fmt.Errorf("refresh session counts: %w", err)
		}
	}

	h.logger.Info("Session purge task finished", zap.Int64("purged_sessions", purged))
	return nil
}
