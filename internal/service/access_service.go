package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/domain/session"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/metrics"
)

const (
	denyUnknownKey = "license key not found"
	denySuspended  = "license is suspended"
	denyRevoked    = "license is revoked"
	denyInactive   = "license is not active"
	denyExpired    = "license has expired"
)

// AccessService serves the client-facing validation path. A denial is a
// normal answer, not an error; errors are reserved for infrastructure
// failures. Access logging is best effort and never blocks the response.
type AccessService struct {
	licenses license.Repository
	sessions session.Repository
	access   audit.AccessLogger
	logger   *zap.Logger
	now      func() time.Time
}

func NewAccessService(
	licenses license.Repository,
	sessions session.Repository,
	access audit.AccessLogger,
	logger *zap.Logger,
) *AccessService {
	return &AccessService{
		licenses: licenses,
		sessions: sessions,
		access:   access,
		logger:   logger.Named("AccessService"),
		now:      time.Now,
	}
}

// AccessParams identifies one client validation attempt.
type AccessParams struct {
	LicenseKey string
	ClientIP   string
	UserAgent  string
}

// AccessDecision is the outcome of a validation attempt. License is set
// whenever the key resolved, even if access was denied.
type AccessDecision struct {
	Valid         bool
	Reason        string
	License       *license.License
	SessionID     string
	DaysRemaining int
}

func (s *AccessService) ValidateAccess(ctx context.Context, params AccessParams) (*AccessDecision, error) {
	started := s.now()

	lic, err := s.licenses.FindByKey(ctx, params.LicenseKey)
	if err != nil {
		if errors.Is(err, ierr.ErrNotFound) {
			// No license row exists to attach a log entry to.
			s.logger.Warn("Access attempt with unknown license key",
				zap.String("client_ip", params.ClientIP))
			metrics.AccessChecks.WithLabelValues("failure").Inc()
			return &AccessDecision{Valid: false, Reason: denyUnknownKey}, nil
		}
		return nil, err
	}

	now := s.now().UTC()
	if reason := denialReason(lic, now); reason != "" {
		s.logFailure(ctx, lic.ID, params, started)
		metrics.AccessChecks.WithLabelValues("failure").Inc()
		return &AccessDecision{Valid: false, Reason: reason, License: lic}, nil
	}

	sessionID := uuid.NewString()
	sess := &session.Session{
		SessionID:    sessionID,
		LicenseID:    lic.ID,
		ClientIP:     params.ClientIP,
		UserAgent:    params.UserAgent,
		StartedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(session.TTL),
		IsActive:     true,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.licenses.RecordSuccessfulAccess(ctx, lic.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.RefreshSessionCount(ctx, lic.ID); err != nil {
		return nil, err
	}

	s.access.LogAccess(ctx, &audit.AccessRecord{
		LicenseID:      lic.ID,
		AccessIP:       params.ClientIP,
		UserAgent:      params.UserAgent,
		AccessResult:   audit.AccessSuccess,
		SessionID:      sessionID,
		ResponseTimeMs: s.now().Sub(started).Milliseconds(),
	})
	metrics.AccessChecks.WithLabelValues("success").Inc()

	refreshed, err := s.licenses.FindByID(ctx, lic.ID)
	if err != nil {
		refreshed = lic
	}

	return &AccessDecision{
		Valid:         true,
		License:       refreshed,
		SessionID:     sessionID,
		DaysRemaining: license.DaysRemaining(lic.ExpiresAt, now),
	}, nil
}

// EndSession deactivates a client session and refreshes the live counter on
// its license.
func (s *AccessService) EndSession(ctx context.Context, sessionID string) error {
	licenseID, err := s.sessions.Deactivate(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.sessions.RefreshSessionCount(ctx, licenseID)
}

func (s *AccessService) logFailure(ctx context.Context, licenseID int64, params AccessParams, started time.Time) {
	s.access.LogAccess(ctx, &audit.AccessRecord{
		LicenseID:      licenseID,
		AccessIP:       params.ClientIP,
		UserAgent:      params.UserAgent,
		AccessResult:   audit.AccessFailure,
		ResponseTimeMs: s.now().Sub(started).Milliseconds(),
	})
}

func denialReason(lic *license.License, now time.Time) string {
	switch lic.Status {
	case license.StatusActive:
	case license.StatusSuspended:
		return denySuspended
	case license.StatusRevoked:
		return denyRevoked
	default:
		return denyInactive
	}
	if !license.IsPermanent(lic.ExpiresAt) && !lic.ExpiresAt.After(now) {
		return denyExpired
	}
	return ""
}
