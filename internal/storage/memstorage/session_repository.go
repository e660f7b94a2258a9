package memstorage

import (
	"context"
	"fmt"
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/session"
	"github.com/ayabid/license-admin-api/internal/ierr"
)

type SessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

var _ session.Repository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sessCopy := *s
	r.store.sessions[s.SessionID] = &sessCopy
	return nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[sessionID]
	if !ok {
		return 0, fmt.Errorf("%w: session %s", ierr.ErrNotFound, sessionID)
	}
	sess.IsActive = false
	sess.LastActivity = time.Now().UTC()
	return sess.LicenseID, nil
}

func (r *SessionRepository) DeleteByLicense(ctx context.Context, licenseID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, sess := range r.store.sessions {
		if sess.LicenseID == licenseID {
			delete(r.store.sessions, id)
		}
	}
	return nil
}

func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	var purged int64
	for id, sess := range r.store.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(r.store.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (r *SessionRepository) RefreshSessionCount(ctx context.Context, licenseID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lic, ok := r.store.licenses[licenseID]
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	count := 0
	for _, sess := range r.store.sessions {
		if sess.LicenseID == licenseID && sess.IsActive && sess.ExpiresAt.After(now) {
			count++
		}
	}
	lic.CurrentSessions = count
	return nil
}

func (r *SessionRepository) RefreshAllSessionCounts(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	counts := make(map[int64]int, len(r.store.licenses))
	for _, sess := range r.store.sessions {
		if sess.IsActive && sess.ExpiresAt.After(now) {
			counts[sess.LicenseID]++
		}
	}
	for id, lic := range r.store.licenses {
		lic.CurrentSessions = counts[id]
	}
	return nil
}

// SessionCount reports how many session rows exist for a license,
// regardless of state. Test helper.
func (r *SessionRepository) SessionCount(licenseID int64) int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, sess := range r.store.sessions {
		if sess.LicenseID == licenseID {
			count++
		}
	}
	return count
}
