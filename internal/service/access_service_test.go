package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/storage/memstorage"
)

type accessFixture struct {
	svc      *AccessService
	store    *memstorage.Store
	licenses *memstorage.LicenseRepository
	sessions *memstorage.SessionRepository
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()

	store := memstorage.NewStore()
	licenses := memstorage.NewLicenseRepository(store)
	sessions := memstorage.NewSessionRepository(store)
	recorder := memstorage.NewAuditRecorder(store)

	svc := NewAccessService(licenses, sessions, recorder, zap.NewNop())
	svc.now = func() time.Time { return testClock }

	return &accessFixture{svc: svc, store: store, licenses: licenses, sessions: sessions}
}

func (f *accessFixture) seedLicense(t *testing.T, status license.Status, expiresAt time.Time) *license.License {
	t.Helper()

	lic := &license.License{
		LicenseKey:     "BID-2026-0001",
		CompanyName:    "Daehan Construction",
		ContactPerson:  "Kim Minsoo",
		ContactEmail:   "minsoo@daehan.example.com",
		Type:           license.TypeG2BA,
		ValidityPeriod: license.Period30Day,
		Status:         status,
		IssuedAt:       testClock.Add(-24 * time.Hour),
		ExpiresAt:      expiresAt,
		UpdatedAt:      testClock.Add(-24 * time.Hour),
	}
	id, err := f.licenses.Create(context.Background(), lic)
	require.NoError(t, err)
	lic.ID = id
	return lic
}

func accessParams() AccessParams {
	return AccessParams{
		LicenseKey: "BID-2026-0001",
		ClientIP:   "203.0.113.9",
		UserAgent:  "bidding-client/2.1",
	}
}

func TestValidateAccessSuccess(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()

	seeded := f.seedLicense(t, license.StatusActive, testClock.Add(10*24*time.Hour))

	decision, err := f.svc.ValidateAccess(ctx, accessParams())
	require.NoError(t, err)

	assert.True(t, decision.Valid)
	assert.Empty(t, decision.Reason)
	assert.NotEmpty(t, decision.SessionID)
	assert.Equal(t, 10, decision.DaysRemaining)

	refreshed, err := f.licenses.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refreshed.AccessCount)
	assert.True(t, refreshed.FirstAccessed.Valid)
	assert.Equal(t, 1, refreshed.CurrentSessions)

	require.Len(t, f.store.AccessLogs, 1)
	record := f.store.AccessLogs[0]
	assert.Equal(t, audit.AccessSuccess, record.AccessResult)
	assert.Equal(t, decision.SessionID, record.SessionID)
	assert.Equal(t, "203.0.113.9", record.AccessIP)
}

func TestValidateAccessDenials(t *testing.T) {
	tests := []struct {
		name      string
		status    license.Status
		expiresAt time.Time
		reason    string
	}{
		{"suspended", license.StatusSuspended, testClock.Add(10 * 24 * time.Hour), denySuspended},
		{"revoked", license.StatusRevoked, testClock.Add(10 * 24 * time.Hour), denyRevoked},
		{"expired", license.StatusActive, testClock.Add(-time.Hour), denyExpired},
		{"stale expired status", license.StatusExpired, testClock.Add(10 * 24 * time.Hour), denyInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccessFixture(t)
			seeded := f.seedLicense(t, tt.status, tt.expiresAt)

			decision, err := f.svc.ValidateAccess(context.Background(), accessParams())
			require.NoError(t, err)

			assert.False(t, decision.Valid)
			assert.Equal(t, tt.reason, decision.Reason)
			assert.Empty(t, decision.SessionID)

			// Denials are logged but never counted as accesses.
			require.Len(t, f.store.AccessLogs, 1)
			assert.Equal(t, audit.AccessFailure, f.store.AccessLogs[0].AccessResult)

			refreshed, err := f.licenses.FindByID(context.Background(), seeded.ID)
			require.NoError(t, err)
			assert.Zero(t, refreshed.AccessCount)
		})
	}
}

func TestValidateAccessPermanentLicense(t *testing.T) {
	f := newAccessFixture(t)

	f.seedLicense(t, license.StatusActive, license.PermanentExpiry)

	decision, err := f.svc.ValidateAccess(context.Background(), accessParams())
	require.NoError(t, err)

	assert.True(t, decision.Valid)
	assert.Equal(t, -1, decision.DaysRemaining)
}

func TestValidateAccessUnknownKey(t *testing.T) {
	f := newAccessFixture(t)

	decision, err := f.svc.ValidateAccess(context.Background(), accessParams())
	require.NoError(t, err)

	assert.False(t, decision.Valid)
	assert.Equal(t, denyUnknownKey, decision.Reason)
	assert.Empty(t, f.store.AccessLogs, "unknown keys have no license row to log against")
}

func TestEndSession(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()

	seeded := f.seedLicense(t, license.StatusActive, testClock.Add(10*24*time.Hour))

	decision, err := f.svc.ValidateAccess(ctx, accessParams())
	require.NoError(t, err)
	require.True(t, decision.Valid)

	require.NoError(t, f.svc.EndSession(ctx, decision.SessionID))

	refreshed, err := f.licenses.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Zero(t, refreshed.CurrentSessions, "ending the session recomputes the counter")
}
