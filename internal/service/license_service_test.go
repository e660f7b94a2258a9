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
	"github.com/ayabid/license-admin-api/internal/domain/session"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/storage/memstorage"
)

var testClock = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

var testAdmin = audit.Context{
	Admin:     "admin",
	SessionID: "sess-1",
	ClientIP:  "10.0.0.5",
	UserAgent: "console-test",
}

type lifecycleFixture struct {
	svc      *LicenseService
	store    *memstorage.Store
	licenses *memstorage.LicenseRepository
	sessions *memstorage.SessionRepository
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	store := memstorage.NewStore()
	licenses := memstorage.NewLicenseRepository(store)
	sessions := memstorage.NewSessionRepository(store)
	recorder := memstorage.NewAuditRecorder(store)
	tx := memstorage.NewTxManager(store)

	svc := NewLicenseService(licenses, sessions, recorder, tx, nil, zap.NewNop())
	svc.now = func() time.Time { return testClock }

	return &lifecycleFixture{svc: svc, store: store, licenses: licenses, sessions: sessions}
}

func (f *lifecycleFixture) mustCreate(t *testing.T, params *license.CreateParams) *license.License {
	t.Helper()
	result, err := f.svc.CreateLicense(context.Background(), testAdmin, params)
	require.NoError(t, err)
	return result.License
}

func createParams(key string) *license.CreateParams {
	return &license.CreateParams{
		LicenseKey:     key,
		CompanyName:    "Daehan Construction",
		ContactPerson:  "Kim Minsoo",
		ContactEmail:   "minsoo@daehan.example.com",
		ValidityPeriod: license.Period30Day,
	}
}

func TestCreateLicense(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	params := createParams("BID-2026-0001")
	params.Notes = "initial issue"

	result, err := f.svc.CreateLicense(ctx, testAdmin, params)
	require.NoError(t, err)

	lic := result.License
	assert.Equal(t, "BID-2026-0001", lic.LicenseKey)
	assert.Equal(t, license.StatusActive, lic.Status)
	assert.Equal(t, license.TypeAll, lic.Type, "type defaults to ALL when omitted")
	assert.Equal(t, "admin", lic.IssuedBy)
	assert.True(t, lic.ExpiresAt.Equal(testClock.Add(30*24*time.Hour)))
	assert.Equal(t, "initial issue", lic.Notes.String)

	require.Len(t, f.store.AdminActions, 1)
	action := f.store.AdminActions[0]
	assert.Equal(t, audit.ActionCreate, action.ActionType)
	assert.Equal(t, lic.ID, action.TargetID)
	assert.Equal(t, "admin", action.Admin)
	assert.NotEmpty(t, action.NewValues)
}

func TestCreateLicensePermanent(t *testing.T) {
	f := newLifecycleFixture(t)

	params := createParams("BID-2026-PERM")
	params.ValidityPeriod = license.PeriodPermanent

	lic := f.mustCreate(t, params)
	assert.True(t, lic.ExpiresAt.Equal(license.PermanentExpiry))
	assert.Equal(t, -1, lic.DaysRemaining(testClock))
}

func TestCreateLicenseDuplicateKey(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.mustCreate(t, createParams("BID-2026-0001"))

	_, err := f.svc.CreateLicense(ctx, testAdmin, createParams("BID-2026-0001"))
	require.ErrorIs(t, err, ierr.ErrDuplicateKey)
}

func TestCreateLicenseValidationBeforeUniqueness(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.mustCreate(t, createParams("BID-2026-0001"))

	// Same duplicate key, but the broken email must win: validation runs
	// before the uniqueness check.
	params := createParams("BID-2026-0001")
	params.ContactEmail = "not-an-email"

	_, err := f.svc.CreateLicense(ctx, testAdmin, params)
	require.ErrorIs(t, err, ierr.ErrValidation)
	require.NotErrorIs(t, err, ierr.ErrDuplicateKey)

	var ve *ierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "contact_email", ve.Field)
}

func TestCreateLicenseAuditFailureRollsBack(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.store.FailNextAdminAction = true

	_, err := f.svc.CreateLicense(ctx, testAdmin, createParams("BID-2026-0001"))
	require.Error(t, err)

	total, err := f.licenses.Count(ctx, license.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, total, "failed audit write must roll back the insert")
	assert.Empty(t, f.store.AdminActions)
}

func TestUpdateLicensePartial(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))
	notes := "payment confirmed"

	updated, err := f.svc.UpdateLicense(ctx, testAdmin, created.ID, &license.UpdateFields{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "payment confirmed", updated.Notes.String)
	assert.Equal(t, created.LicenseKey, updated.LicenseKey)
	assert.Equal(t, created.CompanyName, updated.CompanyName)
	assert.True(t, updated.ExpiresAt.Equal(created.ExpiresAt), "expiry must not move on a notes edit")

	require.Len(t, f.store.AdminActions, 2)
	assert.Equal(t, audit.ActionUpdate, f.store.AdminActions[1].ActionType)
}

func TestUpdateLicensePeriodChangeReanchorsExpiry(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	later := testClock.Add(24 * time.Hour)
	f.svc.now = func() time.Time { return later }

	period := license.Period7Day
	updated, err := f.svc.UpdateLicense(ctx, testAdmin, created.ID, &license.UpdateFields{ValidityPeriod: &period})
	require.NoError(t, err)

	assert.Equal(t, license.Period7Day, updated.ValidityPeriod)
	assert.True(t, updated.ExpiresAt.Equal(later.Add(7*24*time.Hour)),
		"period change re-anchors the expiry at the edit time")
}

func TestUpdateLicenseDuplicateKey(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.mustCreate(t, createParams("BID-2026-0001"))
	second := f.mustCreate(t, createParams("BID-2026-0002"))

	taken := "BID-2026-0001"
	_, err := f.svc.UpdateLicense(ctx, testAdmin, second.ID, &license.UpdateFields{LicenseKey: &taken})
	require.ErrorIs(t, err, ierr.ErrDuplicateKey)

	// Re-submitting its own key is not a conflict.
	own := "BID-2026-0002"
	_, err = f.svc.UpdateLicense(ctx, testAdmin, second.ID, &license.UpdateFields{LicenseKey: &own})
	require.NoError(t, err)
}

func TestUpdateLicenseNoFields(t *testing.T) {
	f := newLifecycleFixture(t)

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	_, err := f.svc.UpdateLicense(context.Background(), testAdmin, created.ID, &license.UpdateFields{})
	require.ErrorIs(t, err, ierr.ErrNoFields)
}

func TestRenewLicenseAdditive(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	params := createParams("BID-2026-0001")
	params.ValidityPeriod = license.Period7Day
	created := f.mustCreate(t, params)
	firstExpiry := created.ExpiresAt

	// Renewing before expiry extends from the current expiry, not from now.
	result, err := f.svc.RenewLicense(ctx, testAdmin, created.ID, license.Period7Day)
	require.NoError(t, err)
	assert.True(t, result.NewExpiresAt.Equal(firstExpiry.Add(7*24*time.Hour)))
	assert.Equal(t, 7, result.ExtensionDays)
	assert.True(t, result.PreviousExpiresAt.Equal(firstExpiry))

	// A second renewal stacks on top again.
	result, err = f.svc.RenewLicense(ctx, testAdmin, created.ID, license.Period7Day)
	require.NoError(t, err)
	assert.True(t, result.NewExpiresAt.Equal(firstExpiry.Add(14*24*time.Hour)))

	require.Len(t, f.store.Renewals, 2)
	assert.Equal(t, "admin", f.store.Renewals[0].RenewedBy)
	assert.Empty(t, f.store.StatusChanges, "renewals do not write status history")
}

func TestRenewLicenseExpiredAnchorsAtNow(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	// Force the license into the past.
	stale := testClock.Add(-10 * 24 * time.Hour)
	require.NoError(t, f.licenses.UpdateExpiry(ctx, created.ID, license.Period3Day, stale))

	result, err := f.svc.RenewLicense(ctx, testAdmin, created.ID, license.Period7Day)
	require.NoError(t, err)

	assert.True(t, result.NewExpiresAt.Equal(testClock.Add(7*24*time.Hour)),
		"an expired license renews from now, not from its stale expiry")
	assert.Equal(t, 7, result.DaysRemaining)
}

func TestRenewLicensePermanentOverride(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	result, err := f.svc.RenewLicense(ctx, testAdmin, created.ID, license.PeriodPermanent)
	require.NoError(t, err)

	assert.True(t, result.NewExpiresAt.Equal(license.PermanentExpiry))
	assert.Equal(t, -1, result.DaysRemaining)
	assert.Equal(t, license.PeriodPermanent, result.License.ValidityPeriod)
}

func TestRenewLicenseFinitePeriodOnPermanentRebases(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	params := createParams("BID-2026-PERM")
	params.ValidityPeriod = license.PeriodPermanent
	created := f.mustCreate(t, params)

	result, err := f.svc.RenewLicense(ctx, testAdmin, created.ID, license.Period30Day)
	require.NoError(t, err)

	assert.True(t, result.NewExpiresAt.Equal(testClock.Add(30*24*time.Hour)),
		"a finite renewal of a permanent key re-bases from now")
}

func TestRenewLicenseInvalidPeriod(t *testing.T) {
	f := newLifecycleFixture(t)

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	_, err := f.svc.RenewLicense(context.Background(), testAdmin, created.ID, "14일")
	require.ErrorIs(t, err, ierr.ErrInvalidPeriod)
}

func TestChangeStatus(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	lic, changed, err := f.svc.ChangeStatus(ctx, testAdmin, created.ID, license.StatusSuspended, "unpaid invoice")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, license.StatusSuspended, lic.Status)

	require.Len(t, f.store.StatusChanges, 1)
	change := f.store.StatusChanges[0]
	assert.Equal(t, "ACTIVE", change.PreviousStatus)
	assert.Equal(t, "SUSPENDED", change.NewStatus)
	assert.Equal(t, "unpaid invoice", change.ChangeReason)
	assert.Equal(t, "admin", change.ChangedBy)
}

func TestChangeStatusIdempotentNoOp(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))
	actionsBefore := len(f.store.AdminActions)

	lic, changed, err := f.svc.ChangeStatus(ctx, testAdmin, created.ID, license.StatusActive, "already active")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, license.StatusActive, lic.Status)
	assert.Empty(t, f.store.StatusChanges, "a no-op transition writes no history row")
	assert.Len(t, f.store.AdminActions, actionsBefore, "a no-op transition writes no admin action")
}

func TestChangeStatusRevokedIsNotTerminal(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	_, changed, err := f.svc.ChangeStatus(ctx, testAdmin, created.ID, license.StatusRevoked, "contract dispute")
	require.NoError(t, err)
	require.True(t, changed)

	lic, changed, err := f.svc.ChangeStatus(ctx, testAdmin, created.ID, license.StatusActive, "dispute resolved")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, license.StatusActive, lic.Status)
	assert.Len(t, f.store.StatusChanges, 2)
}

func TestChangeStatusInvalid(t *testing.T) {
	f := newLifecycleFixture(t)

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	_, _, err := f.svc.ChangeStatus(context.Background(), testAdmin, created.ID, "FROZEN", "")
	require.ErrorIs(t, err, ierr.ErrInvalidStatus)
}

func TestChangeStatusAuditFailureRollsBack(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	f.store.FailNextAdminAction = true
	_, _, err := f.svc.ChangeStatus(ctx, testAdmin, created.ID, license.StatusSuspended, "unpaid invoice")
	require.Error(t, err)

	lic, err := f.licenses.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, license.StatusActive, lic.Status, "status update must roll back with the audit failure")
	assert.Empty(t, f.store.StatusChanges, "status history must roll back with the audit failure")
}

func TestDeleteLicense(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	created := f.mustCreate(t, createParams("BID-2026-0001"))

	require.NoError(t, f.sessions.Create(ctx, &session.Session{
		SessionID: "client-sess-1",
		LicenseID: created.ID,
		ExpiresAt: testClock.Add(session.TTL),
		IsActive:  true,
	}))

	require.NoError(t, f.svc.DeleteLicense(ctx, testAdmin, created.ID))

	_, err := f.licenses.FindByID(ctx, created.ID)
	require.ErrorIs(t, err, ierr.ErrNotFound)
	assert.Zero(t, f.sessions.SessionCount(created.ID), "sessions are removed with the license")

	// The action log outlives the license.
	require.Len(t, f.store.AdminActions, 2)
	assert.Equal(t, audit.ActionDelete, f.store.AdminActions[1].ActionType)
	assert.NotEmpty(t, f.store.AdminActions[1].OldValues)
}

func TestDeleteLicenseNotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	err := f.svc.DeleteLicense(context.Background(), testAdmin, 9999)
	require.ErrorIs(t, err, ierr.ErrNotFound)
}
