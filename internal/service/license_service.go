package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/domain/monitor"
	"github.com/ayabid/license-admin-api/internal/domain/session"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/metrics"
	"github.com/ayabid/license-admin-api/internal/storage"
)

// LicenseService owns the license lifecycle: issuing, editing, renewing,
// status transitions and deletion. Every mutation and its audit rows commit
// in one transaction.
type LicenseService struct {
	repo      license.Repository
	sessions  session.Repository
	recorder  audit.Recorder
	tx        storage.TxManager
	clientDBs monitor.ClientSource
	logger    *zap.Logger
	now       func() time.Time
}

// NewLicenseService wires the lifecycle manager. clientDBs may be nil; the
// create-time connectivity check is then skipped.
func NewLicenseService(
	repo license.Repository,
	sessions session.Repository,
	recorder audit.Recorder,
	tx storage.TxManager,
	clientDBs monitor.ClientSource,
	logger *zap.Logger,
) *LicenseService {
	return &LicenseService{
		repo:      repo,
		sessions:  sessions,
		recorder:  recorder,
		tx:        tx,
		clientDBs: clientDBs,
		logger:    logger.Named("LicenseService"),
		now:       time.Now,
	}
}

// CreateResult carries the stored license plus an advisory warning when the
// referenced client database did not answer a connectivity probe.
type CreateResult struct {
	License   *license.License
	DBWarning string
}

// RenewalResult describes one charge-style extension.
type RenewalResult struct {
	License           *license.License
	PreviousExpiresAt time.Time
	NewExpiresAt      time.Time
	ExtensionDays     int
	DaysRemaining     int
}

func (s *LicenseService) CreateLicense(ctx context.Context, actx audit.Context, params *license.CreateParams) (result *CreateResult, err error) {
	defer func() { metrics.ObserveOp("create", err) }()

	s.logger.Info("Attempting to create a new license",
		zap.String("license_key", params.LicenseKey),
		zap.String("company", params.CompanyName),
	)

	if err = license.ValidateCreate(params); err != nil {
		return nil, err
	}

	exists, err := s.repo.KeyExists(ctx, params.LicenseKey, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ierr.ErrDuplicateKey, params.LicenseKey)
	}

	now := s.now().UTC()
	licenseType := params.Type
	if licenseType == "" {
		licenseType = license.TypeAll
	}

	newLicense := &license.License{
		LicenseKey:     params.LicenseKey,
		CompanyName:    params.CompanyName,
		ContactPerson:  params.ContactPerson,
		ContactEmail:   params.ContactEmail,
		Type:           licenseType,
		ValidityPeriod: params.ValidityPeriod,
		Status:         license.StatusActive,
		IssuedBy:       actx.Admin,
		IssuedAt:       now,
		ExpiresAt:      license.ExpiryFrom(params.ValidityPeriod, now),
		UpdatedAt:      now,
	}
	if params.DBName != "" {
		newLicense.DBName = sql.NullString{String: params.DBName, Valid: true}
	}
	if params.ContactPhone != "" {
		newLicense.ContactPhone = sql.NullString{String: params.ContactPhone, Valid: true}
	}
	if params.Notes != "" {
		newLicense.Notes = sql.NullString{String: params.Notes, Valid: true}
	}

	var insertedID int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		insertedID, txErr = s.repo.Create(ctx, newLicense)
		if txErr != nil {
			return txErr
		}
		return s.recorder.RecordAdminAction(ctx, &audit.AdminAction{
			ActionType:     audit.ActionCreate,
			TargetType:     audit.TargetLicense,
			TargetID:       insertedID,
			Description:    fmt.Sprintf("Issued license %s for %s", newLicense.LicenseKey, newLicense.CompanyName),
			NewValues:      marshalSnapshot(newLicense),
			Admin:          actx.Admin,
			AdminSessionID: actx.SessionID,
			ClientIP:       actx.ClientIP,
			UserAgent:      actx.UserAgent,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create license", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, insertedID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created license (id: %d): %w", insertedID, err)
	}

	result = &CreateResult{License: created}
	if s.clientDBs != nil && created.DBName.Valid {
		probe := s.clientDBs.TestConnection(ctx, created.DBName.String)
		if !probe.Success {
			result.DBWarning = fmt.Sprintf("client database %q is unreachable: %s",
				created.DBName.String, probe.ErrorMessage)
			s.logger.Warn("Client database unreachable at license creation",
				zap.String("db_name", created.DBName.String),
				zap.String("error", probe.ErrorMessage),
			)
		}
	}

	s.logger.Info("License created successfully",
		zap.Int64("id", created.ID), zap.String("key", created.LicenseKey))
	return result, nil
}

func (s *LicenseService) GetLicense(ctx context.Context, id int64) (*license.License, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *LicenseService) ListLicenses(ctx context.Context, params license.ListParams) ([]*license.License, int64, error) {
	licenses, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return licenses, total, nil
}

func (s *LicenseService) UpdateLicense(ctx context.Context, actx audit.Context, id int64, fields *license.UpdateFields) (lic *license.License, err error) {
	defer func() { metrics.ObserveOp("update", err) }()

	if err = license.ValidateUpdate(fields); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields.LicenseKey != nil && *fields.LicenseKey != current.LicenseKey {
		exists, err := s.repo.KeyExists(ctx, *fields.LicenseKey, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ierr.ErrDuplicateKey, *fields.LicenseKey)
		}
	}

	// Changing the validity period re-anchors the expiry at the time of the
	// edit, unless the caller set an explicit expiry alongside it.
	if fields.ValidityPeriod != nil && *fields.ValidityPeriod != current.ValidityPeriod && fields.ExpiresAt == nil {
		expiresAt := license.ExpiryFrom(*fields.ValidityPeriod, s.now().UTC())
		fields.ExpiresAt = &expiresAt
	}

	oldValues, newValues := diffSnapshots(current, fields)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if txErr := s.repo.Update(ctx, id, fields); txErr != nil {
			return txErr
		}
		return s.recorder.RecordAdminAction(ctx, &audit.AdminAction{
			ActionType:     audit.ActionUpdate,
			TargetType:     audit.TargetLicense,
			TargetID:       id,
			Description:    fmt.Sprintf("Updated license %s", current.LicenseKey),
			OldValues:      oldValues,
			NewValues:      newValues,
			Admin:          actx.Admin,
			AdminSessionID: actx.SessionID,
			ClientIP:       actx.ClientIP,
			UserAgent:      actx.UserAgent,
		})
	})
	if err != nil {
		s.logger.Error("Failed to update license", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// DeleteLicense removes the license and its sessions. The admin action log
// row deliberately survives: it has no foreign key to the license.
func (s *LicenseService) DeleteLicense(ctx context.Context, actx audit.Context, id int64) (err error) {
	defer func() { metrics.ObserveOp("delete", err) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if txErr := s.sessions.DeleteByLicense(ctx, id); txErr != nil {
			return txErr
		}
		if txErr := s.repo.Delete(ctx, id); txErr != nil {
			return txErr
		}
		return s.recorder.RecordAdminAction(ctx, &audit.AdminAction{
			ActionType:     audit.ActionDelete,
			TargetType:     audit.TargetLicense,
			TargetID:       id,
			Description:    fmt.Sprintf("Deleted license %s (%s)", current.LicenseKey, current.CompanyName),
			OldValues:      marshalSnapshot(current),
			Admin:          actx.Admin,
			AdminSessionID: actx.SessionID,
			ClientIP:       actx.ClientIP,
			UserAgent:      actx.UserAgent,
		})
	})
	if err != nil {
		s.logger.Error("Failed to delete license", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("License deleted", zap.Int64("id", id), zap.String("key", current.LicenseKey))
	return nil
}

/// RenewLicense extends the license like charging a prepaid card: the new
// expiry is anchored at whichever is later, now or the current expiry, so
// renewing early never wastes remaining time. A permanent renewal replaces
// the expiry with the permanent sentinel outright.
func (s *LicenseService) RenewLicense(ctx context.Context, actx audit.Context, id int64, period license.Period) (result *RenewalResult, err error) {
	defer func() { metrics.ObserveOp("renew", err) }()

	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ierr.ErrInvalidPeriod, period)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previousExpiry := current.ExpiresAt

	var newExpiry time.Time
	var extensionDays int
	switch {
	case period == license.PeriodPermanent:
		newExpiry = license.PermanentExpiry
	case license.IsPermanent(previousExpiry):
		// A finite renewal of a permanent key re-bases from now.
		newExpiry = license.ExpiryFrom(period, now)
		extensionDays = int(period.Duration() / (24 * time.Hour))
	default:
		anchor := now
		if previousExpiry.After(now) {
			anchor = previousExpiry
		}
		newExpiry = license.ExpiryFrom(period, anchor)
		extensionDays = int(period.Duration() / (24 * time.Hour))
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if txErr := s.repo.UpdateExpiry(ctx, id, period, newExpiry); txErr != nil {
			return txErr
		}
		if txErr := s.recorder.RecordRenewal(ctx, &audit.RenewalRecord{
			LicenseID:      id,
			RenewalPeriod:  string(period),
			PreviousExpiry: previousExpiry,
			NewExpiry:      newExpiry,
			ExtensionDays:  extensionDays,
			RenewedBy:      actx.Admin,
			ClientIP:       actx.ClientIP,
		}); txErr != nil {
			return txErr
		}
		return s.recorder.RecordAdminAction(ctx, &audit.AdminAction{
			ActionType:     audit.ActionRenew,
			TargetType:     audit.TargetLicense,
			TargetID:       id,
			Description:    fmt.Sprintf("Renewed license %s by %s", current.LicenseKey, period),
			OldValues:      marshalSnapshot(map[string]any{"validity_period": current.ValidityPeriod, "expires_at": previousExpiry}),
			NewValues:      marshalSnapshot(map[string]any{"validity_period": period, "expires_at": newExpiry}),
			Admin:          actx.Admin,
			AdminSessionID: actx.SessionID,
			ClientIP:       actx.ClientIP,
			UserAgent:      actx.UserAgent,
		})
	})
	if err != nil {
		s.logger.Error("Failed to renew license", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	renewed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("License renewed",
		zap.Int64("id", id),
		zap.String("period", string(period)),
		zap.Time("new_expires_at", newExpiry),
	)
	return &RenewalResult{
		License:           renewed,
		PreviousExpiresAt: previousExpiry,
		NewExpiresAt:      newExpiry,
		ExtensionDays:     extensionDays,
		DaysRemaining:     license.DaysRemaining(newExpiry, now),
	}, nil
}

// ChangeStatus moves the license to newStatus. Setting the status it already
// has is a no-op that writes no history row. The boolean reports whether a
// transition actually happened.
func (s *LicenseService) ChangeStatus(ctx context.Context, actx audit.Context, id int64, newStatus license.Status, reason string) (lic *license.License, changed bool, err error) {
	defer func() { metrics.ObserveOp("status_change", err) }()

	if !newStatus.Valid() {
		return nil, false, fmt.Errorf("%w: %q", ierr.ErrInvalidStatus, newStatus)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if current.Status == newStatus {
		return current, false, nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if txErr := s.repo.UpdateStatus(ctx, id, newStatus); txErr != nil {
			return txErr
		}
		if txErr := s.recorder.RecordStatusChange(ctx, &audit.StatusChange{
			LicenseID:      id,
			PreviousStatus: string(current.Status),
			NewStatus:      string(newStatus),
			ChangeReason:   reason,
			ChangedBy:      actx.Admin,
			ClientIP:       actx.ClientIP,
		}); txErr != nil {
			return txErr
		}
		return s.recorder.RecordAdminAction(ctx, &audit.AdminAction{
			ActionType:     audit.ActionUpdate,
			TargetType:     audit.TargetLicense,
			TargetID:       id,
			Description:    fmt.Sprintf("Changed status of license %s from %s to %s", current.LicenseKey, current.Status, newStatus),
			OldValues:      marshalSnapshot(map[string]any{"status": current.Status}),
			NewValues:      marshalSnapshot(map[string]any{"status": newStatus, "reason": reason}),
			Admin:          actx.Admin,
			AdminSessionID: actx.SessionID,
			ClientIP:       actx.ClientIP,
			UserAgent:      actx.UserAgent,
		})
	})
	if err != nil {
		s.logger.Error("Failed to change license status",
			zap.Int64("id", id), zap.String("new_status", string(newStatus)), zap.Error(err))
		return nil, false, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

func marshalSnapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// diffSnapshots builds old/new value snapshots covering only the fields the
// partial update touches.
func diffSnapshots(current *license.License, fields *license.UpdateFields) (json.RawMessage, json.RawMessage) {
	oldVals := make(map[string]any)
	newVals := make(map[string]any)

	record := func(name string, oldValue, newValue any) {
		oldVals[name] = oldValue
		newVals[name] = newValue
	}

	if fields.LicenseKey != nil {
		record("license_key", current.LicenseKey, *fields.LicenseKey)
	}
	if fields.DBName != nil {
		record("db_name", current.DBName.String, *fields.DBName)
	}
	if fields.CompanyName != nil {
		record("company_name", current.CompanyName, *fields.CompanyName)
	}
	if fields.ContactPerson != nil {
		record("contact_person", current.ContactPerson, *fields.ContactPerson)
	}
	if fields.ContactEmail != nil {
		record("contact_email", current.ContactEmail, *fields.ContactEmail)
	}
	if fields.ContactPhone != nil {
		record("contact_phone", current.ContactPhone.String, *fields.ContactPhone)
	}
	if fields.Type != nil {
		record("license_type", current.Type, *fields.Type)
	}
	if fields.ValidityPeriod != nil {
		record("validity_period", current.ValidityPeriod, *fields.ValidityPeriod)
	}
	if fields.ExpiresAt != nil {
		record("expires_at", current.ExpiresAt, *fields.ExpiresAt)
	}
	if fields.Status != nil {
		record("status", current.Status, *fields.Status)
	}
	if fields.Notes != nil {
		record("notes", current.Notes.String, *fields.Notes)
	}

	return marshalSnapshot(oldVals), marshalSnapshot(newVals)
}
