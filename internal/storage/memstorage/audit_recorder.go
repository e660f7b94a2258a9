package memstorage

import (
	"context"
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
)

// AuditRecorder appends audit rows into the shared store. The access-log
// path swallows nothing here since there is nothing to fail; the injected
// admin-action failure exists to test the rollback contract.
type AuditRecorder struct {
	store *Store
}

func NewAuditRecorder(store *Store) *AuditRecorder {
	return &AuditRecorder{store: store}
}

var (
	_ audit.Recorder     = (*AuditRecorder)(nil)
	_ audit.AccessLogger = (*AuditRecorder)(nil)
)

func (r *AuditRecorder) RecordAdminAction(ctx context.Context, action *audit.AdminAction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.FailNextAdminAction {
		r.store.FailNextAdminAction = false
		return errInjectedFailure
	}

	actionCopy := *action
	actionCopy.ID = int64(len(r.store.AdminActions) + 1)
	actionCopy.CreatedAt = time.Now().UTC()
	r.store.AdminActions = append(r.store.AdminActions, &actionCopy)
	return nil
}

func (r *AuditRecorder) RecordStatusChange(ctx context.Context, change *audit.StatusChange) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	changeCopy := *change
	changeCopy.ID = int64(len(r.store.StatusChanges) + 1)
	changeCopy.ChangedAt = time.Now().UTC()
	r.store.StatusChanges = append(r.store.StatusChanges, &changeCopy)
	return nil
}

func (r *AuditRecorder) RecordRenewal(ctx context.Context, renewal *audit.RenewalRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	renewalCopy := *renewal
	renewalCopy.ID = int64(len(r.store.Renewals) + 1)
	renewalCopy.RenewedAt = time.Now().UTC()
	r.store.Renewals = append(r.store.Renewals, &renewalCopy)
	return nil
}

func (r *AuditRecorder) LogAccess(ctx context.Context, record *audit.AccessRecord) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recordCopy := *record
	recordCopy.ID = int64(len(r.store.AccessLogs) + 1)
	recordCopy.AccessedAt = time.Now().UTC()
	r.store.AccessLogs = append(r.store.AccessLogs, &recordCopy)
}
