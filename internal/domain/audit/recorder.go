package audit

import "context"

// Recorder appends audit rows for lifecycle mutations. Implementations must
// participate in the caller's transaction (the ctx carries it) and propagate
// failures: a mutation whose audit row cannot be written must roll back.
type Recorder interface {
	RecordAdminAction(ctx context.Context, action *AdminAction) error
	RecordStatusChange(ctx context.Context, change *StatusChange) error
	RecordRenewal(ctx context.Context, renewal *RenewalRecord) error
}

// AccessLogger is the best-effort counterpart for read-path access events.
// Implementations swallow write failures (reporting them out of band) so a
// failed log never prevents serving the access. The split from Recorder is
// deliberate: the two contracts must be visible at the call site.
type AccessLogger interface {
	LogAccess(ctx context.Context, record *AccessRecord)
}

// Reader provides read-only access to the audit trails.
type Reader interface {
	ListAdminActions(ctx context.Context, filter ActionFilter) ([]*AdminAction, error)
	ListStatusChanges(ctx context.Context, licenseID int64) ([]*StatusChange, error)
	ListRenewals(ctx context.Context, licenseID int64) ([]*RenewalRecord, error)
}
