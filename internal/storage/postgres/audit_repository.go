package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
)

// AuditRepository is the append-only writer for the three audit sinks plus
// their read side. RecordAdminAction/RecordStatusChange/RecordRenewal run on
// whatever transaction rides in ctx and propagate failures; LogAccess is
// deliberately best-effort and only reports failures to the logger.
type AuditRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuditRepository(db *pgxpool.Pool, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger.Named("AuditRepository"),
	}
}

var (
	_ audit.Recorder     = (*AuditRepository)(nil)
	_ audit.AccessLogger = (*AuditRepository)(nil)
	_ audit.Reader       = (*AuditRepository)(nil)
)

func (r *AuditRepository) RecordAdminAction(ctx context.Context, action *audit.AdminAction) error {
	query := `
        INSERT INTO admin_action_logs (
            action_type, target_type, target_id, action_details,
            old_values, new_values, admin_user, admin_session_id,
            client_ip, user_agent
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := queryerFrom(ctx, r.db).Exec(ctx, query,
		action.ActionType,
		action.TargetType,
		action.TargetID,
		action.Description,
		action.OldValues,
		action.NewValues,
		action.Admin,
		action.AdminSessionID,
		action.ClientIP,
		action.UserAgent,
	)
	if err != nil {
		r.logger.Error("Failed to record admin action",
			zap.String("action_type", string(action.ActionType)),
			zap.Int64("target_id", action.TargetID),
			zap.Error(err),
		)
		return fmt.Errorf("database error on record admin action: %w", err)
	}
	return nil
}

func (r *AuditRepository) RecordStatusChange(ctx context.Context, change *audit.StatusChange) error {
	query := `
        INSERT INTO license_status_history (
            license_id, previous_status, new_status, change_reason,
            changed_by, client_ip
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := queryerFrom(ctx, r.db).Exec(ctx, query,
		change.LicenseID,
		change.PreviousStatus,
		change.NewStatus,
		change.ChangeReason,
		change.ChangedBy,
		change.ClientIP,
	)
	if err != nil {
		r.logger.Error("Failed to record status change",
			zap.Int64("license_id", change.LicenseID),
			zap.Error(err),
		)
		return fmt.Errorf("database error on record status change: %w", err)
	}
	return nil
}

func (r *AuditRepository) RecordRenewal(ctx context.Context, renewal *audit.RenewalRecord) error {
	query := `
        INSERT INTO license_renewals (
            license_id, renewal_period, previous_expires_at, new_expires_at,
            extension_days, renewed_by, client_ip
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := queryerFrom(ctx, r.db).Exec(ctx, query,
		renewal.LicenseID,
		renewal.RenewalPeriod,
		renewal.PreviousExpiry,
		renewal.NewExpiry,
		renewal.ExtensionDays,
		renewal.RenewedBy,
		renewal.ClientIP,
	)
	if err != nil {
		r.logger.Error("Failed to record renewal",
			zap.Int64("license_id", renewal.LicenseID),
			zap.Error(err),
		)
		return fmt.Errorf("database error on record renewal: %w", err)
	}
	return nil
}

// LogAccess never returns an error: a failed access log must not prevent
// serving the access itself.
func (r *AuditRepository) LogAccess(ctx context.Context, record *audit.AccessRecord) {
	query := `
        INSERT INTO license_access_logs (
            license_id, access_ip, user_agent, access_result,
            session_id, response_time_ms
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := queryerFrom(ctx, r.db).Exec(ctx, query,
		record.LicenseID,
		record.AccessIP,
		record.UserAgent,
		record.AccessResult,
		record.SessionID,
		record.ResponseTimeMs,
	)
	if err != nil {
		r.logger.Error("Failed to log license access",
			zap.Int64("license_id", record.LicenseID),
			zap.String("access_result", string(record.AccessResult)),
			zap.Error(err),
		)
	}
}

func (r *AuditRepository) ListAdminActions(ctx context.Context, filter audit.ActionFilter) ([]*audit.AdminAction, error) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if filter.ActionType != nil {
		args = append(args, *filter.ActionType)
		conds = append(conds, fmt.Sprintf("action_type = $%d", len(args)))
	}
	if filter.TargetID != nil {
		args = append(args, *filter.TargetID)
		conds = append(conds, fmt.Sprintf("target_id = $%d", len(args)))
	}
	if filter.Since.Valid {
		args = append(args, filter.Since.Time)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.Until.Valid {
		args = append(args, filter.Until.Time)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `
        SELECT log_id, action_type, target_type, target_id, action_details,
               old_values, new_values, admin_user, admin_session_id,
               client_ip, user_agent, created_at
        FROM admin_action_logs
    `
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := queryerFrom(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query admin action logs", zap.Error(err))
		return nil, fmt.Errorf("database error on list admin actions: %w", err)
	}
	defer rows.Close()

	actions := make([]*audit.AdminAction, 0)
	for rows.Next() {
		var a audit.AdminAction
		err := rows.Scan(
			&a.ID, &a.ActionType, &a.TargetType, &a.TargetID, &a.Description,
			&a.OldValues, &a.NewValues, &a.Admin, &a.AdminSessionID,
			&a.ClientIP, &a.UserAgent, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("database scan error on admin actions: %w", err)
		}
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}

func (r *AuditRepository) ListStatusChanges(ctx context.Context, licenseID int64) ([]*audit.StatusChange, error) {
	query := `
        SELECT history_id, license_id, previous_status, new_status,
               COALESCE(change_reason, ''), changed_by, COALESCE(client_ip, ''), changed_at
        FROM license_status_history
        WHERE license_id = $1
        ORDER BY changed_at DESC
    `
	rows, err := queryerFrom(ctx, r.db).Query(ctx, query, licenseID)
	if err != nil {
		r.logger.Error("Failed to query status history", zap.Int64("license_id", licenseID), zap.Error(err))
		return nil, fmt.Errorf("database error on list status changes: %w", err)
	}
	defer rows.Close()

	changes := make([]*audit.StatusChange, 0)
	for rows.Next() {
		var c audit.StatusChange
		err := rows.Scan(
			&c.ID, &c.LicenseID, &c.PreviousStatus, &c.NewStatus,
			&c.ChangeReason, &c.ChangedBy, &c.ClientIP, &c.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("database scan error on status changes: %w", err)
		}
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}

func (r *AuditRepository) ListRenewals(ctx context.Context, licenseID int64) ([]*audit.RenewalRecord, error) {
	query := `
        SELECT renewal_id, license_id, renewal_period, previous_expires_at,
               new_expires_at, extension_days, renewed_by, COALESCE(client_ip, ''), renewed_at
        FROM license_renewals
        WHERE license_id = $1
        ORDER BY renewed_at DESC
    `
	rows, err := queryerFrom(ctx, r.db).Query(ctx, query, licenseID)
	if err != nil {
		r.logger.Error("Failed to query renewal history", zap.Int64("license_id", licenseID), zap.Error(err))
		return nil, fmt.Errorf("database error on list renewals: %w", err)
	}
	defer rows.Close()

	renewals := make([]*audit.RenewalRecord, 0)
	for rows.Next() {
		var rec audit.RenewalRecord
		err := rows.Scan(
			&rec.ID, &rec.LicenseID, &rec.RenewalPeriod, &rec.PreviousExpiry,
			&rec.NewExpiry, &rec.ExtensionDays, &rec.RenewedBy, &rec.ClientIP, &rec.RenewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("database scan error on renewals: %w", err)
		}
		renewals = append(renewals, &rec)
	}
	return renewals, rows.Err()
}
