package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/domain/monitor"
	"github.com/ayabid/license-admin-api/internal/domain/report"
)

// ReportRepository serves the read-only aggregation views, and doubles as
// the store for client-DB probe results.
type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger.Named("ReportRepository"),
	}
}

var _ report.Repository = (*ReportRepository)(nil)

func (r *ReportRepository) SystemStatistics(ctx context.Context) (*report.SystemStatistics, error) {
	query := `
        SELECT total_licenses, active_licenses, suspended_licenses,
               expired_licenses, revoked_licenses, permanent_licenses,
               three_day_licenses, seven_day_licenses, thirty_day_licenses,
               overdue_licenses, expiring_urgent, expiring_soon,
               avg_access_count, total_active_sessions, total_connected_dbs
        FROM v_system_statistics
    `
	var stats report.SystemStatistics
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalLicenses,
		&stats.ActiveLicenses,
		&stats.SuspendedLicenses,
		&stats.ExpiredLicenses,
		&stats.RevokedLicenses,
		&stats.PermanentLicenses,
		&stats.ThreeDayLicenses,
		&stats.SevenDayLicenses,
		&stats.ThirtyDayLicenses,
		&stats.OverdueLicenses,
		&stats.ExpiringUrgent,
		&stats.ExpiringSoon,
		&stats.AvgAccessCount,
		&stats.TotalActiveSessions,
		&stats.TotalConnectedDBs,
	)
	if err != nil {
		r.logger.Error("Failed to query system statistics", zap.Error(err))
		return nil, fmt.Errorf("database error on system statistics: %w", err)
	}
	return &stats, nil
}

func (r *ReportRepository) RecentActivities(ctx context.Context, limit int) ([]*report.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT activity_type, description, license_key, company_name, actor, occurred_at
         FROM v_recent_activities LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("Failed to query recent activities", zap.Error(err))
		return nil, fmt.Errorf("database error on recent activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*report.Activity, 0, limit)
	for rows.Next() {
		var a report.Activity
		if err := rows.Scan(&a.ActivityType, &a.Description, &a.LicenseKey, &a.CompanyName, &a.Actor, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("database scan error on recent activities: %w", err)
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}

func (r *ReportRepository) ExpiringLicenses(ctx context.Context, withinDays int) ([]*license.License, error) {
	if withinDays <= 0 {
		withinDays = 7
	}

	query := `SELECT` + licenseColumns + `
        FROM license_keys
        WHERE validity_period <> $1
          AND expires_at > now()
          AND expires_at <= now() + make_interval(days => $2)
          AND status = $3
        ORDER BY expires_at ASC
    `
	rows, err := r.db.Query(ctx, query, license.PeriodPermanent, withinDays, license.StatusActive)
	if err != nil {
		r.logger.Error("Failed to query expiring licenses", zap.Int("within_days", withinDays), zap.Error(err))
		return nil, fmt.Errorf("database error on expiring licenses: %w", err)
	}
	defer rows.Close()

	licenses := make([]*license.License, 0)
	for rows.Next() {
		lic, err := scanLicenseRow(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, lic)
	}
	return licenses, rows.Err()
}

// UpsertStatus persists the latest probe result for a client database.
func (r *ReportRepository) UpsertStatus(ctx context.Context, status *monitor.DBStatus) error {
	query := `
        INSERT INTO db_connection_status (db_name, connection_result, connection_time_ms, error_message, last_checked_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (db_name) DO UPDATE SET
            connection_result = EXCLUDED.connection_result,
            connection_time_ms = EXCLUDED.connection_time_ms,
            error_message = EXCLUDED.error_message,
            last_checked_at = now()
    `
	_, err := r.db.Exec(ctx, query, status.DBName, status.Result, status.LatencyMs, status.ErrorMessage)
	if err != nil {
		r.logger.Error("Failed to upsert db connection status", zap.String("db_name", status.DBName), zap.Error(err))
		return fmt.Errorf("database error on upsert db status: %w", err)
	}
	return nil
}

func (r *ReportRepository) ListStatuses(ctx context.Context) ([]*monitor.DBStatus, error) {
	rows, err := r.db.Query(ctx,
		`SELECT db_name, connection_result, connection_time_ms, error_message, last_checked_at
         FROM db_connection_status ORDER BY last_checked_at DESC`)
	if err != nil {
		r.logger.Error("Failed to query db connection statuses", zap.Error(err))
		return nil, fmt.Errorf("database error on list db statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]*monitor.DBStatus, 0)
	for rows.Next() {
		var s monitor.DBStatus
		if err := rows.Scan(&s.DBName, &s.Result, &s.LatencyMs, &s.ErrorMessage, &s.LastCheckedAt); err != nil {
			return nil, fmt.Errorf("database scan error on db statuses: %w", err)
		}
		statuses = append(statuses, &s)
	}
	return statuses, rows.Err()
}

var _ monitor.StatusStore = (*ReportRepository)(nil)
