package report

import (
	"context"
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/license"
)

// SystemStatistics mirrors the v_system_statistics view.
type SystemStatistics struct {
	TotalLicenses       int64   `db:"total_licenses" json:"total_licenses"`
	ActiveLicenses      int64   `db:"active_licenses" json:"active_licenses"`
	SuspendedLicenses   int64   `db:"suspended_licenses" json:"suspended_licenses"`
	ExpiredLicenses     int64   `db:"expired_licenses" json:"expired_licenses"`
	RevokedLicenses     int64   `db:"revoked_licenses" json:"revoked_licenses"`
	PermanentLicenses   int64   `db:"permanent_licenses" json:"permanent_licenses"`
	ThreeDayLicenses    int64   `db:"three_day_licenses" json:"three_day_licenses"`
	SevenDayLicenses    int64   `db:"seven_day_licenses" json:"seven_day_licenses"`
	ThirtyDayLicenses   int64   `db:"thirty_day_licenses" json:"thirty_day_licenses"`
	OverdueLicenses     int64   `db:"overdue_licenses" json:"overdue_licenses"`
	ExpiringUrgent      int64   `db:"expiring_urgent" json:"expiring_urgent"`
	ExpiringSoon        int64   `db:"expiring_soon" json:"expiring_soon"`
	AvgAccessCount      float64 `db:"avg_access_count" json:"avg_access_count"`
	TotalActiveSessions int64   `db:"total_active_sessions" json:"total_active_sessions"`
	TotalConnectedDBs   int64   `db:"total_connected_dbs" json:"total_connected_dbs"`
}

// Activity is one row of the v_recent_activities feed.
type Activity struct {
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Description  string    `db:"description" json:"description"`
	LicenseKey   string    `db:"license_key" json:"license_key"`
	CompanyName  string    `db:"company_name" json:"company_name"`
	Actor        string    `db:"actor" json:"actor"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurred_at"`
}

// Repository is the read-only reporting side. No method mutates anything.
type Repository interface {
	SystemStatistics(ctx context.Context) (*SystemStatistics, error)
	RecentActivities(ctx context.Context, limit int) ([]*Activity, error)
	ExpiringLicenses(ctx context.Context, withinDays int) ([]*license.License, error)
}
