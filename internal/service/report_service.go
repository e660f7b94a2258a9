package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/config"
	"github.com/ayabid/license-admin-api/internal/domain/audit"
	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/domain/report"
)

const recentActivityLimit = 10

// StatsCache is a short-TTL cache in front of the statistics view. Misses
// and failures fall through to the database.
type StatsCache interface {
	Get(ctx context.Context) (*report.SystemStatistics, bool)
	Set(ctx context.Context, stats *report.SystemStatistics)
}

// ReportService serves the dashboard and the audit-trail browsing endpoints.
type ReportService struct {
	reports  report.Repository
	licenses license.Repository
	trail    audit.Reader
	cache    StatsCache
	cfg      config.DashboardConfig
	logger   *zap.Logger
}

// NewReportService wires the reporting reads. cache may be nil when redis
// is not configured.
func NewReportService(
	reports report.Repository,
	licenses license.Repository,
	trail audit.Reader,
	cache StatsCache,
	cfg config.DashboardConfig,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reports:  reports,
		licenses: licenses,
		trail:    trail,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.Named("ReportService"),
	}
}

// Dashboard is the aggregate payload for the admin landing page.
type Dashboard struct {
	Statistics       *report.SystemStatistics `json:"statistics"`
	RecentActivities []*report.Activity       `json:"recent_activities"`
	ExpiringLicenses []*license.License       `json:"expiring_licenses"`
}

func (s *ReportService) SystemStatistics(ctx context.Context) (*report.SystemStatistics, error) {
	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx); ok {
			return stats, nil
		}
	}

	stats, err := s.reports.SystemStatistics(ctx)
	if err != nil {
		s.logger.Error("Failed to load system statistics", zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, stats)
	}
	return stats, nil
}

func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.SystemStatistics(ctx)
	if err != nil {
		return nil, err
	}

	activities, err := s.reports.RecentActivities(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	expiring, err := s.reports.ExpiringLicenses(ctx, s.cfg.ExpiringSoonDays)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Statistics:       stats,
		RecentActivities: activities,
		ExpiringLicenses: expiring,
	}, nil
}

func (s *ReportService) RecentActivities(ctx context.Context, limit int) ([]*report.Activity, error) {
	if limit <= 0 {
		limit = recentActivityLimit
	}
	return s.reports.RecentActivities(ctx, limit)
}

func (s *ReportService) ExpiringLicenses(ctx context.Context, withinDays int) ([]*license.License, error) {
	if withinDays <= 0 {
		withinDays = s.cfg.ExpiringSoonDays
	}
	return s.reports.ExpiringLicenses(ctx, withinDays)
}

// StatusHistory lists the status transitions of one license, newest first.
func (s *ReportService) StatusHistory(ctx context.Context, licenseID int64) ([]*audit.StatusChange, error) {
	if _, err := s.licenses.FindByID(ctx, licenseID); err != nil {
		return nil, err
	}
	return s.trail.ListStatusChanges(ctx, licenseID)
}

// RenewalHistory lists the renewals of one license, newest first.
func (s *ReportService) RenewalHistory(ctx context.Context, licenseID int64) ([]*audit.RenewalRecord, error) {
	if _, err := s.licenses.FindByID(ctx, licenseID); err != nil {
		return nil, err
	}
	return s.trail.ListRenewals(ctx, licenseID)
}

// AdminActions browses the immutable admin action log.
func (s *ReportService) AdminActions(ctx context.Context, filter audit.ActionFilter) ([]*audit.AdminAction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.trail.ListAdminActions(ctx, filter)
}
