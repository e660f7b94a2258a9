package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/domain/monitor"
	"github.com/ayabid/license-admin-api/internal/metrics"
)

const defaultAuthHistoryLimit = 100

// MonitorService watches the per-client databases: connectivity probes and
// read-only authentication statistics. Client databases failing to answer
// are reported, never fatal.
type MonitorService struct {
	licenses license.Repository
	client   monitor.ClientSource
	statuses monitor.StatusStore
	logger   *zap.Logger
}

func NewMonitorService(
	licenses license.Repository,
	client monitor.ClientSource,
	statuses monitor.StatusStore,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		licenses: licenses,
		client:   client,
		statuses: statuses,
		logger:   logger.Named("MonitorService"),
	}
}

// TestDatabase probes one client database and persists the outcome.
func (s *MonitorService) TestDatabase(ctx context.Context, dbName string) monitor.ProbeResult {
	result := s.client.TestConnection(ctx, dbName)
	s.persistProbe(ctx, dbName, result)
	return result
}

// ProbeAll probes every client database referenced by a license and returns
// the per-database outcomes.
func (s *MonitorService) ProbeAll(ctx context.Context) (map[string]monitor.ProbeResult, error) {
	names, err := s.licenses.DistinctDBNames(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string]monitor.ProbeResult, len(names))
	for _, name := range names {
		result := s.client.TestConnection(ctx, name)
		s.persistProbe(ctx, name, result)
		results[name] = result
	}
	return results, nil
}

// Statuses lists the latest persisted probe result per client database.
func (s *MonitorService) Statuses(ctx context.Context) ([]*monitor.DBStatus, error) {
	return s.statuses.ListStatuses(ctx)
}

// AuthHistory returns recent authentication attempts. With an empty dbName
// the histories of all client databases are merged, newest first.
func (s *MonitorService) AuthHistory(ctx context.Context, dbName string, limit int) ([]*monitor.AuthEvent, error) {
	if limit <= 0 {
		limit = defaultAuthHistoryLimit
	}

	if dbName != "" {
		return s.client.AuthHistory(ctx, dbName, limit)
	}

	names, err := s.licenses.DistinctDBNames(ctx)
	if err != nil {
		return nil, err
	}

	merged := make([]*monitor.AuthEvent, 0, limit)
	for _, name := range names {
		events, err := s.client.AuthHistory(ctx, name, limit)
		if err != nil {
			s.logger.Warn("Skipping unreachable client database in auth history",
				zap.String("db_name", name), zap.Error(err))
			continue
		}
		merged = append(merged, events...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].AuthTime.After(merged[j].AuthTime)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// FleetStats aggregates 24h authentication statistics across all client
// databases. Unreachable databases are skipped and logged.
func (s *MonitorService) FleetStats(ctx context.Context) (*monitor.FleetStats, error) {
	names, err := s.licenses.DistinctDBNames(ctx)
	if err != nil {
		return nil, err
	}

	fleet := &monitor.FleetStats{
		DatabaseStats: make(map[string]*monitor.AuthStats, len(names)),
	}
	for _, name := range names {
		stats, err := s.client.AuthStats(ctx, name)
		if err != nil {
			s.logger.Warn("Skipping unreachable client database in fleet stats",
				zap.String("db_name", name), zap.Error(err))
			continue
		}
		fleet.TotalDatabases++
		fleet.TotalUsers += stats.UniqueUsers
		fleet.TotalAuthAttempts += stats.TotalAttempts
		fleet.SuccessfulAttempts += stats.SuccessfulAttempts
		fleet.FailedAttempts += stats.FailedAttempts
		fleet.DatabaseStats[name] = stats
	}
	return fleet, nil
}

func (s *MonitorService) persistProbe(ctx context.Context, dbName string, result monitor.ProbeResult) {
	status := &monitor.DBStatus{
		DBName:        dbName,
		Result:        "SUCCESS",
		LatencyMs:     sql.NullInt64{Int64: result.LatencyMs, Valid: true},
		LastCheckedAt: time.Now().UTC(),
	}
	if !result.Success {
		status.Result = "FAILURE"
		status.ErrorMessage = sql.NullString{String: result.ErrorMessage, Valid: result.ErrorMessage != ""}
		metrics.DBProbes.WithLabelValues("failure").Inc()
	} else {
		metrics.DBProbes.WithLabelValues("success").Inc()
	}

	if err := s.statuses.UpsertStatus(ctx, status); err != nil {
		s.logger.Warn("Failed to persist probe result",
			zap.String("db_name", dbName), zap.Error(err))
	}
}
