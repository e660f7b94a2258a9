// Package clientdb reaches into the per-client databases unlocked by issued
// keys. Pools are created lazily per database name and reused; every probe
// and query is bounded by the configured timeout.
package clientdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/config"
	"github.com/ayabid/license-admin-api/internal/domain/monitor"
)

type Manager struct {
	cfg    *config.ClientDBConfig
	logger *zap.Logger

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

func NewManager(cfg *config.ClientDBConfig, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.Named("ClientDBManager"),
		pools:  make(map[string]*pgxpool.Pool),
	}
}

var _ monitor.ClientSource = (*Manager)(nil)

func (m *Manager) pool(ctx context.Context, dbName string) (*pgxpool.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pool, ok := m.pools[dbName]; ok {
		return pool, nil
	}

	url := strings.ReplaceAll(m.cfg.URLTemplate, "{db}", dbName)
	pgxConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client db url for %s: %w", dbName, err)
	}
	pgxConfig.MaxConns = int32(m.cfg.MaxConns)

	connectCtx, cancel := context.WithTimeout(ctx, m.probeTimeout())
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to client db %s: %w", dbName, err)
	}

	m.pools[dbName] = pool
	return pool, nil
}

func (m *Manager) probeTimeout() time.Duration {
	if m.cfg.ProbeTimeout > 0 {
		return m.cfg.ProbeTimeout
	}
	return 5 * time.Second
}

// TestConnection pings the named client database and reports latency. It
// never returns an error: probe failures are data, not faults.
func (m *Manager) TestConnection(ctx context.Context, dbName string) monitor.ProbeResult {
	start := time.Now()

	pool, err := m.pool(ctx, dbName)
	if err != nil {
		return monitor.ProbeResult{Success: false, LatencyMs: time.Since(start).Milliseconds(), ErrorMessage: err.Error()}
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.probeTimeout())
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		// Drop the broken pool so the next probe redials.
		m.mu.Lock()
		delete(m.pools, dbName)
		m.mu.Unlock()
		pool.Close()

		return monitor.ProbeResult{Success: false, LatencyMs: time.Since(start).Milliseconds(), ErrorMessage: err.Error()}
	}

	return monitor.ProbeResult{Success: true, LatencyMs: time.Since(start).Milliseconds()}
}

func (m *Manager) AuthHistory(ctx context.Context, dbName string, limit int) ([]*monitor.AuthEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	pool, err := m.pool(ctx, dbName)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT user_id, auth_result, client_ip, auth_time
        FROM user_auth_history
        ORDER BY auth_time DESC
        LIMIT $1
    `
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		m.logger.Warn("Failed to query auth history", zap.String("db_name", dbName), zap.Error(err))
		return nil, fmt.Errorf("client db error on auth history for %s: %w", dbName, err)
	}
	defer rows.Close()

	events := make([]*monitor.AuthEvent, 0, limit)
	for rows.Next() {
		e := monitor.AuthEvent{DBName: dbName}
		if err := rows.Scan(&e.UserID, &e.AuthResult, &e.ClientIP, &e.AuthTime); err != nil {
			return nil, fmt.Errorf("client db scan error on auth history for %s: %w", dbName, err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (m *Manager) AuthStats(ctx context.Context, dbName string) (*monitor.AuthStats, error) {
	pool, err := m.pool(ctx, dbName)
	if err != nil {
		return nil, err
	}

	stats := &monitor.AuthStats{
		DBName:         dbName,
		HourlyAttempts: make(map[int]int64),
	}

	summary := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE auth_result = 'SUCCESS'),
            COUNT(*) FILTER (WHERE auth_result <> 'SUCCESS'),
            COUNT(DISTINCT user_id),
            MAX(auth_time)
        FROM user_auth_history
        WHERE auth_time >= now() - INTERVAL '24 hours'
    `
	err = pool.QueryRow(ctx, summary).Scan(
		&stats.TotalAttempts,
		&stats.SuccessfulAttempts,
		&stats.FailedAttempts,
		&stats.UniqueUsers,
		&stats.LastAuthTime,
	)
	if err != nil {
		m.logger.Warn("Failed to query auth statistics", zap.String("db_name", dbName), zap.Error(err))
		return nil, fmt.Errorf("client db error on auth stats for %s: %w", dbName, err)
	}

	hourly := `
        SELECT EXTRACT(HOUR FROM auth_time)::INT, COUNT(*)
        FROM user_auth_history
        WHERE auth_time >= now() - INTERVAL '24 hours'
        GROUP BY 1
        ORDER BY 1
    `
	rows, err := pool.Query(ctx, hourly)
	if err != nil {
		return nil, fmt.Errorf("client db error on hourly auth stats for %s: %w", dbName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour int
		var attempts int64
		if err := rows.Scan(&hour, &attempts); err != nil {
			return nil, fmt.Errorf("client db scan error on hourly auth stats for %s: %w", dbName, err)
		}
		stats.HourlyAttempts[hour] = attempts
	}
	return stats, rows.Err()
}

// Close releases every client pool.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, pool := range m.pools {
		pool.Close()
		delete(m.pools, name)
	}
}
