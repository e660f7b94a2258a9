package monitor

import (
	"context"
	"database/sql"
	"time"
)

// ProbeResult is the outcome of a connectivity check against a client
// database. Probes warn; they never block license operations.
type ProbeResult struct {
	Success      bool   `json:"success"`
	LatencyMs    int64  `json:"latency_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// AuthEvent is one authentication attempt recorded inside a client database.
type AuthEvent struct {
	DBName     string    `json:"db_name"`
	UserID     string    `json:"user_id"`
	AuthResult string    `json:"auth_result"`
	ClientIP   string    `json:"client_ip"`
	AuthTime   time.Time `json:"auth_time"`
}

// AuthStats is a 24h authentication summary for one client database.
type AuthStats struct {
	DBName             string        `json:"db_name"`
	TotalAttempts      int64         `json:"total_attempts"`
	SuccessfulAttempts int64         `json:"successful_attempts"`
	FailedAttempts     int64         `json:"failed_attempts"`
	UniqueUsers        int64         `json:"unique_users"`
	LastAuthTime       sql.NullTime  `json:"last_auth_time"`
	HourlyAttempts     map[int]int64 `json:"hourly_attempts"`
}

// FleetStats aggregates AuthStats across all reachable client databases.
type FleetStats struct {
	TotalDatabases     int                   `json:"total_databases"`
	TotalUsers         int64                 `json:"total_users"`
	TotalAuthAttempts  int64                 `json:"total_auth_attempts"`
	SuccessfulAttempts int64                 `json:"successful_attempts"`
	FailedAttempts     int64                 `json:"failed_attempts"`
	DatabaseStats      map[string]*AuthStats `json:"database_stats"`
}

// DBStatus is the persisted result of the latest connectivity probe.
type DBStatus struct {
	DBName        string         `db:"db_name" json:"db_name"`
	Result        string         `db:"connection_result" json:"connection_result"`
	LatencyMs     sql.NullInt64  `db:"connection_time_ms" json:"connection_time_ms"`
	ErrorMessage  sql.NullString `db:"error_message" json:"error_message,omitempty"`
	LastCheckedAt time.Time      `db:"last_checked_at" json:"last_checked_at"`
}

// ClientSource reaches into the per-client databases. Implementations keep
// their own connection management; every call is bounded by ctx.
type ClientSource interface {
	TestConnection(ctx context.Context, dbName string) ProbeResult
	AuthHistory(ctx context.Context, dbName string, limit int) ([]*AuthEvent, error)
	AuthStats(ctx context.Context, dbName string) (*AuthStats, error)
}

// StatusStore persists probe outcomes in the main database.
type StatusStore interface {
	UpsertStatus(ctx context.Context, status *DBStatus) error
	ListStatuses(ctx context.Context) ([]*DBStatus, error)
}
