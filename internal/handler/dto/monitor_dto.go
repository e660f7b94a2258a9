package dto

import (
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/monitor"
)

type DBStatusResponse struct {
	DBName        string    `json:"db_name"`
	Result        string    `json:"connection_result"`
	LatencyMs     *int64    `json:"connection_time_ms,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

func NewDBStatusResponse(status *monitor.DBStatus) *DBStatusResponse {
	resp := &DBStatusResponse{
		DBName:        status.DBName,
		Result:        status.Result,
		LastCheckedAt: status.LastCheckedAt,
	}
	if status.LatencyMs.Valid {
		resp.LatencyMs = &status.LatencyMs.Int64
	}
	if status.ErrorMessage.Valid {
		resp.ErrorMessage = status.ErrorMessage.String
	}
	return resp
}

type AuthStatsResponse struct {
	DBName             string        `json:"db_name"`
	TotalAttempts      int64         `json:"total_attempts"`
	SuccessfulAttempts int64         `json:"successful_attempts"`
	FailedAttempts     int64         `json:"failed_attempts"`
	UniqueUsers        int64         `json:"unique_users"`
	LastAuthTime       *time.Time    `json:"last_auth_time,omitempty"`
	HourlyAttempts     map[int]int64 `json:"hourly_attempts"`
}

func NewAuthStatsResponse(stats *monitor.AuthStats) *AuthStatsResponse {
	resp := &AuthStatsResponse{
		DBName:             stats.DBName,
		TotalAttempts:      stats.TotalAttempts,
		SuccessfulAttempts: stats.SuccessfulAttempts,
		FailedAttempts:     stats.FailedAttempts,
		UniqueUsers:        stats.UniqueUsers,
		HourlyAttempts:     stats.HourlyAttempts,
	}
	if stats.LastAuthTime.Valid {
		resp.LastAuthTime = &stats.LastAuthTime.Time
	}
	return resp
}

type FleetStatsResponse struct {
	TotalDatabases     int                           `json:"total_databases"`
	TotalUsers         int64                         `json:"total_users"`
	TotalAuthAttempts  int64                         `json:"total_auth_attempts"`
	SuccessfulAttempts int64                         `json:"successful_attempts"`
	FailedAttempts     int64                         `json:"failed_attempts"`
	DatabaseStats      map[string]*AuthStatsResponse `json:"database_stats"`
}

func NewFleetStatsResponse(fleet *monitor.FleetStats) *FleetStatsResponse {
	resp := &FleetStatsResponse{
		TotalDatabases:     fleet.TotalDatabases,
		TotalUsers:         fleet.TotalUsers,
		TotalAuthAttempts:  fleet.TotalAuthAttempts,
		SuccessfulAttempts: fleet.SuccessfulAttempts,
		FailedAttempts:     fleet.FailedAttempts,
		DatabaseStats:      make(map[string]*AuthStatsResponse, len(fleet.DatabaseStats)),
	}
	for name, stats := range fleet.DatabaseStats {
		resp.DatabaseStats[name] = NewAuthStatsResponse(stats)
	}
	return resp
}
