package audit

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Context identifies the acting admin for a mutating call. It is threaded
// explicitly through every mutation instead of being read from ambient
// request state.
type Context struct {
	Admin     string
	SessionID string
	ClientIP  string
	UserAgent string
}

type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	ActionRenew  ActionType = "RENEW"
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
)

const TargetLicense = "LICENSE"

// AdminAction is one immutable audit-trail row. Old/new values are opaque
// serialized snapshots; the recorder stores them without interpreting them.
type AdminAction struct {
	ID             int64           `db:"log_id"`
	ActionType     ActionType      `db:"action_type"`
	TargetType     string          `db:"target_type"`
	TargetID       int64           `db:"target_id"`
	Description    string          `db:"action_details"`
	OldValues      json.RawMessage `db:"old_values"`
	NewValues      json.RawMessage `db:"new_values"`
	Admin          string          `db:"admin_user"`
	AdminSessionID string          `db:"admin_session_id"`
	ClientIP       string          `db:"client_ip"`
	UserAgent      string          `db:"user_agent"`
	CreatedAt      time.Time       `db:"created_at"`
}

// StatusChange is one row of the per-license status transition history.
type StatusChange struct {
	ID             int64     `db:"history_id"`
	LicenseID      int64     `db:"license_id"`
	PreviousStatus string    `db:"previous_status"`
	NewStatus      string    `db:"new_status"`
	ChangeReason   string    `db:"change_reason"`
	ChangedBy      string    `db:"changed_by"`
	ClientIP       string    `db:"client_ip"`
	ChangedAt      time.Time `db:"changed_at"`
}

// RenewalRecord is one row of the per-license renewal history.
type RenewalRecord struct {
	ID              int64     `db:"renewal_id"`
	LicenseID       int64     `db:"license_id"`
	RenewalPeriod   string    `db:"renewal_period"`
	PreviousExpiry  time.Time `db:"previous_expires_at"`
	NewExpiry       time.Time `db:"new_expires_at"`
	ExtensionDays   int       `db:"extension_days"`
	RenewedBy       string    `db:"renewed_by"`
	ClientIP        string    `db:"client_ip"`
	RenewedAt       time.Time `db:"renewed_at"`
}

type AccessResult string

const (
	AccessSuccess AccessResult = "SUCCESS"
	AccessFailure AccessResult = "FAILURE"
)

// AccessRecord is one per-access log row for a license key.
type AccessRecord struct {
	ID             int64        `db:"access_id"`
	LicenseID      int64        `db:"license_id"`
	AccessIP       string       `db:"access_ip"`
	UserAgent      string       `db:"user_agent"`
	AccessResult   AccessResult `db:"access_result"`
	SessionID      string       `db:"session_id"`
	ResponseTimeMs int64        `db:"response_time_ms"`
	AccessedAt     time.Time    `db:"accessed_at"`
}

// ActionFilter narrows admin-action log browsing.
type ActionFilter struct {
	ActionType *ActionType
	TargetID   *int64
	Since      sql.NullTime
	Until      sql.NullTime
	Limit      int
	Offset     int
}
