package dto

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
)

type AdminActionListRequest struct {
	ActionType string     `form:"action_type" binding:"omitempty,oneof=CREATE UPDATE DELETE RENEW LOGIN LOGOUT"`
	TargetID   *int64     `form:"target_id"`
	Since      *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until      *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit      int        `form:"limit,default=50" binding:"omitempty,gte=0,lte=500"`
	Offset     int        `form:"offset,default=0" binding:"omitempty,gte=0"`
}

func (r *AdminActionListRequest) ToFilter() audit.ActionFilter {
	filter := audit.ActionFilter{
		TargetID: r.TargetID,
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
	if r.ActionType != "" {
		actionType := audit.ActionType(r.ActionType)
		filter.ActionType = &actionType
	}
	if r.Since != nil {
		filter.Since = sql.NullTime{Time: *r.Since, Valid: true}
	}
	if r.Until != nil {
		filter.Until = sql.NullTime{Time: *r.Until, Valid: true}
	}
	return filter
}

type AdminActionResponse struct {
	ID             int64            `json:"log_id"`
	ActionType     audit.ActionType `json:"action_type"`
	TargetType     string           `json:"target_type"`
	TargetID       int64            `json:"target_id"`
	Description    string           `json:"action_details"`
	OldValues      json.RawMessage  `json:"old_values,omitempty"`
	NewValues      json.RawMessage  `json:"new_values,omitempty"`
	Admin          string           `json:"admin_user"`
	AdminSessionID string           `json:"admin_session_id,omitempty"`
	ClientIP       string           `json:"client_ip,omitempty"`
	UserAgent      string           `json:"user_agent,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func NewAdminActionResponse(action *audit.AdminAction) *AdminActionResponse {
	return &AdminActionResponse{
		ID:             action.ID,
		ActionType:     action.ActionType,
		TargetType:     action.TargetType,
		TargetID:       action.TargetID,
		Description:    action.Description,
		OldValues:      action.OldValues,
		NewValues:      action.NewValues,
		Admin:          action.Admin,
		AdminSessionID: action.AdminSessionID,
		ClientIP:       action.ClientIP,
		UserAgent:      action.UserAgent,
		CreatedAt:      action.CreatedAt,
	}
}

type StatusChangeResponse struct {
	ID             int64     `json:"history_id"`
	LicenseID      int64     `json:"license_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangeReason   string    `json:"change_reason,omitempty"`
	ChangedBy      string    `json:"changed_by"`
	ClientIP       string    `json:"client_ip,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

func NewStatusChangeResponse(change *audit.StatusChange) *StatusChangeResponse {
	return &StatusChangeResponse{
		ID:             change.ID,
		LicenseID:      change.LicenseID,
		PreviousStatus: change.PreviousStatus,
		NewStatus:      change.NewStatus,
		ChangeReason:   change.ChangeReason,
		ChangedBy:      change.ChangedBy,
		ClientIP:       change.ClientIP,
		ChangedAt:      change.ChangedAt,
	}
}

type RenewalRecordResponse struct {
	ID             int64     `json:"renewal_id"`
	LicenseID      int64     `json:"license_id"`
	RenewalPeriod  string    `json:"renewal_period"`
	PreviousExpiry time.Time `json:"previous_expires_at"`
	NewExpiry      time.Time `json:"new_expires_at"`
	ExtensionDays  int       `json:"extension_days"`
	RenewedBy      string    `json:"renewed_by"`
	ClientIP       string    `json:"client_ip,omitempty"`
	RenewedAt      time.Time `json:"renewed_at"`
}

func NewRenewalRecordResponse(renewal *audit.RenewalRecord) *RenewalRecordResponse {
	return &RenewalRecordResponse{
		ID:             renewal.ID,
		LicenseID:      renewal.LicenseID,
		RenewalPeriod:  renewal.RenewalPeriod,
		PreviousExpiry: renewal.PreviousExpiry,
		NewExpiry:      renewal.NewExpiry,
		ExtensionDays:  renewal.ExtensionDays,
		RenewedBy:      renewal.RenewedBy,
		ClientIP:       renewal.ClientIP,
		RenewedAt:      renewal.RenewedAt,
	}
}
