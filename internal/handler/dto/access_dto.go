package dto

import (
	"time"

	"github.com/ayabid/license-admin-api/internal/service"
)

type ValidateLicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

type ValidateLicenseResponse struct {
	IsValid       bool       `json:"is_valid"`
	Reason        string     `json:"reason,omitempty"`
	SessionID     string     `json:"session_id,omitempty"`
	CompanyName   string     `json:"company_name,omitempty"`
	LicenseType   string     `json:"license_type,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
}

func NewValidateLicenseResponse(decision *service.AccessDecision) *ValidateLicenseResponse {
	resp := &ValidateLicenseResponse{
		IsValid:       decision.Valid,
		Reason:        decision.Reason,
		SessionID:     decision.SessionID,
		DaysRemaining: decision.DaysRemaining,
	}
	if decision.Valid && decision.License != nil {
		resp.CompanyName = decision.License.CompanyName
		resp.LicenseType = string(decision.License.Type)
		resp.ExpiresAt = &decision.License.ExpiresAt
	}
	return resp
}

type EndSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}
