package dto

import (
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/license"
)

// expiringSoonWindowDays is the display window for the expiry_status field
// on license responses.
const expiringSoonWindowDays = 7

// CreateLicenseRequest carries the raw input for issuing a key. Field-level
// validation happens in the domain so validation failures keep a stable
// order and wording; binding only shapes the JSON.
type CreateLicenseRequest struct {
	LicenseKey     string `json:"license_key"`
	DBName         string `json:"db_name"`
	CompanyName    string `json:"company_name"`
	ContactPerson  string `json:"contact_person"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	LicenseType    string `json:"license_type"`
	ValidityPeriod string `json:"validity_period"`
	Notes          string `json:"notes"`
}

func (r *CreateLicenseRequest) ToParams() *license.CreateParams {
	return &license.CreateParams{
		LicenseKey:     r.LicenseKey,
		CompanyName:    r.CompanyName,
		ContactPerson:  r.ContactPerson,
		ContactEmail:   r.ContactEmail,
		ValidityPeriod: license.Period(r.ValidityPeriod),
		DBName:         r.DBName,
		ContactPhone:   r.ContactPhone,
		Type:           license.Type(r.LicenseType),
		Notes:          r.Notes,
	}
}

type LicenseResponse struct {
	ID              int64                `json:"license_id"`
	LicenseKey      string               `json:"license_key"`
	DBName          *string              `json:"db_name,omitempty"`
	CompanyName     string               `json:"company_name"`
	ContactPerson   string               `json:"contact_person"`
	ContactEmail    string               `json:"contact_email"`
	ContactPhone    *string              `json:"contact_phone,omitempty"`
	LicenseType     license.Type         `json:"license_type"`
	ValidityPeriod  license.Period       `json:"validity_period"`
	Status          license.Status       `json:"status"`
	ExpiryStatus    license.ExpiryBucket `json:"expiry_status"`
	DaysRemaining   int                  `json:"days_remaining"`
	IssuedBy        string               `json:"issued_by"`
	Notes           *string              `json:"notes,omitempty"`
	IssuedAt        time.Time            `json:"issued_at"`
	ExpiresAt       time.Time            `json:"expires_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	AccessCount     int64                `json:"access_count"`
	FirstAccessed   *time.Time           `json:"first_accessed,omitempty"`
	LastAccessed    *time.Time           `json:"last_accessed,omitempty"`
	CurrentSessions int                  `json:"current_sessions"`
}

func NewLicenseResponse(lic *license.License) *LicenseResponse {
	now := time.Now().UTC()
	resp := &LicenseResponse{
		ID:              lic.ID,
		LicenseKey:      lic.LicenseKey,
		CompanyName:     lic.CompanyName,
		ContactPerson:   lic.ContactPerson,
		ContactEmail:    lic.ContactEmail,
		LicenseType:     lic.Type,
		ValidityPeriod:  lic.ValidityPeriod,
		Status:          lic.Status,
		ExpiryStatus:    lic.Bucket(now, expiringSoonWindowDays),
		DaysRemaining:   lic.DaysRemaining(now),
		IssuedBy:        lic.IssuedBy,
		IssuedAt:        lic.IssuedAt,
		ExpiresAt:       lic.ExpiresAt,
		UpdatedAt:       lic.UpdatedAt,
		AccessCount:     lic.AccessCount,
		CurrentSessions: lic.CurrentSessions,
	}
	if lic.DBName.Valid {
		resp.DBName = &lic.DBName.String
	}
	if lic.ContactPhone.Valid {
		resp.ContactPhone = &lic.ContactPhone.String
	}
	if lic.Notes.Valid {
		resp.Notes = &lic.Notes.String
	}
	if lic.FirstAccessed.Valid {
		resp.FirstAccessed = &lic.FirstAccessed.Time
	}
	if lic.LastAccessed.Valid {
		resp.LastAccessed = &lic.LastAccessed.Time
	}
	return resp
}

func NewLicenseResponses(licenses []*license.License) []*LicenseResponse {
	responses := make([]*LicenseResponse, len(licenses))
	for i, lic := range licenses {
		responses[i] = NewLicenseResponse(lic)
	}
	return responses
}

type CreateLicenseResponse struct {
	License   *LicenseResponse `json:"license"`
	DBWarning string           `json:"db_warning,omitempty"`
}

type ListLicensesRequest struct {
	Search         string `form:"search"`
	Status         string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED EXPIRED REVOKED"`
	ValidityPeriod string `form:"validity_period"`
	LicenseType    string `form:"license_type" binding:"omitempty,oneof=G2B_A G2B_B G2B_C EAT ALL"`
	ExpiryStatus   string `form:"expiry_status" binding:"omitempty,oneof=NORMAL EXPIRING_SOON EXPIRING_URGENT EXPIRED PERMANENT"`
	SortBy         string `form:"sort_by,default=issued_at"`
	SortOrder      string `form:"sort_order,default=DESC" binding:"omitempty,oneof=ASC DESC asc desc"`
	Limit          int    `form:"limit,default=20" binding:"omitempty,gte=0,lte=200"`
	Offset         int    `form:"offset,default=0" binding:"omitempty,gte=0"`
}

func (r *ListLicensesRequest) ToParams() license.ListParams {
	params := license.ListParams{
		Search:    r.Search,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}
	if r.Status != "" {
		status := license.Status(r.Status)
		params.Status = &status
	}
	if r.ValidityPeriod != "" {
		period := license.Period(r.ValidityPeriod)
		params.ValidityPeriod = &period
	}
	if r.LicenseType != "" {
		licenseType := license.Type(r.LicenseType)
		params.Type = &licenseType
	}
	if r.ExpiryStatus != "" {
		bucket := license.ExpiryBucket(r.ExpiryStatus)
		params.ExpiryBucket = &bucket
	}
	return params
}

type PaginatedLicenseResponse struct {
	Licenses   []*LicenseResponse `json:"licenses"`
	TotalCount int64              `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

type UpdateLicenseRequest struct {
	LicenseKey     *string    `json:"license_key"`
	DBName         *string    `json:"db_name"`
	CompanyName    *string    `json:"company_name"`
	ContactPerson  *string    `json:"contact_person"`
	ContactEmail   *string    `json:"contact_email"`
	ContactPhone   *string    `json:"contact_phone"`
	LicenseType    *string    `json:"license_type"`
	ValidityPeriod *string    `json:"validity_period"`
	ExpiresAt      *time.Time `json:"expires_at"`
	Status         *string    `json:"status"`
	Notes          *string    `json:"notes"`
}

func (r *UpdateLicenseRequest) ToFields() *license.UpdateFields {
	fields := &license.UpdateFields{
		LicenseKey:    r.LicenseKey,
		DBName:        r.DBName,
		CompanyName:   r.CompanyName,
		ContactPerson: r.ContactPerson,
		ContactEmail:  r.ContactEmail,
		ContactPhone:  r.ContactPhone,
		ExpiresAt:     r.ExpiresAt,
		Notes:         r.Notes,
	}
	if r.LicenseType != nil {
		licenseType := license.Type(*r.LicenseType)
		fields.Type = &licenseType
	}
	if r.ValidityPeriod != nil {
		period := license.Period(*r.ValidityPeriod)
		fields.ValidityPeriod = &period
	}
	if r.Status != nil {
		status := license.Status(*r.Status)
		fields.Status = &status
	}
	return fields
}

type UpdateLicenseStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type UpdateLicenseStatusResponse struct {
	License *LicenseResponse `json:"license"`
	Changed bool             `json:"changed"`
}

type RenewLicenseRequest struct {
	ValidityPeriod string `json:"validity_period" binding:"required"`
}

type RenewLicenseResponse struct {
	License           *LicenseResponse `json:"license"`
	PreviousExpiresAt time.Time        `json:"previous_expires_at"`
	NewExpiresAt      time.Time        `json:"new_expires_at"`
	ExtensionDays     int              `json:"extension_days"`
	DaysRemaining     int              `json:"days_remaining"`
}
