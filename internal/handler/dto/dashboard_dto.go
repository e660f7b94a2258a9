package dto

import (
	"github.com/ayabid/license-admin-api/internal/domain/report"
	"github.com/ayabid/license-admin-api/internal/service"
)

type DashboardResponse struct {
	Statistics       *report.SystemStatistics `json:"statistics"`
	RecentActivities []*report.Activity       `json:"recent_activities"`
	ExpiringLicenses []*LicenseResponse       `json:"expiring_licenses"`
}

func NewDashboardResponse(d *service.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		Statistics:       d.Statistics,
		RecentActivities: d.RecentActivities,
		ExpiringLicenses: NewLicenseResponses(d.ExpiringLicenses),
	}
}
