package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/handler/dto"
	"github.com/ayabid/license-admin-api/internal/service"
)

type DashboardHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

func NewDashboardHandler(service *service.ReportService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.Named("DashboardHandler"),
	}
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDashboardResponse(dashboard))
}

func (h *DashboardHandler) GetStatistics(c *gin.Context) {
	stats, err := h.service.SystemStatistics(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) GetRecentActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	activities, err := h.service.RecentActivities(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *DashboardHandler) GetExpiringLicenses(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	licenses, err := h.service.ExpiringLicenses(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"licenses": dto.NewLicenseResponses(licenses)})
}
