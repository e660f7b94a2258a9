package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/handler/dto"
	"github.com/ayabid/license-admin-api/internal/service"
)

// MonitorHandler exposes client database connectivity and authentication
// monitoring to the admin console.
type MonitorHandler struct {
	service *service.MonitorService
	logger  *zap.Logger
}

func NewMonitorHandler(service *service.MonitorService, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		service: service,
		logger:  logger.Named("MonitorHandler"),
	}
}

func (h *MonitorHandler) TestDatabase(c *gin.Context) {
	dbName := c.Param("db")
	result := h.service.TestDatabase(c.Request.Context(), dbName)
	c.JSON(http.StatusOK, result)
}

func (h *MonitorHandler) ProbeAll(c *gin.Context) {
	results, err := h.service.ProbeAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *MonitorHandler) Statuses(c *gin.Context) {
	statuses, err := h.service.Statuses(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.DBStatusResponse, len(statuses))
	for i, status := range statuses {
		responses[i] = dto.NewDBStatusResponse(status)
	}
	c.JSON(http.StatusOK, gin.H{"statuses": responses})
}

func (h *MonitorHandler) AuthHistory(c *gin.Context) {
	dbName := c.Query("db")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.service.AuthHistory(c.Request.Context(), dbName, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *MonitorHandler) FleetStats(c *gin.Context) {
	fleet, err := h.service.FleetStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFleetStatsResponse(fleet))
}
