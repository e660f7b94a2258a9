package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/handler/dto"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/service"
)

// AuditHandler exposes the audit trails: admin actions, per-license status
// history and renewal history.
type AuditHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

func NewAuditHandler(service *service.ReportService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.Named("AuditHandler"),
	}
}

func (h *AuditHandler) ListAdminActions(c *gin.Context) {
	var req dto.AdminActionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(err)
		return
	}

	actions, err := h.service.AdminActions(c.Request.Context(), req.ToFilter())
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.AdminActionResponse, len(actions))
	for i, action := range actions {
		responses[i] = dto.NewAdminActionResponse(action)
	}
	c.JSON(http.StatusOK, gin.H{"actions": responses})
}

func (h *AuditHandler) StatusHistory(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	changes, err := h.service.StatusHistory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.StatusChangeResponse, len(changes))
	for i, change := range changes {
		responses[i] = dto.NewStatusChangeResponse(change)
	}
	c.JSON(http.StatusOK, gin.H{"history": responses})
}

func (h *AuditHandler) RenewalHistory(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	renewals, err := h.service.RenewalHistory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.RenewalRecordResponse, len(renewals))
	for i, renewal := range renewals {
		responses[i] = dto.NewRenewalRecordResponse(renewal)
	}
	c.JSON(http.StatusOK, gin.H{"renewals": responses})
}

func (h *AuditHandler) licenseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid license ID received", zap.String("id_param", idStr))
		_ = c.Error(ierr.NewValidationError("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}
