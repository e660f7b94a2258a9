package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/handler/dto"
	"github.com/ayabid/license-admin-api/internal/handler/middleware"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/service"
)

type LicenseHandler struct {
	service *service.LicenseService
	logger  *zap.Logger
}

func NewLicenseHandler(service *service.LicenseService, logger *zap.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.Named("LicenseHandler"),
	}
}

func (h *LicenseHandler) Create(c *gin.Context) {
	var req dto.CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.CreateLicense(c.Request.Context(), middleware.AuditContext(c), req.ToParams())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateLicenseResponse{
		License:   dto.NewLicenseResponse(result.License),
		DBWarning: result.DBWarning,
	})
}

func (h *LicenseHandler) List(c *gin.Context) {
	var req dto.ListLicensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(err)
		return
	}

	licenses, totalCount, err := h.service.ListLicenses(c.Request.Context(), req.ToParams())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedLicenseResponse{
		Licenses:   dto.NewLicenseResponses(licenses),
		TotalCount: totalCount,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

func (h *LicenseHandler) GetByID(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	lic, err := h.service.GetLicense(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLicenseResponse(lic))
}

func (h *LicenseHandler) Update(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	lic, err := h.service.UpdateLicense(c.Request.Context(), middleware.AuditContext(c), id, req.ToFields())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLicenseResponse(lic))
}

func (h *LicenseHandler) Delete(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLicense(c.Request.Context(), middleware.AuditContext(c), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "License deleted successfully"})
}

func (h *LicenseHandler) Renew(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	var req dto.RenewLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.RenewLicense(c.Request.Context(), middleware.AuditContext(c), id,
		license.Period(req.ValidityPeriod))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.RenewLicenseResponse{
		License:           dto.NewLicenseResponse(result.License),
		PreviousExpiresAt: result.PreviousExpiresAt,
		NewExpiresAt:      result.NewExpiresAt,
		ExtensionDays:     result.ExtensionDays,
		DaysRemaining:     result.DaysRemaining,
	})
}

func (h *LicenseHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLicenseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	lic, changed, err := h.service.ChangeStatus(c.Request.Context(), middleware.AuditContext(c), id,
		license.Status(req.Status), req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.UpdateLicenseStatusResponse{
		License: dto.NewLicenseResponse(lic),
		Changed: changed,
	})
}

func (h *LicenseHandler) licenseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid license ID received", zap.String("id_param", idStr))
		_ = c.Error(ierr.NewValidationError("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}
