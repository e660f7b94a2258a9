package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/handler/dto"
	"github.com/ayabid/license-admin-api/internal/service"
)

// AccessHandler serves the client-facing endpoints bidding systems call
// with an API key.
type AccessHandler struct {
	service *service.AccessService
	logger  *zap.Logger
}

func NewAccessHandler(service *service.AccessService, logger *zap.Logger) *AccessHandler {
	return &AccessHandler{
		service: service,
		logger:  logger.Named("AccessHandler"),
	}
}

func (h *AccessHandler) Validate(c *gin.Context) {
	var req dto.ValidateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	decision, err := h.service.ValidateAccess(c.Request.Context(), service.AccessParams{
		LicenseKey: req.LicenseKey,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	// A denial is still a 200: the caller asked whether the key is valid
	// and got an answer.
	c.JSON(http.StatusOK, dto.NewValidateLicenseResponse(decision))
}

func (h *AccessHandler) EndSession(c *gin.Context) {
	var req dto.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.EndSession(c.Request.Context(), req.SessionID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}
