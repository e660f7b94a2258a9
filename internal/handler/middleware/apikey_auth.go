package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/service"
)

const apiKeyHeader = "X-API-Key"

// APIKeyAuthMiddleware guards the client-facing access endpoints. Keys are
// looked up by their sha256 hash; only enabled keys pass.
func APIKeyAuthMiddleware(apiKeyService *service.APIKeyService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APIKeyAuthMiddleware")
	return func(c *gin.Context) {
		presentedKey := c.GetHeader(apiKeyHeader)
		if presentedKey == "" {
			log.Debug("API key header is missing")
			_ = c.Error(fmt.Errorf("%w: api key required", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		if !strings.HasPrefix(presentedKey, "lak_") {
			log.Warn("Invalid API key format received")
			_ = c.Error(fmt.Errorf("%w: invalid api key format", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		key, err := apiKeyService.Authenticate(c.Request.Context(), presentedKey)
		if err != nil {
			if errors.Is(err, ierr.ErrAPIKeyNotFound) {
				log.Warn("API key not found or disabled")
				_ = c.Error(err)
				c.Abort()
				return
			}
			log.Error("Failed to authenticate API key", zap.Error(err))
			_ = c.Error(ierr.ErrInternalServer)
			c.Abort()
			return
		}

		log.Debug("API key validated", zap.String("key_id", key.ID.String()))
		c.Next()
	}
}
