package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayabid/license-admin-api/internal/domain/apikey"
)

type CreateAPIKeyRequest struct {
	Description string `json:"description" binding:"required"`
}

type APIKeyResponse struct {
	ID          uuid.UUID  `json:"id"`
	Prefix      string     `json:"prefix"`
	Description string     `json:"description"`
	IsEnabled   bool       `json:"is_enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

func NewAPIKeyResponse(key *apikey.APIKey) *APIKeyResponse {
	resp := &APIKeyResponse{
		ID:          key.ID,
		Prefix:      key.Prefix,
		Description: key.Description,
		IsEnabled:   key.IsEnabled,
		CreatedAt:   key.CreatedAt,
	}
	if key.LastUsedAt.Valid {
		resp.LastUsedAt = &key.LastUsedAt.Time
	}
	return resp
}

// CreateAPIKeyResponse is the only place the full key ever appears.
type CreateAPIKeyResponse struct {
	APIKey  string          `json:"api_key"`
	Details *APIKeyResponse `json:"details"`
}
