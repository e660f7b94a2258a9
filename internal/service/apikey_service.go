package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/apikey"
	"github.com/ayabid/license-admin-api/internal/util"
)

// APIKeyService manages the keys that authenticate client bidding systems
// on the access endpoints.
type APIKeyService struct {
	repo   apikey.Repository
	logger *zap.Logger
}

func NewAPIKeyService(repo apikey.Repository, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		repo:   repo,
		logger: logger.Named("APIKeyService"),
	}
}

// Generate mints a new API key. The full key is returned exactly once and
// never stored.
func (s *APIKeyService) Generate(ctx context.Context, description string) (string, *apikey.APIKey, error) {
	fullKey, prefix, keyHash, err := util.GenerateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	key := &apikey.APIKey{
		KeyHash:     keyHash,
		Prefix:      prefix,
		Description: description,
		IsEnabled:   true,
	}

	id, err := s.repo.Create(ctx, key)
	if err != nil {
		s.logger.Error("Failed to store api key", zap.Error(err))
		return "", nil, err
	}
	key.ID = id

	s.logger.Info("API key generated", zap.String("id", id.String()), zap.String("prefix", prefix))
	return fullKey, key, nil
}

// Authenticate resolves a presented key to its stored record and updates
// the last-used marker.
func (s *APIKeyService) Authenticate(ctx context.Context, presentedKey string) (*apikey.APIKey, error) {
	key, err := s.repo.FindEnabledByHash(ctx, util.HashAPIKey(presentedKey))
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastUsed(ctx, key.ID); err != nil {
		s.logger.Warn("Failed to update api key last_used_at",
			zap.String("id", key.ID.String()), zap.Error(err))
	}
	return key, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]*apikey.APIKey, error) {
	return s.repo.List(ctx)
}

func (s *APIKeyService) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Disable(ctx, id); err != nil {
		return err
	}
	s.logger.Info("API key revoked", zap.String("id", id.String()))
	return nil
}
