package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/apikey"
	"github.com/ayabid/license-admin-api/internal/ierr"
)

type APIKeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAPIKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger.Named("APIKeyRepository"),
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	query := `
        INSERT INTO api_keys (key_hash, prefix, description, is_enabled)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, query, key.KeyHash, key.Prefix, key.Description, key.IsEnabled).Scan(&insertedID)
	if err != nil {
		r.logger.Error("Failed to create api key", zap.String("prefix", key.Prefix), zap.Error(err))
		return uuid.Nil, fmt.Errorf("database error on create api key: %w", err)
	}
	return insertedID, nil
}

func (r *APIKeyRepository) FindEnabledByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	query := `
        SELECT id, key_hash, prefix, description, is_enabled, created_at, last_used_at
        FROM api_keys
        WHERE key_hash = $1 AND is_enabled = TRUE
    `
	var key apikey.APIKey
	err := r.db.QueryRow(ctx, query, keyHash).Scan(
		&key.ID, &key.KeyHash, &key.Prefix, &key.Description,
		&key.IsEnabled, &key.CreatedAt, &key.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrAPIKeyNotFound
		}
		r.logger.Error("Failed to find api key by hash", zap.Error(err))
		return nil, fmt.Errorf("database error on find api key: %w", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*apikey.APIKey, error) {
	query := `
        SELECT id, key_hash, prefix, description, is_enabled, created_at, last_used_at
        FROM api_keys
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list api keys", zap.Error(err))
		return nil, fmt.Errorf("database error on list api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]*apikey.APIKey, 0)
	for rows.Next() {
		var key apikey.APIKey
		err := rows.Scan(
			&key.ID, &key.KeyHash, &key.Prefix, &key.Description,
			&key.IsEnabled, &key.CreatedAt, &key.LastUsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("database scan error on api keys: %w", err)
		}
		keys = append(keys, &key)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) Disable(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE api_keys SET is_enabled = FALSE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to disable api key", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("database error on disable api key: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrAPIKeyNotFound
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id); err != nil {
		r.logger.Warn("Failed to update api key last_used_at", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("database error on touch api key: %w", err)
	}
	return nil
}
