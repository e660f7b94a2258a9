package apikey

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	PrefixLength = 8
	SecretLength = 32
	KeyFormat    = "lak_%s_%s"
)

// APIKey authenticates client bidding systems on the access endpoints.
// Only the sha256 hash of the full key is stored; the prefix is kept for
// listing and lookup.
type APIKey struct {
	ID          uuid.UUID    `db:"id"`
	KeyHash     string       `db:"key_hash"`
	Prefix      string       `db:"prefix"`
	Description string       `db:"description"`
	IsEnabled   bool         `db:"is_enabled"`
	CreatedAt   time.Time    `db:"created_at"`
	LastUsedAt  sql.NullTime `db:"last_used_at"`
}

type Repository interface {
	Create(ctx context.Context, key *APIKey) (uuid.UUID, error)
	FindEnabledByHash(ctx context.Context, keyHash string) (*APIKey, error)
	List(ctx context.Context) ([]*APIKey, error)
	Disable(ctx context.Context, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}
