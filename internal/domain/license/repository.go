package license

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, lic *License) (int64, error)
	FindByID(ctx context.Context, id int64) (*License, error)
	FindByKey(ctx context.Context, key string) (*License, error)
	KeyExists(ctx context.Context, key string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, fields *UpdateFields) error
	UpdateExpiry(ctx context.Context, id int64, period Period, expiresAt time.Time) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]*License, error)
	Count(ctx context.Context, params ListParams) (int64, error)
	RecordSuccessfulAccess(ctx context.Context, id int64) error
	DistinctDBNames(ctx context.Context) ([]string, error)
}
