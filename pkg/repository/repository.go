package repository

import (
	"context"

	"github.com/smallbiznis/skyfare/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a thin gorm-backed store shared by simple aggregates.
// FindOne returns (nil, nil) when nothing matches.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	BatchCreate(ctx context.Context, resources []*T) error
	Update(ctx context.Context, resourceID any, values map[string]any) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}
