package competition

import "context"

// Repository describes competition catalog persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Competition, error)
	GetByKey(ctx context.Context, key string) (Competition, bool, error)
	Upsert(ctx context.Context, item Competition) error
}
