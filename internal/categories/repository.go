package categories

import "context"

// RepositoryPort defines data access methods for categories.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerUserID int64) ([]Category, error)
	FindByID(ctx context.Context, id int64) (*Category, error)
	OwnerOf(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, ownerUserID, createdByUserID int64, name, color string) (*Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id int64) error
}
