package lists

import "context"

// RepositoryPort defines data access methods for lists.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerUserID int64, includeArchived bool) ([]List, error)
	FindByID(ctx context.Context, id int64) (*List, error)
	Create(ctx context.Context, ownerUserID, createdByUserID int64, name, description string) (*List, error)
	Update(ctx context.Context, list *List) error
	Delete(ctx context.Context, id int64) error
}
