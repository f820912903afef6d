package notes

import "context"

// RepositoryPort defines data access methods for notes.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerUserID int64) ([]Note, error)
	FindByID(ctx context.Context, id int64) (*Note, error)
	Create(ctx context.Context, note *Note) (*Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id int64) error
}
