package identity

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/access"
)

// RepositoryPort defines data access methods for accounts. It also
// covers the two capabilities the access evaluator is injected with:
// FindActor and IsManagedBy.
type RepositoryPort interface {
	FindActor(ctx context.Context, id int64) (*access.Actor, error)
	IsManagedBy(ctx context.Context, managerID, targetUserID int64) (bool, error)

	FindByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context, filter ListFilter) ([]Account, int, error)
	ListManagedUsers(ctx context.Context, managerID int64) ([]Account, error)
	Create(ctx context.Context, email, name, passwordHash string, role access.Role) (*Account, error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetRole(ctx context.Context, id int64, role access.Role) error
	SetManager(ctx context.Context, userID int64, managerID *int64) error
}
