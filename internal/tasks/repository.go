package tasks

import (
	"context"
	"time"
)

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter) ([]Task, int, error)
	FindByID(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, task *Task) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, listID int64, orderedIDs []int64) error

	CountOpen(ctx context.Context, ownerUserID int64) (int, error)
	CountOverdue(ctx context.Context, ownerUserID int64, now time.Time) (int, error)
	CountDoneSince(ctx context.Context, ownerUserID int64, since time.Time) (int, error)
}
