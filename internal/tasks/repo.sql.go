package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/platform/db"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

const taskColumns = "id, list_id, owner_user_id, created_by_user_id, category_id, title, notes, due_at, done, position, created_at, updated_at"

// Repository provides PostgreSQL backed persistence for tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns tasks matching the filter plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Task, int, error) {
	where := []string{"owner_user_id = $1"}
	args := []any{filter.OwnerUserID}
	if filter.ListID != nil {
		args = append(args, *filter.ListID)
		where = append(where, fmt.Sprintf("list_id = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Done != nil {
		args = append(args, *filter.Done)
		where = append(where, fmt.Sprintf("done = $%d", len(args)))
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY position, id LIMIT $%d OFFSET $%d`,
		taskColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		var task Task
		if err := scanTask(rows, &task); err != nil {
			return nil, 0, err
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// FindByID fetches one task.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Task, error) {
	var task Task
	err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id), &task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &task, nil
}

// Create inserts a task at the end of its list.
func (r *Repository) Create(ctx context.Context, task *Task) (*Task, error) {
	var created Task
	err := scanTask(r.pool.QueryRow(ctx,
		`INSERT INTO tasks (list_id, owner_user_id, created_by_user_id, category_id, title, notes, due_at, done, position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE,
		         COALESCE((SELECT MAX(position) + 1 FROM tasks WHERE list_id = $1), 0),
		         NOW(), NOW())
		 RETURNING `+taskColumns,
		task.ListID, task.OwnerUserID, task.CreatedByUserID, task.CategoryID,
		task.Title, task.Notes, task.DueAt), &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update persists mutable task fields.
func (r *Repository) Update(ctx context.Context, task *Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET category_id = $2, title = $3, notes = $4, due_at = $5, done = $6, updated_at = NOW() WHERE id = $1`,
		task.ID, task.CategoryID, task.Title, task.Notes, task.DueAt, task.Done)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", task.ID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// Reorder rewrites the position column for a list in one transaction.
func (r *Repository) Reorder(ctx context.Context, listID int64, orderedIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for position, id := range orderedIDs {
			tag, err := tx.Exec(ctx,
				`UPDATE tasks SET position = $3, updated_at = NOW() WHERE id = $1 AND list_id = $2`,
				id, listID, position)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("task %d not in list %d: %w", id, listID, httpx.ErrValidation)
			}
		}
		return nil
	})
}

// CountOpen counts not-done tasks for an owner.
func (r *Repository) CountOpen(ctx context.Context, ownerUserID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE owner_user_id = $1 AND NOT done`, ownerUserID).Scan(&count)
	return count, err
}

// CountOverdue counts open tasks past their due date.
func (r *Repository) CountOverdue(ctx context.Context, ownerUserID int64, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE owner_user_id = $1 AND NOT done AND due_at IS NOT NULL AND due_at < $2`,
		ownerUserID, now).Scan(&count)
	return count, err
}

// CountDoneSince counts tasks completed after the cutoff.
func (r *Repository) CountDoneSince(ctx context.Context, ownerUserID int64, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE owner_user_id = $1 AND done AND updated_at >= $2`,
		ownerUserID, since).Scan(&count)
	return count, err
}

func scanTask(row pgx.Row, task *Task) error {
	return row.Scan(&task.ID, &task.ListID, &task.OwnerUserID, &task.CreatedByUserID,
		&task.CategoryID, &task.Title, &task.Notes, &task.DueAt, &task.Done,
		&task.Position, &task.CreatedAt, &task.UpdatedAt)
}

var _ RepositoryPort = (*Repository)(nil)
