package lists

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

const listColumns = "id, owner_user_id, created_by_user_id, name, description, is_archived, created_at, updated_at"

// Repository provides PostgreSQL backed persistence for lists.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByOwner returns the owner's lists, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerUserID int64, includeArchived bool) ([]List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE owner_user_id = $1`
	if !includeArchived {
		query += ` AND NOT is_archived`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []List
	for rows.Next() {
		var list List
		if err := scanList(rows, &list); err != nil {
			return nil, err
		}
		result = append(result, list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID fetches one list.
func (r *Repository) FindByID(ctx context.Context, id int64) (*List, error) {
	var list List
	err := scanList(r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id = $1`, id), &list)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("list %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &list, nil
}

// Create inserts a new list.
func (r *Repository) Create(ctx context.Context, ownerUserID, createdByUserID int64, name, description string) (*List, error) {
	var list List
	err := scanList(r.pool.QueryRow(ctx,
		`INSERT INTO lists (owner_user_id, created_by_user_id, name, description, is_archived, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		 RETURNING `+listColumns,
		ownerUserID, createdByUserID, name, description), &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// Update persists name/description/archive changes.
func (r *Repository) Update(ctx context.Context, list *List) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lists SET name = $2, description = $3, is_archived = $4, updated_at = NOW() WHERE id = $1`,
		list.ID, list.Name, list.Description, list.IsArchived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("list %d: %w", list.ID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a list and, via FK cascade, its tasks.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("list %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanList(row pgx.Row, list *List) error {
	return row.Scan(&list.ID, &list.OwnerUserID, &list.CreatedByUserID, &list.Name,
		&list.Description, &list.IsArchived, &list.CreatedAt, &list.UpdatedAt)
}

var _ RepositoryPort = (*Repository)(nil)
