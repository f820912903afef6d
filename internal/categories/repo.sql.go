package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

const categoryColumns = "id, owner_user_id, created_by_user_id, name, color, created_at, updated_at"

// Repository provides PostgreSQL backed persistence for categories.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByOwner returns the owner's categories. Display ordering is left
// to the service, which sorts with locale-aware collation.
func (r *Repository) ListByOwner(ctx context.Context, ownerUserID int64) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_user_id = $1`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var category Category
		if err := scanCategory(rows, &category); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID fetches one category.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id), &category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &category, nil
}

// OwnerOf returns just the owner id, used by the task service to
// validate category membership without loading the whole row.
func (r *Repository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var owner int64
	err := r.pool.QueryRow(ctx, `SELECT owner_user_id FROM categories WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("category %d: %w", id, httpx.ErrNotFound)
		}
		return 0, err
	}
	return owner, nil
}

// Create inserts a category. Names are unique per owner.
func (r *Repository) Create(ctx context.Context, ownerUserID, createdByUserID int64, name, color string) (*Category, error) {
	var category Category
	err := scanCategory(r.pool.QueryRow(ctx,
		`INSERT INTO categories (owner_user_id, created_by_user_id, name, color, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 RETURNING `+categoryColumns,
		ownerUserID, createdByUserID, name, color), &category)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category %q: %w", name, httpx.ErrDuplicate)
		}
		return nil, err
	}
	return &category, nil
}

// Update persists name/color changes.
func (r *Repository) Update(ctx context.Context, category *Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, color = $3, updated_at = NOW() WHERE id = $1`,
		category.ID, category.Name, category.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, httpx.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", category.ID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a category; tasks referencing it fall back to NULL
// via the FK.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanCategory(row pgx.Row, category *Category) error {
	return row.Scan(&category.ID, &category.OwnerUserID, &category.CreatedByUserID,
		&category.Name, &category.Color, &category.CreatedAt, &category.UpdatedAt)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ RepositoryPort = (*Repository)(nil)
