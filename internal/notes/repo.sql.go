package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

const noteColumns = "id, owner_user_id, created_by_user_id, title, body, remind_at, reminded_at, created_at, updated_at"

// Repository provides PostgreSQL backed persistence for notes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByOwner returns the owner's notes, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerUserID int64) ([]Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_user_id = $1 ORDER BY created_at DESC, id DESC`,
		ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Note
	for rows.Next() {
		var note Note
		if err := scanNote(rows, &note); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByID fetches one note.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Note, error) {
	var note Note
	err := scanNote(r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id), &note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("note %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &note, nil
}

// Create inserts a note.
func (r *Repository) Create(ctx context.Context, note *Note) (*Note, error) {
	var created Note
	err := scanNote(r.pool.QueryRow(ctx,
		`INSERT INTO notes (owner_user_id, created_by_user_id, title, body, remind_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+noteColumns,
		note.OwnerUserID, note.CreatedByUserID, note.Title, note.Body, note.RemindAt), &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update persists mutable note fields including reminder state.
func (r *Repository) Update(ctx context.Context, note *Note) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notes SET title = $2, body = $3, remind_at = $4, reminded_at = $5, updated_at = NOW() WHERE id = $1`,
		note.ID, note.Title, note.Body, note.RemindAt, note.RemindedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %d: %w", note.ID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a note.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanNote(row pgx.Row, note *Note) error {
	return row.Scan(&note.ID, &note.OwnerUserID, &note.CreatedByUserID, &note.Title,
		&note.Body, &note.RemindAt, &note.RemindedAt, &note.CreatedAt, &note.UpdatedAt)
}

var _ RepositoryPort = (*Repository)(nil)
