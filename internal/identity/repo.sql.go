package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

const accountColumns = "id, email, name, role, is_active, manager_id, created_at, updated_at"

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindActor loads the evaluator snapshot for a session user id.
// Returns (nil, nil) when the account does not exist.
func (r *Repository) FindActor(ctx context.Context, id int64) (*access.Actor, error) {
	var actor access.Actor
	err := r.pool.QueryRow(ctx, `SELECT id, role, is_active, manager_id FROM accounts WHERE id = $1`, id).
		Scan(&actor.ID, &actor.Role, &actor.IsActive, &actor.ManagerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}

// IsManagedBy reports whether targetUserID is a user-role account
// currently assigned to managerID.
func (r *Repository) IsManagedBy(ctx context.Context, managerID, targetUserID int64) (bool, error) {
	var managed bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND role = 'user' AND manager_id = $2)`,
		targetUserID, managerID).Scan(&managed)
	if err != nil {
		return false, err
	}
	return managed, nil
}

// FindByID fetches a full account record.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}

// List returns accounts matching the filter plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Account, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.ManagerID != nil {
		args = append(args, *filter.ManagerID)
		where = append(where, fmt.Sprintf("manager_id = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM accounts%s ORDER BY id LIMIT $%d OFFSET $%d`,
		accountColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// ListManagedUsers returns the user-role accounts assigned to a manager.
func (r *Repository) ListManagedUsers(ctx context.Context, managerID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = 'user' AND manager_id = $1 ORDER BY name, id`,
		managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, email, name, passwordHash string, role access.Role) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, name, password_hash, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		 RETURNING `+accountColumns,
		email, name, passwordHash, string(role))
	account, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", email, httpx.ErrDuplicate)
		}
		return nil, err
	}
	return account, nil
}

// SetActive flips the account active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// SetRole changes the account role. Leaving the user role clears the
// manager assignment, which is only meaningful for users.
func (r *Repository) SetRole(ctx context.Context, id int64, role access.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET role = $2,
		     manager_id = CASE WHEN $2 = 'user' THEN manager_id ELSE NULL END,
		     updated_at = NOW()
		 WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// SetManager assigns or clears the manager for a user-role account.
func (r *Repository) SetManager(ctx context.Context, userID int64, managerID *int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET manager_id = $2, updated_at = NOW() WHERE id = $1 AND role = 'user'`,
		userID, managerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user account %d: %w", userID, httpx.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	if err := row.Scan(&account.ID, &account.Email, &account.Name, &account.Role,
		&account.IsActive, &account.ManagerID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return nil, err
	}
	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ RepositoryPort = (*Repository)(nil)
