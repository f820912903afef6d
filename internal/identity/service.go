package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Service handles account oversight rules for admins and managers.
type Service struct {
	repo  RepositoryPort
	eval  *access.Evaluator
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, eval *access.Evaluator, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, eval: eval, audit: audit}
}

// Profile returns the account behind the actor.
func (s *Service) Profile(ctx context.Context, actor access.Actor) (*Account, error) {
	return s.repo.FindByID(ctx, actor.ID)
}

// ListAccounts is admin-only (enforced by the route group) and returns
// a filtered account page.
func (s *Service) ListAccounts(ctx context.Context, filter ListFilter) ([]Account, shared.Pagination, error) {
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return accounts, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Team lists the user accounts the actor oversees. Admins may pass a
// manager id to inspect any manager's team; managers always get their
// own.
func (s *Service) Team(ctx context.Context, actor access.Actor, requestedManagerID string) ([]Account, error) {
	managerID := actor.ID
	requestedManagerID = strings.TrimSpace(requestedManagerID)
	if requestedManagerID != "" {
		id, err := strconv.ParseInt(requestedManagerID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: manager id must be numeric", httpx.ErrValidation)
		}
		if id != actor.ID && actor.Role != access.RoleAdmin {
			return nil, access.ErrForbidden
		}
		managerID = id
	}
	return s.repo.ListManagedUsers(ctx, managerID)
}

// CreateAccount registers a new account with a bcrypt password hash.
func (s *Service) CreateAccount(ctx context.Context, actor access.Actor, req CreateAccountRequest) (*Account, error) {
	role := access.Role(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.Create(ctx, strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Name), string(hash), role)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor.ID, "account.create", account.ID, map[string]any{"role": string(role)})
	return account, nil
}

// SetActive activates or deactivates an account. Actors cannot
// deactivate themselves; that would lock the last admin out.
func (s *Service) SetActive(ctx context.Context, actor access.Actor, id int64, active bool) error {
	if id == actor.ID && !active {
		return fmt.Errorf("%w: cannot deactivate own account", httpx.ErrValidation)
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.record(ctx, actor.ID, "account.set_active", id, map[string]any{"is_active": active})
	return nil
}

// SetRole changes an account role.
func (s *Service) SetRole(ctx context.Context, actor access.Actor, id int64, rawRole string) error {
	role := access.Role(rawRole)
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, rawRole)
	}
	if id == actor.ID && role != access.RoleAdmin {
		return fmt.Errorf("%w: cannot demote own account", httpx.ErrValidation)
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return err
	}
	s.record(ctx, actor.ID, "account.set_role", id, map[string]any{"role": string(role)})
	return nil
}

// AssignManager points a user account at a manager, or clears the
// assignment. The target must hold the user role and the manager must
// hold the manager role.
func (s *Service) AssignManager(ctx context.Context, actor access.Actor, userID int64, managerID *int64) error {
	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role != access.RoleUser {
		return fmt.Errorf("%w: manager assignment is only meaningful for user accounts", httpx.ErrValidation)
	}
	if managerID != nil {
		manager, err := s.repo.FindByID(ctx, *managerID)
		if err != nil {
			return err
		}
		if manager.Role != access.RoleManager {
			return fmt.Errorf("%w: account %d does not hold the manager role", httpx.ErrValidation, *managerID)
		}
	}
	if err := s.repo.SetManager(ctx, userID, managerID); err != nil {
		return err
	}
	meta := map[string]any{"manager_id": nil}
	if managerID != nil {
		meta["manager_id"] = *managerID
	}
	s.record(ctx, actor.ID, "account.assign_manager", userID, meta)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "account",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
