package lists

import (
	"context"
	"strings"

	"github.com/taskdeck/taskdeck/internal/access"
)

// Service applies the visibility and lock rules to list operations.
// Every operation resolves the target account through the evaluator
// before touching storage; mutations additionally apply the owner lock.
type Service struct {
	repo RepositoryPort
	eval *access.Evaluator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, eval *access.Evaluator) *Service {
	return &Service{repo: repo, eval: eval}
}

// List returns the target user's lists decorated with the actor's lock
// decision.
func (s *Service) List(ctx context.Context, actor access.Actor, requestedUserID string, includeArchived bool) ([]View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, requestedUserID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListByOwner(ctx, target, includeArchived)
	if err != nil {
		return nil, err
	}
	views := make([]View, len(records))
	for i, record := range records {
		views[i] = s.view(actor, record)
	}
	return views, nil
}

// Get returns one list after the visibility check.
func (s *Service) Get(ctx context.Context, actor access.Actor, id int64) (*View, error) {
	record, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Create makes a list for the actor or, for managers and admins, on
// behalf of an accessible user. The creator is always recorded as the
// actor, which is what later drives the owner lock.
func (s *Service) Create(ctx context.Context, actor access.Actor, req CreateListRequest) (*View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Create(ctx, target, actor.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Update renames/archives a list. Locked owners are rejected.
func (s *Service) Update(ctx context.Context, actor access.Actor, id int64, req UpdateListRequest) (*View, error) {
	record, err := s.authorizeMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		record.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsArchived != nil {
		record.IsArchived = *req.IsArchived
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Delete removes a list. Locked owners are rejected.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if _, err := s.authorizeMutation(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, actor access.Actor, id int64) (*List, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.eval.CanAccessUser(ctx, actor, record.OwnerUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, access.ErrForbidden
	}
	return record, nil
}

func (s *Service) authorizeMutation(ctx context.Context, actor access.Actor, id int64) (*List, error) {
	record, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID) {
		return nil, access.ErrLocked
	}
	return record, nil
}

func (s *Service) view(actor access.Actor, record List) View {
	return View{
		List:   record,
		Locked: s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID),
	}
}
