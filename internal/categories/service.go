package categories

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taskdeck/taskdeck/internal/access"
)

// Service applies visibility and lock rules to category operations.
type Service struct {
	repo     RepositoryPort
	eval     *access.Evaluator
	collator *collate.Collator
}

// NewService builds a Service instance. Category names sort with
// case-insensitive locale collation so "Ärenden" lands where users
// expect instead of after "z".
func NewService(repo RepositoryPort, eval *access.Evaluator) *Service {
	return &Service{
		repo:     repo,
		eval:     eval,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

// List returns the target user's categories sorted by name.
func (s *Service) List(ctx context.Context, actor access.Actor, requestedUserID string) ([]View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, requestedUserID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListByOwner(ctx, target)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return s.collator.CompareString(records[i].Name, records[j].Name) < 0
	})
	views := make([]View, len(records))
	for i, record := range records {
		views[i] = s.view(actor, record)
	}
	return views, nil
}

// Create adds a category for the target user.
func (s *Service) Create(ctx context.Context, actor access.Actor, req CreateCategoryRequest) (*View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	color := req.Color
	if color == "" {
		color = "#808080"
	}
	record, err := s.repo.Create(ctx, target, actor.ID, strings.TrimSpace(req.Name), color)
	if err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Update renames/recolors a category. Locked owners are rejected.
func (s *Service) Update(ctx context.Context, actor access.Actor, id int64, req UpdateCategoryRequest) (*View, error) {
	record, err := s.authorizeMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		record.Color = *req.Color
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Delete removes a category. Locked owners are rejected.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if _, err := s.authorizeMutation(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorizeMutation(ctx context.Context, actor access.Actor, id int64) (*Category, error) {
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
	if s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID) {
		return nil, access.ErrLocked
	}
	return record, nil
}

func (s *Service) view(actor access.Actor, record Category) View {
	return View{
		Category: record,
		Locked:   s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID),
	}
}
