package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/lists"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

// ListResolver is the narrow slice of the lists repository the task
// service needs to validate list membership.
type ListResolver interface {
	FindByID(ctx context.Context, id int64) (*lists.List, error)
}

// CategoryResolver validates that a category belongs to the task owner.
type CategoryResolver interface {
	OwnerOf(ctx context.Context, categoryID int64) (int64, error)
}

// Service applies visibility and lock rules to task operations.
type Service struct {
	repo       RepositoryPort
	listsRepo  ListResolver
	categories CategoryResolver
	eval       *access.Evaluator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, listsRepo ListResolver, categories CategoryResolver, eval *access.Evaluator) *Service {
	return &Service{repo: repo, listsRepo: listsRepo, categories: categories, eval: eval}
}

// List returns the target user's tasks with lock decisions applied.
func (s *Service) List(ctx context.Context, actor access.Actor, requestedUserID string, filter Filter) ([]View, int, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, requestedUserID)
	if err != nil {
		return nil, 0, err
	}
	filter.OwnerUserID = target
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]View, len(records))
	for i, record := range records {
		views[i] = s.view(actor, record)
	}
	return views, total, nil
}

// Get returns one task after the visibility check.
func (s *Service) Get(ctx context.Context, actor access.Actor, id int64) (*View, error) {
	record, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Create adds a task to a list the target user owns. The list and the
// optional category must belong to the same owner as the task.
func (s *Service) Create(ctx context.Context, actor access.Actor, req CreateTaskRequest) (*View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	list, err := s.listsRepo.FindByID(ctx, req.ListID)
	if err != nil {
		return nil, err
	}
	if list.OwnerUserID != target {
		return nil, fmt.Errorf("%w: list %d does not belong to target user", httpx.ErrValidation, req.ListID)
	}
	if err := s.checkCategory(ctx, req.CategoryID, target); err != nil {
		return nil, err
	}

	record, err := s.repo.Create(ctx, &Task{
		ListID:          req.ListID,
		OwnerUserID:     target,
		CreatedByUserID: actor.ID,
		CategoryID:      req.CategoryID,
		Title:           strings.TrimSpace(req.Title),
		Notes:           strings.TrimSpace(req.Notes),
		DueAt:           req.DueAt,
	})
	if err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Update mutates a task, including the done flag. Locked owners are
// rejected; they keep read access only.
func (s *Service) Update(ctx context.Context, actor access.Actor, id int64, req UpdateTaskRequest) (*View, error) {
	record, err := s.authorizeMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID, record.OwnerUserID); err != nil {
			return nil, err
		}
		record.CategoryID = req.CategoryID
	}
	if req.Title != nil {
		record.Title = strings.TrimSpace(*req.Title)
	}
	if req.Notes != nil {
		record.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.DueAt != nil {
		record.DueAt = req.DueAt
	} else if req.ClearDueAt {
		record.DueAt = nil
	}
	if req.Done != nil {
		record.Done = *req.Done
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Delete removes a task. Locked owners are rejected.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if _, err := s.authorizeMutation(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Reorder rewrites task positions inside one list. The lock check runs
// against the list record: a locked list's layout is part of what the
// owner cannot change.
func (s *Service) Reorder(ctx context.Context, actor access.Actor, req ReorderRequest) error {
	list, err := s.listsRepo.FindByID(ctx, req.ListID)
	if err != nil {
		return err
	}
	ok, err := s.eval.CanAccessUser(ctx, actor, list.OwnerUserID)
	if err != nil {
		return err
	}
	if !ok {
		return access.ErrForbidden
	}
	if s.eval.IsLockedForOwner(actor, list.OwnerUserID, list.CreatedByUserID) {
		return access.ErrLocked
	}
	return s.repo.Reorder(ctx, req.ListID, req.TaskIDs)
}

// Summary aggregates dashboard counts for the target user, fanning the
// three count queries out concurrently.
func (s *Service) Summary(ctx context.Context, actor access.Actor, requestedUserID string) (*Summary, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, requestedUserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var summary Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		open, err := s.repo.CountOpen(ctx, target)
		summary.Open = open
		return err
	})
	g.Go(func() error {
		overdue, err := s.repo.CountOverdue(ctx, target, now)
		summary.Overdue = overdue
		return err
	})
	g.Go(func() error {
		done, err := s.repo.CountDoneSince(ctx, target, midnight)
		summary.DoneToday = done
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) checkCategory(ctx context.Context, categoryID *int64, ownerUserID int64) error {
	if categoryID == nil {
		return nil
	}
	owner, err := s.categories.OwnerOf(ctx, *categoryID)
	if err != nil {
		return err
	}
	if owner != ownerUserID {
		return fmt.Errorf("%w: category %d does not belong to task owner", httpx.ErrValidation, *categoryID)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, actor access.Actor, id int64) (*Task, error) {
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

func (s *Service) authorizeMutation(ctx context.Context, actor access.Actor, id int64) (*Task, error) {
	record, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID) {
		return nil, access.ErrLocked
	}
	return record, nil
}

func (s *Service) view(actor access.Actor, record Task) View {
	return View{
		Task:   record,
		Locked: s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID),
	}
}
