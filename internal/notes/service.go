package notes

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/access"
)

// ReminderScheduler enqueues a reminder delivery for a note at its
// remind-at time. The worker re-checks the note before delivering, so
// a cleared or rescheduled reminder only costs a stale queue entry.
type ReminderScheduler interface {
	ScheduleNoteReminder(ctx context.Context, noteID int64, remindAt time.Time) error
}

// Service applies visibility and lock rules to note operations and
// keeps the reminder queue in step with reminder edits.
type Service struct {
	repo      RepositoryPort
	eval      *access.Evaluator
	scheduler ReminderScheduler
	logger    *slog.Logger
}

// NewService builds a Service instance. scheduler may be nil in tests.
func NewService(repo RepositoryPort, eval *access.Evaluator, scheduler ReminderScheduler, logger *slog.Logger) *Service {
	return &Service{repo: repo, eval: eval, scheduler: scheduler, logger: logger}
}

// List returns the target user's notes with lock decisions applied.
func (s *Service) List(ctx context.Context, actor access.Actor, requestedUserID string) ([]View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, requestedUserID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListByOwner(ctx, target)
	if err != nil {
		return nil, err
	}
	views := make([]View, len(records))
	for i, record := range records {
		views[i] = s.view(actor, record)
	}
	return views, nil
}

// Get returns one note after the visibility check.
func (s *Service) Get(ctx context.Context, actor access.Actor, id int64) (*View, error) {
	record, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Create adds a note for the target user and schedules its reminder.
func (s *Service) Create(ctx context.Context, actor access.Actor, req CreateNoteRequest) (*View, error) {
	target, err := s.eval.ResolveTargetUserID(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Create(ctx, &Note{
		OwnerUserID:     target,
		CreatedByUserID: actor.ID,
		Title:           strings.TrimSpace(req.Title),
		Body:            strings.TrimSpace(req.Body),
		RemindAt:        req.RemindAt,
	})
	if err != nil {
		return nil, err
	}
	s.schedule(ctx, record)
	view := s.view(actor, *record)
	return &view, nil
}

// Update mutates a note. A changed remind-at resets delivery state and
// schedules a fresh reminder. Locked owners are rejected.
func (s *Service) Update(ctx context.Context, actor access.Actor, id int64, req UpdateNoteRequest) (*View, error) {
	record, err := s.authorizeMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		record.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		record.Body = strings.TrimSpace(*req.Body)
	}
	rescheduled := false
	if req.RemindAt != nil {
		record.RemindAt = req.RemindAt
		record.RemindedAt = nil
		rescheduled = true
	} else if req.ClearReminder {
		record.RemindAt = nil
		record.RemindedAt = nil
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	if rescheduled {
		s.schedule(ctx, record)
	}
	view := s.view(actor, *record)
	return &view, nil
}

// Delete removes a note. Locked owners are rejected.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if _, err := s.authorizeMutation(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// schedule enqueues the reminder. Failure to enqueue is logged but
// does not fail the request; the note itself is already durable.
func (s *Service) schedule(ctx context.Context, record *Note) {
	if s.scheduler == nil || record.RemindAt == nil {
		return
	}
	if err := s.scheduler.ScheduleNoteReminder(ctx, record.ID, *record.RemindAt); err != nil && s.logger != nil {
		s.logger.Warn("schedule note reminder", slog.Int64("note_id", record.ID), slog.Any("error", err))
	}
}

func (s *Service) authorize(ctx context.Context, actor access.Actor, id int64) (*Note, error) {
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

func (s *Service) authorizeMutation(ctx context.Context, actor access.Actor, id int64) (*Note, error) {
	record, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID) {
		return nil, access.ErrLocked
	}
	return record, nil
}

func (s *Service) view(actor access.Actor, record Note) View {
	return View{
		Note:   record,
		Locked: s.eval.IsLockedForOwner(actor, record.OwnerUserID, record.CreatedByUserID),
	}
}
