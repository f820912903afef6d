package notes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

type mockRepository struct {
	notes  map[int64]*Note
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{notes: make(map[int64]*Note), nextID: 1}
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]Note, error) {
	var result []Note
	for _, n := range m.notes {
		if n.OwnerUserID == ownerUserID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, httpx.ErrNotFound)
	}
	copied := *n
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, note *Note) (*Note, error) {
	created := *note
	created.ID = m.nextID
	m.nextID++
	m.notes[created.ID] = &created
	copied := created
	return &copied, nil
}

func (m *mockRepository) Update(ctx context.Context, note *Note) error {
	if _, ok := m.notes[note.ID]; !ok {
		return fmt.Errorf("note %d: %w", note.ID, httpx.ErrNotFound)
	}
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.notes[id]; !ok {
		return fmt.Errorf("note %d: %w", id, httpx.ErrNotFound)
	}
	delete(m.notes, id)
	return nil
}

type scheduledReminder struct {
	noteID   int64
	remindAt time.Time
}

type mockScheduler struct {
	scheduled []scheduledReminder
	err       error
}

func (m *mockScheduler) ScheduleNoteReminder(ctx context.Context, noteID int64, remindAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, scheduledReminder{noteID: noteID, remindAt: remindAt})
	return nil
}

type staticAssignments map[int64][]int64

func (s staticAssignments) IsManagedBy(ctx context.Context, managerID, targetUserID int64) (bool, error) {
	for _, id := range s[managerID] {
		if id == targetUserID {
			return true, nil
		}
	}
	return false, nil
}

var (
	manager = access.Actor{ID: 2, Role: access.RoleManager, IsActive: true}
	user    = access.Actor{ID: 3, Role: access.RoleUser, IsActive: true}
)

func newFixture() (*Service, *mockRepository, *mockScheduler) {
	repo := newMockRepository()
	scheduler := &mockScheduler{}
	eval := access.NewEvaluator(staticAssignments{2: {3}})
	return NewService(repo, eval, scheduler, nil), repo, scheduler
}

func TestCreateNote(t *testing.T) {
	t.Run("plain note schedules nothing", func(t *testing.T) {
		svc, _, scheduler := newFixture()
		view, err := svc.Create(context.Background(), user, CreateNoteRequest{Title: " Ideas ", Body: " some text "})
		require.NoError(t, err)
		assert.Equal(t, "Ideas", view.Title)
		assert.Equal(t, "some text", view.Body)
		assert.Empty(t, scheduler.scheduled)
	})

	t.Run("reminder note is scheduled", func(t *testing.T) {
		svc, _, scheduler := newFixture()
		remindAt := time.Now().Add(time.Hour)
		view, err := svc.Create(context.Background(), user, CreateNoteRequest{Title: "Call", RemindAt: &remindAt})
		require.NoError(t, err)
		require.Len(t, scheduler.scheduled, 1)
		assert.Equal(t, view.ID, scheduler.scheduled[0].noteID)
		assert.True(t, scheduler.scheduled[0].remindAt.Equal(remindAt))
	})

	t.Run("scheduler failure does not fail the create", func(t *testing.T) {
		svc, repo, scheduler := newFixture()
		scheduler.err = errors.New("queue down")
		remindAt := time.Now().Add(time.Hour)
		view, err := svc.Create(context.Background(), user, CreateNoteRequest{Title: "Durable", RemindAt: &remindAt})
		require.NoError(t, err)
		assert.Contains(t, repo.notes, view.ID)
	})
}

func TestUpdateNoteReminder(t *testing.T) {
	svc, repo, scheduler := newFixture()
	remindAt := time.Now().Add(time.Hour)
	created, err := svc.Create(context.Background(), user, CreateNoteRequest{Title: "Call", RemindAt: &remindAt})
	require.NoError(t, err)

	delivered := time.Now()
	repo.notes[created.ID].RemindedAt = &delivered

	t.Run("new remind-at resets delivery and reschedules", func(t *testing.T) {
		next := remindAt.Add(2 * time.Hour)
		view, err := svc.Update(context.Background(), user, created.ID, UpdateNoteRequest{RemindAt: &next})
		require.NoError(t, err)
		assert.Nil(t, view.RemindedAt)
		require.NotNil(t, view.RemindAt)
		assert.True(t, view.RemindAt.Equal(next))
		require.Len(t, scheduler.scheduled, 2)
		assert.True(t, scheduler.scheduled[1].remindAt.Equal(next))
	})

	t.Run("clear reminder wipes both fields without scheduling", func(t *testing.T) {
		before := len(scheduler.scheduled)
		view, err := svc.Update(context.Background(), user, created.ID, UpdateNoteRequest{ClearReminder: true})
		require.NoError(t, err)
		assert.Nil(t, view.RemindAt)
		assert.Nil(t, view.RemindedAt)
		assert.Len(t, scheduler.scheduled, before)
	})

	t.Run("text-only update leaves reminder state alone", func(t *testing.T) {
		body := "updated"
		before := len(scheduler.scheduled)
		view, err := svc.Update(context.Background(), user, created.ID, UpdateNoteRequest{Body: &body})
		require.NoError(t, err)
		assert.Equal(t, "updated", view.Body)
		assert.Len(t, scheduler.scheduled, before)
	})
}

func TestNoteLock(t *testing.T) {
	svc, _, _ := newFixture()
	created, err := svc.Create(context.Background(), manager, CreateNoteRequest{Title: "Handover", UserID: "3"})
	require.NoError(t, err)

	t.Run("owner reads it as locked", func(t *testing.T) {
		view, err := svc.Get(context.Background(), user, created.ID)
		require.NoError(t, err)
		assert.True(t, view.Locked)
	})

	t.Run("owner cannot edit", func(t *testing.T) {
		body := "mine"
		_, err := svc.Update(context.Background(), user, created.ID, UpdateNoteRequest{Body: &body})
		assert.ErrorIs(t, err, access.ErrLocked)
	})

	t.Run("owner cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(context.Background(), user, created.ID), access.ErrLocked)
	})

	t.Run("creator edits and deletes", func(t *testing.T) {
		body := "updated by creator"
		_, err := svc.Update(context.Background(), manager, created.ID, UpdateNoteRequest{Body: &body})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(context.Background(), manager, created.ID))
	})
}

func TestNoteVisibility(t *testing.T) {
	svc, _, _ := newFixture()
	_, err := svc.Create(context.Background(), user, CreateNoteRequest{Title: "Private"})
	require.NoError(t, err)

	stranger := access.Actor{ID: 4, Role: access.RoleUser, IsActive: true}
	_, err = svc.List(context.Background(), stranger, "3")
	assert.ErrorIs(t, err, access.ErrForbidden)

	views, err := svc.List(context.Background(), manager, "3")
	require.NoError(t, err)
	assert.Len(t, views, 1)
}
