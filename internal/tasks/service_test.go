package tasks

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/lists"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

type mockRepository struct {
	tasks  map[int64]*Task
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{tasks: make(map[int64]*Task), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, filter Filter) ([]Task, int, error) {
	var result []Task
	for _, task := range m.tasks {
		if task.OwnerUserID != filter.OwnerUserID {
			continue
		}
		if filter.ListID != nil && task.ListID != *filter.ListID {
			continue
		}
		if filter.Done != nil && task.Done != *filter.Done {
			continue
		}
		result = append(result, *task)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, httpx.ErrNotFound)
	}
	copied := *task
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, task *Task) (*Task, error) {
	created := *task
	created.ID = m.nextID
	created.Position = len(m.tasks) + 1
	m.nextID++
	m.tasks[created.ID] = &created
	copied := created
	return &copied, nil
}

func (m *mockRepository) Update(ctx context.Context, task *Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return fmt.Errorf("task %d: %w", task.ID, httpx.ErrNotFound)
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, httpx.ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockRepository) Reorder(ctx context.Context, listID int64, orderedIDs []int64) error {
	for pos, id := range orderedIDs {
		task, ok := m.tasks[id]
		if !ok || task.ListID != listID {
			return fmt.Errorf("task %d: %w", id, httpx.ErrValidation)
		}
		task.Position = pos + 1
	}
	return nil
}

func (m *mockRepository) CountOpen(ctx context.Context, ownerUserID int64) (int, error) {
	n := 0
	for _, task := range m.tasks {
		if task.OwnerUserID == ownerUserID && !task.Done {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) CountOverdue(ctx context.Context, ownerUserID int64, now time.Time) (int, error) {
	n := 0
	for _, task := range m.tasks {
		if task.OwnerUserID == ownerUserID && !task.Done && task.DueAt != nil && task.DueAt.Before(now) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) CountDoneSince(ctx context.Context, ownerUserID int64, since time.Time) (int, error) {
	n := 0
	for _, task := range m.tasks {
		if task.OwnerUserID == ownerUserID && task.Done && task.UpdatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

type mockListResolver struct {
	lists map[int64]*lists.List
}

func (m *mockListResolver) FindByID(ctx context.Context, id int64) (*lists.List, error) {
	l, ok := m.lists[id]
	if !ok {
		return nil, fmt.Errorf("list %d: %w", id, httpx.ErrNotFound)
	}
	copied := *l
	return &copied, nil
}

type mockCategoryResolver struct {
	owners map[int64]int64
}

func (m *mockCategoryResolver) OwnerOf(ctx context.Context, categoryID int64) (int64, error) {
	owner, ok := m.owners[categoryID]
	if !ok {
		return 0, fmt.Errorf("category %d: %w", categoryID, httpx.ErrNotFound)
	}
	return owner, nil
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
	admin    = access.Actor{ID: 1, Role: access.RoleAdmin, IsActive: true}
	manager  = access.Actor{ID: 2, Role: access.RoleManager, IsActive: true}
	user     = access.Actor{ID: 3, Role: access.RoleUser, IsActive: true}
	stranger = access.Actor{ID: 4, Role: access.RoleUser, IsActive: true}
)

// Fixture: list 10 owned and created by user 3, list 11 owned by user 3
// but created by manager 2, category 20 owned by user 3, category 21
// owned by stranger 4.
func newFixture() (*Service, *mockRepository) {
	repo := newMockRepository()
	listResolver := &mockListResolver{lists: map[int64]*lists.List{
		10: {ID: 10, OwnerUserID: 3, CreatedByUserID: 3, Name: "Personal"},
		11: {ID: 11, OwnerUserID: 3, CreatedByUserID: 2, Name: "Assigned"},
	}}
	catResolver := &mockCategoryResolver{owners: map[int64]int64{20: 3, 21: 4}}
	eval := access.NewEvaluator(staticAssignments{2: {3}})
	return NewService(repo, listResolver, catResolver, eval), repo
}

func TestCreateTask(t *testing.T) {
	t.Run("user creates task in own list", func(t *testing.T) {
		svc, _ := newFixture()
		view, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: " Buy milk "})
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", view.Title)
		assert.Equal(t, user.ID, view.OwnerUserID)
		assert.Equal(t, user.ID, view.CreatedByUserID)
		assert.Equal(t, 1, view.Position)
	})

	t.Run("manager creates task for managed user", func(t *testing.T) {
		svc, _ := newFixture()
		view, err := svc.Create(context.Background(), manager, CreateTaskRequest{ListID: 10, Title: "Report", UserID: "3"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, view.OwnerUserID)
		assert.Equal(t, manager.ID, view.CreatedByUserID)
	})

	t.Run("list must belong to target user", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.Create(context.Background(), admin, CreateTaskRequest{ListID: 10, Title: "Mismatch", UserID: "4"})
		assert.ErrorIs(t, err, httpx.ErrValidation)
	})

	t.Run("category must belong to task owner", func(t *testing.T) {
		svc, _ := newFixture()
		cat := int64(21)
		_, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, CategoryID: &cat, Title: "Tagged"})
		assert.ErrorIs(t, err, httpx.ErrValidation)
	})

	t.Run("valid category accepted", func(t *testing.T) {
		svc, _ := newFixture()
		cat := int64(20)
		view, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, CategoryID: &cat, Title: "Tagged"})
		require.NoError(t, err)
		require.NotNil(t, view.CategoryID)
		assert.Equal(t, cat, *view.CategoryID)
	})

	t.Run("stranger cannot target another user", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.Create(context.Background(), stranger, CreateTaskRequest{ListID: 10, Title: "Nope", UserID: "3"})
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}

func TestUpdateTaskLock(t *testing.T) {
	svc, _ := newFixture()
	created, err := svc.Create(context.Background(), manager, CreateTaskRequest{ListID: 11, Title: "Review docs", UserID: "3"})
	require.NoError(t, err)

	t.Run("owner reads it as locked", func(t *testing.T) {
		view, err := svc.Get(context.Background(), user, created.ID)
		require.NoError(t, err)
		assert.True(t, view.Locked)
	})

	t.Run("owner cannot mark done", func(t *testing.T) {
		done := true
		_, err := svc.Update(context.Background(), user, created.ID, UpdateTaskRequest{Done: &done})
		assert.ErrorIs(t, err, access.ErrLocked)
	})

	t.Run("owner cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(context.Background(), user, created.ID), access.ErrLocked)
	})

	t.Run("creator updates freely", func(t *testing.T) {
		done := true
		view, err := svc.Update(context.Background(), manager, created.ID, UpdateTaskRequest{Done: &done})
		require.NoError(t, err)
		assert.True(t, view.Done)
	})

	t.Run("stranger cannot even read", func(t *testing.T) {
		_, err := svc.Get(context.Background(), stranger, created.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}

func TestUpdateTaskFields(t *testing.T) {
	svc, _ := newFixture()
	due := time.Now().Add(24 * time.Hour)
	created, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: "Draft", DueAt: &due})
	require.NoError(t, err)

	t.Run("clear due date", func(t *testing.T) {
		view, err := svc.Update(context.Background(), user, created.ID, UpdateTaskRequest{ClearDueAt: true})
		require.NoError(t, err)
		assert.Nil(t, view.DueAt)
	})

	t.Run("set new due date", func(t *testing.T) {
		next := due.Add(48 * time.Hour)
		view, err := svc.Update(context.Background(), user, created.ID, UpdateTaskRequest{DueAt: &next})
		require.NoError(t, err)
		require.NotNil(t, view.DueAt)
		assert.True(t, view.DueAt.Equal(next))
	})
}

func TestReorder(t *testing.T) {
	svc, repo := newFixture()
	a, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: "first"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: "second"})
	require.NoError(t, err)

	t.Run("owner reorders own list", func(t *testing.T) {
		err := svc.Reorder(context.Background(), user, ReorderRequest{ListID: 10, TaskIDs: []int64{b.ID, a.ID}})
		require.NoError(t, err)
		assert.Equal(t, 1, repo.tasks[b.ID].Position)
		assert.Equal(t, 2, repo.tasks[a.ID].Position)
	})

	t.Run("locked list rejects owner reorder", func(t *testing.T) {
		err := svc.Reorder(context.Background(), user, ReorderRequest{ListID: 11, TaskIDs: []int64{a.ID}})
		assert.ErrorIs(t, err, access.ErrLocked)
	})

	t.Run("stranger denied", func(t *testing.T) {
		err := svc.Reorder(context.Background(), stranger, ReorderRequest{ListID: 10, TaskIDs: []int64{a.ID}})
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}

func TestSummary(t *testing.T) {
	svc, repo := newFixture()
	past := time.Now().Add(-2 * time.Hour)

	_, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: "open"})
	require.NoError(t, err)
	overdue, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: "late", DueAt: &past})
	require.NoError(t, err)
	_ = overdue
	doneTask, err := svc.Create(context.Background(), user, CreateTaskRequest{ListID: 10, Title: "done"})
	require.NoError(t, err)
	repo.tasks[doneTask.ID].Done = true
	repo.tasks[doneTask.ID].UpdatedAt = time.Now()

	t.Run("own summary", func(t *testing.T) {
		summary, err := svc.Summary(context.Background(), user, "")
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Open)
		assert.Equal(t, 1, summary.Overdue)
		assert.Equal(t, 1, summary.DoneToday)
	})

	t.Run("manager reads managed user's summary", func(t *testing.T) {
		summary, err := svc.Summary(context.Background(), manager, "3")
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Open)
	})

	t.Run("stranger denied", func(t *testing.T) {
		_, err := svc.Summary(context.Background(), stranger, "3")
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}
