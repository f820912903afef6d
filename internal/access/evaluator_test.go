package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

type mockAssignmentStore struct {
	assignments map[int64][]int64
	err         error
	calls       int
}

func (m *mockAssignmentStore) IsManagedBy(ctx context.Context, managerID, targetUserID int64) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	for _, id := range m.assignments[managerID] {
		if id == targetUserID {
			return true, nil
		}
	}
	return false, nil
}

func activeActor(id int64, role Role) Actor {
	return Actor{ID: id, Role: role, IsActive: true}
}

func TestRequireActiveActor(t *testing.T) {
	eval := NewEvaluator(&mockAssignmentStore{})

	t.Run("nil actor is unauthenticated", func(t *testing.T) {
		_, err := eval.RequireActiveActor(nil)
		require.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, httpx.ErrUnauthorized)
	})

	t.Run("inactive actor is rejected regardless of role", func(t *testing.T) {
		for _, role := range []Role{RoleUser, RoleManager, RoleAdmin} {
			actor := Actor{ID: 7, Role: role, IsActive: false}
			_, err := eval.RequireActiveActor(&actor)
			require.ErrorIs(t, err, ErrDeactivated, "role %s", role)
			assert.ErrorIs(t, err, httpx.ErrForbidden)
		}
	})

	t.Run("active actor passes through", func(t *testing.T) {
		actor := activeActor(7, RoleUser)
		got, err := eval.RequireActiveActor(&actor)
		require.NoError(t, err)
		assert.Equal(t, &actor, got)
	})
}

func TestCanAccessUser(t *testing.T) {
	t.Run("self access always allowed without lookup", func(t *testing.T) {
		store := &mockAssignmentStore{}
		eval := NewEvaluator(store)
		for _, role := range []Role{RoleUser, RoleManager, RoleAdmin} {
			ok, err := eval.CanAccessUser(context.Background(), activeActor(5, role), 5)
			require.NoError(t, err)
			assert.True(t, ok, "role %s", role)
		}
		// The active flag is gated earlier, in RequireActiveActor.
		ok, err := eval.CanAccessUser(context.Background(), Actor{ID: 5, Role: RoleUser}, 5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, store.calls)
	})

	t.Run("admin allowed for any target without lookup", func(t *testing.T) {
		store := &mockAssignmentStore{}
		eval := NewEvaluator(store)
		ok, err := eval.CanAccessUser(context.Background(), activeActor(1, RoleAdmin), 99)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, store.calls)
	})

	t.Run("plain user denied for any other target", func(t *testing.T) {
		store := &mockAssignmentStore{assignments: map[int64][]int64{2: {3}}}
		eval := NewEvaluator(store)
		ok, err := eval.CanAccessUser(context.Background(), activeActor(3, RoleUser), 4)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, store.calls, "user branch must not consult the store")
	})

	t.Run("manager allowed exactly for assigned users", func(t *testing.T) {
		store := &mockAssignmentStore{assignments: map[int64][]int64{2: {3, 4}}}
		eval := NewEvaluator(store)

		ok, err := eval.CanAccessUser(context.Background(), activeActor(2, RoleManager), 3)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = eval.CanAccessUser(context.Background(), activeActor(2, RoleManager), 8)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("lookup failure surfaces as error, not denial", func(t *testing.T) {
		boom := errors.New("connection reset")
		eval := NewEvaluator(&mockAssignmentStore{err: boom})
		ok, err := eval.CanAccessUser(context.Background(), activeActor(2, RoleManager), 3)
		assert.False(t, ok)
		require.Error(t, err)
		assert.True(t, IsLookupFailure(err))
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrForbidden)
		assert.NotErrorIs(t, err, httpx.ErrForbidden)
	})
}

func TestResolveTargetUserID(t *testing.T) {
	t.Run("blank means self without lookup", func(t *testing.T) {
		store := &mockAssignmentStore{}
		eval := NewEvaluator(store)
		for _, requested := range []string{"", "   ", "\t"} {
			got, err := eval.ResolveTargetUserID(context.Background(), activeActor(6, RoleUser), requested)
			require.NoError(t, err)
			assert.Equal(t, int64(6), got)
		}
		assert.Zero(t, store.calls)
	})

	t.Run("explicit own id allowed", func(t *testing.T) {
		eval := NewEvaluator(&mockAssignmentStore{})
		got, err := eval.ResolveTargetUserID(context.Background(), activeActor(6, RoleUser), "6")
		require.NoError(t, err)
		assert.Equal(t, int64(6), got)
	})

	t.Run("malformed id is forbidden", func(t *testing.T) {
		eval := NewEvaluator(&mockAssignmentStore{})
		for _, requested := range []string{"abc", "12x", "-", "9999999999999999999999"} {
			_, err := eval.ResolveTargetUserID(context.Background(), activeActor(6, RoleAdmin), requested)
			assert.ErrorIs(t, err, ErrForbidden, "requested %q", requested)
		}
	})

	t.Run("inaccessible target is forbidden", func(t *testing.T) {
		eval := NewEvaluator(&mockAssignmentStore{})
		_, err := eval.ResolveTargetUserID(context.Background(), activeActor(6, RoleUser), "7")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("manager resolves assigned user", func(t *testing.T) {
		eval := NewEvaluator(&mockAssignmentStore{assignments: map[int64][]int64{2: {3}}})
		got, err := eval.ResolveTargetUserID(context.Background(), activeActor(2, RoleManager), " 3 ")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got)
	})

	t.Run("lookup failure propagates unchanged", func(t *testing.T) {
		boom := errors.New("timeout")
		eval := NewEvaluator(&mockAssignmentStore{err: boom})
		_, err := eval.ResolveTargetUserID(context.Background(), activeActor(2, RoleManager), "3")
		require.Error(t, err)
		assert.True(t, IsLookupFailure(err))
		assert.NotErrorIs(t, err, ErrForbidden)
	})
}

func TestIsLockedForOwner(t *testing.T) {
	eval := NewEvaluator(&mockAssignmentStore{})

	cases := []struct {
		name      string
		actor     Actor
		owner     int64
		createdBy int64
		want      bool
	}{
		{"owner created own record", activeActor(3, RoleUser), 3, 3, false},
		{"owner record created by manager", activeActor(3, RoleUser), 3, 2, true},
		{"owner record created by admin", activeActor(3, RoleUser), 3, 1, true},
		{"non-owner user never locked", activeActor(4, RoleUser), 3, 2, false},
		{"manager never locked on own records", activeActor(2, RoleManager), 2, 1, false},
		{"manager never locked on managed records", activeActor(2, RoleManager), 3, 1, false},
		{"admin never locked", activeActor(1, RoleAdmin), 1, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eval.IsLockedForOwner(tc.actor, tc.owner, tc.createdBy))
		})
	}
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleUser))
	assert.True(t, RoleUser.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleManager))
	assert.False(t, Role("ghost").AtLeast(RoleUser))
	assert.False(t, Role("ghost").Valid())
	assert.True(t, RoleManager.Valid())
}
