package access

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/shared"
)

type mockActorResolver struct {
	actors map[int64]*Actor
	err    error
}

func (m *mockActorResolver) FindActor(ctx context.Context, id int64) (*Actor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.actors[id], nil
}

func (m *mockActorResolver) IsManagedBy(ctx context.Context, managerID, targetUserID int64) (bool, error) {
	return false, nil
}

type recordingDenials struct {
	reasons []string
}

func (r *recordingDenials) CountDenial(reason string) {
	r.reasons = append(r.reasons, reason)
}

func newTestMiddleware(resolver *mockActorResolver) Middleware {
	return Middleware{Resolver: resolver, Evaluator: NewEvaluator(resolver)}
}

func requestWithSessionUser(userID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/lists", nil)
	if userID == "" {
		return r
	}
	sess := &shared.Session{}
	sess.SetUser(userID)
	return r.WithContext(shared.ContextWithSession(r.Context(), sess))
}

func TestRequireActor(t *testing.T) {
	resolver := &mockActorResolver{actors: map[int64]*Actor{
		5: {ID: 5, Role: RoleUser, IsActive: true},
		6: {ID: 6, Role: RoleUser, IsActive: false},
	}}
	mw := newTestMiddleware(resolver)

	var captured *Actor
	handler := mw.RequireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no session is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser(""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("anonymous session is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/lists", nil)
		r = r.WithContext(shared.ContextWithSession(r.Context(), &shared.Session{}))
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbled session user is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("not-a-number"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown account is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("42"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deactivated account is 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("6"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("active account passes with actor in context", func(t *testing.T) {
		captured = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("5"))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, int64(5), captured.ID)
	})

	t.Run("resolver failure is 500", func(t *testing.T) {
		broken := newTestMiddleware(&mockActorResolver{err: errors.New("db down")})
		h := broken.RequireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithSessionUser("5"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	resolver := &mockActorResolver{actors: map[int64]*Actor{
		1: {ID: 1, Role: RoleAdmin, IsActive: true},
		2: {ID: 2, Role: RoleManager, IsActive: true},
		3: {ID: 3, Role: RoleUser, IsActive: true},
	}}
	mw := newTestMiddleware(resolver)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin only", func(t *testing.T) {
		handler := mw.RequireRole(RoleAdmin)(okHandler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("1"))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("2"))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("3"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("manager or admin", func(t *testing.T) {
		handler := mw.RequireRole(RoleManager, RoleAdmin)(okHandler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("2"))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionUser("3"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestDenialsAreCounted(t *testing.T) {
	resolver := &mockActorResolver{actors: map[int64]*Actor{
		3: {ID: 3, Role: RoleUser, IsActive: true},
		6: {ID: 6, Role: RoleUser, IsActive: false},
	}}
	denials := &recordingDenials{}
	mw := Middleware{Resolver: resolver, Evaluator: NewEvaluator(resolver), Denials: denials}

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw.RequireActor(okHandler).ServeHTTP(httptest.NewRecorder(), requestWithSessionUser(""))
	mw.RequireActor(okHandler).ServeHTTP(httptest.NewRecorder(), requestWithSessionUser("6"))
	mw.RequireRole(RoleAdmin)(okHandler).ServeHTTP(httptest.NewRecorder(), requestWithSessionUser("3"))
	mw.RequireActor(okHandler).ServeHTTP(httptest.NewRecorder(), requestWithSessionUser("3"))

	assert.Equal(t, []string{"unauthenticated", "deactivated", "forbidden"}, denials.reasons)
}
