package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// DenialCounter records rejected requests for monitoring. Satisfied by
// observability.Metrics.
type DenialCounter interface {
	CountDenial(reason string)
}

// ActorResolver loads the current account snapshot for a session user
// id. Implementations must return (nil, nil) when no such account
// exists. Role and active flag are re-read per request, never trusted
// from the cookie.
type ActorResolver interface {
	FindActor(ctx context.Context, id int64) (*Actor, error)
}

// Middleware authenticates requests against the session and attaches
// the vetted actor to the request context.
type Middleware struct {
	Resolver  ActorResolver
	Evaluator *Evaluator
	Logger    *slog.Logger
	Denials   DenialCounter
}

// RequireActor rejects requests without an active authenticated
// account and stores the actor in context for downstream handlers.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := m.resolve(r)
		if err != nil {
			m.countDenial(err)
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// RequireRole additionally restricts the route group to the given
// roles. Admin endpoints use RequireRole(RoleAdmin), oversight
// endpoints RequireRole(RoleManager, RoleAdmin).
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := m.resolve(r)
			if err != nil {
				m.countDenial(err)
				httpx.RespondError(w, err)
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				m.countDenial(ErrForbidden)
				httpx.RespondError(w, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

func (m Middleware) resolve(r *http.Request) (*Actor, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, ErrUnauthenticated
	}
	id, err := parseUserID(raw)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("access parse session user id", slog.String("value", raw))
		}
		return nil, ErrUnauthenticated
	}
	actor, err := m.Resolver.FindActor(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("access resolve actor", slog.Any("error", err))
		}
		return nil, err
	}
	return m.Evaluator.RequireActiveActor(actor)
}

func (m Middleware) countDenial(err error) {
	if m.Denials == nil {
		return
	}
	switch {
	case errors.Is(err, ErrDeactivated):
		m.Denials.CountDenial("deactivated")
	case errors.Is(err, ErrUnauthenticated):
		m.Denials.CountDenial("unauthenticated")
	case errors.Is(err, ErrForbidden):
		m.Denials.CountDenial("forbidden")
	}
}
