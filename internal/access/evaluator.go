// Package access decides which actor may read, write or administer
// which account's records. It is a pure policy layer: every call
// re-reads the facts it is handed and nothing is cached, so decisions
// always reflect the latest active flag and manager assignment.
package access

import (
	"context"
	"strings"
)

// AssignmentStore answers the single external question the evaluator
// needs: is targetUserID a user-role account currently assigned to
// managerID. Implementations must return an error for infrastructure
// faults instead of reporting false.
type AssignmentStore interface {
	IsManagedBy(ctx context.Context, managerID, targetUserID int64) (bool, error)
}

// Evaluator makes authorization decisions from an actor snapshot and
// ownership facts. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	store AssignmentStore
}

// NewEvaluator constructs an Evaluator over the given assignment store.
func NewEvaluator(store AssignmentStore) *Evaluator {
	return &Evaluator{store: store}
}

// RequireActiveActor gates every other check: nil means the session
// resolved no account, an inactive account is rejected regardless of
// role.
func (e *Evaluator) RequireActiveActor(actor *Actor) (*Actor, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsActive {
		return nil, ErrDeactivated
	}
	return actor, nil
}

// CanAccessUser reports whether actor may act on targetUserID's
// records. Self-access and admin are answered without touching the
// store; only the manager branch performs the assignment lookup.
func (e *Evaluator) CanAccessUser(ctx context.Context, actor Actor, targetUserID int64) (bool, error) {
	if actor.ID == targetUserID {
		return true, nil
	}
	switch actor.Role {
	case RoleAdmin:
		return true, nil
	case RoleManager:
		ok, err := e.store.IsManagedBy(ctx, actor.ID, targetUserID)
		if err != nil {
			return false, &lookupError{err: err}
		}
		return ok, nil
	}
	return false, nil
}

// ResolveTargetUserID is the single entry point resource handlers call
// before reading or writing on behalf of a possibly-different user. A
// blank requested id means the actor acts on their own data and the
// store is never consulted. A requested id that matches no accessible
// account, including a malformed one, is ErrForbidden.
func (e *Evaluator) ResolveTargetUserID(ctx context.Context, actor Actor, requested string) (int64, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return actor.ID, nil
	}
	target, err := parseUserID(requested)
	if err != nil {
		return 0, ErrForbidden
	}
	ok, err := e.CanAccessUser(ctx, actor, target)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrForbidden
	}
	return target, nil
}

// IsLockedForOwner reports whether a user-role owner is locked out of
// modifying a record created on their behalf by someone else. Owners
// keep read access; managers and admins are never locked. A non-owner
// is not locked either, they simply fail CanAccessUser.
func (e *Evaluator) IsLockedForOwner(actor Actor, ownerUserID, createdByUserID int64) bool {
	if actor.Role != RoleUser {
		return false
	}
	if actor.ID != ownerUserID {
		return false
	}
	return createdByUserID != actor.ID
}
