package access

import (
	"errors"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

// Denial outcomes. Each wraps the matching transport sentinel so
// handlers can pass them straight to httpx.RespondError, while tests
// and callers still distinguish them with errors.Is.
var (
	// ErrUnauthenticated means no actor could be resolved from the session.
	ErrUnauthenticated = fmt.Errorf("%w: no authenticated actor", httpx.ErrUnauthorized)
	// ErrDeactivated means the actor exists but the account is disabled.
	ErrDeactivated = fmt.Errorf("%w: account deactivated", httpx.ErrForbidden)
	// ErrForbidden means the actor is active but lacks rights over the target.
	ErrForbidden = fmt.Errorf("%w: no rights over target user", httpx.ErrForbidden)
	// ErrLocked means the owner may view but not modify a record created
	// on their behalf by someone else.
	ErrLocked = fmt.Errorf("%w: record locked for owner", httpx.ErrForbidden)
)

// lookupError marks an assignment-store failure. It is deliberately
// distinct from every denial: "could not determine" must never be
// reported as "denied".
type lookupError struct {
	err error
}

func (e *lookupError) Error() string {
	return "access: assignment lookup: " + e.err.Error()
}

func (e *lookupError) Unwrap() error {
	return e.err
}

// IsLookupFailure reports whether err originated in the assignment
// store rather than in a policy decision.
func IsLookupFailure(err error) bool {
	var le *lookupError
	return errors.As(err, &le)
}
