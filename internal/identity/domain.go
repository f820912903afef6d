package identity

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/access"
)

// Account is a managed user account. ManagerID is only set for
// user-role accounts and names the manager responsible for them.
type Account struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      access.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	ManagerID *int64      `json:"manager_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Actor converts the account into the evaluator's snapshot form.
func (a Account) Actor() access.Actor {
	return access.Actor{
		ID:        a.ID,
		Role:      a.Role,
		IsActive:  a.IsActive,
		ManagerID: a.ManagerID,
	}
}

// ListFilter narrows account listings.
type ListFilter struct {
	Role      *access.Role
	ManagerID *int64
	IsActive  *bool
	Page      int
	PerPage   int
}
