package lists

import "time"

// List is a to-do list. OwnerUserID is the account the list belongs
// to; CreatedByUserID is whoever created it, which differs when a
// manager created the list on a user's behalf. The two are never
// collapsed: the lock rule depends on the distinction.
type List struct {
	ID              int64     `json:"id"`
	OwnerUserID     int64     `json:"owner_user_id"`
	CreatedByUserID int64     `json:"created_by_user_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	IsArchived      bool      `json:"is_archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// View is a list decorated with the lock decision for the current
// actor. Locked lists render read-only.
type View struct {
	List
	Locked bool `json:"locked"`
}
