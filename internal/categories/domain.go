package categories

import "time"

// Category labels tasks for one owner. Owner and creator are recorded
// separately; a manager can seed categories for a managed user.
type Category struct {
	ID              int64     `json:"id"`
	OwnerUserID     int64     `json:"owner_user_id"`
	CreatedByUserID int64     `json:"created_by_user_id"`
	Name            string    `json:"name"`
	Color           string    `json:"color"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// View is a category decorated with the lock decision for the current
// actor.
type View struct {
	Category
	Locked bool `json:"locked"`
}
