package tasks

import "time"

// Task is a single to-do item. Owner and creator are kept as two
// explicit fields: a manager creating a task for a managed user sets
// owner to the user and creator to themselves, which later locks the
// owner out of edits.
type Task struct {
	ID              int64      `json:"id"`
	ListID          int64      `json:"list_id"`
	OwnerUserID     int64      `json:"owner_user_id"`
	CreatedByUserID int64      `json:"created_by_user_id"`
	CategoryID      *int64     `json:"category_id,omitempty"`
	Title           string     `json:"title"`
	Notes           string     `json:"notes,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	Done            bool       `json:"done"`
	Position        int        `json:"position"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// View is a task decorated with the lock decision for the current actor.
type View struct {
	Task
	Locked bool `json:"locked"`
}

// Filter narrows task listings for one owner.
type Filter struct {
	OwnerUserID int64
	ListID      *int64
	CategoryID  *int64
	Done        *bool
	Page        int
	PerPage     int
}

// Summary aggregates task counts for a target user's dashboard.
type Summary struct {
	Open      int `json:"open"`
	Overdue   int `json:"overdue"`
	DoneToday int `json:"done_today"`
}
