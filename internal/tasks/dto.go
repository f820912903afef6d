package tasks

import "time"

type CreateTaskRequest struct {
	ListID     int64      `json:"list_id" validate:"required,gt=0"`
	CategoryID *int64     `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Title      string     `json:"title" validate:"required,max=300"`
	Notes      string     `json:"notes" validate:"max=5000"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	// UserID targets another account's data; blank means the actor's own.
	UserID string `json:"user_id" validate:"omitempty,max=20"`
}

type UpdateTaskRequest struct {
	CategoryID *int64     `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Title      *string    `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	ClearDueAt bool       `json:"clear_due_at,omitempty"`
	Done       *bool      `json:"done,omitempty"`
}

type ReorderRequest struct {
	ListID  int64   `json:"list_id" validate:"required,gt=0"`
	TaskIDs []int64 `json:"task_ids" validate:"required,min=1,dive,gt=0"`
}
