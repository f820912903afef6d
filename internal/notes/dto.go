package notes

import "time"

type CreateNoteRequest struct {
	Title    string     `json:"title" validate:"required,max=300"`
	Body     string     `json:"body" validate:"max=10000"`
	RemindAt *time.Time `json:"remind_at,omitempty"`
	// UserID targets another account's data; blank means the actor's own.
	UserID string `json:"user_id" validate:"omitempty,max=20"`
}

type UpdateNoteRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Body          *string    `json:"body,omitempty" validate:"omitempty,max=10000"`
	RemindAt      *time.Time `json:"remind_at,omitempty"`
	ClearReminder bool       `json:"clear_reminder,omitempty"`
}
