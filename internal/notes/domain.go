package notes

import "time"

// Note is a free-form note, optionally with a reminder. RemindAt set
// means the background worker delivers a reminder at that time;
// RemindedAt records delivery so a reminder fires once.
type Note struct {
	ID              int64      `json:"id"`
	OwnerUserID     int64      `json:"owner_user_id"`
	CreatedByUserID int64      `json:"created_by_user_id"`
	Title           string     `json:"title"`
	Body            string     `json:"body,omitempty"`
	RemindAt        *time.Time `json:"remind_at,omitempty"`
	RemindedAt      *time.Time `json:"reminded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// View is a note decorated with the lock decision for the current actor.
type View struct {
	Note
	Locked bool `json:"locked"`
}
