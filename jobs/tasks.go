package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNoteReminder delivers a note reminder at its remind-at time.
	TaskTypeNoteReminder = "note:reminder"
	// TaskTypeSessionCleanup purges expired session rows.
	TaskTypeSessionCleanup = "session:cleanup"
)

// NoteReminderPayload identifies the note and the reminder time it was
// scheduled for. The handler skips delivery when the note's remind-at
// no longer matches, so edits invalidate stale queue entries.
type NoteReminderPayload struct {
	NoteID   int64     `json:"note_id"`
	RemindAt time.Time `json:"remind_at"`
}

// NewNoteReminderTask constructs an Asynq task for a note reminder.
func NewNoteReminderTask(payload NoteReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNoteReminder, data), nil
}

// NewSessionCleanupTask constructs the session cleanup task.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionCleanup, nil)
}
