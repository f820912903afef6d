package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/taskdeck/taskdeck/internal/jobs"
)

// NoteReminderJob delivers note reminders. Delivery is skipped when the
// note was deleted, already reminded, or rescheduled after enqueue.
type NoteReminderJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewNoteReminderJob constructs the job. metrics may be nil.
func NewNoteReminderJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *NoteReminderJob {
	return &NoteReminderJob{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeNoteReminder tasks.
func (j *NoteReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	return j.metrics.Track("note_reminder").End(j.handle(ctx, t))
}

func (j *NoteReminderJob) handle(ctx context.Context, t *asynq.Task) error {
	var payload NoteReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var (
		ownerUserID int64
		title       string
		remindAt    *time.Time
		remindedAt  *time.Time
	)
	err := j.pool.QueryRow(ctx,
		`SELECT owner_user_id, title, remind_at, reminded_at FROM notes WHERE id = $1`,
		payload.NoteID).Scan(&ownerUserID, &title, &remindAt, &remindedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			j.logger.Info("note reminder skipped, note deleted", slog.Int64("note_id", payload.NoteID))
			return nil
		}
		return err
	}
	if remindedAt != nil {
		return nil
	}
	if !reminderMatches(remindAt, payload.RemindAt) {
		j.logger.Info("note reminder skipped, reminder changed", slog.Int64("note_id", payload.NoteID))
		return nil
	}

	j.logger.Info("note reminder due",
		slog.Int64("note_id", payload.NoteID),
		slog.Int64("owner_user_id", ownerUserID),
		slog.String("title", title))

	tag, err := j.pool.Exec(ctx,
		`UPDATE notes SET reminded_at = NOW() WHERE id = $1 AND reminded_at IS NULL`,
		payload.NoteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Another worker delivered it first.
		return nil
	}
	return nil
}

// reminderMatches reports whether the stored remind-at still refers to
// the enqueued reminder. Postgres keeps timestamps at microsecond
// precision, so both sides are compared at microseconds; a reminder
// scheduled with nanosecond precision must still be delivered.
func reminderMatches(stored *time.Time, scheduled time.Time) bool {
	if stored == nil {
		return false
	}
	return stored.Truncate(time.Microsecond).Equal(scheduled.Truncate(time.Microsecond))
}
