package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/taskdeck/taskdeck/internal/jobs"
)

// SessionCleanupJob removes expired session rows from the registry.
// Redis entries expire on their own via TTL; this keeps the Postgres
// audit copy from growing without bound.
type SessionCleanupJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSessionCleanupJob constructs the job. metrics may be nil.
func NewSessionCleanupJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionCleanupJob {
	return &SessionCleanupJob{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeSessionCleanup tasks.
func (j *SessionCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	return j.metrics.Track("session_cleanup").End(j.handle(ctx))
}

func (j *SessionCleanupJob) handle(ctx context.Context) error {
	tag, err := j.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return err
	}
	if removed := tag.RowsAffected(); removed > 0 {
		j.logger.Info("expired sessions removed", slog.Int64("count", removed))
	}
	return nil
}
