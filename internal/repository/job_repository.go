package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pollroom/internal/domain/job"
)

type PostgresEmailJobRepository struct {
	db *pgxpool.Pool
}

func NewEmailJobRepository(db *pgxpool.Pool) EmailJobRepository {
	return &PostgresEmailJobRepository{db: db}
}

func (r *PostgresEmailJobRepository) Enqueue(ctx context.Context, j *job.EmailJob) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_jobs (id, type, poll_id, actor_user_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`,
		j.ID, j.Type, j.PollID, j.ActorUserID, j.Payload, job.StatusPending, j.CreatedAt)
	return err
}

func (r *PostgresEmailJobRepository) GetPending(ctx context.Context, limit int) ([]job.EmailJob, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, type, poll_id, actor_user_id, payload, status, attempts, COALESCE(last_error, ''), created_at, processed_at
		FROM email_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`, job.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]job.EmailJob, 0, limit)
	for rows.Next() {
		var j job.EmailJob
		if err := rows.Scan(&j.ID, &j.Type, &j.PollID, &j.ActorUserID, &j.Payload,
			&j.Status, &j.Attempts, &j.LastError, &j.CreatedAt, &j.ProcessedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *PostgresEmailJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE email_jobs SET status = $1, processed_at = NOW() WHERE id = $2`,
		job.StatusCompleted, id)
	return err
}

// MarkFailed records the error and bumps the attempt counter. The job stays
// PENDING so the processor retries it until the attempt budget runs out.
func (r *PostgresEmailJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE email_jobs
		SET attempts = attempts + 1,
		    last_error = $1,
		    status = CASE WHEN attempts + 1 >= 5 THEN $2 ELSE status END
		WHERE id = $3`,
		errMsg, job.StatusFailed, id)
	return err
}
