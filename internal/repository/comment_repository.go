package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pollroom/internal/domain/poll"
	pollroom_errors "pollroom/pkg/errors"
)

type PostgresCommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) CommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) Create(ctx context.Context, c *poll.Comment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO comments (id, poll_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.PollID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return pollroom_errors.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresCommentRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]poll.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, poll_id, user_id, content, created_at
		FROM comments WHERE poll_id = $1 ORDER BY created_at ASC`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]poll.Comment, 0)
	for rows.Next() {
		var c poll.Comment
		if err := rows.Scan(&c.ID, &c.PollID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
