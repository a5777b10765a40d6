package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pollroom/internal/domain/poll"
	pollroom_errors "pollroom/pkg/errors"
)

type PostgresVoteRepository struct {
	db *pgxpool.Pool
}

func NewVoteRepository(db *pgxpool.Pool) VoteRepository {
	return &PostgresVoteRepository{db: db}
}

// Upsert relies on the unique (poll_id, user_id) constraint: concurrent
// double-submits collapse into one row with the last option written.
func (r *PostgresVoteRepository) Upsert(ctx context.Context, v *poll.Vote) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO votes (id, poll_id, user_id, option, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (poll_id, user_id)
		DO UPDATE SET option = EXCLUDED.option, updated_at = EXCLUDED.updated_at`,
		v.ID, v.PollID, v.UserID, v.Option, v.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return pollroom_errors.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresVoteRepository) CountByOption(ctx context.Context, pollID uuid.UUID) (poll.VoteCounts, error) {
	rows, err := r.db.Query(ctx, `
		SELECT option, COUNT(*) FROM votes WHERE poll_id = $1 GROUP BY option`, pollID)
	if err != nil {
		return poll.VoteCounts{}, err
	}
	defer rows.Close()

	var counts poll.VoteCounts
	for rows.Next() {
		var option int
		var n int64
		if err := rows.Scan(&option, &n); err != nil {
			return poll.VoteCounts{}, err
		}
		switch option {
		case poll.Option1:
			counts.Option1 = n
		case poll.Option2:
			counts.Option2 = n
		}
	}
	return counts, rows.Err()
}

func (r *PostgresVoteRepository) GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (poll.Vote, error) {
	var v poll.Vote
	err := r.db.QueryRow(ctx, `
		SELECT id, poll_id, user_id, option, created_at, updated_at
		FROM votes WHERE poll_id = $1 AND user_id = $2`, pollID, userID).
		Scan(&v.ID, &v.PollID, &v.UserID, &v.Option, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return poll.Vote{}, pollroom_errors.ErrNotFound
		}
		return poll.Vote{}, err
	}
	return v, nil
}
