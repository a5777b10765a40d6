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

type PostgresPollRepository struct {
	db *pgxpool.Pool
}

func NewPollRepository(db *pgxpool.Pool) PollRepository {
	return &PostgresPollRepository{db: db}
}

func (r *PostgresPollRepository) Create(ctx context.Context, p *poll.Poll) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO polls (id, question, option1, option2, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Question, p.Option1, p.Option2, p.UserID, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return pollroom_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.QueryRow(ctx, `
		SELECT id, question, option1, option2, user_id, created_at
		FROM polls WHERE id = $1`, id).
		Scan(&p.ID, &p.Question, &p.Option1, &p.Option2, &p.UserID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return poll.Poll{}, pollroom_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) List(ctx context.Context) ([]poll.Poll, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, question, option1, option2, user_id, created_at
		FROM polls ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := make([]poll.Poll, 0)
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.Option1, &p.Option2, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

func (r *PostgresPollRepository) UpdateOwned(ctx context.Context, ownerID uuid.UUID, p poll.Poll) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE polls SET question = $1, option1 = $2, option2 = $3
		WHERE id = $4 AND user_id = $5`,
		p.Question, p.Option1, p.Option2, p.ID, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresPollRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM polls WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
