package repository

import (
	"context"

	"github.com/google/uuid"

	"pollroom/internal/domain/job"
	"pollroom/internal/domain/poll"
	"pollroom/internal/domain/user"
)

type PollRepository interface {
	Create(ctx context.Context, p *poll.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error)
	List(ctx context.Context) ([]poll.Poll, error)

	// UpdateOwned applies the update with an owner-scoped predicate and
	// returns the number of rows affected.
	UpdateOwned(ctx context.Context, ownerID uuid.UUID, p poll.Poll) (int64, error)

	// DeleteOwned removes the poll only when ownerID matches the stored
	// owner. Returns rows affected; deleting a missing or non-owned poll
	// is not an error.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
}

type VoteRepository interface {
	// Upsert inserts the vote or, when a row for (poll_id, user_id)
	// already exists, overwrites its option in place.
	Upsert(ctx context.Context, v *poll.Vote) error

	CountByOption(ctx context.Context, pollID uuid.UUID) (poll.VoteCounts, error)
	GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (poll.Vote, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *poll.Comment) error
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]poll.Comment, error)
}

type EmailJobRepository interface {
	Enqueue(ctx context.Context, j *job.EmailJob) error
	GetPending(ctx context.Context, limit int) ([]job.EmailJob, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}
