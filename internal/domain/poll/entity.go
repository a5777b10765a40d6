package poll

import (
	"time"

	"github.com/google/uuid"
)

// Option values a vote may carry. Every poll has exactly two options.
const (
	Option1 = 1
	Option2 = 2
)

// Poll represents the polls table
type Poll struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Option1   string    `json:"option1"`
	Option2   string    `json:"option2"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote represents the votes table. At most one row exists per
// (poll_id, user_id) pair; the store enforces the uniqueness.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	UserID    uuid.UUID `json:"user_id"`
	Option    int       `json:"option"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment represents the comments table. Append-only.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteCounts holds per-option exact counts for one poll.
type VoteCounts struct {
	Option1 int64 `json:"option1"`
	Option2 int64 `json:"option2"`
}

// Total returns the overall number of votes cast.
func (c VoteCounts) Total() int64 {
	return c.Option1 + c.Option2
}

// ValidOption reports whether v is one of the two allowed option values.
func ValidOption(v int) bool {
	return v == Option1 || v == Option2
}
