package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Email job types.
const (
	TypeVote    = "vote"
	TypeComment = "comment"
)

// Email job statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// EmailJob represents the email_jobs table. Rows are enqueued best-effort
// by the vote and comment services and drained by the outbox processor.
type EmailJob struct {
	ID          uuid.UUID
	Type        string
	PollID      uuid.UUID
	ActorUserID uuid.UUID
	Payload     json.RawMessage
	Status      string
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
