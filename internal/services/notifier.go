package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pollroom/internal/domain/job"
	"pollroom/internal/repository"
	"pollroom/pkg/logger"
)

// Notifier enqueues email jobs fire-and-forget. An enqueue failure must
// never fail or roll back the mutation that triggered it, so Enqueue
// swallows errors after a debug log.
type Notifier struct {
	jobs repository.EmailJobRepository
	log  *logger.Logger
}

func NewNotifier(jobs repository.EmailJobRepository, log *logger.Logger) *Notifier {
	return &Notifier{jobs: jobs, log: log}
}

func (n *Notifier) Enqueue(ctx context.Context, jobType string, pollID, actorUserID uuid.UUID, payload map[string]any) {
	if n == nil || n.jobs == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage("{}")
	}

	j := &job.EmailJob{
		ID:          uuid.New(),
		Type:        jobType,
		PollID:      pollID,
		ActorUserID: actorUserID,
		Payload:     raw,
		Status:      job.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := n.jobs.Enqueue(ctx, j); err != nil && n.log != nil {
		n.log.Debugf("email job enqueue dropped: type=%s poll=%s: %v", jobType, pollID, err)
	}
}
