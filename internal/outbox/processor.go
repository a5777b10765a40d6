// Package outbox drains the email_jobs table. Enqueueing is fire-and-
// forget from the actions' point of view; delivery happens here, decoupled
// and retried, by handing each job to the external mail sender's channel.
package outbox

import (
	"context"
	"time"

	"pollroom/internal/events"
	"pollroom/internal/repository"
	"pollroom/pkg/logger"
)

type Processor struct {
	jobs      repository.EmailJobRepository
	publisher events.Publisher
	log       *logger.Logger
	batchSize int
	interval  time.Duration
}

func NewProcessor(jobs repository.EmailJobRepository, publisher events.Publisher, log *logger.Logger, batchSize int, interval time.Duration) *Processor {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval == 0 {
		interval = 2 * time.Second
	}
	return &Processor{
		jobs:      jobs,
		publisher: publisher,
		log:       log,
		batchSize: batchSize,
		interval:  interval,
	}
}

// Run polls for pending jobs until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch drains up to batchSize pending jobs. Failures bump the
// attempt counter; the repository parks a job as FAILED once its attempt
// budget is spent.
func (p *Processor) ProcessBatch(ctx context.Context) {
	batch, err := p.jobs.GetPending(ctx, p.batchSize)
	if err != nil {
		if p.log != nil {
			p.log.Warnf("outbox poll failed: %v", err)
		}
		return
	}

	for _, j := range batch {
		env := events.NewEnvelope(events.EventTypeEmailDispatch, events.AggregateTypeEmailJob, j.ID.String(), map[string]any{
			"type":          j.Type,
			"poll_id":       j.PollID.String(),
			"actor_user_id": j.ActorUserID.String(),
			"payload":       j.Payload,
		})
		if err := events.PublishEnvelope(ctx, p.publisher, events.EmailChannel, env); err != nil {
			_ = p.jobs.MarkFailed(ctx, j.ID, err.Error())
			continue
		}
		_ = p.jobs.MarkCompleted(ctx, j.ID)
	}
}
