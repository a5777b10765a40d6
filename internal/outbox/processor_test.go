package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollroom/internal/domain/job"
	"pollroom/internal/events"
	"pollroom/pkg/logger"
)

type memJobRepo struct {
	mu   sync.Mutex
	jobs []job.EmailJob
}

func (r *memJobRepo) Enqueue(ctx context.Context, j *job.EmailJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, *j)
	return nil
}

func (r *memJobRepo) GetPending(ctx context.Context, limit int) ([]job.EmailJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]job.EmailJob, 0)
	for _, j := range r.jobs {
		if j.Status == job.StatusPending && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			r.jobs[i].Status = job.StatusCompleted
		}
	}
	return nil
}

func (r *memJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			r.jobs[i].Attempts++
			r.jobs[i].LastError = errMsg
			if r.jobs[i].Attempts >= 5 {
				r.jobs[i].Status = job.StatusFailed
			}
		}
	}
	return nil
}

func (r *memJobRepo) statuses() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for _, j := range r.jobs {
		out[j.Status]++
	}
	return out
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	fail     error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.channels = append(p.channels, channel)
	return nil
}

func pendingJob(jobType string) *job.EmailJob {
	return &job.EmailJob{
		ID:          uuid.New(),
		Type:        jobType,
		PollID:      uuid.New(),
		ActorUserID: uuid.New(),
		Payload:     []byte(`{"option":1}`),
		Status:      job.StatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestProcessBatchCompletesJobs(t *testing.T) {
	repo := &memJobRepo{}
	pub := &recordingPublisher{}
	proc := NewProcessor(repo, pub, logger.NewNop(), 10, time.Second)

	require.NoError(t, repo.Enqueue(context.Background(), pendingJob(job.TypeVote)))
	require.NoError(t, repo.Enqueue(context.Background(), pendingJob(job.TypeComment)))

	proc.ProcessBatch(context.Background())

	assert.Equal(t, map[string]int{job.StatusCompleted: 2}, repo.statuses())
	require.Len(t, pub.channels, 2)
	assert.Equal(t, events.EmailChannel, pub.channels[0])
}

func TestProcessBatchRespectsBatchSize(t *testing.T) {
	repo := &memJobRepo{}
	pub := &recordingPublisher{}
	proc := NewProcessor(repo, pub, logger.NewNop(), 2, time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Enqueue(context.Background(), pendingJob(job.TypeVote)))
	}

	proc.ProcessBatch(context.Background())
	assert.Equal(t, 2, repo.statuses()[job.StatusCompleted])

	proc.ProcessBatch(context.Background())
	proc.ProcessBatch(context.Background())
	assert.Equal(t, 5, repo.statuses()[job.StatusCompleted])
}

func TestProcessBatchPublishFailureMarksFailed(t *testing.T) {
	repo := &memJobRepo{}
	pub := &recordingPublisher{fail: errors.New("redis down")}
	proc := NewProcessor(repo, pub, logger.NewNop(), 10, time.Second)

	require.NoError(t, repo.Enqueue(context.Background(), pendingJob(job.TypeVote)))

	// Attempts accumulate across batches until the job is parked.
	for i := 0; i < 4; i++ {
		proc.ProcessBatch(context.Background())
		assert.Equal(t, 1, repo.statuses()[job.StatusPending])
	}
	proc.ProcessBatch(context.Background())
	assert.Equal(t, map[string]int{job.StatusFailed: 1}, repo.statuses())

	// Once parked the job is never picked up again.
	pub.fail = nil
	proc.ProcessBatch(context.Background())
	assert.Empty(t, pub.channels)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &memJobRepo{}
	pub := &recordingPublisher{}
	proc := NewProcessor(repo, pub, logger.NewNop(), 10, 5*time.Millisecond)

	require.NoError(t, repo.Enqueue(context.Background(), pendingJob(job.TypeVote)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		proc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return repo.statuses()[job.StatusCompleted] == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop on cancel")
	}
}
