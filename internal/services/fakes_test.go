package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"pollroom/internal/domain/job"
	"pollroom/internal/domain/poll"
	"pollroom/internal/domain/user"
	pollroom_errors "pollroom/pkg/errors"
)

// In-memory fakes mirroring the store's contracts, including the unique
// (poll_id, user_id) vote constraint the upsert relies on.

type fakePollRepo struct {
	mu    sync.Mutex
	polls map[uuid.UUID]poll.Poll
	calls int
	fail  error
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{polls: make(map[uuid.UUID]poll.Poll)}
}

func (r *fakePollRepo) Create(ctx context.Context, p *poll.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	r.polls[p.ID] = *p
	return nil
}

func (r *fakePollRepo) GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	p, ok := r.polls[id]
	if !ok {
		return poll.Poll{}, pollroom_errors.ErrNotFound
	}
	return p, nil
}

func (r *fakePollRepo) List(ctx context.Context) ([]poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := make([]poll.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePollRepo) UpdateOwned(ctx context.Context, ownerID uuid.UUID, p poll.Poll) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	existing, ok := r.polls[p.ID]
	if !ok || existing.UserID != ownerID {
		return 0, nil
	}
	r.polls[p.ID] = p
	return 1, nil
}

func (r *fakePollRepo) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	existing, ok := r.polls[id]
	if !ok || existing.UserID != ownerID {
		return 0, nil
	}
	delete(r.polls, id)
	return 1, nil
}

type voteKey struct {
	pollID uuid.UUID
	userID uuid.UUID
}

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes map[voteKey]poll.Vote
	calls int
	fail  error
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[voteKey]poll.Vote)}
}

func (r *fakeVoteRepo) Upsert(ctx context.Context, v *poll.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	key := voteKey{pollID: v.PollID, userID: v.UserID}
	if existing, ok := r.votes[key]; ok {
		existing.Option = v.Option
		existing.UpdatedAt = v.CreatedAt
		r.votes[key] = existing
		return nil
	}
	r.votes[key] = *v
	return nil
}

func (r *fakeVoteRepo) CountByOption(ctx context.Context, pollID uuid.UUID) (poll.VoteCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts poll.VoteCounts
	for key, v := range r.votes {
		if key.pollID != pollID {
			continue
		}
		switch v.Option {
		case poll.Option1:
			counts.Option1++
		case poll.Option2:
			counts.Option2++
		}
	}
	return counts, nil
}

func (r *fakeVoteRepo) GetUserVote(ctx context.Context, pollID, userID uuid.UUID) (poll.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[voteKey{pollID: pollID, userID: userID}]
	if !ok {
		return poll.Vote{}, pollroom_errors.ErrNotFound
	}
	return v, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []poll.Comment
}

func (r *fakeCommentRepo) Create(ctx context.Context, c *poll.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, *c)
	return nil
}

func (r *fakeCommentRepo) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]poll.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]poll.Comment, 0)
	for _, c := range r.comments {
		if c.PollID == pollID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs []job.EmailJob
	fail error
}

func (r *fakeJobRepo) Enqueue(ctx context.Context, j *job.EmailJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.jobs = append(r.jobs, *j)
	return nil
}

func (r *fakeJobRepo) GetPending(ctx context.Context, limit int) ([]job.EmailJob, error) {
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

func (r *fakeJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			r.jobs[i].Status = job.StatusCompleted
		}
	}
	return nil
}

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
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

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return pollroom_errors.ErrAlreadyExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, pollroom_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, pollroom_errors.ErrNotFound
}

type publishedEvent struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{channel: channel, payload: payload})
	return nil
}

func (p *fakePublisher) channels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.channel)
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	store       map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = data
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.store, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}
