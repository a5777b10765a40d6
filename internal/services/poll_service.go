package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pollroom/internal/domain/poll"
	"pollroom/internal/events"
	"pollroom/internal/repository"
	pollroom_errors "pollroom/pkg/errors"
	"pollroom/pkg/logger"
)

// ViewCache is the slice of the Redis view cache the services need.
// Implementations may be nil-tolerant fakes in tests.
type ViewCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Cache keys mirrored from internal/redis to keep services decoupled from
// the concrete store.
func pollListKey() string            { return "view:polls" }
func pollDetailKey(id string) string { return "view:poll:" + id }

type PollService struct {
	polls     repository.PollRepository
	votes     repository.VoteRepository
	comments  repository.CommentRepository
	publisher events.Publisher
	cache     ViewCache
	log       *logger.Logger
}

func NewPollService(
	polls repository.PollRepository,
	votes repository.VoteRepository,
	comments repository.CommentRepository,
	publisher events.Publisher,
	cache ViewCache,
	log *logger.Logger,
) *PollService {
	return &PollService{
		polls:     polls,
		votes:     votes,
		comments:  comments,
		publisher: publisher,
		cache:     cache,
		log:       log,
	}
}

type CreatePollInput struct {
	Question string
	Options  []string
}

// Normalize trims the question and drops empty option strings.
func (in CreatePollInput) Normalize() CreatePollInput {
	out := CreatePollInput{Question: strings.TrimSpace(in.Question)}
	for _, o := range in.Options {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			out.Options = append(out.Options, trimmed)
		}
	}
	return out
}

// Validate runs the cheap checks that must pass before any store or
// identity work happens.
func (in CreatePollInput) Validate() error {
	n := in.Normalize()
	if n.Question == "" || len(n.Options) < 2 {
		return pollroom_errors.ErrInvalidInput
	}
	return nil
}

// Create persists a new poll owned by userID. Forms may submit more than
// two options; only the first two non-empty ones are kept. That truncation
// is the product's two-option constraint, not an accident.
func (s *PollService) Create(ctx context.Context, userID uuid.UUID, in CreatePollInput) (poll.Poll, error) {
	n := in.Normalize()
	if err := n.Validate(); err != nil {
		return poll.Poll{}, err
	}

	p := poll.Poll{
		ID:        uuid.New(),
		Question:  n.Question,
		Option1:   n.Options[0],
		Option2:   n.Options[1],
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.polls.Create(ctx, &p); err != nil {
		return poll.Poll{}, fmt.Errorf("create poll: %w", err)
	}

	s.invalidate(ctx, pollListKey())
	s.publish(ctx, events.PollChannel(p.ID.String()),
		events.NewEnvelope(events.EventTypePollCreated, events.AggregateTypePoll, p.ID.String(), p))
	return p, nil
}

type UpdatePollInput struct {
	ID       string
	Question string
	Option1  string
	Option2  string
}

func (in UpdatePollInput) Validate() error {
	if in.ID == "" ||
		strings.TrimSpace(in.Question) == "" ||
		strings.TrimSpace(in.Option1) == "" ||
		strings.TrimSpace(in.Option2) == "" {
		return pollroom_errors.ErrInvalidInput
	}
	return nil
}

// Update edits a poll's question and options. Ownership is checked up
// front and a non-owner gets ErrForbidden; the UPDATE predicate stays
// owner-scoped as well, so even a racing owner change cannot widen it.
func (s *PollService) Update(ctx context.Context, userID uuid.UUID, in UpdatePollInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return pollroom_errors.ErrInvalidInput
	}

	existing, err := s.polls.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return pollroom_errors.ErrForbidden
	}

	updated := existing
	updated.Question = strings.TrimSpace(in.Question)
	updated.Option1 = strings.TrimSpace(in.Option1)
	updated.Option2 = strings.TrimSpace(in.Option2)

	affected, err := s.polls.UpdateOwned(ctx, userID, updated)
	if err != nil {
		return fmt.Errorf("update poll: %w", err)
	}
	if affected == 0 {
		return pollroom_errors.ErrNotFound
	}

	s.invalidate(ctx, pollListKey(), pollDetailKey(in.ID))
	s.publish(ctx, events.PollChannel(in.ID),
		events.NewEnvelope(events.EventTypePollUpdated, events.AggregateTypePoll, in.ID, updated))
	return nil
}

// Delete removes a poll owned by the caller. An empty pollID returns
// immediately without touching the store. Deleting a missing or non-owned
// poll affects zero rows and is not an error.
func (s *PollService) Delete(ctx context.Context, userID uuid.UUID, pollID string) error {
	if pollID == "" {
		return nil
	}
	id, err := uuid.Parse(pollID)
	if err != nil {
		return pollroom_errors.ErrInvalidInput
	}

	affected, err := s.polls.DeleteOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if affected > 0 {
		s.invalidate(ctx, pollListKey(), pollDetailKey(pollID))
		s.publish(ctx, events.PollChannel(pollID),
			events.NewEnvelope(events.EventTypePollDeleted, events.AggregateTypePoll, pollID, nil))
	}
	return nil
}

// List returns all polls newest first, served through the view cache.
func (s *PollService) List(ctx context.Context) ([]poll.Poll, error) {
	var cached []poll.Poll
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, pollListKey(), &cached); err == nil && hit {
			return cached, nil
		}
	}

	polls, err := s.polls.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, pollListKey(), polls); err != nil && s.log != nil {
			s.log.Debugf("poll list cache set failed: %v", err)
		}
	}
	return polls, nil
}

// PollDetail is the data backing the poll page.
type PollDetail struct {
	Poll     poll.Poll       `json:"poll"`
	Counts   poll.VoteCounts `json:"counts"`
	Comments []poll.Comment  `json:"comments"`

	// Per-caller state, never cached.
	Voted      bool `json:"voted"`
	YourOption int  `json:"your_option,omitempty"`
}

// Get assembles the poll detail. The poll, counts and comments are cached;
// the caller's own vote is looked up fresh so an anonymous viewer sees the
// ballot and a voter sees the thank-you state.
func (s *PollService) Get(ctx context.Context, pollID uuid.UUID) (PollDetail, error) {
	var detail PollDetail
	key := pollDetailKey(pollID.String())

	hit := false
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &detail); err == nil && ok {
			hit = true
		}
	}

	if !hit {
		p, err := s.polls.GetByID(ctx, pollID)
		if err != nil {
			return PollDetail{}, err
		}
		counts, err := s.votes.CountByOption(ctx, pollID)
		if err != nil {
			return PollDetail{}, err
		}
		comments, err := s.comments.ListByPoll(ctx, pollID)
		if err != nil {
			return PollDetail{}, err
		}
		detail = PollDetail{Poll: p, Counts: counts, Comments: comments}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, detail); err != nil && s.log != nil {
				s.log.Debugf("poll detail cache set failed: %v", err)
			}
		}
	}

	detail.Voted = false
	detail.YourOption = 0
	if userID, ok := CurrentUser(ctx); ok {
		if v, err := s.votes.GetUserVote(ctx, pollID, userID); err == nil {
			detail.Voted = true
			detail.YourOption = v.Option
		}
	}
	return detail, nil
}

func (s *PollService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil && s.log != nil {
		s.log.Debugf("view cache invalidation failed: %v", err)
	}
}

func (s *PollService) publish(ctx context.Context, channel string, env events.Envelope) {
	if s.publisher == nil {
		return
	}
	if err := events.PublishEnvelope(ctx, s.publisher, channel, env); err != nil && s.log != nil {
		s.log.Debugf("event publish failed on %s: %v", channel, err)
	}
}
