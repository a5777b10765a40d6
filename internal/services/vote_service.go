package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pollroom/internal/domain/job"
	"pollroom/internal/domain/poll"
	"pollroom/internal/events"
	"pollroom/internal/repository"
	pollroom_errors "pollroom/pkg/errors"
	"pollroom/pkg/logger"
)

type VoteService struct {
	votes     repository.VoteRepository
	notifier  *Notifier
	publisher events.Publisher
	cache     ViewCache
	log       *logger.Logger
}

func NewVoteService(
	votes repository.VoteRepository,
	notifier *Notifier,
	publisher events.Publisher,
	cache ViewCache,
	log *logger.Logger,
) *VoteService {
	return &VoteService{
		votes:     votes,
		notifier:  notifier,
		publisher: publisher,
		cache:     cache,
		log:       log,
	}
}

type VoteInput struct {
	PollID string
	Option int
}

// Validate is the fail-fast path: it must be called (and pass) before the
// identity provider or the store are contacted.
func (in VoteInput) Validate() error {
	if in.PollID == "" || !poll.ValidOption(in.Option) {
		return pollroom_errors.ErrInvalidInput
	}
	return nil
}

// SubmitVote upserts the caller's ballot for a poll. The unique
// (poll_id, user_id) constraint makes one-vote-per-user hold under
// concurrent double-submits; a revote overwrites the previous option and
// no history is kept.
func (s *VoteService) SubmitVote(ctx context.Context, userID uuid.UUID, in VoteInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	pollID, err := uuid.Parse(in.PollID)
	if err != nil {
		return pollroom_errors.ErrInvalidInput
	}

	v := poll.Vote{
		ID:        uuid.New(),
		PollID:    pollID,
		UserID:    userID,
		Option:    in.Option,
		CreatedAt: time.Now(),
	}
	if err := s.votes.Upsert(ctx, &v); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}

	s.notifier.Enqueue(ctx, job.TypeVote, pollID, userID, map[string]any{
		"option": in.Option,
	})

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, pollDetailKey(in.PollID)); err != nil && s.log != nil {
			s.log.Debugf("vote cache invalidation failed: %v", err)
		}
	}
	if s.publisher != nil {
		env := events.NewEnvelope(events.EventTypeVoteChanged, events.AggregateTypeVote, in.PollID, map[string]any{
			"poll_id": in.PollID,
		})
		if err := events.PublishEnvelope(ctx, s.publisher, events.VoteChannel(in.PollID), env); err != nil && s.log != nil {
			s.log.Debugf("vote event publish failed: %v", err)
		}
	}
	return nil
}

// Counts returns the authoritative per-option tallies for a poll.
func (s *VoteService) Counts(ctx context.Context, pollID uuid.UUID) (poll.VoteCounts, error) {
	return s.votes.CountByOption(ctx, pollID)
}
