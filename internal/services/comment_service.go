package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pollroom/internal/domain/job"
	"pollroom/internal/domain/poll"
	"pollroom/internal/events"
	"pollroom/internal/repository"
	pollroom_errors "pollroom/pkg/errors"
	"pollroom/pkg/logger"
)

type CommentService struct {
	comments  repository.CommentRepository
	notifier  *Notifier
	publisher events.Publisher
	cache     ViewCache
	log       *logger.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	notifier *Notifier,
	publisher events.Publisher,
	cache ViewCache,
	log *logger.Logger,
) *CommentService {
	return &CommentService{
		comments:  comments,
		notifier:  notifier,
		publisher: publisher,
		cache:     cache,
		log:       log,
	}
}

type CommentInput struct {
	PollID  string
	Content string
}

func (in CommentInput) Validate() error {
	if in.PollID == "" || strings.TrimSpace(in.Content) == "" {
		return pollroom_errors.ErrInvalidInput
	}
	return nil
}

// CreateComment appends a comment to a poll. Comments have no edit or
// delete; authorship gates nothing at read time.
func (s *CommentService) CreateComment(ctx context.Context, userID uuid.UUID, in CommentInput) (poll.Comment, error) {
	if err := in.Validate(); err != nil {
		return poll.Comment{}, err
	}
	pollID, err := uuid.Parse(in.PollID)
	if err != nil {
		return poll.Comment{}, pollroom_errors.ErrInvalidInput
	}

	c := poll.Comment{
		ID:        uuid.New(),
		PollID:    pollID,
		UserID:    userID,
		Content:   strings.TrimSpace(in.Content),
		CreatedAt: time.Now(),
	}
	if err := s.comments.Create(ctx, &c); err != nil {
		return poll.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	s.notifier.Enqueue(ctx, job.TypeComment, pollID, userID, map[string]any{
		"comment_id": c.ID.String(),
	})

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, pollDetailKey(in.PollID)); err != nil && s.log != nil {
			s.log.Debugf("comment cache invalidation failed: %v", err)
		}
	}
	if s.publisher != nil {
		env := events.NewEnvelope(events.EventTypeCommentCreated, events.AggregateTypeComment, c.ID.String(), c)
		if err := events.PublishEnvelope(ctx, s.publisher, events.PollChannel(in.PollID), env); err != nil && s.log != nil {
			s.log.Debugf("comment event publish failed: %v", err)
		}
	}
	return c, nil
}
