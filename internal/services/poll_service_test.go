package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pollroom_errors "pollroom/pkg/errors"
	"pollroom/pkg/logger"
)

func newPollService(t *testing.T) (*PollService, *fakePollRepo, *fakeVoteRepo, *fakeCommentRepo, *fakePublisher, *fakeCache) {
	t.Helper()
	polls := newFakePollRepo()
	votes := newFakeVoteRepo()
	comments := &fakeCommentRepo{}
	pub := &fakePublisher{}
	cache := newFakeCache()
	svc := NewPollService(polls, votes, comments, pub, cache, logger.NewNop())
	return svc, polls, votes, comments, pub, cache
}

func TestCreatePoll(t *testing.T) {
	svc, polls, _, _, pub, _ := newPollService(t)
	owner := uuid.New()

	p, err := svc.Create(context.Background(), owner, CreatePollInput{
		Question: "  Tabs or spaces?  ",
		Options:  []string{" Tabs ", "Spaces"},
	})
	require.NoError(t, err)

	stored, err := polls.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tabs or spaces?", stored.Question)
	assert.Equal(t, "Tabs", stored.Option1)
	assert.Equal(t, "Spaces", stored.Option2)
	assert.Equal(t, owner, stored.UserID)
	assert.Len(t, pub.channels(), 1)
}

func TestCreatePollTruncatesToTwoOptions(t *testing.T) {
	svc, _, _, _, _, _ := newPollService(t)

	p, err := svc.Create(context.Background(), uuid.New(), CreatePollInput{
		Question: "Best editor?",
		Options:  []string{"vim", "emacs", "nano", "ed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "vim", p.Option1)
	assert.Equal(t, "emacs", p.Option2)
}

func TestCreatePollSkipsBlankOptions(t *testing.T) {
	svc, _, _, _, _, _ := newPollService(t)

	p, err := svc.Create(context.Background(), uuid.New(), CreatePollInput{
		Question: "Coffee or tea?",
		Options:  []string{"", "  ", "Coffee", "Tea"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", p.Option1)
	assert.Equal(t, "Tea", p.Option2)
}

func TestCreatePollInvalidInputDoesNotTouchStore(t *testing.T) {
	cases := []struct {
		name string
		in   CreatePollInput
	}{
		{"empty question", CreatePollInput{Question: "", Options: []string{"a", "b"}}},
		{"one option", CreatePollInput{Question: "q", Options: []string{"a"}}},
		{"blank options", CreatePollInput{Question: "q", Options: []string{" ", ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, polls, _, _, pub, _ := newPollService(t)
			_, err := svc.Create(context.Background(), uuid.New(), tc.in)
			assert.ErrorIs(t, err, pollroom_errors.ErrInvalidInput)
			assert.Zero(t, polls.calls, "store must not be contacted on invalid input")
			assert.Empty(t, pub.channels())
		})
	}
}

func TestUpdatePollByOwner(t *testing.T) {
	svc, polls, _, _, _, _ := newPollService(t)
	owner := uuid.New()
	p, err := svc.Create(context.Background(), owner, CreatePollInput{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)

	err = svc.Update(context.Background(), owner, UpdatePollInput{
		ID: p.ID.String(), Question: "q2", Option1: "x", Option2: "y",
	})
	require.NoError(t, err)

	stored, err := polls.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "q2", stored.Question)
	assert.Equal(t, "x", stored.Option1)
	assert.Equal(t, "y", stored.Option2)
}

func TestUpdatePollByNonOwnerForbidden(t *testing.T) {
	svc, polls, _, _, _, _ := newPollService(t)
	owner := uuid.New()
	p, err := svc.Create(context.Background(), owner, CreatePollInput{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)

	err = svc.Update(context.Background(), uuid.New(), UpdatePollInput{
		ID: p.ID.String(), Question: "hijacked", Option1: "x", Option2: "y",
	})
	assert.ErrorIs(t, err, pollroom_errors.ErrForbidden)

	stored, err := polls.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "q", stored.Question, "non-owner update must not change the poll")
}

func TestUpdateMissingPoll(t *testing.T) {
	svc, _, _, _, _, _ := newPollService(t)
	err := svc.Update(context.Background(), uuid.New(), UpdatePollInput{
		ID: uuid.NewString(), Question: "q", Option1: "a", Option2: "b",
	})
	assert.ErrorIs(t, err, pollroom_errors.ErrNotFound)
}

func TestDeletePollEmptyIDSkipsStore(t *testing.T) {
	svc, polls, _, _, pub, _ := newPollService(t)

	err := svc.Delete(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Zero(t, polls.calls)
	assert.Empty(t, pub.channels())
}

func TestDeletePollMalformedID(t *testing.T) {
	svc, _, _, _, _, _ := newPollService(t)
	err := svc.Delete(context.Background(), uuid.New(), "not-a-uuid")
	assert.ErrorIs(t, err, pollroom_errors.ErrInvalidInput)
}

func TestDeletePollOwnedOnly(t *testing.T) {
	svc, polls, _, _, pub, _ := newPollService(t)
	owner := uuid.New()
	p, err := svc.Create(context.Background(), owner, CreatePollInput{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)

	// A stranger's delete affects nothing and is not an error.
	require.NoError(t, svc.Delete(context.Background(), uuid.New(), p.ID.String()))
	_, err = polls.GetByID(context.Background(), p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner, p.ID.String()))
	_, err = polls.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, pollroom_errors.ErrNotFound)
	// create + delete events, no event for the no-op delete
	assert.Len(t, pub.channels(), 2)
}

func TestListServedThroughCache(t *testing.T) {
	svc, polls, _, _, _, _ := newPollService(t)
	_, err := svc.Create(context.Background(), uuid.New(), CreatePollInput{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	before := polls.calls
	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, before, polls.calls, "second list should hit the cache")
}

func TestGetPollDetailPerCallerVote(t *testing.T) {
	svc, _, votes, _, _, _ := newPollService(t)
	owner := uuid.New()
	voter := uuid.New()
	p, err := svc.Create(context.Background(), owner, CreatePollInput{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)

	voteSvc := NewVoteService(votes, nil, nil, nil, logger.NewNop())
	require.NoError(t, voteSvc.SubmitVote(context.Background(), voter, VoteInput{
		PollID: p.ID.String(), Option: 2,
	}))

	// Anonymous caller: counts visible, no personal vote state.
	anon, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, anon.Voted)
	assert.Zero(t, anon.YourOption)
	assert.Equal(t, int64(1), anon.Counts.Option2)

	// The voter sees their own ballot even on a cache hit.
	mine, err := svc.Get(WithUser(context.Background(), voter), p.ID)
	require.NoError(t, err)
	assert.True(t, mine.Voted)
	assert.Equal(t, 2, mine.YourOption)

	// A different signed-in user is back to the ballot state.
	other, err := svc.Get(WithUser(context.Background(), uuid.New()), p.ID)
	require.NoError(t, err)
	assert.False(t, other.Voted)
}

func TestGetMissingPoll(t *testing.T) {
	svc, _, _, _, _, _ := newPollService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, pollroom_errors.ErrNotFound)
}
