package realtime

import (
	"context"
	"encoding/json"
	"math"

	"github.com/google/uuid"

	"pollroom/internal/domain/poll"
	"pollroom/internal/events"
	"pollroom/pkg/logger"
)

// VoteCounter is the slice of the vote store the tally needs.
type VoteCounter interface {
	CountByOption(ctx context.Context, pollID uuid.UUID) (poll.VoteCounts, error)
}

// ResultsMessage is the frame pushed to every viewer of a poll.
type ResultsMessage struct {
	Type         string `json:"type"`
	PollID       string `json:"poll_id"`
	Option1Count int64  `json:"option1_count"`
	Option2Count int64  `json:"option2_count"`
	Option1Pct   int    `json:"option1_pct"`
	Option2Pct   int    `json:"option2_pct"`
	Total        int64  `json:"total"`
}

// Tally recomputes and broadcasts vote totals for a poll. It reacts to any
// vote change event with a full recount from the store rather than
// adjusting counters incrementally: recounting is self-healing under
// reordered or dropped notifications, at the cost of redundant reads.
type Tally struct {
	counter VoteCounter
	hub     *Hub
	log     *logger.Logger
}

func NewTally(counter VoteCounter, hub *Hub, log *logger.Logger) *Tally {
	return &Tally{counter: counter, hub: hub, log: log}
}

// HandleChange recounts the poll and pushes the result to its viewers.
// Which row changed, and how, is deliberately ignored.
func (t *Tally) HandleChange(ctx context.Context, pollID string) {
	msg, err := t.Snapshot(ctx, pollID)
	if err != nil {
		if t.log != nil {
			t.log.Warnf("tally recount failed for poll %s: %v", pollID, err)
		}
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	t.hub.Broadcast(events.VoteChannel(pollID), payload)
}

// Snapshot returns the current authoritative results frame for a poll.
// The websocket handler sends it as the first frame on connect so a viewer
// served from a stale page cache still starts from true counts.
func (t *Tally) Snapshot(ctx context.Context, pollID string) (ResultsMessage, error) {
	id, err := uuid.Parse(pollID)
	if err != nil {
		return ResultsMessage{}, err
	}
	counts, err := t.counter.CountByOption(ctx, id)
	if err != nil {
		return ResultsMessage{}, err
	}

	pct1, pct2 := Percentages(counts.Option1, counts.Option2)
	return ResultsMessage{
		Type:         "results",
		PollID:       pollID,
		Option1Count: counts.Option1,
		Option2Count: counts.Option2,
		Option1Pct:   pct1,
		Option2Pct:   pct2,
		Total:        counts.Total(),
	}, nil
}

// Percentages computes rounded per-option shares. A zero total yields 0
// for both options. Rounding may make the displayed pair sum to 99 or 101
// for asymmetric ratios; that is accepted.
func Percentages(count1, count2 int64) (int, int) {
	total := count1 + count2
	if total == 0 {
		return 0, 0
	}
	pct := func(n int64) int {
		return int(math.Round(float64(n) / float64(total) * 100))
	}
	return pct(count1), pct(count2)
}
