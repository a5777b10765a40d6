package realtime

import (
	"context"
	"time"

	"pollroom/internal/events"
	"pollroom/pkg/logger"
)

// Bridge consumes the Redis change feed and feeds the in-process fan-out.
// Vote events trigger a tally recount; everything else (presence syncs,
// poll metadata, comments) is rebroadcast verbatim on the matching hub
// channel. No ordering or exactly-once delivery is assumed from the feed.
type Bridge struct {
	subscriber events.Subscriber
	hub        *Hub
	tally      *Tally
	log        *logger.Logger
}

func NewBridge(subscriber events.Subscriber, hub *Hub, tally *Tally, log *logger.Logger) *Bridge {
	return &Bridge{subscriber: subscriber, hub: hub, tally: tally, log: log}
}

// Run blocks until ctx is cancelled, resubscribing after transient feed
// failures.
func (b *Bridge) Run(ctx context.Context) {
	for {
		err := b.subscriber.Subscribe(ctx, []string{events.AllPollChannels}, b.handle)
		if ctx.Err() != nil {
			return
		}
		if err != nil && b.log != nil {
			b.log.Warnf("change feed subscription lost, retrying: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (b *Bridge) handle(channel string, payload []byte) {
	pollID, isVotes, ok := events.PollIDFromChannel(channel)
	if !ok {
		return
	}

	if isVotes && b.tally != nil {
		// Recount regardless of what the event says happened.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		b.tally.HandleChange(ctx, pollID)
		cancel()
		return
	}

	b.hub.Broadcast(channel, payload)
}
