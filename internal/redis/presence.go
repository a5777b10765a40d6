package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pollroom/internal/events"
)

// PresenceStore tracks which connections are currently viewing a poll.
// Each open connection registers under a random per-connection key whose
// value is the viewer's user id (or "anon"). Membership lives in one Redis
// hash per poll with a TTL refreshed on heartbeat, so crashed servers
// cannot leak viewers forever.
type PresenceStore struct {
	client    *goredis.Client
	publisher *Publisher
	ttl       time.Duration
}

const presenceKeyPrefix = "presence:poll:"

// AnonymousUser is tracked for viewers without a session.
const AnonymousUser = "anon"

func NewPresenceStore(client *goredis.Client, publisher *Publisher, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 2 * time.Minute
	}
	return &PresenceStore{
		client:    client,
		publisher: publisher,
		ttl:       ttl,
	}
}

// Join registers a connection as viewing the poll and publishes a fresh
// full-membership snapshot.
func (p *PresenceStore) Join(ctx context.Context, pollID, connKey, userID string) error {
	if userID == "" {
		userID = AnonymousUser
	}
	key := presenceKeyPrefix + pollID

	pipe := p.client.Pipeline()
	pipe.HSet(ctx, key, connKey, userID)
	pipe.Expire(ctx, key, p.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return p.publishSync(ctx, pollID)
}

// Leave removes a connection and publishes the resulting snapshot.
func (p *PresenceStore) Leave(ctx context.Context, pollID, connKey string) error {
	key := presenceKeyPrefix + pollID
	if err := p.client.HDel(ctx, key, connKey).Err(); err != nil {
		return err
	}
	return p.publishSync(ctx, pollID)
}

// Heartbeat refreshes the membership TTL for a poll the connection is
// still viewing.
func (p *PresenceStore) Heartbeat(ctx context.Context, pollID string) error {
	return p.client.Expire(ctx, presenceKeyPrefix+pollID, p.ttl).Err()
}

// Snapshot returns the full membership of a poll: connection key -> user id.
func (p *PresenceStore) Snapshot(ctx context.Context, pollID string) (map[string]string, error) {
	return p.client.HGetAll(ctx, presenceKeyPrefix+pollID).Result()
}

// SyncPayload is the wire payload of a presence.sync event. Consumers
// replace their state with it wholesale; there are no join/leave deltas.
type SyncPayload struct {
	PollID  string            `json:"poll_id"`
	Members map[string]string `json:"members"`
	Viewers int               `json:"viewers"`
}

// DistinctViewers counts distinct user ids in a membership snapshot.
// Multiple tabs of the same signed-in user count once; every anonymous
// connection carries the same placeholder id and also counts once.
func DistinctViewers(members map[string]string) int {
	seen := make(map[string]struct{}, len(members))
	for _, userID := range members {
		seen[userID] = struct{}{}
	}
	return len(seen)
}

func (p *PresenceStore) publishSync(ctx context.Context, pollID string) error {
	if p.publisher == nil {
		return nil
	}

	members, err := p.Snapshot(ctx, pollID)
	if err != nil {
		return err
	}

	env := events.NewEnvelope(events.EventTypePresenceSync, events.AggregateTypePresence, pollID, SyncPayload{
		PollID:  pollID,
		Members: members,
		Viewers: DistinctViewers(members),
	})
	return events.PublishEnvelope(ctx, p.publisher, events.PresenceChannel(pollID), env)
}
