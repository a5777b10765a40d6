package events

import (
	"context"
	"encoding/json"
)

// Publisher pushes change-feed payloads to a channel. The Redis
// implementation lives in internal/redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscriber consumes a set of channel patterns until the context is
// cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

// PublishEnvelope marshals env and publishes it on channel.
func PublishEnvelope(ctx context.Context, p Publisher, channel string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.Publish(ctx, channel, data)
}
