package domain

import (
	"context"
	"time"
)

// SignalBus is the publish/subscribe fabric for observable events. Pub/Sub
// delivery is ephemeral; streams give indexers a durable, ordered replay.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// StreamMessage is one durable bus entry.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// RateLimiter throttles bid submissions per caller.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under a sliding
	// window of limit requests per window. Permitted requests are counted.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
