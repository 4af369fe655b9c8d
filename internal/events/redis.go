package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel events are published on.
const DefaultChannel = "najdeno:events"

// publishTimeout bounds a single publish.
const publishTimeout = 3 * time.Second

// Publisher is the subset of *redis.Client used by RedisPublisher.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes events as JSON on a Redis pub/sub channel so an
// external notification layer can render them. Publishing happens in the
// background; failures are logged and dropped.
type RedisPublisher struct {
	Client  Publisher
	Channel string

	// Sync publishes on the caller's goroutine. Used by tests.
	Sync bool
}

func (p *RedisPublisher) Emit(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to encode event", "event", e.Name, "error", err)
		return
	}

	channel := p.Channel
	if channel == "" {
		channel = DefaultChannel
	}

	publish := func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.Client.Publish(pctx, channel, payload).Err(); err != nil {
			slog.Warn("failed to publish event", "event", e.Name, "channel", channel, "error", err)
		}
	}

	if p.Sync {
		publish()
		return
	}
	go publish()
}
