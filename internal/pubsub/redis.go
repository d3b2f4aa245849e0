// Package pubsub fans change events out to other processes sharing the same
// remote, so their read caches drop entries this process made stale.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xelth-com/maintdesk/internal/config"
	"github.com/xelth-com/maintdesk/internal/sync"
)

const publishTimeout = 2 * time.Second

// Invalidator publishes local change events on a Redis channel and evicts
// cache entries for events published by other processes
type Invalidator struct {
	client  *redis.Client
	channel string
	origin  string
	cache   *sync.ReadCache
	log     *zap.Logger
}

// NewClient builds a Redis client from configuration
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewInvalidator creates an invalidator bound to an engine's cache and origin
func NewInvalidator(client *redis.Client, channel string, engine *sync.SyncEngine, log *zap.Logger) *Invalidator {
	return &Invalidator{
		client:  client,
		channel: channel,
		origin:  engine.Origin(),
		cache:   engine.Cache(),
		log:     log.Named("pubsub"),
	}
}

// Notify publishes ev in the background
func (i *Invalidator) Notify(ev sync.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		i.log.Warn("⚠️  Failed to encode change event", zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := i.client.Publish(ctx, i.channel, payload).Err(); err != nil {
			i.log.Warn("⚠️  Failed to publish change event",
				zap.String("entity", string(ev.Entity)), zap.String("id", ev.ID), zap.Error(err))
		}
	}()
}

// Run subscribes to the channel and applies remote events until ctx ends
func (i *Invalidator) Run(ctx context.Context) error {
	sub := i.client.Subscribe(ctx, i.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.channel, err)
	}
	i.log.Info("📡 Listening for cache invalidations", zap.String("channel", i.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			i.handle(msg.Payload)
		}
	}
}

// handle applies one payload and reports whether it evicted anything
func (i *Invalidator) handle(payload string) bool {
	var ev sync.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		i.log.Warn("⚠️  Ignoring malformed change event", zap.Error(err))
		return false
	}
	if ev.Origin == i.origin || ev.Entity == "" {
		return false
	}

	removed := i.cache.InvalidatePrefix(ev.Entity)
	i.log.Debug("🧹 Cache invalidated by peer",
		zap.String("entity", string(ev.Entity)), zap.String("origin", ev.Origin), zap.Int("entries", removed))
	return removed > 0
}
