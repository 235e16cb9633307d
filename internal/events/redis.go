package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/xelth-com/ecktables/internal/config"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying TableMoved payloads.
const Channel = "ecktables:table-moved"

// RedisBus publishes through Redis so every instance sees every move,
// including its own.
type RedisBus struct {
	handlers
	client *redis.Client
	pubsub *redis.PubSub
	log    *zap.Logger
	done   chan struct{}
}

// NewRedisBus connects and starts the subscription loop.
func NewRedisBus(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	pubsub := client.Subscribe(ctx, Channel)
	// Wait for the subscription confirmation so no early publish is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		client.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", Channel, err)
	}

	b := &RedisBus{client: client, pubsub: pubsub, log: log, done: make(chan struct{})}
	go b.run()
	return b, nil
}

func (b *RedisBus) run() {
	defer close(b.done)

	for msg := range b.pubsub.Channel() {
		ev, err := Decode([]byte(msg.Payload))
		if err != nil {
			b.log.Warn("dropping malformed table-moved event", zap.Error(err))
			continue
		}
		b.dispatch(ev)
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev TableMoved) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, Channel, payload).Err()
}

func (b *RedisBus) Subscribe(h Handler) { b.add(h) }

// Close stops the subscription loop and the client.
func (b *RedisBus) Close() error {
	err := b.pubsub.Close()
	<-b.done
	if cerr := b.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// Decode parses a published payload.
func Decode(payload []byte) (TableMoved, error) {
	var ev TableMoved
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decode table-moved: %w", err)
	}
	if ev.TableID == "" || ev.HallID == "" {
		return ev, fmt.Errorf("decode table-moved: missing table or hall id")
	}
	return ev, nil
}

// NewBus picks Redis when an address is configured and falls back to an
// in-process bus otherwise.
func NewBus(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (Bus, error) {
	if cfg.Addr == "" {
		log.Info("event bus: in-process")
		return NewLocalBus(), nil
	}
	b, err := NewRedisBus(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("event bus: redis", zap.String("addr", cfg.Addr), zap.String("channel", Channel))
	return b, nil
}
