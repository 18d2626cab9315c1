package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultRedisChannel = "ledger-events"

// RedisPublisher fans events out over Redis pub/sub.
type RedisPublisher struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to addr and verifies it with a ping.
func NewRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultRedisChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisPublisher{rdb: rdb, channel: channel}, nil
}

func (p *RedisPublisher) Name() string { return "redis" }

// Send implements Sink.
func (p *RedisPublisher) Send(ctx context.Context, evt Event) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

// Subscribe streams decoded events from the channel until ctx is done.
func (p *RedisPublisher) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer func() { _ = sub.Close() }()

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return nil
			}
			var evt Event
			if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
				continue
			}
			onEvent(evt)
		}
	}
}

// HealthPing implements health.HealthPinger.
func (p *RedisPublisher) HealthPing(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
