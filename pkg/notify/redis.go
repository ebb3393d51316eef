package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/chainsafe/primary-sale-minter/pkg/config"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// NewRedisClient creates a go-redis client from cfg and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisStream appends notifications to a Redis stream. Entries carry the
// event sequence number so consumers can detect gaps and catch up from the
// event log.
type RedisStream struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisStream creates a stream publisher. maxLen caps the stream length
// approximately; zero leaves it unbounded.
func NewRedisStream(client redis.Cmdable, stream string, maxLen int64) *RedisStream {
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStream) Publish(ctx context.Context, evt *sale.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":      evt.ID.String(),
			"seq":     strconv.FormatUint(evt.Seq, 10),
			"kind":    string(evt.Kind),
			"payload": string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// Health pings the underlying client.
func (p *RedisStream) Health(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
