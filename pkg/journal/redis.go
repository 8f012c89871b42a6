package journal

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "navgraph:journal"

// Redis appends entries to a Redis list.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to the Redis server at addr and verifies the connection.
func NewRedis(ctx context.Context, addr, key string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisClient(client, key), nil
}

// NewRedisClient uses an existing client. The journal takes ownership and
// closes it on Close.
func NewRedisClient(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Append pushes e onto the list.
func (r *Redis) Append(ctx context.Context, e Entry) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		return redisRetryable(r.client.RPush(ctx, r.key, data).Err())
	})
}

// Entries reads the whole list.
func (r *Redis) Entries(ctx context.Context, session string) ([]Entry, error) {
	var raw []string
	err := RetryWithBackoff(ctx, func() error {
		var err error
		raw, err = r.client.LRange(ctx, r.key, 0, -1).Result()
		return redisRetryable(err)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(raw))
	for _, s := range raw {
		e, err := decode([]byte(s))
		if err != nil {
			continue
		}
		if keep(e, session) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// redisRetryable marks network failures as retryable.
func redisRetryable(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

var _ Journal = (*Redis)(nil)
