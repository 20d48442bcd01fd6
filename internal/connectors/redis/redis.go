package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

func NewRedisClient(ctx context.Context, addr string, log *slog.Logger, poolSize int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		MaxRetries:      5,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		PoolSize:     poolSize,
		MinIdleConns: poolSize / 10,
		PoolTimeout:  1500 * time.Millisecond,

		ConnMaxIdleTime: 5 * time.Minute,

		OnConnect: func(_ context.Context, _ *redis.Conn) error {
			log.Info("redis: connected", slog.String("addr", addr))
			return nil
		},
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return client, nil
}

// Claims marks keys as taken for a while so that only one replica acts on them.
type Claims struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewClaims(client *redis.Client, prefix string, ttl time.Duration) *Claims {
	return &Claims{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Claim reports whether the caller is the first to claim id within the ttl.
func (c *Claims) Claim(ctx context.Context, id string) (bool, error) {
	return c.client.SetNX(ctx, c.key(id), 1, c.ttl).Result()
}

// Release drops a claim so the id can be claimed again.
func (c *Claims) Release(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *Claims) key(id string) string {
	return c.prefix + ":" + id
}
