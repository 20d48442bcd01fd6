package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/blockview/internal/connectors/logger"
)

func TestClaims_key(t *testing.T) {
	c := NewClaims(nil, "blockview.blocks", time.Minute)
	assert.Equal(t, "blockview.blocks:0xabc", c.key("0xabc"))
}

func TestClaims_ClaimUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	claims := NewClaims(client, "test", time.Minute)

	ok, err := claims.Claim(context.Background(), "0xabc")
	require.Error(t, err)
	assert.False(t, ok)

	require.Error(t, claims.Release(context.Background(), "0xabc"))
}

func TestNewRedisClient_PingFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, "127.0.0.1:1", logger.Discard(), 2)
	require.Error(t, err)
	require.NotNil(t, client)
	assert.Contains(t, err.Error(), "redis ping 127.0.0.1:1")
	_ = client.Close()
}
