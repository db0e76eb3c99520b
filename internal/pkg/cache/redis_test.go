package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *RedisClient {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewRedisClient(&Config{Addr: addr, DB: 15})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestJSONRoundTripAndPrefixDelete(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	type page struct {
		Total string `json:"total"`
	}

	require.NoError(t, c.SetJSON(ctx, "test:search:a", page{Total: "3"}, time.Minute))
	require.NoError(t, c.SetJSON(ctx, "test:search:b", page{Total: "4"}, time.Minute))

	var got page
	hit, err := c.GetJSON(ctx, "test:search:a", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "3", got.Total)

	n, err := c.DeletePrefix(ctx, "test:search:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hit, err = c.GetJSON(ctx, "test:search:a", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
