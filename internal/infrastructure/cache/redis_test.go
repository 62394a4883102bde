package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelens/backend/internal/domain"
)

func TestNewRedisCache_RequiresURL(t *testing.T) {
	c, err := NewRedisCache("", "tl:")

	assert.Nil(t, c)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestNewRedisCache_RejectsMalformedURL(t *testing.T) {
	c, err := NewRedisCache("http://not-redis", "tl:")

	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	redisURL := os.Getenv("TASTELENS_TEST_REDIS_URL")
	if testing.Short() || redisURL == "" {
		t.Skip("set TASTELENS_TEST_REDIS_URL to run redis integration tests")
	}

	c, err := NewRedisCache(redisURL, "tastelens-test:")
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	tags := domain.TagSet{Context: []string{"saas"}}
	require.NoError(t, c.Set(ctx, "tags:1", tags, time.Minute))

	exists, err := c.Exists(ctx, "tags:1")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := c.Get(ctx, "tags:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"context": []interface{}{"saas"}}, got)

	require.NoError(t, c.Delete(ctx, "tags:1"))
	_, err = c.Get(ctx, "tags:1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
