package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestNewAndHealth(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	c, err := New(context.Background(), config.RedisConfig{URL: url, PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Health(context.Background()))
	c.RecordPoolStats()
	c.RecordPoolStats()
}
