package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(Config{
		Host:        mr.Host(),
		Port:        mr.Port(),
		PoolSize:    2,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	})
	require.NoError(t, err)
	defer Close(client)

	stats := GetClientStats(client)
	assert.Contains(t, stats, "hits")
	assert.Contains(t, stats, "timeouts")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := NewRedisClient(Config{Host: host, Port: port, DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
	assert.NoError(t, Close(nil))
}
