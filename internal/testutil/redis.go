package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/storyteller/internal/config"
	"github.com/cory-johannsen/storyteller/internal/storage/redis"
)

// NewRedisClient starts an in-memory Redis server and returns a client for it.
// Both are closed when the test ends.
//
// Postcondition: Returns a connected client and the server backing it.
func NewRedisClient(t *testing.T) (redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
