//go:build integration

package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/face-compare/internal/constants"
)

func setupRedis(t *testing.T) *redis.Client {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisStore_Identity(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	store, err := NewStore("redis", WithRedisClient(client), WithNamespace("http://localhost:8000"))
	require.NoError(t, err)

	first, err := NewIdentity(store).GetOrCreate(ctx)
	require.NoError(t, err)

	// A second identity on the same server sees the same token.
	other := NewRedisStore(client, "face-compare:", "http://localhost:8000")
	second, err := NewIdentity(other).GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := client.Get(ctx, "face-compare:http://localhost:8000:face_session_id").Result()
	require.NoError(t, err)
	assert.Equal(t, first, raw)

	// The store does not own the client.
	require.NoError(t, store.Close())
	assert.NoError(t, client.Ping(ctx).Err())
}

func TestRedisStore_SetIfAbsent(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	store := NewRedisStore(client, "test:", "ns")

	got, err := store.SetIfAbsent(ctx, "k", "first")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = store.SetIfAbsent(ctx, "k", "second")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SetIfAbsentReplacesEmptyValue(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	store := NewRedisStore(client, "test:", "ns")

	require.NoError(t, client.Set(ctx, "test:ns:k", "", 0).Err())

	got, err := store.SetIfAbsent(ctx, "k", "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	// Identity repairs an empty token instead of failing.
	require.NoError(t, client.Set(ctx, "test:ns:"+constants.SessionKey, "", 0).Err())
	token, err := NewIdentity(store).GetOrCreate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
