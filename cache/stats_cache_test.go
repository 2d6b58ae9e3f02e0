package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dreamchain/events"
	"dreamchain/models"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping redis test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
			Labels: map[string]string{
				"test":    "dreamchain-cache",
				"cleanup": "auto",
			},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, fmt.Sprintf("redis://%s/0", endpoint))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func sampleStats() *models.PlatformStats {
	return &models.PlatformStats{
		TotalDreams:     4,
		TotalRaised:     decimal.RequireFromString("305.5"),
		ActiveDonors:    3,
		CompletedDreams: 1,
	}
}

func TestStatsCache_SetGetInvalidate(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	cache := NewStatsCache(client, time.Minute)

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	generation, err := cache.Generation(ctx)
	require.NoError(t, err)
	stored, err := cache.Set(ctx, sampleStats(), generation)
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(4), got.TotalDreams)
	assert.True(t, got.TotalRaised.Equal(decimal.RequireFromString("305.5")))
	assert.Equal(t, int64(3), got.ActiveDonors)

	ttl, err := client.TTL(ctx, statsKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Invalidate(ctx))
	_, ok = cache.Get(ctx)
	assert.False(t, ok)

	next, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, generation+1, next)
}

func TestStatsCache_SetSkippedAfterInvalidation(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	cache := NewStatsCache(client, time.Minute)

	// A reader takes the generation, then a donation commits and invalidates
	generation, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	stored, err := cache.Set(ctx, sampleStats(), generation)
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	current, err := cache.Generation(ctx)
	require.NoError(t, err)
	stored, err = cache.Set(ctx, sampleStats(), current)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestStatsCache_MalformedEntryIsAMiss(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	cache := NewStatsCache(client, time.Minute)

	require.NoError(t, client.Set(ctx, statsKey, "not json", time.Minute).Err())

	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestStatsCache_InvalidatedByDonationEvents(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	cache := NewStatsCache(client, time.Minute)

	bus := events.NewBus()
	cache.RegisterInvalidation(bus)

	stored, err := cache.Set(ctx, sampleStats(), 0)
	require.NoError(t, err)
	require.True(t, stored)
	bus.Emit(ctx, events.DonationRecordedEvent{DonationID: 1, DreamID: 1})

	assert.Eventually(t, func() bool {
		_, ok := cache.Get(ctx)
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}
