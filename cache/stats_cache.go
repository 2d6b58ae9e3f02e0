package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dreamchain/events"
	"dreamchain/models"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	statsKey      = "dreamchain:stats"
	generationKey = "dreamchain:stats:generation"
)

// StatsCache stores platform statistics in Redis with a TTL
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a cache backed by the given client
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Connect parses a redis URL and verifies the server is reachable
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return client, nil
}

// Get returns the cached stats; a miss or any redis failure reports false
func (c *StatsCache) Get(ctx context.Context) (*models.PlatformStats, bool) {
	data, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("Failed to read stats from cache")
		}
		return nil, false
	}

	var stats models.PlatformStats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.WithError(err).Warn("Discarding malformed cached stats")
		return nil, false
	}
	return &stats, true
}

// Generation returns the invalidation counter. Read it before computing
// stats and hand it back to Set.
func (c *StatsCache) Generation(ctx context.Context) (int64, error) {
	generation, err := readGeneration(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to read stats generation: %w", err)
	}
	return generation, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, r stringGetter) (int64, error) {
	generation, err := r.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// Set stores the stats for the configured TTL unless the cache was
// invalidated after generation was read. It reports whether it stored.
func (c *StatsCache) Set(ctx context.Context, stats *models.PlatformStats, generation int64) (bool, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return false, fmt.Errorf("failed to marshal stats: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey, data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, generationKey)

	// The generation moved between WATCH and EXEC
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to cache stats: %w", err)
	}
	return stored, nil
}

// Invalidate drops the cached stats and bumps the generation so in-flight
// readers do not write back figures computed before the change.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, statsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

// RegisterInvalidation drops the cached stats whenever funding figures change
func (c *StatsCache) RegisterInvalidation(bus *events.Bus) {
	handler := func(ctx context.Context, event events.Event) {
		if err := c.Invalidate(ctx); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Warn("Failed to invalidate stats cache")
		}
	}

	for _, eventType := range []events.EventType{
		events.EventTypeDonationRecorded,
		events.EventTypeDreamCompleted,
		events.EventTypeDreamCreated,
	} {
		bus.Subscribe(eventType, handler)
	}
}
