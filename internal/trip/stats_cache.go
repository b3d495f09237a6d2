package trip

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// DefaultStatsTTL is how long a cached stats document stays valid.
const DefaultStatsTTL = time.Minute

// RedisStatsCache caches stats documents in Redis behind a circuit
// breaker. Every backend failure degrades to a miss so a down cache
// never takes statistics with it.
type RedisStatsCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

// NewRedisStatsCache creates a stats cache on the given Redis client.
// A non-positive ttl falls back to DefaultStatsTTL.
func NewRedisStatsCache(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *RedisStatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "stats-cache",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})
	return &RedisStatsCache{
		client:  client,
		ttl:     ttl,
		breaker: breaker,
		logger:  logger.With().Str("component", "stats_cache").Logger(),
	}
}

func statsKey(userID string) string {
	return "stats:" + userID
}

// Get returns the cached document for a user, or false on miss or any
// backend failure.
func (c *RedisStatsCache) Get(ctx context.Context, userID string) (*UserStats, bool) {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, statsKey(userID)).Bytes()
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Str("user_id", userID).Msg("stats cache read failed")
		}
		return nil, false
	}

	var stats UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("stats cache entry corrupt, dropping")
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return &stats, true
}

// Set stores the document. Failures are logged and ignored.
func (c *RedisStatsCache) Set(ctx context.Context, userID string, stats *UserStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, statsKey(userID), raw, c.ttl).Err()
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("user_id", userID).Msg("stats cache write failed")
	}
}

// Invalidate drops the cached document for a user.
func (c *RedisStatsCache) Invalidate(ctx context.Context, userID string) {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, statsKey(userID)).Err()
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("user_id", userID).Msg("stats cache invalidate failed")
	}
}

var _ StatsCache = (*RedisStatsCache)(nil)
