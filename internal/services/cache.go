package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrCacheMiss is returned for absent keys and when caching is disabled
var ErrCacheMiss = errors.New("cache miss")

// SnapshotCache keeps JSON snapshots of standings and club dashboards in
// Redis. A nil client disables it. Redis calls go through a circuit breaker
// so an unavailable Redis degrades to recomputing snapshots.
type SnapshotCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration, threshold int, logger *logrus.Logger) *SnapshotCache {
	if threshold <= 0 {
		threshold = 3
	}
	settings := gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		// a miss is not a failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &SnapshotCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		ttl:     ttl,
		logger:  logger,
	}
}

// NewRedisClient parses a redis:// URL
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (s *SnapshotCache) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *SnapshotCache) Set(ctx context.Context, key string, value interface{}) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, key, data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (s *SnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	if !s.Enabled() {
		return ErrCacheMiss
	}
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal(res.([]byte), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

func (s *SnapshotCache) Delete(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// State reports the breaker state for health checks
func (s *SnapshotCache) State() string {
	if !s.Enabled() {
		return "disabled"
	}
	return s.breaker.State().String()
}

// Cache key generators
func StandingsCacheKey(seasonID string) string {
	return fmt.Sprintf("season:%s:standings", seasonID)
}

func DashboardCacheKey(seasonID string) string {
	return fmt.Sprintf("season:%s:club", seasonID)
}

// remember reads key into dest, or fills it with load and caches the result.
// Cache failures are logged and never surface to the caller.
func remember[T any](ctx context.Context, s *SnapshotCache, key string, load func() (T, error)) (T, error) {
	var cached T
	err := s.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache read failed")
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := s.Set(ctx, key, value); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache write failed")
	}
	return value, nil
}
