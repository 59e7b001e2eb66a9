// Package dedup short-circuits duplicate webhook deliveries. Providers retry
// aggressively, so receivers check whether an event key was already processed
// before touching the order.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// defaultTTL bounds how long a processed event key is remembered. Provider
// retry windows are far shorter than a day.
const defaultTTL = 24 * time.Hour

// Store records processed webhook event keys.
type Store interface {
	// FirstDelivery reports whether key has not been seen before, marking it
	// seen. On store failure it fails open (returns true): reprocessing an
	// idempotent event is safer than dropping one.
	FirstDelivery(ctx context.Context, key string) bool

	// Forget drops key so the next delivery counts as first again. Callers
	// use it when processing failed after the key was already marked.
	Forget(ctx context.Context, key string)

	Close() error
}

// redisStore backs Store with Redis SETNX, shared across replicas.
type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, addr string, logger zerolog.Logger) (Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &redisStore{
		client: client,
		logger: logger.With().Str("dedup", "redis").Logger(),
	}, nil
}

func (s *redisStore) FirstDelivery(ctx context.Context, key string) bool {
	first, err := s.client.SetNX(ctx, "webhook:"+key, 1, defaultTTL).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dedup check failed, processing event anyway")
		return true
	}
	return first
}

func (s *redisStore) Forget(ctx context.Context, key string) {
	if err := s.client.Del(ctx, "webhook:"+key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to release dedup key")
	}
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

// memoryStore is the single-process fallback used when Redis is disabled.
type memoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryStore creates an in-process dedup store.
func NewMemoryStore() Store {
	return &memoryStore{
		seen: make(map[string]time.Time),
		ttl:  defaultTTL,
	}
}

func (s *memoryStore) FirstDelivery(_ context.Context, key string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false
	}

	// Opportunistic sweep keeps the map from growing unbounded.
	for k, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, k)
		}
	}

	s.seen[key] = now.Add(s.ttl)
	return true
}

func (s *memoryStore) Forget(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, key)
}

func (s *memoryStore) Close() error {
	return nil
}
