// Package snapshot caches the latest raw odds payload per sport in Redis so
// the HTTP read path never blocks on the upstream API.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot reports that no snapshot is cached for the sport.
var ErrNoSnapshot = errors.New("no snapshot cached")

// defaultTTL bounds snapshot staleness: a sport that stops refreshing ages
// out rather than serving hours-old prices.
const defaultTTL = 10 * time.Minute

// RedisStore caches snapshots under odds:snapshot:<sport>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a snapshot store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    defaultTTL,
	}
}

// StoreSnapshot writes the latest raw payload for a sport.
func (s *RedisStore) StoreSnapshot(ctx context.Context, sportKey string, payload []byte) error {
	key := snapshotKey(sportKey)
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot returns the latest raw payload for a sport, or ErrNoSnapshot
// when none is cached.
func (s *RedisStore) LoadSnapshot(ctx context.Context, sportKey string) ([]byte, error) {
	key := snapshotKey(sportKey)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return payload, nil
}

func snapshotKey(sportKey string) string {
	return "odds:snapshot:" + sportKey
}
