// Package presence tracks which players hold a live gateway connection. Each connection refreshes
// a key with a TTL; the first refresh marks the player online and a periodic sweep marks players
// whose key expired offline.
package presence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces heartbeat keys.
const KeyPrefix = "poker:presence:"

// Store holds heartbeat keys with a TTL.
type Store interface {
	// Refresh sets key with ttl and reports whether it already existed.
	Refresh(ctx context.Context, key string, ttl time.Duration) (existed bool, err error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Key returns the heartbeat key for a player.
func Key(playerID string) string {
	return KeyPrefix + playerID
}

// RedisStore is a Store backed by Redis string keys.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient opens a client for addr. A redis:// URL is parsed, anything else is taken as host:port.
func NewRedisClient(addr string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, DB: db}), nil
}

func (s *RedisStore) Refresh(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	// SET ... GET returns the previous value, or redis.Nil when the key was absent
	_, err := s.client.SetArgs(ctx, key, "1", redis.SetArgs{TTL: ttl, Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("refresh presence key: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check presence key: %w", err)
	}
	return n > 0, nil
}
