package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"marketfactory/internal/registry/models"
	"marketfactory/pkg/platform/sentinel"
)

// DefaultListKey is the Redis list the factory RPUSHes new markets onto.
const DefaultListKey = "marketfactory:markets"

// RedisStore reads the registry from a Redis list, index 0 being the first
// market created.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedis constructs a Redis-backed registry reader over key.
func NewRedis(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultListKey
	}
	return &RedisStore{client: client, key: key}
}

// Len returns LLEN of the list.
func (s *RedisStore) Len(ctx context.Context) (uint64, error) {
	n, err := s.client.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", s.key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return uint64(n), nil
}

// Get returns LINDEX key index; redis.Nil means the index is absent.
func (s *RedisStore) Get(ctx context.Context, index uint64) (models.MarketID, bool, error) {
	if index > math.MaxInt64 {
		return "", false, nil
	}
	id, err := s.client.LIndex(ctx, s.key, int64(index)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lindex %s %d: %w", s.key, index, err)
	}
	return models.MarketID(id), true, nil
}

// All returns the whole list with a single LRANGE.
func (s *RedisStore) All(ctx context.Context) ([]models.MarketID, error) {
	return s.lrange(ctx, 0, -1)
}

// Range returns [start, end) with a single LRANGE (whose stop is inclusive).
func (s *RedisStore) Range(ctx context.Context, start, end uint64) ([]models.MarketID, error) {
	if start > math.MaxInt64 || start >= end {
		return []models.MarketID{}, nil
	}
	stop := min(end-1, math.MaxInt64)
	return s.lrange(ctx, int64(start), int64(stop))
}

func (s *RedisStore) lrange(ctx context.Context, start, stop int64) ([]models.MarketID, error) {
	vals, err := s.client.LRange(ctx, s.key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", s.key, errors.Join(sentinel.ErrUnavailable, err))
	}
	ids := make([]models.MarketID, len(vals))
	for i, v := range vals {
		ids[i] = models.MarketID(v)
	}
	return ids, nil
}
