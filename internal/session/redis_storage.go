package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps session keys in Redis so several terminals can share a login.
type RedisStorage struct {
	rdb     *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisStorage connects to the Redis instance at url and verifies it answers.
// Keys are stored as prefix+key and expire after ttl (zero keeps them forever).
func NewRedisStorage(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStorage{rdb: rdb, prefix: prefix, ttl: ttl, timeout: 3 * time.Second}, nil
}

func (s *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get implements Storage.
func (s *RedisStorage) Get(key string) (string, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set implements Storage.
func (s *RedisStorage) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements Storage.
func (s *RedisStorage) Delete(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
