package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisKeyPrefix namespaces the registry key in a shared redis.
const redisKeyPrefix = "skillsync:"

// RedisStore keeps the registry as one JSON string value in redis.
type RedisStore struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL, key string, logger *zap.Logger) (*RedisStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis storage: no url configured")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("redis storage connected", zap.String("addr", opts.Addr))
	return &RedisStore{rdb: rdb, key: redisKeyPrefix + key, logger: logger}, nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (*Registry, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(), nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decode(data)
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, reg *Registry) error {
	data, err := encode(reg)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	s.logger.Debug("registry saved", zap.String("key", s.key), zap.Int("skills", reg.Len()))
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
