package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync/core/models"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the redis connection settings for the redis driver.
type RedisConfig struct {
	// Host is the redis host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the redis port.
	Port int `mapstructure:"port" default:"6379"`
	// Password is the redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the redis database number.
	DB int `mapstructure:"db" default:"0" validate:"gte=0"`
}

// NewRedisClient connects and pings redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps the document under one string key.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore returns a store for key.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Location() string {
	return "redis:" + s.key
}

func (s *RedisStore) Load(ctx context.Context) (map[string]models.Match, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]models.Match{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache key: %w", err)
	}
	return Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, entries map[string]models.Match) error {
	data, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}
	return nil
}
