package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// New builds the cache selected by cfg.Driver: "memory", "redis" or "layered".
func New(cfg Config) (Service, error) {
	memOpts := []MemoryOption{WithMemoryMaxSize(cfg.MemoryMaxSize)}
	redisOpts := []RedisOption{
		WithRedisAddr(cfg.Redis.Addr),
		WithRedisPassword(cfg.Redis.Password),
		WithRedisDB(cfg.Redis.DB),
		WithRedisPrefix(cfg.Redis.Prefix),
	}

	switch cfg.Driver {
	case "", "memory":
		return NewMemoryCache(memOpts...), nil
	case "redis":
		return NewRedisCache(redisOpts...)
	case "layered":
		rc, err := NewRedisCache(redisOpts...)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(rc, WithLayeredMemorySize(cfg.MemoryMaxSize)), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(value)
	}
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *string:
		*d = string(data)
		return nil
	case *[]byte:
		*d = append((*d)[:0], data...)
		return nil
	default:
		return json.Unmarshal(data, dest)
	}
}
