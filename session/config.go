package session

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend names understood by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr       string `json:"addr,omitempty"`
	Password   string `json:"password,omitempty"`
	DB         int    `json:"db,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"` // 0 keeps histories forever
}

// Config holds session store initialization parameters.
type Config struct {
	Backend string      `json:"backend,omitempty"` // memory (default), redis, or file
	Path    string      `json:"path,omitempty"`    // file backend root directory
	Redis   RedisConfig `json:"redis"`
}

// DefaultConfig returns the default session configuration: the ephemeral
// in-process store.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.Redis.Addr != "" {
		c.Redis.Addr = source.Redis.Addr
	}
	if source.Redis.Password != "" {
		c.Redis.Password = source.Redis.Password
	}
	if source.Redis.DB != 0 {
		c.Redis.DB = source.Redis.DB
	}
	if source.Redis.TTLSeconds != 0 {
		c.Redis.TTLSeconds = source.Redis.TTLSeconds
	}
}

// New creates a Store from configuration, selecting the backend by name.
func New(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil

	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis backend requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second), nil

	case BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file backend requires a path")
		}
		return NewFileStore(cfg.Path), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
