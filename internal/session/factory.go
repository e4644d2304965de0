package session

import (
	"fmt"
	"time"
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 2 * time.Hour

// Config selects and configures a store backend.
type Config struct {
	Backend     string // memory (default) or redis
	TTL         time.Duration
	RedisURL    string
	RedisPrefix string
}

// NewStore creates the store selected by cfg.Backend.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.TTL), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis session backend requires a redis URL")
		}
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = "clipforge:"
		}
		return NewRedisStore(cfg.RedisURL, prefix, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}
