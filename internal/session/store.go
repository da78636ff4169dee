package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/kozaktomas/face-compare/internal/constants"
)

// Common errors for session storage.
var (
	ErrInvalidConfig      = errors.New("invalid session store configuration")
	ErrInvalidStoreType   = errors.New("invalid session store type")
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// Store is a durable key-value store holding session identity.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetIfAbsent stores value under key unless a non-empty value is already
	// present, and returns the value stored after the call.
	SetIfAbsent(ctx context.Context, key, value string) (string, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreOption is a functional option for configuring a session store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	namespace   string
	path        string
	redisClient *redis.Client
	redisURL    string
	redisPrefix string
}

// WithNamespace scopes every key to ns, typically the API origin.
func WithNamespace(ns string) StoreOption {
	return func(c *storeConfig) {
		c.namespace = ns
	}
}

// WithPath sets the file location for the file and sqlite stores.
func WithPath(path string) StoreOption {
	return func(c *storeConfig) {
		c.path = path
	}
}

// WithRedisClient sets the Redis client for the Redis store. The store does
// not close a client it did not create.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisURL makes the Redis store dial its own client.
func WithRedisURL(url string) StoreOption {
	return func(c *storeConfig) {
		c.redisURL = url
	}
}

// WithRedisPrefix overrides the key prefix of the Redis store.
func WithRedisPrefix(prefix string) StoreOption {
	return func(c *storeConfig) {
		c.redisPrefix = prefix
	}
}

// NewStore creates a Store of the given type: "file", "memory", "redis" or
// "sqlite". File and sqlite stores require WithPath; the redis store requires
// WithRedisClient or WithRedisURL.
func NewStore(storeType string, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{redisPrefix: constants.SessionRedisPrefix}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case constants.SessionStoreMemory:
		return NewMemoryStore(cfg.namespace), nil

	case constants.SessionStoreFile:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return NewFileStore(cfg.path, cfg.namespace), nil

	case constants.SessionStoreSQLite:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return OpenSQLiteStore(cfg.path, cfg.namespace)

	case constants.SessionStoreRedis:
		if cfg.redisClient != nil {
			return NewRedisStore(cfg.redisClient, cfg.redisPrefix, cfg.namespace), nil
		}
		if cfg.redisURL == "" {
			return nil, ErrInvalidConfig
		}
		return DialRedisStore(cfg.redisURL, cfg.redisPrefix, cfg.namespace)

	default:
		return nil, ErrInvalidStoreType
	}
}
