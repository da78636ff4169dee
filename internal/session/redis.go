package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// setIfAbsentScript writes ARGV[1] unless KEYS[1] holds a non-empty value and
// returns the value stored afterwards.
var setIfAbsentScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current and current ~= '' then
	return current
end
redis.call('SET', KEYS[1], ARGV[1])
return ARGV[1]
`)

// RedisStore keeps session values in Redis so several hosts share one identity.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	namespace string
	owned     bool
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, prefix, namespace string) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		namespace: namespace,
	}
}

// DialRedisStore parses a redis:// URL and creates a store owning its client.
func DialRedisStore(rawURL, prefix, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s := NewRedisStore(redis.NewClient(opts), prefix, namespace)
	s.owned = true
	return s, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetIfAbsent implements Store. Values never expire.
func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	return setIfAbsentScript.Run(ctx, s.client, []string{s.key(key)}, value).Text()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// key builds "<prefix><namespace>:<key>".
func (s *RedisStore) key(key string) string {
	return s.prefix + s.namespace + ":" + key
}
