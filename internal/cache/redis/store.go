// Package redis implements the shared cache tier on go-redis/v9. Values are
// stored as JSON strings with a TTL so several analyzer processes can reuse
// each other's upstream responses.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lv:"

// unlockLua deletes a lock only when the caller still owns it.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// ErrLockHeld is returned by Lock when another holder owns the key.
var ErrLockHeld = errors.New("redis: lock held")

// Config holds connection parameters.
type Config struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store is a JSON get/set store with advisory locks.
type Store struct {
	rdb      redis.UniversalClient
	unlockSc *redis.Script
	tokenFn  func() string
}

// Connect parses cfg.URL, dials and pings the server.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return NewStore(rdb), nil
}

// NewStore wraps an existing client.
func NewStore(rdb redis.UniversalClient) *Store {
	return &Store{
		rdb:      rdb,
		unlockSc: redis.NewScript(unlockLua),
		tokenFn:  func() string { return uuid.NewString() },
	}
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value at key for ttl.
func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Lock takes an advisory lock on key for ttl. The returned release func is
// safe to call more than once.
func (s *Store) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lk := keyPrefix + "lock:" + key
	token := s.tokenFn()

	ok, err := s.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true

		unlockCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.unlockSc.Run(unlockCtx, s.rdb, []string{lk}, token).Err()
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}
