package fetch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/cache"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/logger"
	"github.com/fd1az/liquidity-vector/internal/retry"
)

const meterName = "github.com/fd1az/liquidity-vector/internal/fetch"

// SharedStore is an optional second cache tier shared between processes.
type SharedStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Locker is implemented by shared stores that can elect one loader per key.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// CacheConfig sizes the in-process cache of a fetcher.
type CacheConfig struct {
	Name     string
	Capacity int
	TTL      time.Duration
}

// Loader fetches a value from the upstream.
type Loader[T any] func(ctx context.Context) (T, error)

// Fetcher runs cache -> shared tier -> breaker (with retries) -> populate.
type Fetcher[T any] struct {
	cfg      CacheConfig
	cache    *cache.Cache[string, T]
	breaker  *circuitbreaker.Breaker
	policy   retry.Policy
	shared   SharedStore
	lockWait time.Duration
	log      logger.LoggerInterface
	fetches  metric.Int64Counter
}

// Option configures a Fetcher.
type Option func(*settings)

type settings struct {
	policy    retry.Policy
	shared    SharedStore
	lockWait  time.Duration
	log       logger.LoggerInterface
	cacheOpts []cache.Option
}

// WithRetry applies p around every breaker call.
func WithRetry(p retry.Policy) Option {
	return func(s *settings) { s.policy = p }
}

// WithShared adds a shared cache tier. A nil store is ignored.
func WithShared(store SharedStore) Option {
	return func(s *settings) { s.shared = store }
}

// WithLogger sets the logger used for shared tier errors.
func WithLogger(log logger.LoggerInterface) Option {
	return func(s *settings) { s.log = log }
}

// WithCacheOptions passes options to the in-process cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, opts...) }
}

// New builds a fetcher guarded by breaker.
func New[T any](cfg CacheConfig, breaker *circuitbreaker.Breaker, opts ...Option) *Fetcher[T] {
	s := settings{
		policy:   retry.None(),
		lockWait: 250 * time.Millisecond,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	counter, err := otel.Meter(meterName).Int64Counter(
		"upstream_fetches_total",
		metric.WithDescription("Upstream fetches by cache kind and provenance"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		counter = noop.Int64Counter{}
	}

	return &Fetcher[T]{
		cfg:      cfg,
		cache:    cache.New[string, T](cfg.Capacity, s.cacheOpts...),
		breaker:  breaker,
		policy:   s.policy,
		shared:   s.shared,
		lockWait: s.lockWait,
		log:      s.log,
		fetches:  counter,
	}
}

// Name returns the cache kind.
func (f *Fetcher[T]) Name() string { return f.cfg.Name }

// Len returns the number of cached entries.
func (f *Fetcher[T]) Len() int { return f.cache.Len() }

// Capacity returns the cache capacity.
func (f *Fetcher[T]) Capacity() int { return f.cache.Capacity() }

// Breaker returns the breaker guarding the upstream.
func (f *Fetcher[T]) Breaker() *circuitbreaker.Breaker { return f.breaker }

// Close stops the cache janitor.
func (f *Fetcher[T]) Close() { f.cache.Close() }

// Fetch returns a cached value for key or loads it. Failures come back as a
// failed Result; nothing is cached for them.
func (f *Fetcher[T]) Fetch(ctx context.Context, key string, load Loader[T]) Result[T] {
	if v, ok := f.cache.Get(ctx, key); ok {
		return f.record(ctx, Cached(v))
	}

	if v, ok := f.sharedGet(ctx, key); ok {
		f.cache.Set(ctx, key, v, f.cfg.TTL)
		return f.record(ctx, Cached(v))
	}

	if locker, ok := f.shared.(Locker); ok {
		release, err := locker.Lock(ctx, f.cfg.Name+":"+key, f.lockWait*4)
		if err == nil {
			defer release()
		} else if f.waitForPeer(ctx) {
			if v, ok := f.sharedGet(ctx, key); ok {
				f.cache.Set(ctx, key, v, f.cfg.TTL)
				return f.record(ctx, Cached(v))
			}
		}
	}

	v, err := retry.Do(ctx, f.policy, func(ctx context.Context) (T, error) {
		return circuitbreaker.Execute(f.breaker, func() (T, error) {
			return load(ctx)
		})
	}, func(err error, wait time.Duration) {
		f.log.Debug(ctx, "retrying upstream", "cache", f.cfg.Name, "key", key, "wait", wait, "error", err)
	})
	if err != nil {
		return f.record(ctx, Failed[T](err))
	}

	f.cache.Set(ctx, key, v, f.cfg.TTL)
	if f.shared != nil {
		if err := f.shared.SetJSON(ctx, f.sharedKey(key), v, f.cfg.TTL); err != nil {
			f.log.Warn(ctx, "shared cache write failed", "cache", f.cfg.Name, "key", key, "error", err)
		}
	}

	return f.record(ctx, Live(v))
}

func (f *Fetcher[T]) sharedGet(ctx context.Context, key string) (T, bool) {
	var v T
	if f.shared == nil {
		return v, false
	}
	ok, err := f.shared.GetJSON(ctx, f.sharedKey(key), &v)
	if err != nil {
		f.log.Warn(ctx, "shared cache read failed", "cache", f.cfg.Name, "key", key, "error", err)
		return v, false
	}
	return v, ok
}

func (f *Fetcher[T]) sharedKey(key string) string {
	return f.cfg.Name + ":" + key
}

// waitForPeer gives the lock holder a moment to publish its result.
func (f *Fetcher[T]) waitForPeer(ctx context.Context) bool {
	t := time.NewTimer(f.lockWait)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (f *Fetcher[T]) record(ctx context.Context, r Result[T]) Result[T] {
	source := string(r.Source)
	if r.Failed() {
		source = "failed"
	}
	f.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", f.cfg.Name),
		attribute.String("source", source),
		attribute.Bool("circuit_open", apperror.IsCircuitOpen(r.Err)),
	))
	return r
}
