// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"time"

	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/cache/redis"
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/config"
	"github.com/fd1az/liquidity-vector/internal/di"
	"github.com/fd1az/liquidity-vector/internal/fetch"
	"github.com/fd1az/liquidity-vector/internal/logger"
	"github.com/fd1az/liquidity-vector/internal/retry"
)

// Global service tokens, available to every module factory.
var (
	ConfigToken   = di.NewToken[*config.Config]("config")
	LoggerToken   = di.NewToken[logger.LoggerInterface]("logger")
	BreakersToken = di.NewToken[*circuitbreaker.Registry]("breakers")
	CachesToken   = di.NewToken[*fetch.Tracker]("caches")
	SharedToken   = di.NewToken[fetch.SharedStore]("sharedCache")
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Breakers() *circuitbreaker.Registry
	Caches() *fetch.Tracker
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	breakers  *circuitbreaker.Registry
	caches    *fetch.Tracker
	shared    *redis.Store
	container di.Container
}

// New creates a new Monolith instance. Breakers are registered from config.
// An unreachable Redis disables the shared tier instead of failing startup.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	breakers := circuitbreaker.NewRegistry(log)
	for name, b := range cfg.Breakers {
		breakers.Register(circuitbreaker.Config{
			Name:         name,
			FailMax:      b.FailMax,
			ResetTimeout: b.ResetTimeout,
			Excluded:     b.ExcludedCodes(),
		})
	}

	container := di.NewContainer()
	container.Register(ConfigToken.Name(), cfg)
	container.Register(LoggerToken.Name(), log)
	container.Register(BreakersToken.Name(), breakers)

	caches := fetch.NewTracker()
	container.Register(CachesToken.Name(), caches)

	a := &app{
		config:    cfg,
		logger:    log,
		breakers:  breakers,
		caches:    caches,
		container: container,
	}

	if cfg.Redis.Enabled {
		dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		store, err := redis.Connect(dialCtx, redis.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		})
		cancel()
		if err != nil {
			log.Warn(ctx, "shared cache disabled", "error", apperror.Wrap(err, apperror.CodeCacheUnavailable, cfg.Redis.URL))
		} else {
			a.shared = store
			container.Register(SharedToken.Name(), fetch.SharedStore(store))
			log.Info(ctx, "shared cache connected")
		}
	}

	return a, nil
}

func (a *app) Config() *config.Config { return a.config }
func (a *app) Logger() logger.LoggerInterface { return a.logger }
func (a *app) Breakers() *circuitbreaker.Registry { return a.breakers }
func (a *app) Caches() *fetch.Tracker { return a.caches }
func (a *app) Services() di.ServiceRegistry { return a.container }

// Container returns the DI container for module registration.
func (a *app) Container() di.Container { return a.container }

// SharedConnected reports whether the Redis tier is in use.
func (a *app) SharedConnected() bool { return a.shared != nil }

// PingShared checks the Redis tier, for health checks.
func (a *app) PingShared(ctx context.Context) error {
	if a.shared == nil {
		return nil
	}
	return a.shared.Ping(ctx)
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.shared != nil {
		return a.shared.Close()
	}
	return nil
}

// RetryPolicy converts the retry section of cfg.
func RetryPolicy(cfg *config.Config) retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = cfg.Retry.MaxAttempts
	p.BaseDelay = cfg.Retry.BaseDelay
	p.MaxDelay = cfg.Retry.MaxDelay
	p.Multiplier = cfg.Retry.Multiplier
	p.Jitter = cfg.Retry.Jitter
	return p
}

// NewFetcher builds a tracked fetcher for the named cache kind, guarded by
// the named breaker and the shared tier when one is connected.
func NewFetcher[T any](sr di.ServiceRegistry, cacheName, breakerName string) *fetch.Fetcher[T] {
	cfg := di.GetToken(sr, ConfigToken)
	log := di.GetToken(sr, LoggerToken)
	cc := cfg.Cache(cacheName)

	opts := []fetch.Option{
		fetch.WithLogger(log),
		fetch.WithRetry(RetryPolicy(cfg)),
	}
	if sr.Has(SharedToken.Name()) {
		opts = append(opts, fetch.WithShared(di.GetToken(sr, SharedToken)))
	}

	f := fetch.New[T](
		fetch.CacheConfig{Name: cacheName, Capacity: cc.Capacity, TTL: cc.TTL},
		di.GetToken(sr, BreakersToken).Get(breakerName),
		opts...,
	)
	di.GetToken(sr, CachesToken).Track(f)
	return f
}
