// Package circuitbreaker wraps sony/gobreaker with the failure semantics the
// analyzer needs: trip after N consecutive failures, one half-open trial
// after the reset timeout, and per-breaker error codes that never count.
package circuitbreaker

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/liquidity-vector/internal/apperror"
)

// State names reported by Snapshot.
const (
	StateClosed   = "closed"
	StateHalfOpen = "half_open"
	StateOpen     = "open"
)

// Config describes one breaker.
type Config struct {
	Name         string
	FailMax      uint32
	ResetTimeout time.Duration
	// Excluded codes neither count as failures nor trip the breaker.
	Excluded      []apperror.Code
	OnStateChange func(name, from, to string)
}

// DefaultConfig returns a breaker that trips after 5 failures and retries
// after 60s.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		FailMax:      5,
		ResetTimeout: 60 * time.Second,
	}
}

// Breaker guards calls to a single upstream. It is shared by every fetcher
// that talks to that upstream, whatever their result type.
type Breaker struct {
	cfg      Config
	cb       *gobreaker.CircuitBreaker[any]
	failures atomic.Uint32
}

// New builds a breaker.
func New(cfg Config) *Breaker {
	if cfg.FailMax == 0 {
		cfg.FailMax = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 60 * time.Second
	}

	b := &Breaker{cfg: cfg}

	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailMax
		},
		IsExcluded: b.excluded,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, stateName(from), stateName(to))
			}
		},
	}
	b.cb = gobreaker.NewCircuitBreaker[any](st)

	return b
}

// Name returns the dependency name.
func (b *Breaker) Name() string { return b.cfg.Name }

// State returns closed, half_open or open. Moving from open to half_open
// happens lazily, here or on the next call.
func (b *Breaker) State() string { return stateName(b.cb.State()) }

// ConsecutiveFailures returns the running failure count. It keeps its value
// while the breaker is open and resets on the first success.
func (b *Breaker) ConsecutiveFailures() uint32 { return b.failures.Load() }

// Config returns the breaker configuration.
func (b *Breaker) Config() Config { return b.cfg }

// Execute runs fn through b. An open breaker returns a CIRCUIT_OPEN error
// without calling fn; otherwise fn's value and error pass through unchanged.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})

	switch {
	case err == nil:
		b.failures.Store(0)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return zero, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err),
			apperror.WithContext(b.cfg.Name))
	case b.excluded(err):
	default:
		b.failures.Add(1)
	}

	if err != nil {
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

func (b *Breaker) excluded(err error) bool {
	if err == nil || len(b.cfg.Excluded) == 0 {
		return false
	}
	return apperror.HasCode(err, b.cfg.Excluded...)
}

func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
