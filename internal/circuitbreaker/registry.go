package circuitbreaker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fd1az/liquidity-vector/internal/logger"
)

// Snapshot is the externally visible state of one breaker.
type Snapshot struct {
	Name                string        `json:"name"`
	State               string        `json:"state"`
	ConsecutiveFailures uint32        `json:"consecutive_failures"`
	FailMax             uint32        `json:"fail_max"`
	ResetTimeout        time.Duration `json:"reset_timeout"`
}

// Registry owns the breakers of a process, one per upstream.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	log      logger.LoggerInterface
}

// NewRegistry creates an empty registry. State transitions are logged.
func NewRegistry(log logger.LoggerInterface) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		log:      log,
	}
}

// Register creates (or replaces) the breaker for cfg.Name.
func (r *Registry) Register(cfg Config) *Breaker {
	userHook := cfg.OnStateChange
	cfg.OnStateChange = func(name, from, to string) {
		if r.log != nil {
			r.log.Warn(context.Background(), "circuit state change", "breaker", name, "from", from, "to", to)
		}
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	b := New(cfg)

	r.mu.Lock()
	r.breakers[cfg.Name] = b
	r.mu.Unlock()

	return b
}

// Get returns the named breaker, creating one with DefaultConfig if absent.
func (r *Registry) Get(name string) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b
	}
	return r.Register(DefaultConfig(name))
}

// Snapshot lists every breaker sorted by name.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.RLock()
	out := make([]Snapshot, 0, len(r.breakers))
	for _, b := range r.breakers {
		out = append(out, Snapshot{
			Name:                b.Name(),
			State:               b.State(),
			ConsecutiveFailures: b.ConsecutiveFailures(),
			FailMax:             b.cfg.FailMax,
			ResetTimeout:        b.cfg.ResetTimeout,
		})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AnyOpen reports whether some breaker is open.
func (r *Registry) AnyOpen() bool {
	for _, s := range r.Snapshot() {
		if s.State == StateOpen {
			return true
		}
	}
	return false
}
