package app

import (
	"github.com/fd1az/liquidity-vector/internal/circuitbreaker"
	"github.com/fd1az/liquidity-vector/internal/fetch"
)

// CircuitStates is the health of every upstream dependency.
type CircuitStates struct {
	Breakers []circuitbreaker.Snapshot `json:"circuit_breakers"`
	Caches   []fetch.CacheStat         `json:"caches"`
}

// AnyOpen reports whether some dependency is being short-circuited.
func (s CircuitStates) AnyOpen() bool {
	for _, b := range s.Breakers {
		if b.State == circuitbreaker.StateOpen {
			return true
		}
	}
	return false
}

// CircuitInspector reads breaker and cache state for health reporting.
type CircuitInspector struct {
	breakers *circuitbreaker.Registry
	caches   *fetch.Tracker
}

// NewCircuitInspector creates a CircuitInspector.
func NewCircuitInspector(breakers *circuitbreaker.Registry, caches *fetch.Tracker) *CircuitInspector {
	return &CircuitInspector{breakers: breakers, caches: caches}
}

// CircuitStates snapshots every breaker and cache kind.
func (c *CircuitInspector) CircuitStates() CircuitStates {
	return CircuitStates{
		Breakers: c.breakers.Snapshot(),
		Caches:   c.caches.Stats(),
	}
}
