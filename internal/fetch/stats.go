package fetch

import (
	"sort"
	"sync"
)

// Sizer is implemented by every Fetcher.
type Sizer interface {
	Name() string
	Len() int
	Capacity() int
}

// CacheStat is the fill level of one cache kind.
type CacheStat struct {
	Name     string `json:"name"`
	Entries  int    `json:"entries"`
	Capacity int    `json:"capacity"`
}

// Tracker collects fetchers for introspection.
type Tracker struct {
	mu     sync.Mutex
	sizers []Sizer
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Track adds s.
func (t *Tracker) Track(s Sizer) {
	t.mu.Lock()
	t.sizers = append(t.sizers, s)
	t.mu.Unlock()
}

// Stats returns per cache kind sizes sorted by name.
func (t *Tracker) Stats() []CacheStat {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]CacheStat, 0, len(t.sizers))
	for _, s := range t.sizers {
		out = append(out, CacheStat{Name: s.Name(), Entries: s.Len(), Capacity: s.Capacity()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
