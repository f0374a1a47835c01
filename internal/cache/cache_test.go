package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestGetRespectsTTL(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := New[string, int](4, WithClock(clk.Now))

	c.Set(ctx, "gas_Ethereum", 25, 30*time.Second)

	tests := []struct {
		name    string
		advance time.Duration
		wantHit bool
	}{
		{"fresh", 0, true},
		{"just_before_expiry", 29*time.Second + 999*time.Millisecond, true},
		{"at_expiry", time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk.Advance(tt.advance)
			v, ok := c.Get(ctx, "gas_Ethereum")
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && v != 25 {
				t.Errorf("value = %d, want 25", v)
			}
		})
	}

	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, len = %d", c.Len())
	}
}

func TestSetEvictsOldestInserted(t *testing.T) {
	ctx := context.Background()
	c := New[string, string](2)

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)
	c.Get(ctx, "a") // reads do not refresh insertion order
	c.Set(ctx, "c", "3", time.Minute)

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("a should have been evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, ok := c.Get(ctx, k); !ok {
			t.Errorf("%s should be present", k)
		}
	}
}

func TestSetPrefersExpiredOverLive(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := New[string, int](2, WithClock(clk.Now))

	c.Set(ctx, "old", 1, time.Hour)
	c.Set(ctx, "short", 2, time.Second)
	clk.Advance(2 * time.Second)
	c.Set(ctx, "new", 3, time.Hour)

	if _, ok := c.Get(ctx, "old"); !ok {
		t.Error("live entry evicted while an expired one was available")
	}
}

func TestOverwriteMovesToBack(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](2)

	c.Set(ctx, "a", 1, time.Minute)
	c.Set(ctx, "b", 2, time.Minute)
	c.Set(ctx, "a", 10, time.Minute)
	c.Set(ctx, "c", 3, time.Minute)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("b was the oldest insert and should be gone")
	}
	if v, _ := c.Get(ctx, "a"); v != 10 {
		t.Errorf("a = %d, want 10", v)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](16, WithCleanupInterval(time.Millisecond))
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%20)
			c.Set(ctx, key, i, time.Second)
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("len %d exceeds capacity", c.Len())
	}
}
