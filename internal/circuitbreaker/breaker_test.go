package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

var errUpstream = errors.New("upstream down")

func fail() (int, error)    { return 0, errUpstream }
func succeed() (int, error) { return 42, nil }

func TestTripsAfterFailMax(t *testing.T) {
	b := New(Config{Name: "rpc", FailMax: 3, ResetTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := Execute(b, fail); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d: err = %v, want upstream error", i, err)
		}
	}

	if b.State() != StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}
	if b.ConsecutiveFailures() != 3 {
		t.Errorf("failures = %d, want 3", b.ConsecutiveFailures())
	}

	called := false
	_, err := Execute(b, func() (int, error) {
		called = true
		return 1, nil
	})
	if called {
		t.Error("open breaker must not call the function")
	}
	if !apperror.IsCircuitOpen(err) {
		t.Errorf("err = %v, want CIRCUIT_OPEN", err)
	}
}

func TestSuccessResetsCounter(t *testing.T) {
	b := New(Config{Name: "lifi", FailMax: 3, ResetTimeout: time.Hour})

	Execute(b, fail)
	Execute(b, fail)
	if v, err := Execute(b, succeed); err != nil || v != 42 {
		t.Fatalf("success passthrough: %d, %v", v, err)
	}
	Execute(b, fail)
	Execute(b, fail)

	if b.State() != StateClosed {
		t.Errorf("state = %s, want closed (failures were not consecutive)", b.State())
	}
	if b.ConsecutiveFailures() != 2 {
		t.Errorf("failures = %d, want 2", b.ConsecutiveFailures())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	b := New(Config{Name: "coingecko", FailMax: 1, ResetTimeout: 40 * time.Millisecond})

	Execute(b, fail)
	if b.State() != StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	time.Sleep(60 * time.Millisecond)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %s, want half_open after reset timeout", b.State())
	}

	if _, err := Execute(b, succeed); err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if b.State() != StateClosed || b.ConsecutiveFailures() != 0 {
		t.Errorf("after trial: state %s failures %d", b.State(), b.ConsecutiveFailures())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := New(Config{Name: "defillama", FailMax: 1, ResetTimeout: 40 * time.Millisecond})

	Execute(b, fail)
	time.Sleep(60 * time.Millisecond)
	Execute(b, fail)

	if b.State() != StateOpen {
		t.Errorf("state = %s, want open after failed trial", b.State())
	}
}

func TestExcludedErrorsNeverTrip(t *testing.T) {
	b := New(Config{
		Name:         "coingecko",
		FailMax:      2,
		ResetTimeout: time.Hour,
		Excluded:     []apperror.Code{apperror.CodeRateLimitExceeded, apperror.CodeValidationError},
	})

	for i := 0; i < 10; i++ {
		_, err := Execute(b, func() (int, error) { return 0, apperror.RateLimited("coingecko") })
		if !apperror.IsRateLimited(err) {
			t.Fatalf("excluded error should pass through, got %v", err)
		}
	}

	if b.State() != StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
	if b.ConsecutiveFailures() != 0 {
		t.Errorf("failures = %d, want 0", b.ConsecutiveFailures())
	}
}

func TestRegistrySnapshot(t *testing.T) {
	var transitions []string
	r := NewRegistry(logger.NewNop())
	r.Register(Config{
		Name: "rpc", FailMax: 1, ResetTimeout: time.Hour,
		OnStateChange: func(name, from, to string) { transitions = append(transitions, name+":"+from+"->"+to) },
	})
	r.Register(Config{Name: "lifi", FailMax: 5, ResetTimeout: 45 * time.Second})

	Execute(r.Get("rpc"), fail)

	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "lifi" || snap[1].Name != "rpc" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap[1].State != StateOpen || snap[1].ConsecutiveFailures != 1 {
		t.Errorf("rpc snapshot = %+v", snap[1])
	}
	if snap[0].FailMax != 5 || snap[0].ResetTimeout != 45*time.Second {
		t.Errorf("lifi snapshot = %+v", snap[0])
	}
	if !r.AnyOpen() {
		t.Error("AnyOpen should be true")
	}
	if len(transitions) != 1 || transitions[0] != "rpc:closed->open" {
		t.Errorf("transitions = %v", transitions)
	}
}
