package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func newTestBreaker(opts Opts) (*Breaker, *time.Time) {
	b := New(opts)
	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }
	return b, &now
}

func fail(context.Context) error    { return errBoom }
func succeed(context.Context) error { return nil }

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b, _ := newTestBreaker(Opts{FailThreshold: 2})
	for i := 0; i < 10; i++ {
		if err := b.Call(context.Background(), succeed); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(Opts{FailThreshold: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		if err := b.Call(context.Background(), fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Call(context.Background(), succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open breaker returned %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b, _ := newTestBreaker(Opts{FailThreshold: 2, Cooldown: time.Minute})

	b.Call(context.Background(), fail)
	b.Call(context.Background(), succeed)
	b.Call(context.Background(), fail)

	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after interleaved success", b.State())
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b, now := newTestBreaker(Opts{FailThreshold: 1, Cooldown: time.Minute, ProbeMax: 1})

	b.Call(context.Background(), fail)
	if b.State() != StateOpen {
		t.Fatal("breaker should be open")
	}

	*now = now.Add(time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatal("breaker should be half-open after cooldown")
	}
	if err := b.Call(context.Background(), succeed); err != nil {
		t.Fatalf("probe call: %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(Opts{FailThreshold: 1, Cooldown: time.Minute, ProbeMax: 1})

	b.Call(context.Background(), fail)
	*now = now.Add(time.Minute)
	b.Call(context.Background(), fail)

	if b.State() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", b.State())
	}
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	b, now := newTestBreaker(Opts{FailThreshold: 1, Cooldown: time.Minute, ProbeMax: 1})

	b.Call(context.Background(), fail)
	*now = now.Add(time.Minute)

	started := make(chan struct{})
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		b.Call(context.Background(), func(context.Context) error {
			close(started)
			<-done
			return nil
		})
		close(finished)
	}()

	<-started
	if err := b.Call(context.Background(), succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second concurrent probe got %v, want ErrCircuitOpen", err)
	}
	close(done)
	<-finished
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", b.State())
	}
}

func TestDoReturnsValue(t *testing.T) {
	b, _ := newTestBreaker(Opts{})
	v, err := Do(b, context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Errorf("got %d, %v", v, err)
	}
}

func TestDoRejectsWhenOpen(t *testing.T) {
	b, _ := newTestBreaker(Opts{FailThreshold: 1, Cooldown: time.Minute})
	b.Call(context.Background(), fail)

	_, err := Do(b, context.Background(), func(context.Context) (int, error) {
		t.Fatal("function must not run while open")
		return 0, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}
