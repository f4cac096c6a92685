// Package resilience provides a circuit breaker for remote collaborators.
// The engine wraps the embedding backend with one so a dead backend fails
// requests fast instead of stacking up timeouts.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker state.
type State int

const (
	StateClosed   State = iota // normal operation
	StateOpen                  // tripped, rejecting calls
	StateHalfOpen              // allowing probe calls
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Opts configures a Breaker.
type Opts struct {
	// FailThreshold is how many consecutive failures trip the breaker.
	FailThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// ProbeMax is the number of calls allowed while half-open.
	ProbeMax int
}

// DefaultOpts are the standard breaker settings.
var DefaultOpts = Opts{
	FailThreshold: 5,
	Cooldown:      30 * time.Second,
	ProbeMax:      1,
}

// Breaker is a closed/open/half-open circuit breaker.
type Breaker struct {
	mu       sync.Mutex
	opts     Opts
	state    State
	failures int
	openedAt time.Time
	probes   int
	now      func() time.Time
}

// New creates a Breaker; zero-valued options fall back to DefaultOpts.
func New(opts Opts) *Breaker {
	if opts.FailThreshold <= 0 {
		opts.FailThreshold = DefaultOpts.FailThreshold
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultOpts.Cooldown
	}
	if opts.ProbeMax <= 0 {
		opts.ProbeMax = DefaultOpts.ProbeMax
	}
	return &Breaker{opts: opts, now: time.Now}
}

// State returns the current state, transitioning open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// currentState must be called with mu held.
func (b *Breaker) currentState() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.Cooldown {
		b.state = StateHalfOpen
		b.probes = 0
	}
	return b.state
}

// admit decides whether a call may proceed.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.currentState() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probes >= b.opts.ProbeMax {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

// record updates the breaker after a call.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.opts.FailThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			b.failures = 0
			b.probes = 0
		}
		return
	}
	if b.state == StateHalfOpen {
		b.state = StateClosed
	}
	b.failures = 0
}

// Call executes f through the breaker.
func (b *Breaker) Call(ctx context.Context, f func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := f(ctx)
	b.record(err)
	return err
}

// Do is Call for functions returning a value.
func Do[T any](b *Breaker, ctx context.Context, f func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.admit(); err != nil {
		return zero, err
	}
	v, err := f(ctx)
	b.record(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}
