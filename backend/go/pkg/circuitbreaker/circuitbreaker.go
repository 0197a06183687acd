package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where calls are allowed.
	Closed State = iota
	// Open is when the circuit has tripped and calls fail fast.
	Open
	// HalfOpen lets trial calls through to test whether the dependency recovered.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings configures a Breaker.
type Settings struct {
	// Name identifies the guarded dependency in state change callbacks.
	Name string
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// SuccessThreshold is the number of consecutive half-open successes that closes it again.
	SuccessThreshold uint32
	// Timeout is how long the circuit stays open before allowing a trial call.
	Timeout time.Duration
	// OnStateChange, if set, is called after every transition. It runs with the lock released.
	OnStateChange func(name string, from, to State)
	// IsFailure decides whether an error counts against the circuit. Defaults to err != nil.
	IsFailure func(err error) bool
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Breaker is a consecutive-failure circuit breaker. It never retries; a failed call
// is reported to the caller unchanged.
type Breaker struct {
	settings Settings

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

// New creates a new Breaker with the specified settings.
func New(s Settings) *Breaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 1
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = 1
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.IsFailure == nil {
		s.IsFailure = func(err error) bool { return err != nil }
	}
	return &Breaker{settings: s, state: Closed}
}

// State returns the current state, moving Open to HalfOpen once the timeout elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.advance()
	state := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return state
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	from, to := b.advance()
	state := b.state
	b.mu.Unlock()
	b.notify(from, to)

	if state == Open {
		return ErrCircuitOpen
	}

	err := fn()
	b.record(err)
	return err
}

// advance moves Open to HalfOpen after the timeout. Caller holds the lock.
func (b *Breaker) advance() (State, State) {
	if b.state == Open && b.settings.Now().Sub(b.openedAt) >= b.settings.Timeout {
		b.state = HalfOpen
		b.successes = 0
		return Open, HalfOpen
	}
	return b.state, b.state
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	from := b.state
	if b.settings.IsFailure(err) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.settings.SuccessThreshold {
			b.state = Closed
			b.failures = 0
			b.successes = 0
		}
	case Closed:
		b.failures = 0
	}
}

func (b *Breaker) onFailure() {
	switch b.state {
	case HalfOpen:
		b.trip()
	case Closed:
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.trip()
		}
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.settings.Now()
	b.failures = 0
	b.successes = 0
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.settings.Name, from, to)
	}
}
