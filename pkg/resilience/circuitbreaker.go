package resilience

import (
	"errors"
	"sync"
	"time"

	"pingup/backend/pkg/logger"
)

// ErrOpen is returned by Execute while the breaker is short-circuiting calls
var ErrOpen = errors.New("circuit open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// BreakerConfig holds the thresholds of a CircuitBreaker
type BreakerConfig struct {
	Name string
	// FailureThreshold consecutive failures open the circuit
	FailureThreshold int
	// SuccessThreshold probe successes in half-open close it again
	SuccessThreshold int
	// OpenFor is how long the circuit stays open before probing
	OpenFor time.Duration
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		OpenFor:          30 * time.Second,
	}
}

// Counts is a snapshot of breaker activity
type Counts struct {
	Requests            uint64
	Successes           uint64
	Failures            uint64
	ConsecutiveFailures int
	Rejected            uint64
}

// CircuitBreaker stops calling a dependency that keeps failing. It never
// retries: a call either runs once or is rejected with ErrOpen.
type CircuitBreaker struct {
	cfg BreakerConfig
	log *logger.Logger
	now func() time.Time

	mu        sync.Mutex
	state     State
	openUntil time.Time
	probes    int
	inProbe   bool
	counts    Counts
}

func NewCircuitBreaker(cfg BreakerConfig, log *logger.Logger) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	return &CircuitBreaker{
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		state: StateClosed,
	}
}

// Execute runs fn unless the circuit is open
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		cb.log.Warn("Circuit breaker rejected call", "name", cb.cfg.Name)
		return ErrOpen
	}

	start := cb.now()
	err := fn()
	if err != nil {
		cb.onFailure()
		cb.log.Warn("Circuit breaker recorded failure",
			"name", cb.cfg.Name,
			"error", err.Error(),
			"duration", cb.now().Sub(start).String(),
		)
		return err
	}

	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.openUntil) {
			cb.counts.Rejected++
			return false
		}
		cb.setState(StateHalfOpen)
		cb.probes = 0
		fallthrough
	case StateHalfOpen:
		// one probe at a time
		if cb.inProbe {
			cb.counts.Rejected++
			return false
		}
		cb.inProbe = true
	}

	cb.counts.Requests++
	return true
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.counts.Successes++
	cb.counts.ConsecutiveFailures = 0

	if cb.state == StateHalfOpen {
		cb.inProbe = false
		cb.probes++
		if cb.probes >= cb.cfg.SuccessThreshold {
			cb.setState(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.counts.Failures++
	cb.counts.ConsecutiveFailures++

	switch cb.state {
	case StateHalfOpen:
		cb.inProbe = false
		cb.trip()
	case StateClosed:
		if cb.counts.ConsecutiveFailures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	}
}

// trip must be called with mu held
func (cb *CircuitBreaker) trip() {
	cb.openUntil = cb.now().Add(cb.cfg.OpenFor)
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) setState(s State) {
	if cb.state == s {
		return
	}
	cb.log.Info("Circuit breaker state changed",
		"name", cb.cfg.Name,
		"from", string(cb.state),
		"to", string(s),
	)
	cb.state = s
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}
