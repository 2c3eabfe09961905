package resilience

import (
	"errors"
	"sync"
	"time"

	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/metrics"

	"github.com/jonboulle/clockwork"
)

// ErrCircuitOpen is returned without calling the protected function while the circuit is open
var ErrCircuitOpen = errors.New("circuit open")

// CircuitBreakerState represents the current state of a circuit breaker
type CircuitBreakerState string

const (
	StateClosed   CircuitBreakerState = "closed"
	StateOpen     CircuitBreakerState = "open"
	StateHalfOpen CircuitBreakerState = "half-open"
)

func (s CircuitBreakerState) gaugeValue() float64 {
	switch s {
	case StateHalfOpen:
		return 1
	case StateOpen:
		return 2
	default:
		return 0
	}
}

// CircuitBreakerConfig holds configuration for a circuit breaker
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold uint
	SuccessThreshold uint
	RetryTimeout     time.Duration
}

// DefaultCircuitBreakerConfig returns a default circuit breaker configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		RetryTimeout:     30 * time.Second,
	}
}

// CircuitBreaker stops calling a failing dependency for RetryTimeout after
// FailureThreshold consecutive failures, then lets trial calls through until
// SuccessThreshold of them succeed.
type CircuitBreaker struct {
	config          CircuitBreakerConfig
	clock           clockwork.Clock
	log             *logger.Logger
	mutex           sync.Mutex
	state           CircuitBreakerState
	failureCount    uint
	successCount    uint
	nextAttemptTime time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig, clock clockwork.Clock, log *logger.Logger) *CircuitBreaker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cb := &CircuitBreaker{
		config: config,
		clock:  clock,
		log:    log,
		state:  StateClosed,
	}
	metrics.CircuitBreakerState.WithLabelValues(config.Name).Set(StateClosed.gaugeValue())
	return cb
}

// Execute runs fn through the circuit breaker
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allowRequest() {
		return ErrCircuitOpen
	}

	if err := fn(); err != nil {
		cb.recordFailure(err)
		return err
	}

	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.clock.Now().Before(cb.nextAttemptTime) {
			return false
		}
		cb.transition(StateHalfOpen)
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.transition(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) recordFailure(err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.log.Warn("Circuit breaker opened",
				"name", cb.config.Name,
				"failures", cb.failureCount,
				"error", err.Error(),
			)
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.transition(StateOpen)
	}
}

// transition must be called with the mutex held
func (cb *CircuitBreaker) transition(to CircuitBreakerState) {
	cb.state = to
	cb.failureCount = 0
	cb.successCount = 0
	if to == StateOpen {
		cb.nextAttemptTime = cb.clock.Now().Add(cb.config.RetryTimeout)
	}

	metrics.CircuitBreakerState.WithLabelValues(cb.config.Name).Set(to.gaugeValue())
	cb.log.Info("Circuit breaker state changed", "name", cb.config.Name, "state", string(to))
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return cb.state
}
