package infra

import (
	"errors"
	"sync"
	"time"
)

// CircuitBreaker guards the SMTP relay. When the mail server goes down,
// notification jobs fast-fail instead of piling up blocked workers.
//
// After `threshold` consecutive failures the breaker opens and every call
// returns ErrCircuitOpen until the cooldown elapses. Then a single probe
// call is let through: if it succeeds the breaker closes, if it fails the
// cooldown restarts.

// ErrCircuitOpen is returned while the breaker is refusing calls.
var ErrCircuitOpen = errors.New("circuit breaker aberto: smtp indisponível")

type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration

	failures  int
	openUntil time.Time
	probing   bool
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown}
}

// Execute runs fn unless the breaker is open. Only one probe runs at a time
// while half-open; concurrent callers get ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.failures >= cb.threshold {
		if time.Now().Before(cb.openUntil) || cb.probing {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	if err != nil {
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.openUntil = time.Now().Add(cb.cooldown)
		}
		return err
	}
	cb.failures = 0
	return nil
}
