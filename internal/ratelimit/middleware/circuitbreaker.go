package middleware

import "sync"

// CircuitBreaker decides when the complaint limiter stops trusting its
// primary store. openAfter consecutive failures open it; closeAfter
// consecutive successes observed while open close it again.
type CircuitBreaker struct {
	mu         sync.Mutex
	open       bool
	failures   int
	successes  int
	openAfter  int
	closeAfter int
}

func newCircuitBreaker(openAfter, closeAfter int) *CircuitBreaker {
	return &CircuitBreaker{openAfter: openAfter, closeAfter: closeAfter}
}

func (c *CircuitBreaker) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// RecordFailure reports whether the circuit is open after the failure. A
// failure while open restarts the recovery streak.
func (c *CircuitBreaker) RecordFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successes = 0
	c.failures++
	if !c.open && c.failures >= c.openAfter {
		c.open = true
	}
	return c.open
}

// RecordSuccess reports whether the circuit is closed after the success.
func (c *CircuitBreaker) RecordSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		c.successes++
		if c.successes < c.closeAfter {
			return false
		}
		c.open = false
	}
	c.failures, c.successes = 0, 0
	return true
}
