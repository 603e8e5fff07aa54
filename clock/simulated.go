package clock

import (
	"context"
	"sync"
	"time"
)

// SimulatedClock is a Clock whose time moves only when the test calls
// Advance or Set. Waiters parked in WaitUntil are released as soon as the
// simulated time reaches their target, without any real delay.
type SimulatedClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters map[int]*simWaiter
	nextID  int
}

type simWaiter struct {
	target time.Time
	done   chan time.Time // receives the simulated now, buffered
}

// NewSimulatedClock creates a simulated clock starting at the given instant.
func NewSimulatedClock(start time.Time) *SimulatedClock {
	return &SimulatedClock{
		now:     start,
		waiters: make(map[int]*simWaiter),
	}
}

func (c *SimulatedClock) Location() *time.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Location()
}

func (c *SimulatedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// WaitUntil parks the caller until the simulated time reaches target or ctx
// is done.
func (c *SimulatedClock) WaitUntil(ctx context.Context, target time.Time) (time.Time, error) {
	c.mu.Lock()
	if !c.now.Before(target) {
		now := c.now
		c.mu.Unlock()
		return now, nil
	}

	id := c.nextID
	c.nextID++
	w := &simWaiter{target: target, done: make(chan time.Time, 1)}
	c.waiters[id] = w
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.waiters, id)
		c.mu.Unlock()
		return time.Time{}, ctx.Err()
	case now := <-w.done:
		return now, nil
	}
}

// Advance moves the simulated time forward by d, releasing every waiter
// whose target has been reached.
func (c *SimulatedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.release()
	c.mu.Unlock()
}

// Set jumps the simulated time to t. Waiters whose targets were passed are
// released; a backward jump releases nothing.
func (c *SimulatedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.release()
	c.mu.Unlock()
}

// Waiters returns the number of parked WaitUntil callers. Tests use this to
// synchronize before advancing the clock.
func (c *SimulatedClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// AwaitWaiters polls until at least n callers are parked or the context is
// done. It avoids the advance-before-wait race in concurrent tests.
func (c *SimulatedClock) AwaitWaiters(ctx context.Context, n int) error {
	for {
		if c.Waiters() >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// release must be called with the lock held.
func (c *SimulatedClock) release() {
	for id, w := range c.waiters {
		if !c.now.Before(w.target) {
			w.done <- c.now
			delete(c.waiters, id)
		}
	}
}
