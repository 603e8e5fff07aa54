// Package clock abstracts "now" and "wait until" so that the scheduling
// engine never touches wall-clock time directly. Exactly one Clock instance
// is shared by all job loops; the simulated variant makes the engine fully
// deterministic under test.
package clock

import (
	"context"
	"time"
)

// Clock supplies the current time and a cancellable wait primitive.
type Clock interface {
	// Location returns the time zone the clock operates in.
	Location() *time.Location

	// Now returns the current time in the clock's location.
	Now() time.Time

	// WaitUntil blocks until the clock reaches target or ctx is done,
	// whichever comes first. On reaching target it returns the observed
	// current time; on cancellation it returns ctx.Err(). Cancellation is a
	// normal outcome, not a failure.
	WaitUntil(ctx context.Context, target time.Time) (time.Time, error)
}

// SystemClock is the default Clock backed by real time.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a system clock in the given location. A nil
// location means UTC.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Location() *time.Location {
	return c.loc
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// WaitUntil sleeps until target. The wait re-checks the clock after every
// timer expiry and re-arms, so a backward system-time jump extends the wait
// instead of firing early.
func (c *SystemClock) WaitUntil(ctx context.Context, target time.Time) (time.Time, error) {
	for {
		now := c.Now()
		d := target.Sub(now)
		if d <= 0 {
			return now, nil
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return time.Time{}, ctx.Err()
		case <-timer.C:
		}
	}
}
