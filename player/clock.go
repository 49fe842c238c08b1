package player

import (
	"context"
	"sync"
	"time"
)

// Clock paces dispatch. Wait must return ctx.Err() once ctx is done,
// checking before it sleeps.
type Clock interface {
	Now() time.Time
	Wait(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// InstantClock never sleeps: Wait moves its virtual time forward by d.
// Used for dry runs and tests, where the whole score plays at once.
type InstantClock struct {
	MU    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func NewInstantClock(start time.Time) *InstantClock {
	return &InstantClock{now: start}
}

func (c *InstantClock) Now() time.Time {
	c.MU.Lock()
	defer c.MU.Unlock()
	return c.now
}

func (c *InstantClock) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.MU.Lock()
	defer c.MU.Unlock()
	c.waits = append(c.waits, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}

// Advance moves virtual time without a Wait, simulating a slow send.
func (c *InstantClock) Advance(d time.Duration) {
	c.MU.Lock()
	defer c.MU.Unlock()
	c.now = c.now.Add(d)
}

// Waits returns every duration passed to Wait.
func (c *InstantClock) Waits() []time.Duration {
	c.MU.Lock()
	defer c.MU.Unlock()
	return append([]time.Duration(nil), c.waits...)
}
