// Package viewer orchestrates the embedded point-cloud viewer: the loading
// overlay state machine, camera presets and fly-to, keyboard movement,
// auto-orbit and the dataset bounds the camera is framed on. Rendering stays
// in the browser; everything here is deterministic and driven by Tick.
package viewer

import (
	"context"
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// Ticker is anything driven by clock ticks.
type Ticker interface {
	Tick(now time.Time)
}

// Run calls Tick on every ticker each interval until ctx is done. All
// tickers are driven from the calling goroutine.
func Run(ctx context.Context, clock Clock, interval time.Duration, tickers ...Ticker) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			now := clock.Now()
			for _, tk := range tickers {
				tk.Tick(now)
			}
		}
	}
}
