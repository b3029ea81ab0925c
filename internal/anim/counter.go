package anim

import (
	"math"
	"time"
)

// CounterSpec configures one hero counter.
type CounterSpec struct {
	Label  string `yaml:"label" json:"label"`
	Target int64  `yaml:"target" json:"target"`
	Suffix string `yaml:"suffix" json:"suffix"`
	// DurationMS is the length of the eased count-up.
	DurationMS int64 `yaml:"durationMs" json:"durationMs"`
	// SlowIncrementRate is units per second added after the target is
	// reached. Zero stops at the target.
	SlowIncrementRate float64 `yaml:"slowIncrementRate" json:"slowIncrementRate"`
}

// Duration returns DurationMS as a time.Duration.
func (s CounterSpec) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// Counter counts from zero to its target with easeOutQuint, then optionally
// keeps climbing slowly, accumulating fractional units between ticks.
type Counter struct {
	spec CounterSpec

	started bool
	start   time.Time
	reached bool
	last    time.Time
	acc     float64
	value   int64
}

func NewCounter(spec CounterSpec) *Counter {
	return &Counter{spec: spec}
}

// Start begins the count-up at now. Later calls are ignored.
func (c *Counter) Start(now time.Time) {
	if c.started {
		return
	}
	c.started = true
	c.start = now
}

// Tick advances the counter to now and returns the displayed value.
func (c *Counter) Tick(now time.Time) int64 {
	if !c.started {
		return 0
	}
	if !c.reached {
		d := c.spec.Duration()
		elapsed := now.Sub(c.start)
		if elapsed < d {
			p := float64(elapsed) / float64(d)
			c.value = int64(math.Floor(float64(c.spec.Target) * EaseOutQuint(p)))
			return c.value
		}
		c.reached = true
		c.value = c.spec.Target
		c.last = now
		return c.value
	}
	if c.spec.SlowIncrementRate <= 0 {
		return c.value
	}
	delta := now.Sub(c.last)
	c.last = now
	c.acc += c.spec.SlowIncrementRate * delta.Seconds()
	if c.acc >= 1 {
		add := math.Floor(c.acc)
		c.acc -= add
		c.value += int64(add)
	}
	return c.value
}

// Value returns the last displayed value.
func (c *Counter) Value() int64 { return c.value }

// Reached reports whether the count-up has hit the target.
func (c *Counter) Reached() bool { return c.reached }

// DefaultCounters returns the hero counters.
func DefaultCounters() []CounterSpec {
	return []CounterSpec{
		{Label: "SQUARE FEET SCANNED", Target: 240000000, Suffix: "sq ft", DurationMS: 1500, SlowIncrementRate: 0.15},
		{Label: "PROJECTS DELIVERED", Target: 850, DurationMS: 2000},
		{Label: "ON TIME DELIVERY PERCENTAGE", Target: 98, Suffix: "%", DurationMS: 2200},
	}
}
