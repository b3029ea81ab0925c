package anim

import "time"

// Rotator cycles through N taglines. Every Interval the current tagline
// plays an exit transition lasting Exit before the next one is shown.
type Rotator struct {
	N        int
	Interval time.Duration
	Exit     time.Duration
}

// DefaultRotator returns the hero tagline rotation for n taglines.
func DefaultRotator(n int) Rotator {
	return Rotator{N: n, Interval: 4 * time.Second, Exit: 400 * time.Millisecond}
}

// At returns the tagline index displayed elapsed after the rotation began
// and whether it is mid-exit.
func (r Rotator) At(elapsed time.Duration) (index int, exiting bool) {
	if r.N <= 0 || r.Interval <= 0 || elapsed < 0 {
		return 0, false
	}
	cycles := int(elapsed / r.Interval)
	within := elapsed % r.Interval
	if cycles > 0 && within < r.Exit {
		return (cycles - 1) % r.N, true
	}
	return cycles % r.N, false
}
