// Package anim holds the hero section's animation timing as clock-driven
// state machines: the layer-assembly storyboard, the reveal sequence that
// follows it, the count-up counters and the rotating tagline.
package anim

import "math"

// Easing maps progress in [0,1] to eased progress.
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

func EaseOutCubic(t float64) float64 { return 1 - math.Pow(1-t, 3) }

func EaseOutQuart(t float64) float64 { return 1 - math.Pow(1-t, 4) }

func EaseOutQuint(t float64) float64 { return 1 - math.Pow(1-t, 5) }

func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func EaseInOutQuart(t float64) float64 {
	if t < 0.5 {
		return 8 * t * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 4)/2
}

// Clamp01 limits t to [0,1].
func Clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
