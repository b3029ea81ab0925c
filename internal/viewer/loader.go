package viewer

import (
	"fmt"
	"log/slog"
	"time"
)

// State is the loading overlay state.
type State int

const (
	StateLoading State = iota
	StateRevealing
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRevealing:
		return "revealing"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// transitions lists the legal state changes. Loading goes straight to
// Complete only when the reveal is skipped.
var transitions = map[State][]State{
	StateLoading:   {StateRevealing, StateComplete},
	StateRevealing: {StateComplete},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// LoaderConfig holds the loader timings.
type LoaderConfig struct {
	// RevealDelay is how long the canvas takes to fade in once ready.
	RevealDelay time.Duration
	// SettleDelay follows the reveal before completion fires.
	SettleDelay time.Duration
	// FallbackTimeout, measured from Mount, forces progression when the
	// streaming library never signals readiness.
	FallbackTimeout time.Duration
	// SkipReveal completes immediately on Mount.
	SkipReveal bool
}

func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		RevealDelay:     1200 * time.Millisecond,
		SettleDelay:     300 * time.Millisecond,
		FallbackTimeout: 8 * time.Second,
	}
}

// Loader is the loading → revealing → complete state machine. onComplete
// fires exactly once per Loader. It is not safe for concurrent use.
type Loader struct {
	cfg        LoaderConfig
	onComplete func()
	logger     *slog.Logger

	state     State
	mounted   bool
	mountedAt time.Time
	readyAt   time.Time
	fired     bool
	closed    bool
}

func NewLoader(cfg LoaderConfig, onComplete func()) *Loader {
	return &Loader{cfg: cfg, onComplete: onComplete, logger: slog.Default()}
}

// State returns the current state.
func (l *Loader) State() State { return l.state }

// Completed reports whether the completion callback has fired.
func (l *Loader) Completed() bool { return l.fired }

// CanvasVisible reports whether the reveal fade has finished.
func (l *Loader) CanvasVisible(now time.Time) bool {
	switch l.state {
	case StateComplete:
		return true
	case StateRevealing:
		return !now.Before(l.readyAt.Add(l.cfg.RevealDelay))
	default:
		return false
	}
}

// Mount starts the fallback timer. With SkipReveal it completes at once.
func (l *Loader) Mount(now time.Time) {
	if l.mounted || l.closed {
		return
	}
	l.mounted = true
	l.mountedAt = now
	if l.cfg.SkipReveal {
		l.transition(StateComplete)
	}
}

// Ready signals that the streaming library has attached to the canvas.
// Repeat signals are ignored.
func (l *Loader) Ready(now time.Time) {
	if !l.mounted || l.closed || l.state != StateLoading {
		return
	}
	l.readyAt = now
	l.transition(StateRevealing)
	l.Tick(now)
}

// Fail records a load failure. The failure is logged and treated as ready
// so the page never hangs on the overlay.
func (l *Loader) Fail(now time.Time, err error) {
	if l.closed {
		return
	}
	l.logger.Warn("point cloud load failed", "error", err)
	l.Ready(now)
}

// Tick advances timers to now.
func (l *Loader) Tick(now time.Time) {
	if !l.mounted || l.closed {
		return
	}
	if l.state == StateLoading {
		deadline := l.mountedAt.Add(l.cfg.FallbackTimeout)
		if now.Before(deadline) {
			return
		}
		l.logger.Warn("point cloud readiness timed out, revealing anyway",
			"timeout", l.cfg.FallbackTimeout,
		)
		l.readyAt = deadline
		l.transition(StateRevealing)
	}
	if l.state == StateRevealing {
		if !now.Before(l.readyAt.Add(l.cfg.RevealDelay + l.cfg.SettleDelay)) {
			l.transition(StateComplete)
		}
	}
}

// Close cancels pending transitions. No callback fires after Close.
func (l *Loader) Close() { l.closed = true }

func (l *Loader) transition(to State) {
	if !canTransition(l.state, to) {
		l.logger.Error("invalid loader transition", "from", l.state, "to", to)
		return
	}
	l.state = to
	if to == StateComplete && !l.fired {
		l.fired = true
		if l.onComplete != nil {
			l.onComplete()
		}
	}
}
