package anim

import (
	"sort"
	"strconv"
	"time"
)

// Step is a one-shot action fired At after the sequence starts.
type Step struct {
	Name string
	At   time.Duration
	Fire func()
}

// Sequence fires its steps in order, each exactly once, as Tick observes
// their deadlines pass. It is not safe for concurrent use.
type Sequence struct {
	steps     []Step
	start     time.Time
	started   bool
	cancelled bool
	next      int
}

// NewSequence orders steps by At. Steps with equal At keep their given order.
func NewSequence(steps ...Step) *Sequence {
	s := make([]Step, len(steps))
	copy(s, steps)
	sort.SliceStable(s, func(i, j int) bool { return s[i].At < s[j].At })
	return &Sequence{steps: s}
}

// Start anchors the sequence at now. Later calls are ignored.
func (s *Sequence) Start(now time.Time) {
	if s.started || s.cancelled {
		return
	}
	s.started = true
	s.start = now
}

// Tick fires every step whose deadline has passed and returns their names.
func (s *Sequence) Tick(now time.Time) []string {
	if !s.started || s.cancelled {
		return nil
	}
	elapsed := now.Sub(s.start)
	var fired []string
	for s.next < len(s.steps) && s.steps[s.next].At <= elapsed {
		step := s.steps[s.next]
		s.next++
		if step.Fire != nil {
			step.Fire()
		}
		fired = append(fired, step.Name)
	}
	return fired
}

// Cancel drops every step not yet fired.
func (s *Sequence) Cancel() { s.cancelled = true }

// Done reports whether every step has fired or the sequence was cancelled.
func (s *Sequence) Done() bool { return s.cancelled || s.next >= len(s.steps) }

// Hero reveal offsets, measured from the storyboard completing.
const (
	TaglineDelay    = 1400 * time.Millisecond
	AutoScrollDelay = 2000 * time.Millisecond
)

// CounterDelays are the staggered reveal offsets of the three hero counters.
var CounterDelays = []time.Duration{
	1900 * time.Millisecond,
	2200 * time.Millisecond,
	2500 * time.Millisecond,
}

// HeroReveal builds the post-storyboard sequence: the tagline, then each
// counter in turn. onCounter receives the counter index.
func HeroReveal(onTagline func(), onCounter func(i int)) *Sequence {
	steps := []Step{{Name: "tagline", At: TaglineDelay, Fire: onTagline}}
	for i, d := range CounterDelays {
		var fire func()
		if onCounter != nil {
			fire = func() { onCounter(i) }
		}
		steps = append(steps, Step{Name: "counter-" + strconv.Itoa(i), At: d, Fire: fire})
	}
	return NewSequence(steps...)
}
