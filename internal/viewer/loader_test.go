package viewer

import (
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestLoader(cfg LoaderConfig) (*Loader, *int) {
	calls := 0
	l := NewLoader(cfg, func() { calls++ })
	l.Mount(epoch)
	return l, &calls
}

func TestLoader_ReadyRevealComplete(t *testing.T) {
	l, calls := newTestLoader(DefaultLoaderConfig())
	if l.State() != StateLoading {
		t.Fatalf("initial state = %s", l.State())
	}

	l.Ready(epoch.Add(time.Second))
	if l.State() != StateRevealing {
		t.Fatalf("after Ready state = %s, want revealing", l.State())
	}
	if l.CanvasVisible(epoch.Add(2 * time.Second)) {
		t.Error("canvas visible before reveal delay")
	}

	l.Tick(epoch.Add(time.Second + 1200*time.Millisecond))
	if !l.CanvasVisible(epoch.Add(time.Second + 1200*time.Millisecond)) {
		t.Error("canvas not visible after reveal delay")
	}
	if l.State() != StateRevealing || *calls != 0 {
		t.Fatalf("completed before settle delay: state=%s calls=%d", l.State(), *calls)
	}

	l.Tick(epoch.Add(time.Second + 1500*time.Millisecond))
	if l.State() != StateComplete {
		t.Fatalf("state = %s, want complete", l.State())
	}
	if *calls != 1 {
		t.Errorf("callback calls = %d, want 1", *calls)
	}
}

func TestLoader_CompletionFiresAtMostOnce(t *testing.T) {
	l, calls := newTestLoader(DefaultLoaderConfig())
	now := epoch
	for i := 0; i < 5; i++ {
		now = now.Add(100 * time.Millisecond)
		l.Ready(now)
	}
	for i := 0; i < 50; i++ {
		now = now.Add(time.Second)
		l.Tick(now)
		l.Ready(now)
		l.Fail(now, errors.New("late failure"))
	}
	if *calls != 1 {
		t.Errorf("callback calls = %d, want 1", *calls)
	}
}

func TestLoader_FallbackWithoutReady(t *testing.T) {
	l, calls := newTestLoader(DefaultLoaderConfig())

	l.Tick(epoch.Add(7999 * time.Millisecond))
	if l.State() != StateLoading {
		t.Fatalf("left loading before fallback: %s", l.State())
	}

	l.Tick(epoch.Add(8 * time.Second))
	if l.State() != StateRevealing {
		t.Fatalf("state = %s, want revealing after fallback", l.State())
	}

	l.Tick(epoch.Add(9500 * time.Millisecond))
	if l.State() != StateComplete || *calls != 1 {
		t.Errorf("state=%s calls=%d, want complete/1", l.State(), *calls)
	}
}

func TestLoader_CoarseTickCatchesUp(t *testing.T) {
	l, calls := newTestLoader(DefaultLoaderConfig())
	l.Tick(epoch.Add(time.Minute))
	if l.State() != StateComplete || *calls != 1 {
		t.Errorf("state=%s calls=%d, want complete/1", l.State(), *calls)
	}
}

func TestLoader_FailTreatedAsReady(t *testing.T) {
	l, calls := newTestLoader(DefaultLoaderConfig())
	l.Fail(epoch.Add(500*time.Millisecond), errors.New("404 metadata.json"))
	if l.State() != StateRevealing {
		t.Fatalf("state = %s, want revealing", l.State())
	}
	l.Tick(epoch.Add(2 * time.Second))
	if *calls != 1 {
		t.Errorf("callback calls = %d, want 1", *calls)
	}
}

func TestLoader_SkipReveal(t *testing.T) {
	cfg := DefaultLoaderConfig()
	cfg.SkipReveal = true
	l, calls := newTestLoader(cfg)
	if l.State() != StateComplete || *calls != 1 {
		t.Fatalf("state=%s calls=%d, want complete/1", l.State(), *calls)
	}
	l.Ready(epoch.Add(time.Second))
	l.Tick(epoch.Add(time.Minute))
	if *calls != 1 {
		t.Errorf("callback calls = %d, want 1", *calls)
	}
}

func TestLoader_CloseCancelsPending(t *testing.T) {
	l, calls := newTestLoader(DefaultLoaderConfig())
	l.Ready(epoch.Add(time.Second))
	l.Close()
	l.Tick(epoch.Add(time.Minute))
	if *calls != 0 {
		t.Errorf("callback fired after Close")
	}
	if l.State() != StateRevealing {
		t.Errorf("state changed after Close: %s", l.State())
	}
}

func TestLoader_IgnoresEventsBeforeMount(t *testing.T) {
	calls := 0
	l := NewLoader(DefaultLoaderConfig(), func() { calls++ })
	l.Ready(epoch)
	l.Tick(epoch.Add(time.Minute))
	if l.State() != StateLoading || calls != 0 {
		t.Errorf("state=%s calls=%d before Mount", l.State(), calls)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateLoading, StateRevealing, true},
		{StateLoading, StateComplete, true},
		{StateRevealing, StateComplete, true},
		{StateRevealing, StateLoading, false},
		{StateComplete, StateRevealing, false},
		{StateComplete, StateLoading, false},
	}
	for _, c := range cases {
		if got := canTransition(c.from, c.to); got != c.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestState_String(t *testing.T) {
	if StateRevealing.String() != "revealing" || State(9).String() != "State(9)" {
		t.Error("unexpected State strings")
	}
}
