package viewer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestViewer_HUD(t *testing.T) {
	done := 0
	v := New(DefaultConfig(), testBounds, epoch, func() { done++ })

	hud := v.HUD()
	if hud.State != StateLoading || hud.ActivePreset != PresetFront || hud.Flying {
		t.Errorf("initial HUD = %+v", hud)
	}

	v.Loader().Ready(epoch.Add(time.Second))
	_ = v.Camera().Preset(PresetAbove, epoch.Add(time.Second))
	v.Camera().KeyDown(KeyQ, epoch.Add(1100*time.Millisecond))
	v.Tick(epoch.Add(3 * time.Second))

	hud = v.HUD()
	if hud.State != StateComplete || done != 1 {
		t.Errorf("state = %s, callbacks = %d", hud.State, done)
	}
	if hud.KeysHeld != 1 || hud.Flying || hud.ActivePreset != "" {
		t.Errorf("HUD = %+v", hud)
	}
}

func TestViewer_SkipRevealCompletesOnMount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Loader.SkipReveal = true
	done := 0
	v := New(cfg, testBounds, epoch, func() { done++ })
	if v.HUD().State != StateComplete || done != 1 {
		t.Errorf("state = %s, callbacks = %d", v.HUD().State, done)
	}
}

func TestViewer_CloseStopsCompletion(t *testing.T) {
	done := 0
	v := New(DefaultConfig(), testBounds, epoch, func() { done++ })
	v.Loader().Fail(epoch, errors.New("network"))
	v.Close()
	v.Tick(epoch.Add(time.Minute))
	if done != 0 {
		t.Error("completion fired after Close")
	}
}

type countingTicker struct{ n atomic.Int32 }

func (c *countingTicker) Tick(time.Time) { c.n.Add(1) }

func TestRun_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tk := &countingTicker{}
	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, SystemClock{}, time.Millisecond, tk) }()

	deadline := time.After(2 * time.Second)
	for tk.n.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("ticker never ticked")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(epoch)
	if got := c.Advance(time.Second); !got.Equal(epoch.Add(time.Second)) || !c.Now().Equal(got) {
		t.Errorf("Advance = %v, Now = %v", got, c.Now())
	}
}
