package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/3dmm/site/internal/anim"
	"github.com/3dmm/site/internal/site"
	"github.com/3dmm/site/internal/viewer"
)

// ---------------------------------------------------------------------------
// GET /api/viewer
// ---------------------------------------------------------------------------

type stubBounds struct {
	box viewer.BoundingBox
	ok  bool
}

func (s stubBounds) Bounds(context.Context) (viewer.BoundingBox, bool) { return s.box, s.ok }

func getViewer(t *testing.T, src BoundsSource) viewerResponse {
	t.Helper()
	h := NewViewerHandler("https://assets.example.com/hero/metadata.json", src, viewer.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/viewer", nil)
	rec := httptest.NewRecorder()
	h.Viewer(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp viewerResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestViewerHandler_Bootstrap(t *testing.T) {
	box := viewer.BoundingBox{Min: viewer.Vec3{X: 0, Y: 0, Z: 0}, Max: viewer.Vec3{X: 10, Y: 20, Z: 5}}
	resp := getViewer(t, stubBounds{box: box, ok: true})

	if resp.DatasetURL != "https://assets.example.com/hero/metadata.json" {
		t.Errorf("datasetUrl = %q", resp.DatasetURL)
	}
	if resp.Fallback {
		t.Error("fallback should be false for fetched bounds")
	}
	if resp.BoundingBox != box {
		t.Errorf("boundingBox = %+v", resp.BoundingBox)
	}
	if len(resp.Presets) != len(viewer.PresetNames) {
		t.Fatalf("presets = %d", len(resp.Presets))
	}
	want := viewer.Presets(box)
	for i, p := range resp.Presets {
		if p.Name != viewer.PresetNames[i] {
			t.Errorf("preset[%d] = %q, want %q", i, p.Name, viewer.PresetNames[i])
		}
		if p.Pose != want[p.Name] {
			t.Errorf("preset %s pose = %+v, want %+v", p.Name, p.Pose, want[p.Name])
		}
	}
	if resp.Timings.RevealDelayMS != 1200 || resp.Timings.SettleDelayMS != 300 || resp.Timings.FallbackTimeoutMS != 8000 {
		t.Errorf("loader timings = %+v", resp.Timings)
	}
	if resp.Timings.IdleThresholdMS != 5000 || !resp.Camera.AutoOrbit {
		t.Errorf("orbit config = %+v / %+v", resp.Timings, resp.Camera)
	}
}

func TestViewerHandler_FallbackBounds(t *testing.T) {
	resp := getViewer(t, stubBounds{box: viewer.DefaultBounds, ok: false})

	if !resp.Fallback {
		t.Error("expected fallback=true")
	}
	if resp.BoundingBox != viewer.DefaultBounds {
		t.Errorf("boundingBox = %+v", resp.BoundingBox)
	}
}

// ---------------------------------------------------------------------------
// GET /api/hero
// ---------------------------------------------------------------------------

func TestHeroHandler(t *testing.T) {
	c := loadContent(t)
	h := NewHeroHandler(anim.DefaultTimeline(), c.Hero)

	req := httptest.NewRequest(http.MethodGet, "/api/hero", nil)
	rec := httptest.NewRecorder()
	h.Hero(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp heroResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StartDelayMS != 300 || resp.DurationMS != 8800 {
		t.Errorf("timing = start %d, duration %d", resp.StartDelayMS, resp.DurationMS)
	}
	wantPhases := []anim.Phase{anim.PhaseScan, anim.PhaseReveal, anim.PhaseHold, anim.PhaseAssemble, anim.PhaseFinalize}
	if len(resp.Stages) != len(wantPhases) {
		t.Fatalf("stages = %+v", resp.Stages)
	}
	for i, p := range wantPhases {
		if resp.Stages[i].Phase != p {
			t.Errorf("stage[%d] = %q, want %q", i, resp.Stages[i].Phase, p)
		}
	}
	if resp.Stages[3].EndMS != 7500 {
		t.Errorf("assemble end = %d", resp.Stages[3].EndMS)
	}
	if resp.TaglineDelayMS != 1400 {
		t.Errorf("taglineDelayMs = %d", resp.TaglineDelayMS)
	}
	if got := resp.CounterDelaysMS; len(got) != 3 || got[0] != 1900 || got[2] != 2500 {
		t.Errorf("counterDelaysMs = %v", got)
	}
	if len(resp.Counters) != 3 || resp.Counters[0].Target != 240000000 {
		t.Errorf("counters = %+v", resp.Counters)
	}
	if len(resp.Taglines) != 3 || resp.Rotator.IntervalMS != 4000 {
		t.Errorf("taglines = %d, rotator = %+v", len(resp.Taglines), resp.Rotator)
	}
}

func TestHeroHandler_DefaultCounters(t *testing.T) {
	h := NewHeroHandler(anim.DefaultTimeline(), site.Hero{})

	if got := len(h.resp.Counters); got != len(anim.DefaultCounters()) {
		t.Errorf("counters = %d, want defaults", got)
	}
}
