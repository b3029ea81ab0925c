package handler

import (
	"context"
	"net/http"

	"github.com/3dmm/site/internal/viewer"
)

// BoundsSource provides the dataset bounding box. The bool is false when a
// fallback box is served.
type BoundsSource interface {
	Bounds(ctx context.Context) (viewer.BoundingBox, bool)
}

// ViewerHandler serves the bootstrap document for the point-cloud viewer.
type ViewerHandler struct {
	datasetURL string
	bounds     BoundsSource
	cfg        viewer.Config
}

func NewViewerHandler(datasetURL string, bounds BoundsSource, cfg viewer.Config) *ViewerHandler {
	return &ViewerHandler{datasetURL: datasetURL, bounds: bounds, cfg: cfg}
}

type viewerPreset struct {
	Name string `json:"name"`
	viewer.Pose
}

type viewerTimings struct {
	RevealDelayMS     int64 `json:"revealDelayMs"`
	SettleDelayMS     int64 `json:"settleDelayMs"`
	FallbackTimeoutMS int64 `json:"fallbackTimeoutMs"`
	FlyDurationMS     int64 `json:"flyDurationMs"`
	IdleThresholdMS   int64 `json:"idleThresholdMs"`
}

type viewerCamera struct {
	MoveSpeed     float64 `json:"moveSpeed"`
	YawSpeed      float64 `json:"yawSpeed"`
	AutoOrbit     bool    `json:"autoOrbit"`
	OrbitSpeed    float64 `json:"orbitSpeed"`
	FocusDistance float64 `json:"focusDistance"`
}

type viewerResponse struct {
	DatasetURL  string             `json:"datasetUrl"`
	BoundingBox viewer.BoundingBox `json:"boundingBox"`
	Fallback    bool               `json:"fallback"`
	Presets     []viewerPreset     `json:"presets"`
	Timings     viewerTimings      `json:"timings"`
	Camera      viewerCamera       `json:"camera"`
}

// Viewer handles GET /api/viewer. Metadata fetch failures are never
// surfaced; the response carries a default box with fallback=true.
func (h *ViewerHandler) Viewer(w http.ResponseWriter, r *http.Request) {
	box, ok := h.bounds.Bounds(r.Context())

	poses := viewer.Presets(box)
	presets := make([]viewerPreset, 0, len(viewer.PresetNames))
	for _, name := range viewer.PresetNames {
		presets = append(presets, viewerPreset{Name: name, Pose: poses[name]})
	}

	lc, cc := h.cfg.Loader, h.cfg.Camera
	writeJSON(w, http.StatusOK, viewerResponse{
		DatasetURL:  h.datasetURL,
		BoundingBox: box,
		Fallback:    !ok,
		Presets:     presets,
		Timings: viewerTimings{
			RevealDelayMS:     lc.RevealDelay.Milliseconds(),
			SettleDelayMS:     lc.SettleDelay.Milliseconds(),
			FallbackTimeoutMS: lc.FallbackTimeout.Milliseconds(),
			FlyDurationMS:     cc.FlyDuration.Milliseconds(),
			IdleThresholdMS:   cc.IdleThreshold.Milliseconds(),
		},
		Camera: viewerCamera{
			MoveSpeed:     cc.MoveSpeed,
			YawSpeed:      cc.YawSpeed,
			AutoOrbit:     cc.AutoOrbit,
			OrbitSpeed:    cc.OrbitSpeed,
			FocusDistance: cc.FocusDistance,
		},
	})
}
