package viewer

import "time"

// Config bundles loader and camera tuning.
type Config struct {
	Loader LoaderConfig
	Camera CameraConfig
}

func DefaultConfig() Config {
	return Config{Loader: DefaultLoaderConfig(), Camera: DefaultCameraConfig()}
}

// Viewer is one mounted viewer instance: the loading overlay plus the
// camera framed on the dataset bounds.
type Viewer struct {
	loader *Loader
	camera *Camera
}

// New mounts a viewer at now. onComplete fires once, when the overlay
// finishes (immediately when cfg.Loader.SkipReveal is set).
func New(cfg Config, bounds BoundingBox, now time.Time, onComplete func()) *Viewer {
	v := &Viewer{
		loader: NewLoader(cfg.Loader, onComplete),
		camera: NewCamera(bounds, cfg.Camera, now),
	}
	v.loader.Mount(now)
	return v
}

func (v *Viewer) Loader() *Loader { return v.loader }

func (v *Viewer) Camera() *Camera { return v.camera }

// Tick drives both state machines.
func (v *Viewer) Tick(now time.Time) {
	v.loader.Tick(now)
	v.camera.Tick(now)
}

// Close tears the viewer down; pending loader transitions are dropped.
func (v *Viewer) Close() { v.loader.Close() }

// HUD is a snapshot for the on-screen overlay.
type HUD struct {
	State        State  `json:"state"`
	ActivePreset string `json:"activePreset,omitempty"`
	Orbiting     bool   `json:"orbiting"`
	Flying       bool   `json:"flying"`
	KeysHeld     int    `json:"keysHeld"`
	Pose         Pose   `json:"pose"`
}

func (v *Viewer) HUD() HUD {
	return HUD{
		State:        v.loader.State(),
		ActivePreset: v.camera.ActivePreset(),
		Orbiting:     v.camera.Orbiting(),
		Flying:       v.camera.Flying(),
		KeysHeld:     v.camera.KeysHeld(),
		Pose:         v.camera.Pose(),
	}
}
