package viewer

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/3dmm/site/internal/anim"
)

// ErrUnknownPreset is returned by Preset for names not in PresetNames.
var ErrUnknownPreset = errors.New("unknown camera preset")

// Preset names, in display order.
const (
	PresetFront    = "front"
	PresetAbove    = "above"
	PresetSide     = "side"
	PresetInterior = "interior"
)

var PresetNames = []string{PresetFront, PresetAbove, PresetSide, PresetInterior}

// Presets computes the named viewpoints for a bounding box.
func Presets(b BoundingBox) map[string]Pose {
	c := b.Center()
	s := b.Size()
	r := b.Radius()
	return map[string]Pose{
		PresetFront: {
			Position: Vec3{c.X, c.Y - 1.8*r, c.Z + 0.35*r},
			Target:   c,
		},
		PresetAbove: {
			// A small Y offset keeps the view direction off the up axis.
			Position: Vec3{c.X, c.Y - 0.01*r, c.Z + 2.2*r},
			Target:   c,
		},
		PresetSide: {
			Position: Vec3{c.X + 1.8*r, c.Y, c.Z + 0.35*r},
			Target:   c,
		},
		PresetInterior: {
			Position: Vec3{c.X, c.Y - 0.25*s.Y, b.Min.Z + 0.35*s.Z},
			Target:   Vec3{c.X, c.Y + 0.25*s.Y, b.Min.Z + 0.35*s.Z},
		},
	}
}

// Key is a navigation key.
type Key int

const (
	KeyW Key = iota + 1
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyLeft
	KeyRight
)

// ParseKey accepts DOM key or code names, case-insensitively.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case "w", "keyw":
		return KeyW, true
	case "a", "keya":
		return KeyA, true
	case "s", "keys":
		return KeyS, true
	case "d", "keyd":
		return KeyD, true
	case "q", "keyq":
		return KeyQ, true
	case "e", "keye":
		return KeyE, true
	case "arrowleft", "left":
		return KeyLeft, true
	case "arrowright", "right":
		return KeyRight, true
	}
	return 0, false
}

// CameraConfig holds camera motion tuning.
type CameraConfig struct {
	FlyDuration time.Duration
	// MoveSpeed is the fraction of the box diagonal travelled per second
	// while a movement key is held.
	MoveSpeed float64
	// YawSpeed is in radians per second.
	YawSpeed float64
	// AutoOrbit enables orbiting after IdleThreshold without interaction.
	AutoOrbit     bool
	OrbitSpeed    float64
	IdleThreshold time.Duration
	// FocusDistance is the fraction of the box diagonal a double-click
	// focus stops short of the picked point.
	FocusDistance float64
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FlyDuration:   1500 * time.Millisecond,
		MoveSpeed:     0.25,
		YawSpeed:      math.Pi / 3,
		AutoOrbit:     true,
		OrbitSpeed:    0.1,
		IdleThreshold: 5 * time.Second,
		FocusDistance: 0.15,
	}
}

type flight struct {
	from, to Pose
	start    time.Time
	duration time.Duration
}

func (f flight) at(now time.Time) (Pose, bool) {
	if f.duration <= 0 {
		return f.to, true
	}
	p := anim.Clamp01(float64(now.Sub(f.start)) / float64(f.duration))
	if p >= 1 {
		return f.to, true
	}
	return f.from.Lerp(f.to, anim.EaseInOutCubic(p)), false
}

// Camera is the free-camera controller. It is not safe for concurrent use.
type Camera struct {
	cfg     CameraConfig
	bounds  BoundingBox
	presets map[string]Pose

	pose            Pose
	flight          *flight
	keys            map[Key]bool
	activePreset    string
	orbiting        bool
	lastTick        time.Time
	lastInteraction time.Time
}

// NewCamera starts at the front preset.
func NewCamera(bounds BoundingBox, cfg CameraConfig, now time.Time) *Camera {
	presets := Presets(bounds)
	return &Camera{
		cfg:             cfg,
		bounds:          bounds,
		presets:         presets,
		pose:            presets[PresetFront],
		keys:            make(map[Key]bool),
		activePreset:    PresetFront,
		lastTick:        now,
		lastInteraction: now,
	}
}

// Pose returns the pose as of the last Tick or input.
func (c *Camera) Pose() Pose { return c.pose }

// Flying reports whether a fly-to is in progress.
func (c *Camera) Flying() bool { return c.flight != nil }

// ActivePreset is the preset last flown to, or "" once the camera has been
// moved off it.
func (c *Camera) ActivePreset() string { return c.activePreset }

// Orbiting reports whether auto-orbit is currently engaged.
func (c *Camera) Orbiting() bool { return c.orbiting }

// Preset flies to the named preset.
func (c *Camera) Preset(name string, now time.Time) error {
	to, ok := c.presets[name]
	if !ok {
		return ErrUnknownPreset
	}
	c.FlyTo(to, now)
	c.activePreset = name
	return nil
}

// FlyTo eases from the current pose to to. An in-flight fly-to is replaced,
// never compounded.
func (c *Camera) FlyTo(to Pose, now time.Time) {
	c.Tick(now)
	c.interact(now)
	c.flight = &flight{from: c.pose, to: to, start: now, duration: c.cfg.FlyDuration}
	c.activePreset = ""
}

// DoubleClick focuses point, keeping the current viewing direction.
func (c *Camera) DoubleClick(point Vec3, now time.Time) {
	c.Tick(now)
	dir := c.pose.Direction()
	if dir == (Vec3{}) {
		dir = Vec3{Y: 1}
	}
	dist := c.bounds.Size().Len() * c.cfg.FocusDistance
	c.FlyTo(Pose{Position: point.Sub(dir.Scale(dist)), Target: point}, now)
}

// KeyDown starts continuous movement. It cancels any fly-to, leaving the
// camera where the flight had reached.
func (c *Camera) KeyDown(k Key, now time.Time) {
	c.Tick(now)
	c.interact(now)
	c.flight = nil
	c.activePreset = ""
	c.keys[k] = true
}

// KeyUp stops movement for k.
func (c *Camera) KeyUp(k Key, now time.Time) {
	c.Tick(now)
	c.interact(now)
	delete(c.keys, k)
}

// Interact records pointer input such as dragging or zooming.
func (c *Camera) Interact(now time.Time) {
	c.Tick(now)
	c.interact(now)
}

// KeysHeld returns the number of held movement keys.
func (c *Camera) KeysHeld() int { return len(c.keys) }

// Tick advances the flight, held-key movement and auto-orbit to now.
func (c *Camera) Tick(now time.Time) {
	dt := now.Sub(c.lastTick).Seconds()
	if dt < 0 {
		dt = 0
	}
	prev := c.lastTick
	c.lastTick = now

	c.advanceFlight(now)
	if len(c.keys) > 0 {
		c.move(dt)
		return
	}
	c.orbit(prev, now)
}

func (c *Camera) interact(now time.Time) {
	c.lastInteraction = now
	c.orbiting = false
}

func (c *Camera) advanceFlight(now time.Time) {
	if c.flight == nil {
		return
	}
	pose, done := c.flight.at(now)
	c.pose = pose
	if done {
		c.flight = nil
	}
}

func (c *Camera) move(dt float64) {
	forward := c.pose.Target.Sub(c.pose.Position)
	forward.Z = 0
	forward = forward.Normalize()
	if forward == (Vec3{}) {
		forward = Vec3{Y: 1}
	}
	right := forward.Cross(Up)

	var dir Vec3
	var yaw float64
	for k := range c.keys {
		switch k {
		case KeyW:
			dir = dir.Add(forward)
		case KeyS:
			dir = dir.Sub(forward)
		case KeyD:
			dir = dir.Add(right)
		case KeyA:
			dir = dir.Sub(right)
		case KeyE:
			dir = dir.Add(Up)
		case KeyQ:
			dir = dir.Sub(Up)
		case KeyLeft:
			yaw++
		case KeyRight:
			yaw--
		}
	}

	step := dir.Normalize().Scale(c.bounds.Size().Len() * c.cfg.MoveSpeed * dt)
	c.pose.Position = c.pose.Position.Add(step)
	c.pose.Target = c.pose.Target.Add(step)

	if yaw != 0 {
		look := c.pose.Target.Sub(c.pose.Position).rotateZ(yaw * c.cfg.YawSpeed * dt)
		c.pose.Target = c.pose.Position.Add(look)
	}
}

// orbit rotates around the target once the camera has been idle for
// IdleThreshold. Only time after the threshold counts.
func (c *Camera) orbit(prev, now time.Time) {
	if !c.cfg.AutoOrbit || c.flight != nil {
		c.orbiting = false
		return
	}
	engageAt := c.lastInteraction.Add(c.cfg.IdleThreshold)
	if now.Before(engageAt) {
		c.orbiting = false
		return
	}
	from := prev
	if from.Before(engageAt) {
		from = engageAt
	}
	c.orbiting = true
	angle := c.cfg.OrbitSpeed * now.Sub(from).Seconds()
	if angle > 0 {
		c.activePreset = ""
	}
	arm := c.pose.Position.Sub(c.pose.Target).rotateZ(angle)
	c.pose.Position = c.pose.Target.Add(arm)
}
