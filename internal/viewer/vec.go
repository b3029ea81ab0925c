package viewer

import "math"

// Vec3 is a point or direction in dataset space. Z is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64         { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Lerp interpolates from v to o by t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// rotateZ rotates v about the Z axis by angle radians.
func (v Vec3) rotateZ(angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos, v.Z}
}

// Up is the world up axis.
var Up = Vec3{Z: 1}

// BoundingBox is an axis-aligned box.
type BoundingBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

func (b BoundingBox) Center() Vec3 { return b.Min.Lerp(b.Max, 0.5) }

func (b BoundingBox) Size() Vec3 { return b.Max.Sub(b.Min) }

// Radius is half the box diagonal.
func (b BoundingBox) Radius() float64 { return b.Size().Len() / 2 }

// Valid reports whether Min <= Max on every axis and the box has volume.
func (b BoundingBox) Valid() bool {
	s := b.Size()
	return s.X >= 0 && s.Y >= 0 && s.Z >= 0 && s.Len() > 0
}

// Pose is a camera position looking at a target.
type Pose struct {
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
}

// Lerp interpolates both position and target.
func (p Pose) Lerp(o Pose, t float64) Pose {
	return Pose{Position: p.Position.Lerp(o.Position, t), Target: p.Target.Lerp(o.Target, t)}
}

// Direction is the unit viewing direction.
func (p Pose) Direction() Vec3 { return p.Target.Sub(p.Position).Normalize() }
