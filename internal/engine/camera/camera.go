// Package camera provides the orbit camera that supplies a scene's
// parent (view) transform.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/nodering/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// ZoomStep is the fraction of the distance one zoom step covers.
	ZoomStep float32
}

// NewOrbitCamera creates a camera distance units in front of the origin,
// looking down -Z.
func NewOrbitCamera(distance float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:    distance,
		MinDistance: distance / 4,
		MaxDistance: distance * 4,
		MinPitch:    -1.5,
		MaxPitch:    1.5,
		ZoomStep:    0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	pitchSin, pitchCos := math32.Sincos(c.Pitch)
	yawSin, yawCos := math32.Sincos(c.Yaw)

	return c.Center.Add(math.Vec3{
		X: c.Distance * pitchCos * yawSin,
		Y: c.Distance * pitchSin,
		Z: c.Distance * pitchCos * yawCos,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Center, up)
}

// Orbit turns the camera by the given angles in radians.
func (c *OrbitCamera) Orbit(yaw, pitch float32) {
	c.Yaw += yaw
	c.Pitch = clamp(c.Pitch+pitch, c.MinPitch, c.MaxPitch)
}

// Zoom moves the camera steps zoom steps closer; negative steps move it away.
func (c *OrbitCamera) Zoom(steps float32) {
	c.Distance = clamp(c.Distance-steps*c.Distance*c.ZoomStep, c.MinDistance, c.MaxDistance)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
