// Package scene holds the placed solids, the solid being edited and the
// perspective camera that maps between them and viewport pixels.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/handsculpt/internal/gesture"
)

// Camera defaults.
const (
	DefaultFovY     = 75.0
	DefaultNear     = 0.1
	DefaultFar      = 1000.0
	DefaultDistance = 4.0

	// DefaultOrbitSensitivity is radians of orbit per pixel of hand motion.
	DefaultOrbitSensitivity = 0.005

	// elevationLimit keeps the camera off the poles.
	elevationLimit = math.Pi/2 - 0.1
)

// Camera is a perspective camera looking at Target. It is a value type;
// copies are independent.
type Camera struct {
	FovY     float64          `json:"fov_y"`
	Near     float64          `json:"near"`
	Far      float64          `json:"far"`
	Eye      mgl64.Vec3       `json:"eye"`
	Target   mgl64.Vec3       `json:"target"`
	Up       mgl64.Vec3       `json:"up"`
	Viewport gesture.Viewport `json:"viewport"`
}

// DefaultCamera returns a camera at (0, 0, 4) looking at the origin.
func DefaultCamera(vp gesture.Viewport) Camera {
	return Camera{
		FovY:     DefaultFovY,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Eye:      mgl64.Vec3{0, 0, DefaultDistance},
		Up:       mgl64.Vec3{0, 1, 0},
		Viewport: vp,
	}
}

// WithViewport returns a copy of c rendering into vp.
func (c Camera) WithViewport(vp gesture.Viewport) Camera {
	c.Viewport = vp
	return c
}

// Aspect returns the viewport aspect ratio.
func (c Camera) Aspect() float64 {
	if c.Viewport.Height <= 0 {
		return 1
	}
	return c.Viewport.Width / c.Viewport.Height
}

// View returns the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the camera-to-clip matrix.
func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Forward returns the unit viewing direction.
func (c Camera) Forward() mgl64.Vec3 {
	return c.Target.Sub(c.Eye).Normalize()
}

// Project maps a world point to viewport pixels (Y down) and its normalised
// device depth in [-1, 1].
func (c Camera) Project(p mgl64.Vec3) (x, y, depth float64) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	w := clip.W()
	if w == 0 {
		w = 1e-12
	}
	ndc := clip.Vec3().Mul(1 / w)
	x = (ndc.X() + 1) / 2 * c.Viewport.Width
	y = (1 - ndc.Y()) / 2 * c.Viewport.Height
	return x, y, ndc.Z()
}

// Unproject maps viewport pixels and a normalised device depth back to a
// world point.
func (c Camera) Unproject(x, y, depth float64) mgl64.Vec3 {
	ndc := mgl64.Vec4{
		x/c.Viewport.Width*2 - 1,
		1 - y/c.Viewport.Height*2,
		depth,
		1,
	}
	world := c.ViewProjection().Inv().Mul4x1(ndc)
	return world.Vec3().Mul(1 / world.W())
}

// Ray returns the ray from the eye through viewport pixel (x, y).
func (c Camera) Ray(x, y float64) Ray {
	through := c.Unproject(x, y, 0.5)
	return Ray{Origin: c.Eye, Dir: through.Sub(c.Eye).Normalize()}
}

// Orbit rotates the eye around Target by a screen-space hand displacement of
// (dx, dy) pixels. Moving the hand right swings the camera left; elevation
// stays short of the poles.
func (c *Camera) Orbit(dx, dy, sensitivity float64) {
	offset := c.Eye.Sub(c.Target)
	r := offset.Len()
	if r == 0 {
		return
	}
	azimuth := math.Atan2(offset.X(), offset.Z()) - dx*sensitivity
	elevation := math.Atan2(offset.Y(), math.Hypot(offset.X(), offset.Z())) + dy*sensitivity
	elevation = mgl64.Clamp(elevation, -elevationLimit, elevationLimit)

	c.Eye = c.Target.Add(mgl64.Vec3{
		r * math.Sin(azimuth) * math.Cos(elevation),
		r * math.Sin(elevation),
		r * math.Cos(azimuth) * math.Cos(elevation),
	})
}

// Angles returns the eye's azimuth and elevation around Target in radians.
func (c Camera) Angles() (azimuth, elevation float64) {
	offset := c.Eye.Sub(c.Target)
	return math.Atan2(offset.X(), offset.Z()), math.Atan2(offset.Y(), math.Hypot(offset.X(), offset.Z()))
}
