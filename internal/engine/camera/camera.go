// Package camera provides the free-flying camera used to look around the scene.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/planetarium/internal/engine/input"
)

// maxPitch keeps the view direction away from the poles where look-at degenerates.
const maxPitch = math32.Pi/2 - 0.01

// FlyCamera moves freely with keyboard input and turns with the mouse.
type FlyCamera struct {
	Position mgl32.Vec3

	// Orientation in radians. Yaw 0 and pitch 0 look down -Z.
	Yaw   float32
	Pitch float32
	Roll  float32

	// Projection
	FOV  float32 // vertical, radians
	Near float32
	Far  float32

	// Speeds
	MoveSpeed  float32 // units per second
	MouseSpeed float32 // radians per pixel
	TiltSpeed  float32 // radians per second
}

// NewFlyCamera creates a camera at position looking down -Z.
func NewFlyCamera(position mgl32.Vec3) *FlyCamera {
	return &FlyCamera{
		Position:   position,
		FOV:        mgl32.DegToRad(60),
		Near:       0.1,
		Far:        1000,
		MoveSpeed:  10,
		MouseSpeed: 0.003,
		TiltSpeed:  1,
	}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return mgl32.Vec3{-sy * cp, sp, -cy * cp}
}

// Right returns the unit direction to the right of the view, ignoring roll.
func (c *FlyCamera) Right() mgl32.Vec3 {
	return c.Forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Up returns the camera's up vector including roll.
func (c *FlyCamera) Up() mgl32.Vec3 {
	f := c.Forward()
	up := c.Right().Cross(f)
	if c.Roll == 0 {
		return up
	}
	return mgl32.QuatRotate(c.Roll, f).Rotate(up)
}

// HandleMouse turns the camera by a mouse delta in pixels.
func (c *FlyCamera) HandleMouse(dx, dy float32) {
	c.Yaw -= dx * c.MouseSpeed
	c.Pitch -= dy * c.MouseSpeed
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// HandleMovement moves the camera. Arguments are in [-1, 1] along the view axes.
func (c *FlyCamera) HandleMovement(forward, right, up float32, dt float32) {
	step := c.MoveSpeed * dt
	c.Position = c.Position.
		Add(c.Forward().Mul(forward * step)).
		Add(c.Right().Mul(right * step)).
		Add(mgl32.Vec3{0, up * step, 0})
}

// Update applies one frame of input: mouse look, WASD movement, Space/Shift
// for vertical movement and Q/E to tilt.
func (c *FlyCamera) Update(in input.Snapshot, dt float32) {
	c.HandleMouse(in.MouseDX, in.MouseDY)

	var forward, right, up, tilt float32
	if in.Held(input.KeyW) {
		forward++
	}
	if in.Held(input.KeyS) {
		forward--
	}
	if in.Held(input.KeyD) {
		right++
	}
	if in.Held(input.KeyA) {
		right--
	}
	if in.Held(input.KeySpace) {
		up++
	}
	if in.Held(input.KeyLShift) {
		up--
	}
	if in.Held(input.KeyE) {
		tilt++
	}
	if in.Held(input.KeyQ) {
		tilt--
	}

	c.HandleMovement(forward, right, up, dt)
	c.Roll += tilt * c.TiltSpeed * dt
}

// ViewMatrix returns the world-to-camera transform.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), c.Up())
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *FlyCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection × view.
func (c *FlyCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}
