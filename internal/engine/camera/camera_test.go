package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/planetarium/internal/engine/input"
)

const eps = 1e-4

func snapshot(keys ...input.Key) input.Snapshot {
	s := input.NewState()
	for _, k := range keys {
		s.Apply(input.Event{Type: input.EventKeyDown, Key: k})
	}
	return s.Snapshot()
}

func TestDefaultOrientation(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{0, 0, 30})
	assert.True(t, c.Forward().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, eps))
	assert.True(t, c.Right().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps))
	assert.True(t, c.Up().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, eps))
}

func TestViewMatrixMapsPositionToOrigin(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{3, -2, 30})
	c.Yaw = 0.7
	c.Pitch = -0.3
	p := c.ViewMatrix().Mul4x1(c.Position.Vec4(1)).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{}, eps), "got %v", p)

	ahead := c.Position.Add(c.Forward().Mul(5))
	q := c.ViewMatrix().Mul4x1(ahead.Vec4(1)).Vec3()
	assert.True(t, q.ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, eps), "ahead lands on -Z: %v", q)
}

func TestMovement(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.MoveSpeed = 2

	c.Update(snapshot(input.KeyW), 0.5)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, eps), "%v", c.Position)

	c.Update(snapshot(input.KeyD, input.KeySpace), 1)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{2, 2, -1}, eps), "%v", c.Position)

	c.Update(snapshot(input.KeyW, input.KeyS, input.KeyA, input.KeyD), 1)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{2, 2, -1}, eps), "opposing keys cancel")
}

func TestMouseLookClampsPitch(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.MouseSpeed = 0.01

	c.HandleMouse(10, 0)
	assert.InDelta(t, -0.1, c.Yaw, eps)

	c.HandleMouse(0, -1e6)
	assert.InDelta(t, maxPitch, c.Pitch, eps)
	c.HandleMouse(0, 1e6)
	assert.InDelta(t, -maxPitch, c.Pitch, eps)
}

func TestTilt(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.TiltSpeed = math32.Pi / 2

	c.Update(snapshot(input.KeyE), 1)
	assert.InDelta(t, math32.Pi/2, c.Roll, eps)
	assert.True(t, c.Up().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps), "up rolled right: %v", c.Up())
}

func TestViewProjection(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{0, 0, 10})
	vp := c.ViewProjection(16.0 / 9)
	want := mgl32.Perspective(c.FOV, 16.0/9, c.Near, c.Far).Mul4(c.ViewMatrix())
	assert.True(t, vp.ApproxEqualThreshold(want, eps))

	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), eps, "origin is centred")
	assert.InDelta(t, 0, clip.Y()/clip.W(), eps)
}
