package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		want     mgl32.Vec3
	}{
		{0, 0, mgl32.Vec3{0, 0, 1}},
		{90, 0, mgl32.Vec3{1, 0, 0}},
		{180, 0, mgl32.Vec3{0, 0, -1}},
		{0, 90, mgl32.Vec3{0, 1, 0}},
		{45, 45, mgl32.Vec3{0.5, 0.70710677, 0.5}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.lon, tt.lat)
		assert.True(t, got.ApproxEqualThreshold(tt.want, eps), "lon=%v lat=%v: %v", tt.lon, tt.lat, got)
		assert.InDelta(t, 1, got.Len(), eps)
	}
}

func TestNewLightSource(t *testing.T) {
	g := NewGraph()
	l := NewLightSource(g, LightDirectional, mgl32.Vec3{1, 1, 1}, "sun")

	n := g.Node(l.Node)
	assert.Equal(t, KindLightSource, n.Kind)
	assert.Equal(t, "sun", n.Name)
	assert.Equal(t, NoNode, g.Parent(l.Node))
	assert.False(t, n.Kind.Drawable())
}
