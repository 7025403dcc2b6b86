package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightKind selects how a light illuminates the scene.
type LightKind int

const (
	LightPoint LightKind = iota
	LightSpot
	LightDirectional
)

// LightSource pairs a color with a LightSource node positioned in the graph.
type LightSource struct {
	Color mgl32.Vec3
	Kind  LightKind
	Node  NodeID
}

// NewLightSource adds a detached LightSource node to g.
func NewLightSource(g *Graph, kind LightKind, color mgl32.Vec3, name string) LightSource {
	return LightSource{
		Color: color,
		Kind:  kind,
		Node:  g.NewTyped(KindLightSource, name),
	}
}

// SunDirection converts a longitude (degrees about +Y, 0 toward +Z) and a
// latitude (degrees above the XZ plane) into a unit vector pointing at the sun.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	sinLon, cosLon := math32.Sincos(mgl32.DegToRad(longitude))
	sinLat, cosLat := math32.Sincos(mgl32.DegToRad(latitude))
	return mgl32.Vec3{cosLat * sinLon, sinLat, cosLat * cosLon}
}
