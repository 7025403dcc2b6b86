package scene

import "fmt"

// Kind tags what a node represents. The numeric values are uploaded as
// u_node_type and must stay in sync with the fragment shader.
type Kind uint32

const (
	KindGeometry Kind = iota
	KindSkybox
	KindGeometry2D
	KindPlanet
	KindOcean
	KindLightSource
	KindEmpty
)

var kindNames = [...]string{
	KindGeometry:    "geometry",
	KindSkybox:      "skybox",
	KindGeometry2D:  "geometry2d",
	KindPlanet:      "planet",
	KindOcean:       "ocean",
	KindLightSource: "light",
	KindEmpty:       "empty",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Drawable reports whether nodes of this kind carry geometry. It panics on a
// value outside the declared set.
func (k Kind) Drawable() bool {
	switch k {
	case KindGeometry, KindGeometry2D, KindPlanet, KindOcean, KindSkybox:
		return true
	case KindLightSource, KindEmpty:
		return false
	default:
		panic(fmt.Sprintf("scene: unknown node kind %d", uint32(k)))
	}
}
