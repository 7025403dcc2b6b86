package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Face places the unit plane y=0, x,z in [-1, 1] onto one side of the cube.
// Rotation holds Euler angles in radians; Offset is the outward axis of the face.
type Face struct {
	Name     string
	Rotation mgl32.Vec3
	Offset   mgl32.Vec3
}

// The six cube faces. Each rotation maps the +Y plane normal onto Offset.
var (
	FaceTop    = Face{Name: "top", Offset: mgl32.Vec3{0, 1, 0}}
	FaceBottom = Face{Name: "bottom", Rotation: mgl32.Vec3{math32.Pi, 0, 0}, Offset: mgl32.Vec3{0, -1, 0}}
	FaceFront  = Face{Name: "front", Rotation: mgl32.Vec3{math32.Pi / 2, 0, 0}, Offset: mgl32.Vec3{0, 0, 1}}
	FaceBack   = Face{Name: "back", Rotation: mgl32.Vec3{-math32.Pi / 2, 0, 0}, Offset: mgl32.Vec3{0, 0, -1}}
	FaceLeft   = Face{Name: "left", Rotation: mgl32.Vec3{0, 0, -math32.Pi / 2}, Offset: mgl32.Vec3{1, 0, 0}}
	FaceRight  = Face{Name: "right", Rotation: mgl32.Vec3{0, 0, math32.Pi / 2}, Offset: mgl32.Vec3{-1, 0, 0}}
)

// Faces lists the cube faces in assembly order.
var Faces = [6]Face{FaceTop, FaceBottom, FaceFront, FaceBack, FaceLeft, FaceRight}

// matrix returns the transform that carries the local grid onto the cube surface.
func (f Face) matrix() mgl32.Mat4 {
	return mgl32.Translate3D(f.Offset.X(), f.Offset.Y(), f.Offset.Z()).
		Mul4(mgl32.HomogRotate3DY(f.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(f.Rotation.Z())).
		Mul4(mgl32.HomogRotate3DX(f.Rotation.X()))
}

// CubesphereFace builds one face of a cubesphere: an (n+1)x(n+1) grid laid on the
// cube face and projected onto the unit sphere. Normals are the radial directions,
// UVs are the grid coordinates before projection, and each grid cell becomes two
// counter-clockwise triangles seen from outside.
func CubesphereFace(face Face, subdivisions int, color mgl32.Vec4) (*Mesh, error) {
	if subdivisions < 1 {
		return nil, fmt.Errorf("cubesphere face %q: %w (got %d)", face.Name, ErrInvalidSubdivisions, subdivisions)
	}

	side := subdivisions + 1
	vertexCount := side * side
	m := &Mesh{
		Positions: make([]float32, 0, vertexCount*PositionComponents),
		Colors:    make([]float32, 0, vertexCount*ColorComponents),
		Normals:   make([]float32, 0, vertexCount*NormalComponents),
		TexCoords: make([]float32, 0, vertexCount*TexCoordComponents),
		Indices:   make([]uint32, 0, subdivisions*subdivisions*6),
	}

	transform := face.matrix()
	step := 1 / float32(subdivisions)

	for i := 0; i < side; i++ {
		u := float32(i) * step
		for j := 0; j < side; j++ {
			v := float32(j) * step

			local := mgl32.Vec4{2*u - 1, 0, 2*v - 1, 1}
			p := transform.Mul4x1(local).Vec3()
			dir := normalize(p)

			m.Positions = append(m.Positions, dir[0], dir[1], dir[2])
			m.Normals = append(m.Normals, dir[0], dir[1], dir[2])
			m.Colors = append(m.Colors, color[0], color[1], color[2], color[3])
			m.TexCoords = append(m.TexCoords, u, v)
		}
	}

	for i := 0; i < subdivisions; i++ {
		for j := 0; j < subdivisions; j++ {
			a := uint32(i*side + j)
			b := a + 1
			c := a + uint32(side)
			d := c + 1
			m.Indices = append(m.Indices, a, b, c, c, b, d)
		}
	}
	m.IndexCount = int32(len(m.Indices))

	return m, nil
}

// PlanetFaces generates all six faces of a unit cubesphere in Faces order.
// Edge vertices are duplicated between faces, not welded.
func PlanetFaces(subdivisions int, color mgl32.Vec4) ([]*Mesh, error) {
	meshes := make([]*Mesh, 0, len(Faces))
	for _, face := range Faces {
		m, err := CubesphereFace(face, subdivisions, color)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Skybox generates the six faces of a cubesphere seen from the inside.
func Skybox(subdivisions int, color mgl32.Vec4) ([]*Mesh, error) {
	meshes, err := PlanetFaces(subdivisions, color)
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	for _, m := range meshes {
		m.FlipWinding()
	}
	return meshes, nil
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return mgl32.Vec3{v[0] / l, v[1] / l, v[2] / l}
}
