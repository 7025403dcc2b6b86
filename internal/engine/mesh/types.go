// Package mesh provides CPU-side triangle meshes and procedural generators for them.
package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSubdivisions is returned when a generator is asked for fewer than one subdivision.
	ErrInvalidSubdivisions = errors.New("subdivision count must be at least 1")
	// ErrAttributeMismatch is returned when attribute arrays disagree on the vertex count.
	ErrAttributeMismatch = errors.New("vertex attribute arrays have mismatched lengths")
	// ErrIndexOutOfRange is returned when an index refers past the last vertex.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrEmpty is returned for a mesh without triangles.
	ErrEmpty = errors.New("mesh has no triangles")
)

// Attribute component counts per vertex.
const (
	PositionComponents = 3
	ColorComponents    = 4
	NormalComponents   = 3
	TexCoordComponents = 2
)

// Mesh holds flat per-vertex attribute arrays and triangle indices ready for GPU upload.
type Mesh struct {
	Positions []float32
	Colors    []float32
	Normals   []float32
	TexCoords []float32
	Indices   []uint32

	// IndexCount is len(Indices), kept alongside for the draw call.
	IndexCount int32
}

// VertexCount returns the number of vertices described by the position array.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / PositionComponents
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that every attribute has one record per vertex and all indices are in range.
func (m *Mesh) Validate() error {
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrEmpty, len(m.Indices))
	}
	if len(m.Positions)%PositionComponents != 0 {
		return fmt.Errorf("%w: %d position floats", ErrAttributeMismatch, len(m.Positions))
	}

	n := m.VertexCount()
	if len(m.Colors) != n*ColorComponents ||
		len(m.Normals) != n*NormalComponents ||
		len(m.TexCoords) != n*TexCoordComponents {
		return fmt.Errorf("%w: %d vertices, %d colors, %d normals, %d uvs", ErrAttributeMismatch,
			n, len(m.Colors)/ColorComponents, len(m.Normals)/NormalComponents, len(m.TexCoords)/TexCoordComponents)
	}
	if int(m.IndexCount) != len(m.Indices) {
		return fmt.Errorf("%w: index count %d, have %d indices", ErrAttributeMismatch, m.IndexCount, len(m.Indices))
	}

	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d, vertex count %d", ErrIndexOutOfRange, idx, i, n)
		}
	}
	return nil
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) [3]float32 {
	p := m.Positions[i*PositionComponents:]
	return [3]float32{p[0], p[1], p[2]}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) [3]float32 {
	n := m.Normals[i*NormalComponents:]
	return [3]float32{n[0], n[1], n[2]}
}

// FlipWinding reverses the winding of every triangle and negates the normals,
// turning an outward-facing surface into an inward-facing one.
func (m *Mesh) FlipWinding() {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
	}
	for i := range m.Normals {
		m.Normals[i] = -m.Normals[i]
	}
}
