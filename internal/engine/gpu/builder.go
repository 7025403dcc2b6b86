package gpu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/planetarium/internal/engine/mesh"
)

// ErrReleased is returned when updating a vertex array after Builder.Release.
var ErrReleased = errors.New("vertex array released")

// VertexArray is the draw handle for an uploaded mesh: a vertex array object,
// its attribute and index buffers, and the number of indices to draw.
type VertexArray struct {
	VAO       uint32
	Positions uint32
	Colors    uint32
	Normals   uint32
	TexCoords uint32
	Indices   uint32
	Count     int32

	// Vertices is the vertex count the attribute buffers currently hold.
	// Only UpdateAll may change it.
	Vertices int

	released bool
}

// Released reports whether the device objects behind v have been deleted.
func (v *VertexArray) Released() bool {
	return v.released
}

// Builder uploads meshes and keeps every device object it created until Release.
type Builder struct {
	dev   Device
	log   *zap.Logger
	owned []*VertexArray
}

// NewBuilder creates a builder issuing calls on dev. A nil logger disables logging.
func NewBuilder(dev Device, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{dev: dev, log: log}
}

// Upload validates m and creates a vertex array with one buffer per attribute plus an index buffer.
func (b *Builder) Upload(m *mesh.Mesh) (*VertexArray, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("upload mesh: %w", err)
	}

	va := &VertexArray{
		VAO:      b.dev.GenVertexArray(),
		Count:    int32(len(m.Indices)),
		Vertices: m.VertexCount(),
	}
	b.dev.BindVertexArray(va.VAO)

	va.Positions = b.attribute(LocationPosition, mesh.PositionComponents, m.Positions)
	va.Colors = b.attribute(LocationColor, mesh.ColorComponents, m.Colors)
	va.Normals = b.attribute(LocationNormal, mesh.NormalComponents, m.Normals)
	va.TexCoords = b.attribute(LocationTexCoord, mesh.TexCoordComponents, m.TexCoords)

	va.Indices = b.dev.GenBuffer()
	b.dev.ElementBufferData(va.Indices, m.Indices)

	b.dev.BindVertexArray(0)
	b.owned = append(b.owned, va)

	b.log.Debug("mesh uploaded",
		zap.Uint32("vao", va.VAO),
		zap.Int("vertices", m.VertexCount()),
		zap.Int32("indices", va.Count),
	)
	return va, nil
}

func (b *Builder) attribute(location uint32, components int32, data []float32) uint32 {
	buf := b.dev.GenBuffer()
	b.dev.ArrayBufferData(buf, data)
	b.dev.VertexAttrib(location, components)
	return buf
}

// UpdateVertices re-uploads the position buffer of va. The mesh must keep
// the vertex count va was built with.
func (b *Builder) UpdateVertices(va *VertexArray, m *mesh.Mesh) error {
	if err := checkAttribute(va, "positions", m.Positions, mesh.PositionComponents); err != nil {
		return err
	}
	b.writeArray(va, va.Positions, m.Positions)
	return nil
}

// UpdateNormals re-uploads the normal buffer of va.
func (b *Builder) UpdateNormals(va *VertexArray, m *mesh.Mesh) error {
	if err := checkAttribute(va, "normals", m.Normals, mesh.NormalComponents); err != nil {
		return err
	}
	b.writeArray(va, va.Normals, m.Normals)
	return nil
}

// UpdateTexCoords re-uploads the texture coordinate buffer of va.
func (b *Builder) UpdateTexCoords(va *VertexArray, m *mesh.Mesh) error {
	if err := checkAttribute(va, "uvs", m.TexCoords, mesh.TexCoordComponents); err != nil {
		return err
	}
	b.writeArray(va, va.TexCoords, m.TexCoords)
	return nil
}

// UpdateIndices re-uploads the index buffer of va and draws len(m.Indices)
// indices from then on. Every index must refer to a vertex va holds.
func (b *Builder) UpdateIndices(va *VertexArray, m *mesh.Mesh) error {
	if va.released {
		return ErrReleased
	}
	if err := checkIndices(m.Indices, va.Vertices); err != nil {
		return err
	}
	b.writeIndices(va, m.Indices)
	return nil
}

// UpdateAll validates m and re-uploads every buffer of va. Unlike the narrow
// updates it may change the vertex count.
func (b *Builder) UpdateAll(va *VertexArray, m *mesh.Mesh) error {
	if va.released {
		return ErrReleased
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("update mesh: %w", err)
	}
	b.writeArray(va, va.Positions, m.Positions)
	b.writeArray(va, va.Colors, m.Colors)
	b.writeArray(va, va.Normals, m.Normals)
	b.writeArray(va, va.TexCoords, m.TexCoords)
	b.writeIndices(va, m.Indices)
	va.Vertices = m.VertexCount()
	return nil
}

func checkAttribute(va *VertexArray, name string, data []float32, components int) error {
	if va.released {
		return ErrReleased
	}
	if len(data) != va.Vertices*components {
		return fmt.Errorf("%w: %d %s floats for %d vertices", mesh.ErrAttributeMismatch, len(data), name, va.Vertices)
	}
	return nil
}

func checkIndices(indices []uint32, vertices int) error {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", mesh.ErrEmpty, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vertices {
			return fmt.Errorf("%w: index %d at %d, vertex count %d", mesh.ErrIndexOutOfRange, idx, i, vertices)
		}
	}
	return nil
}

func (b *Builder) writeArray(va *VertexArray, buf uint32, data []float32) {
	b.dev.BindVertexArray(va.VAO)
	b.dev.ArrayBufferData(buf, data)
	b.dev.BindVertexArray(0)
}

func (b *Builder) writeIndices(va *VertexArray, indices []uint32) {
	b.dev.BindVertexArray(va.VAO)
	b.dev.ElementBufferData(va.Indices, indices)
	b.dev.BindVertexArray(0)
	va.Count = int32(len(indices))
}

// Len returns the number of live vertex arrays owned by the builder.
func (b *Builder) Len() int {
	return len(b.owned)
}

// Release deletes every vertex array and buffer created by the builder. Safe to call twice.
func (b *Builder) Release() {
	for _, va := range b.owned {
		if va.released {
			continue
		}
		for _, buf := range []uint32{va.Positions, va.Colors, va.Normals, va.TexCoords, va.Indices} {
			b.dev.DeleteBuffer(buf)
		}
		b.dev.DeleteVertexArray(va.VAO)
		va.released = true
	}
	if len(b.owned) > 0 {
		b.log.Debug("released vertex arrays", zap.Int("count", len(b.owned)))
	}
	b.owned = nil
}
