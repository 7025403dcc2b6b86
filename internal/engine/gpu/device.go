// Package gpu uploads meshes to the graphics device and owns the resulting handles.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Device is the subset of the graphics API the engine issues calls through.
// All methods must be called on the thread that owns the graphics context.
type Device interface {
	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	GenBuffer() uint32
	DeleteBuffer(buf uint32)
	// ArrayBufferData binds buf as the array buffer and uploads data.
	ArrayBufferData(buf uint32, data []float32)
	// ElementBufferData binds buf as the element buffer of the bound vertex array and uploads data.
	ElementBufferData(buf uint32, data []uint32)
	// VertexAttrib points attribute location at the bound array buffer and enables it.
	VertexAttrib(location uint32, components int32)

	UniformMatrix4(location int32, m mgl32.Mat4)
	Uniform1ui(location int32, v uint32)
	Uniform1i(location int32, v int32)
	Uniform3f(location int32, v mgl32.Vec3)

	CreateTexture2D(width, height int32, rgba []uint8) uint32
	DeleteTexture(tex uint32)
	BindTextureUnit(unit, tex uint32)

	// DrawTriangles issues an indexed triangle draw of count indices from the bound vertex array.
	DrawTriangles(count int32)
}

// Attribute locations shared with the shaders.
const (
	LocationPosition uint32 = 0
	LocationColor    uint32 = 1
	LocationNormal   uint32 = 2
	LocationTexCoord uint32 = 3
)
