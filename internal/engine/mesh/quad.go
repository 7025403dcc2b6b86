package mesh

import "github.com/go-gl/mathgl/mgl32"

// Quad builds a screen-space rectangle centred on the origin in the z=0 plane,
// facing +Z. Intended for 2D overlay nodes that bypass the camera.
func Quad(width, height float32, color mgl32.Vec4) *Mesh {
	hw, hh := width/2, height/2
	m := &Mesh{
		Positions: []float32{
			-hw, -hh, 0,
			hw, -hh, 0,
			hw, hh, 0,
			-hw, hh, 0,
		},
		Normals: []float32{
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
		},
		TexCoords: []float32{
			0, 0,
			1, 0,
			1, 1,
			0, 1,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	for i := 0; i < 4; i++ {
		m.Colors = append(m.Colors, color[0], color[1], color[2], color[3])
	}
	m.IndexCount = int32(len(m.Indices))
	return m
}

// Crosshair builds two thin overlapping quads forming a plus sign.
func Crosshair(size, thickness float32, color mgl32.Vec4) *Mesh {
	h := Quad(size, thickness, color)
	v := Quad(thickness, size, color)
	return merge(h, v)
}

// merge concatenates b onto a, rebasing b's indices.
func merge(a, b *Mesh) *Mesh {
	base := uint32(a.VertexCount())
	out := &Mesh{
		Positions: append(append([]float32{}, a.Positions...), b.Positions...),
		Colors:    append(append([]float32{}, a.Colors...), b.Colors...),
		Normals:   append(append([]float32{}, a.Normals...), b.Normals...),
		TexCoords: append(append([]float32{}, a.TexCoords...), b.TexCoords...),
		Indices:   append([]uint32{}, a.Indices...),
	}
	for _, idx := range b.Indices {
		out.Indices = append(out.Indices, idx+base)
	}
	out.IndexCount = int32(len(out.Indices))
	return out
}
