package shader

import (
	"embed"
	"errors"
	"fmt"
	"os"
)

var (
	ErrCompile = errors.New("shader compile failed")
	ErrSource  = errors.New("shader source unavailable")
)

//go:embed glsl/*.vert glsl/*.frag
var builtin embed.FS

// Source holds the GLSL text of a vertex/fragment pair.
type Source struct {
	Vertex   string
	Fragment string
}

// Default returns the built-in scene shaders.
func Default() Source {
	vert, _ := builtin.ReadFile("glsl/scene.vert")
	frag, _ := builtin.ReadFile("glsl/scene.frag")
	return Source{Vertex: string(vert), Fragment: string(frag)}
}

// Load reads a shader pair from disk. Empty paths fall back to the built-in
// stage of the same type.
func Load(vertexPath, fragmentPath string) (Source, error) {
	src := Default()
	if vertexPath != "" {
		data, err := os.ReadFile(vertexPath)
		if err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrSource, err)
		}
		src.Vertex = string(data)
	}
	if fragmentPath != "" {
		data, err := os.ReadFile(fragmentPath)
		if err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrSource, err)
		}
		src.Fragment = string(data)
	}
	if src.Vertex == "" || src.Fragment == "" {
		return Source{}, fmt.Errorf("%w: empty stage", ErrSource)
	}
	return src, nil
}
