package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/planetarium/internal/engine/gpu"
)

// Uniform names read by the scene shaders.
const (
	UniformMVP           = "u_mvp"
	UniformModel         = "u_model"
	UniformNodeType      = "u_node_type"
	UniformHasTexture    = "u_has_texture"
	UniformLightPosition = "u_light_position"
	UniformLightColor    = "u_light_color"
	UniformCameraPos     = "u_camera_position"
)

// Program is a linked shader program.
type Program interface {
	Activate()
	UniformLocation(name string) int32
}

// Stats summarises one draw traversal.
type Stats struct {
	Nodes     int   `json:"nodes"`
	DrawCalls int   `json:"draw_calls"`
	Indices   int64 `json:"indices"`
}

// Renderer walks a graph issuing one draw per drawable node.
type Renderer struct {
	dev  gpu.Device
	prog Program

	locMVP        int32
	locModel      int32
	locNodeType   int32
	locHasTexture int32
	locLightPos   int32
	locLightColor int32
	locCameraPos  int32
}

// NewRenderer creates a renderer drawing through dev with prog.
func NewRenderer(dev gpu.Device, prog Program) *Renderer {
	r := &Renderer{dev: dev}
	r.SetProgram(prog)
	return r
}

// SetProgram switches to prog and resolves its uniform locations.
func (r *Renderer) SetProgram(prog Program) {
	r.prog = prog
	r.locMVP = prog.UniformLocation(UniformMVP)
	r.locModel = prog.UniformLocation(UniformModel)
	r.locNodeType = prog.UniformLocation(UniformNodeType)
	r.locHasTexture = prog.UniformLocation(UniformHasTexture)
	r.locLightPos = prog.UniformLocation(UniformLightPosition)
	r.locLightColor = prog.UniformLocation(UniformLightColor)
	r.locCameraPos = prog.UniformLocation(UniformCameraPos)
}

// Begin activates the program and uploads per-frame uniforms.
func (r *Renderer) Begin(g *Graph, light LightSource, camera mgl32.Vec3) {
	r.prog.Activate()
	r.dev.Uniform3f(r.locLightPos, g.Node(light.Node).WorldPosition())
	r.dev.Uniform3f(r.locLightColor, light.Color)
	r.dev.Uniform3f(r.locCameraPos, camera)
}

// Draw issues draw calls for id and its subtree. World transforms must
// already be up to date for this frame. The graph is not modified.
func (r *Renderer) Draw(g *Graph, id NodeID, viewProjection mgl32.Mat4) Stats {
	var st Stats
	r.draw(g, id, viewProjection, &st)
	return st
}

func (r *Renderer) draw(g *Graph, id NodeID, viewProjection mgl32.Mat4, st *Stats) {
	n := g.Node(id)
	st.Nodes++

	if n.Kind.Drawable() {
		r.drawNode(id, n, viewProjection)
		st.DrawCalls++
		st.Indices += int64(n.VertexArray.Count)
	}

	for _, c := range n.children {
		r.draw(g, c, viewProjection, st)
	}
}

func (r *Renderer) drawNode(id NodeID, n *Node, viewProjection mgl32.Mat4) {
	if n.VertexArray == nil {
		panic(fmt.Sprintf("scene: %s node %d %q has no vertex array", n.Kind, id, n.Name))
	}

	r.dev.BindVertexArray(n.VertexArray.VAO)
	r.dev.Uniform1ui(r.locNodeType, uint32(n.Kind))

	mvp := n.World
	if n.Kind != KindGeometry2D {
		mvp = viewProjection.Mul4(n.World)
	}
	r.dev.UniformMatrix4(r.locMVP, mvp)
	r.dev.UniformMatrix4(r.locModel, n.World)

	if n.Texture != 0 {
		r.dev.BindTextureUnit(0, n.Texture)
		r.dev.Uniform1i(r.locHasTexture, 1)
	} else {
		r.dev.BindTextureUnit(0, 0)
		r.dev.Uniform1i(r.locHasTexture, 0)
	}

	r.dev.DrawTriangles(n.VertexArray.Count)
}
