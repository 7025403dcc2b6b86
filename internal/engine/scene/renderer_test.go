package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/planetarium/internal/engine/gpu"
	"github.com/Faultbox/planetarium/internal/engine/gpu/gputest"
	"github.com/Faultbox/planetarium/internal/engine/mesh"
)

var white = mgl32.Vec4{1, 1, 1, 1}

type fixture struct {
	dev  *gputest.Device
	prog *gputest.Program
	b    *gpu.Builder
	g    *Graph
	r    *Renderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gputest.NewDevice()
	prog := gputest.NewProgram()
	return &fixture{
		dev:  dev,
		prog: prog,
		b:    gpu.NewBuilder(dev, nil),
		g:    NewGraph(),
		r:    NewRenderer(dev, prog),
	}
}

func (f *fixture) geometry(t *testing.T, name string) NodeID {
	t.Helper()
	va, err := f.b.Upload(mesh.Quad(1, 1, white))
	require.NoError(t, err)
	return f.g.NewFromVertexArray(va, name)
}

func TestDrawLightRootStillVisitsChildren(t *testing.T) {
	f := newFixture(t)
	light := NewLightSource(f.g, LightPoint, mgl32.Vec3{1, 1, 1}, "sun")
	child := f.geometry(t, "moon")
	require.NoError(t, f.g.AddChild(light.Node, child))

	f.g.UpdateTransforms(light.Node, mgl32.Ident4())
	st := f.r.Draw(f.g, light.Node, mgl32.Ident4())

	assert.Equal(t, 1, st.DrawCalls)
	assert.Equal(t, 2, st.Nodes)
	require.Len(t, f.dev.Draws, 1)
	assert.Equal(t, f.g.Node(child).VertexArray.VAO, f.dev.Draws[0].VAO)
	assert.Equal(t, int32(6), f.dev.Draws[0].Count)
}

func TestDrawSkipsEmptyNodes(t *testing.T) {
	f := newFixture(t)
	root := f.g.NewNode("root")
	group := f.g.NewNode("group")
	require.NoError(t, f.g.AddChild(root, group))
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, f.g.AddChild(group, f.geometry(t, name)))
	}

	f.g.UpdateTransforms(root, mgl32.Ident4())
	st := f.r.Draw(f.g, root, mgl32.Ident4())

	assert.Equal(t, Stats{Nodes: 5, DrawCalls: 3, Indices: 18}, st)
	assert.Empty(t, f.dev.Errors)
}

func TestDrawUniforms(t *testing.T) {
	f := newFixture(t)
	id := f.geometry(t, "box")
	n := f.g.Node(id)
	n.Kind = KindPlanet
	n.Position = mgl32.Vec3{1, 2, 3}

	vp := mgl32.Perspective(mgl32.DegToRad(60), 1.5, 0.1, 100)
	f.g.UpdateTransforms(id, mgl32.Ident4())
	f.r.Draw(f.g, id, vp)

	loc := f.prog.UniformLocation
	assert.Equal(t, uint32(KindPlanet), f.dev.Uints[loc(UniformNodeType)])
	assert.True(t, f.dev.Mat4s[loc(UniformModel)].ApproxEqualThreshold(n.World, eps))
	assert.True(t, f.dev.Mat4s[loc(UniformMVP)].ApproxEqualThreshold(vp.Mul4(n.World), eps))
}

func TestDrawGeometry2DBypassesCamera(t *testing.T) {
	f := newFixture(t)
	id := f.geometry(t, "hud")
	f.g.Node(id).Kind = KindGeometry2D
	f.g.Node(id).Position = mgl32.Vec3{0.5, -0.5, 0}

	vp := mgl32.Translate3D(100, 100, 100)
	f.g.UpdateTransforms(id, mgl32.Ident4())
	f.r.Draw(f.g, id, vp)

	mvp := f.dev.Mat4s[f.prog.UniformLocation(UniformMVP)]
	assert.True(t, mvp.ApproxEqualThreshold(f.g.Node(id).World, eps))
	assert.Equal(t, uint32(KindGeometry2D), f.dev.Uints[f.prog.UniformLocation(UniformNodeType)])
}

func TestDrawHasTextureSignal(t *testing.T) {
	f := newFixture(t)
	id := f.geometry(t, "tex")
	locHas := f.prog.UniformLocation(UniformHasTexture)

	f.r.Draw(f.g, id, mgl32.Ident4())
	without := f.dev.Ints[locHas]
	assert.Zero(t, f.dev.Draws[0].Texture)

	f.dev.Reset()
	f.g.Node(id).Texture = f.dev.CreateTexture2D(1, 1, []uint8{255, 255, 255, 255})
	f.r.Draw(f.g, id, mgl32.Ident4())
	with := f.dev.Ints[locHas]

	assert.Equal(t, int32(0), without)
	assert.Equal(t, int32(1), with)
	assert.NotEqual(t, without, with)
	assert.Equal(t, f.g.Node(id).Texture, f.dev.Draws[0].Texture)
}

func TestDrawMissingVertexArrayPanics(t *testing.T) {
	f := newFixture(t)
	id := f.g.NewTyped(KindOcean, "broken")
	assert.PanicsWithValue(t, `scene: ocean node 0 "broken" has no vertex array`, func() {
		f.r.Draw(f.g, id, mgl32.Ident4())
	})
}

func TestDrawUnknownKindPanics(t *testing.T) {
	f := newFixture(t)
	id := f.geometry(t, "weird")
	f.g.Node(id).Kind = Kind(99)
	assert.Panics(t, func() { f.r.Draw(f.g, id, mgl32.Ident4()) })
}

func TestDrawDoesNotModifyGraph(t *testing.T) {
	f := newFixture(t)
	root := f.g.NewNode("root")
	child := f.geometry(t, "child")
	require.NoError(t, f.g.AddChild(root, child))
	f.g.Node(child).Position = mgl32.Vec3{1, 0, 0}
	f.g.UpdateTransforms(root, mgl32.Ident4())

	before := *f.g.Node(child)
	f.r.Draw(f.g, root, mgl32.Scale3D(2, 2, 2))
	assert.Equal(t, before.World, f.g.Node(child).World)
}

func TestBeginUploadsFrameUniforms(t *testing.T) {
	f := newFixture(t)
	root := f.g.NewNode("root")
	light := NewLightSource(f.g, LightDirectional, mgl32.Vec3{1, 0.9, 0.8}, "sun")
	require.NoError(t, f.g.AddChild(root, light.Node))
	f.g.Node(light.Node).Position = mgl32.Vec3{0, 50, 0}
	f.g.UpdateTransforms(root, mgl32.Ident4())

	f.r.Begin(f.g, light, mgl32.Vec3{0, 0, 30})

	assert.True(t, f.prog.Active)
	assert.Equal(t, mgl32.Vec3{0, 50, 0}, f.dev.Vec3s[f.prog.UniformLocation(UniformLightPosition)])
	assert.Equal(t, mgl32.Vec3{1, 0.9, 0.8}, f.dev.Vec3s[f.prog.UniformLocation(UniformLightColor)])
	assert.Equal(t, mgl32.Vec3{0, 0, 30}, f.dev.Vec3s[f.prog.UniformLocation(UniformCameraPos)])
}

func TestSetProgramResolvesNewLocations(t *testing.T) {
	f := newFixture(t)
	id := f.geometry(t, "g")

	next := gputest.NewProgram()
	next.UniformLocation("padding")
	f.r.SetProgram(next)
	f.r.Draw(f.g, id, mgl32.Ident4())

	_, ok := f.dev.Uints[next.UniformLocation(UniformNodeType)]
	assert.True(t, ok)
	assert.NotEqual(t, f.prog.UniformLocation(UniformNodeType), next.UniformLocation(UniformNodeType))
}
