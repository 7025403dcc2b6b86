package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeDefaults(t *testing.T) {
	g := NewGraph()
	id := g.NewNode("root")
	n := g.Node(id)

	assert.Equal(t, KindEmpty, n.Kind)
	assert.Equal(t, "root", n.Name)
	assert.Equal(t, float32(1), n.Scale[0])
	assert.Nil(t, n.VertexArray)
	assert.Zero(t, n.Texture)
	assert.Equal(t, NoNode, g.Parent(id))
	assert.Zero(t, g.NumChildren(id))
}

func TestAddChild(t *testing.T) {
	g := NewGraph()
	root := g.NewNode("root")
	a := g.NewTyped(KindPlanet, "a")
	b := g.NewTyped(KindOcean, "b")

	require.NoError(t, g.AddChild(root, a))
	require.NoError(t, g.AddChild(root, b))

	assert.Equal(t, 2, g.NumChildren(root))
	assert.Equal(t, a, g.Child(root, 0))
	assert.Equal(t, b, g.Child(root, 1))
	assert.Equal(t, root, g.Parent(b))
}

func TestAddChildRejectsCycles(t *testing.T) {
	g := NewGraph()
	root := g.NewNode("root")
	a := g.NewNode("a")
	b := g.NewNode("b")
	require.NoError(t, g.AddChild(root, a))
	require.NoError(t, g.AddChild(a, b))

	assert.ErrorIs(t, g.AddChild(a, a), ErrCycle, "self")
	assert.ErrorIs(t, g.AddChild(b, root), ErrCycle, "ancestor")
	assert.ErrorIs(t, g.AddChild(b, a), ErrCycle, "parent")
	assert.Equal(t, 0, g.NumChildren(b))
}

func TestAddChildRejectsSecondParent(t *testing.T) {
	g := NewGraph()
	p1 := g.NewNode("p1")
	p2 := g.NewNode("p2")
	c := g.NewNode("c")
	require.NoError(t, g.AddChild(p1, c))

	assert.ErrorIs(t, g.AddChild(p2, c), ErrHasParent)
	assert.ErrorIs(t, g.AddChild(p1, c), ErrHasParent)
	assert.Equal(t, 1, g.NumChildren(p1))
}

func TestAddChildUnknownNode(t *testing.T) {
	g := NewGraph()
	root := g.NewNode("root")
	assert.ErrorIs(t, g.AddChild(root, 7), ErrUnknownNode)
	assert.ErrorIs(t, g.AddChild(NoNode, root), ErrUnknownNode)
	assert.Panics(t, func() { g.Node(3) })
}

func TestWalkAndFind(t *testing.T) {
	g := NewGraph()
	root := g.NewNode("root")
	a := g.NewNode("a")
	a1 := g.NewNode("a1")
	b := g.NewNode("b")
	require.NoError(t, g.AddChild(root, a))
	require.NoError(t, g.AddChild(a, a1))
	require.NoError(t, g.AddChild(root, b))

	var order []string
	g.Walk(root, func(_ NodeID, n *Node) bool {
		order = append(order, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "b"}, order)

	order = order[:0]
	g.Walk(root, func(_ NodeID, n *Node) bool {
		order = append(order, n.Name)
		return n.Name != "a"
	})
	assert.Equal(t, []string{"root", "a", "b"}, order)

	id, ok := g.Find(root, "a1")
	assert.True(t, ok)
	assert.Equal(t, a1, id)

	_, ok = g.Find(b, "a1")
	assert.False(t, ok)
}

func TestDump(t *testing.T) {
	g := NewGraph()
	id := g.NewTyped(KindLightSource, "sun")
	g.Node(id).Position[0] = 3

	out := g.Dump(id)
	assert.Contains(t, out, `"sun" (light)`)
	assert.Contains(t, out, "position:  [3.00, 0.00, 0.00]")
	assert.Contains(t, out, "indices:   -1")
	assert.Contains(t, out, "1.00  0.00  0.00  0.00")
}

func TestKind(t *testing.T) {
	drawable := []Kind{KindGeometry, KindGeometry2D, KindPlanet, KindOcean, KindSkybox}
	for _, k := range drawable {
		assert.True(t, k.Drawable(), k.String())
	}
	assert.False(t, KindEmpty.Drawable())
	assert.False(t, KindLightSource.Drawable())
	assert.Panics(t, func() { Kind(42).Drawable() })
	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.Equal(t, "planet", KindPlanet.String())
}
