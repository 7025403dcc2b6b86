// Package scene implements the scene graph: an arena of nodes referenced by index,
// world transform propagation and the draw traversal.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/planetarium/internal/engine/gpu"
)

var (
	// ErrUnknownNode is returned for a NodeID that does not belong to the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrCycle is returned when attaching a node would make it its own ancestor.
	ErrCycle = errors.New("attaching node would create a cycle")
	// ErrHasParent is returned when attaching a node that is already a child.
	ErrHasParent = errors.New("node already has a parent")
)

// NodeID references a node inside its Graph.
type NodeID int

// NoNode is the parent of root nodes.
const NoNode NodeID = -1

// Node carries a local transform, what to draw, and the cached world transform.
type Node struct {
	Name string
	Kind Kind

	Position       mgl32.Vec3 // relative to the parent
	Rotation       mgl32.Vec3 // Euler angles in radians, applied Y, Z, X
	Scale          mgl32.Vec3
	ReferencePoint mgl32.Vec3 // pivot for rotation

	// World is recomputed by Graph.UpdateTransforms every frame.
	World mgl32.Mat4

	VertexArray *gpu.VertexArray
	Texture     uint32 // 0 when untextured

	parent   NodeID
	children []NodeID
}

// Graph owns every node. Nodes are never removed, so a NodeID stays valid for
// the life of the graph.
type Graph struct {
	nodes []*Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// NewNode adds a detached Empty node.
func (g *Graph) NewNode(name string) NodeID {
	return g.NewTyped(KindEmpty, name)
}

// NewTyped adds a detached node of the given kind with identity transform.
func (g *Graph) NewTyped(kind Kind, name string) NodeID {
	g.nodes = append(g.nodes, &Node{
		Name:   name,
		Kind:   kind,
		Scale:  mgl32.Vec3{1, 1, 1},
		World:  mgl32.Ident4(),
		parent: NoNode,
	})
	return NodeID(len(g.nodes) - 1)
}

// NewFromVertexArray adds a detached Geometry node drawing va.
func (g *Graph) NewFromVertexArray(va *gpu.VertexArray, name string) NodeID {
	id := g.NewTyped(KindGeometry, name)
	g.nodes[id].VertexArray = va
	return id
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns the node for id. It panics if id is not part of the graph.
func (g *Graph) Node(id NodeID) *Node {
	if !g.valid(id) {
		panic(fmt.Sprintf("scene: node %d not in graph of %d nodes", id, len(g.nodes)))
	}
	return g.nodes[id]
}

// AddChild appends child to parent's children. A node may have only one parent
// and may not become its own ancestor.
func (g *Graph) AddChild(parent, child NodeID) error {
	if !g.valid(parent) || !g.valid(child) {
		return fmt.Errorf("add child %d to %d: %w", child, parent, ErrUnknownNode)
	}
	for a := parent; a != NoNode; a = g.nodes[a].parent {
		if a == child {
			return fmt.Errorf("add child %q to %q: %w", g.nodes[child].Name, g.nodes[parent].Name, ErrCycle)
		}
	}
	if p := g.nodes[child].parent; p != NoNode {
		return fmt.Errorf("add child %q to %q (parent %q): %w",
			g.nodes[child].Name, g.nodes[parent].Name, g.nodes[p].Name, ErrHasParent)
	}

	g.nodes[child].parent = parent
	g.nodes[parent].children = append(g.nodes[parent].children, child)
	return nil
}

// Parent returns the parent of id, or NoNode for a root.
func (g *Graph) Parent(id NodeID) NodeID {
	return g.Node(id).parent
}

// Child returns the i-th child of id.
func (g *Graph) Child(id NodeID, i int) NodeID {
	return g.Node(id).children[i]
}

// NumChildren returns how many children id has.
func (g *Graph) NumChildren(id NodeID) int {
	return len(g.Node(id).children)
}

// Walk visits id and its descendants depth-first, parents before children.
// Returning false from fn skips that node's subtree.
func (g *Graph) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := g.Node(id)
	if !fn(id, n) {
		return
	}
	for _, c := range n.children {
		g.Walk(c, fn)
	}
}

// Find returns the first node named name in the subtree rooted at id.
func (g *Graph) Find(id NodeID, name string) (NodeID, bool) {
	found := NoNode
	g.Walk(id, func(nid NodeID, n *Node) bool {
		if found != NoNode {
			return false
		}
		if n.Name == name {
			found = nid
			return false
		}
		return true
	})
	return found, found != NoNode
}

// Dump returns a readable description of a node and its world transform.
func (g *Graph) Dump(id NodeID) string {
	n := g.Node(id)
	m := n.World

	var vao uint32
	var count int32 = -1
	if n.VertexArray != nil {
		vao, count = n.VertexArray.VAO, n.VertexArray.Count
	}

	var b strings.Builder
	fmt.Fprintf(&b, "node %d %q (%s)\n", id, n.Name, n.Kind)
	fmt.Fprintf(&b, "  vao:       %d\n", vao)
	fmt.Fprintf(&b, "  indices:   %d\n", count)
	fmt.Fprintf(&b, "  children:  %d\n", len(n.children))
	fmt.Fprintf(&b, "  position:  [%.2f, %.2f, %.2f]\n", n.Position[0], n.Position[1], n.Position[2])
	fmt.Fprintf(&b, "  rotation:  [%.2f, %.2f, %.2f]\n", n.Rotation[0], n.Rotation[1], n.Rotation[2])
	fmt.Fprintf(&b, "  reference: [%.2f, %.2f, %.2f]\n", n.ReferencePoint[0], n.ReferencePoint[1], n.ReferencePoint[2])
	b.WriteString("  world:\n")
	for row := 0; row < 4; row++ {
		fmt.Fprintf(&b, "    %.2f  %.2f  %.2f  %.2f\n", m.At(row, 0), m.At(row, 1), m.At(row, 2), m.At(row, 3))
	}
	return b.String()
}
