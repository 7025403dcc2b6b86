package scene

import "github.com/go-gl/mathgl/mgl32"

// LocalTransform composes the node's transform: translate to Position, rotate
// about ReferencePoint (Y, then Z, then X), then scale. The order matters.
func (n *Node) LocalTransform() mgl32.Mat4 {
	ref := n.ReferencePoint
	return mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2]).
		Mul4(mgl32.Translate3D(ref[0], ref[1], ref[2])).
		Mul4(mgl32.HomogRotate3DY(n.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(n.Rotation[2])).
		Mul4(mgl32.HomogRotate3DX(n.Rotation[0])).
		Mul4(mgl32.Translate3D(-ref[0], -ref[1], -ref[2])).
		Mul4(mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2]))
}

// WorldPosition returns the translation part of the node's world transform.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.World.Col(3).Vec3()
}

// UpdateTransforms recomputes World for id and its subtree as parentWorld × local,
// parents before children. Pass mgl32.Ident4() for a root.
func (g *Graph) UpdateTransforms(id NodeID, parentWorld mgl32.Mat4) {
	n := g.Node(id)
	n.World = parentWorld.Mul4(n.LocalTransform())
	for _, c := range n.children {
		g.UpdateTransforms(c, n.World)
	}
}
