package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/planetarium/internal/engine/gpu"
	"github.com/Faultbox/planetarium/internal/engine/mesh"
)

// PlanetSpec describes a cubesphere planet.
type PlanetSpec struct {
	Name         string
	Subdivisions int
	Radius       float32
	LandColor    mgl32.Vec4
	OceanColor   mgl32.Vec4
	// OceanLevel is the ocean shell radius relative to the land; 0 disables the ocean.
	OceanLevel float32
	Texture    uint32
}

// Planet holds the nodes created by BuildPlanet.
type Planet struct {
	Root  NodeID
	Faces []NodeID
	Ocean NodeID // NoNode without an ocean
}

// BuildPlanet generates the six cubesphere faces, uploads them through b and
// attaches them as Planet nodes under a new Empty root scaled to Radius.
func BuildPlanet(g *Graph, b *gpu.Builder, spec PlanetSpec) (Planet, error) {
	p := Planet{Ocean: NoNode}

	land, err := mesh.PlanetFaces(spec.Subdivisions, spec.LandColor)
	if err != nil {
		return p, fmt.Errorf("planet %q: %w", spec.Name, err)
	}

	p.Root = g.NewNode(spec.Name)
	g.Node(p.Root).Scale = mgl32.Vec3{spec.Radius, spec.Radius, spec.Radius}

	p.Faces, err = attachFaces(g, b, p.Root, land, KindPlanet, spec.Name)
	if err != nil {
		return p, err
	}
	for _, id := range p.Faces {
		g.Node(id).Texture = spec.Texture
	}

	if spec.OceanLevel <= 0 {
		return p, nil
	}

	water, err := mesh.PlanetFaces(spec.Subdivisions, spec.OceanColor)
	if err != nil {
		return p, fmt.Errorf("planet %q ocean: %w", spec.Name, err)
	}
	p.Ocean = g.NewNode(spec.Name + "/ocean")
	g.Node(p.Ocean).Scale = mgl32.Vec3{spec.OceanLevel, spec.OceanLevel, spec.OceanLevel}
	if err := g.AddChild(p.Root, p.Ocean); err != nil {
		return p, err
	}
	if _, err := attachFaces(g, b, p.Ocean, water, KindOcean, spec.Name+"/ocean"); err != nil {
		return p, err
	}
	return p, nil
}

// BuildSkybox creates an inward-facing sphere of the given radius under a new Empty root.
func BuildSkybox(g *Graph, b *gpu.Builder, subdivisions int, radius float32, color mgl32.Vec4) (NodeID, error) {
	faces, err := mesh.Skybox(subdivisions, color)
	if err != nil {
		return NoNode, err
	}
	root := g.NewNode("skybox")
	g.Node(root).Scale = mgl32.Vec3{radius, radius, radius}
	if _, err := attachFaces(g, b, root, faces, KindSkybox, "skybox"); err != nil {
		return NoNode, err
	}
	return root, nil
}

// BuildCrosshair creates a screen-space crosshair node.
func BuildCrosshair(g *Graph, b *gpu.Builder, size float32, color mgl32.Vec4) (NodeID, error) {
	va, err := b.Upload(mesh.Crosshair(size, size/10, color))
	if err != nil {
		return NoNode, fmt.Errorf("crosshair: %w", err)
	}
	id := g.NewFromVertexArray(va, "crosshair")
	g.Node(id).Kind = KindGeometry2D
	return id, nil
}

func attachFaces(g *Graph, b *gpu.Builder, parent NodeID, faces []*mesh.Mesh, kind Kind, prefix string) ([]NodeID, error) {
	ids := make([]NodeID, 0, len(faces))
	for i, m := range faces {
		va, err := b.Upload(m)
		if err != nil {
			return nil, fmt.Errorf("%s face %s: %w", prefix, mesh.Faces[i].Name, err)
		}
		id := g.NewFromVertexArray(va, prefix+"/"+mesh.Faces[i].Name)
		g.Node(id).Kind = kind
		if err := g.AddChild(parent, id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
