// Package viewer holds the graphics-context-free parts of the viewer: scene
// assembly, the per-frame step and render-loop supervision.
package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/planetarium/internal/config"
	"github.com/Faultbox/planetarium/internal/engine/camera"
	"github.com/Faultbox/planetarium/internal/engine/gpu"
	"github.com/Faultbox/planetarium/internal/engine/input"
	"github.com/Faultbox/planetarium/internal/engine/scene"
	"github.com/Faultbox/planetarium/internal/inspect"
)

const (
	skyboxSubdivisions = 8
	crosshairSize      = 0.04
)

var (
	skyColor       = mgl32.Vec4{0.01, 0.01, 0.04, 1}
	crosshairColor = mgl32.Vec4{1, 1, 1, 0.8}
)

// World is the scene the viewer draws: a spinning planet, a skybox that
// follows the camera, a sun and a screen-space crosshair.
type World struct {
	Graph  *scene.Graph
	Root   scene.NodeID // 3D content
	HUD    scene.NodeID // screen-space overlay
	Planet scene.Planet
	Skybox scene.NodeID
	Cross  scene.NodeID
	Sun    scene.LightSource
	Camera *camera.FlyCamera

	SpinSpeed float32
	Paused    bool

	renderer *scene.Renderer
	spin     float32
}

// NewWorld builds the scene described by cfg, uploading meshes through b.
// texture is bound to the planet's land faces; 0 means untextured.
func NewWorld(cfg *config.Config, b *gpu.Builder, dev gpu.Device, prog scene.Program, texture uint32) (*World, error) {
	g := scene.NewGraph()
	w := &World{
		Graph:     g,
		Root:      g.NewNode("world"),
		HUD:       g.NewNode("hud"),
		Camera:    newCamera(cfg),
		SpinSpeed: cfg.Planet.SpinSpeed,
		renderer:  scene.NewRenderer(dev, prog),
	}

	var err error
	w.Skybox, err = scene.BuildSkybox(g, b, skyboxSubdivisions, cfg.Camera.Far*0.5, skyColor)
	if err != nil {
		return nil, fmt.Errorf("building skybox: %w", err)
	}
	if err := g.AddChild(w.Root, w.Skybox); err != nil {
		return nil, err
	}

	w.Planet, err = scene.BuildPlanet(g, b, scene.PlanetSpec{
		Name:         "planet",
		Subdivisions: cfg.Planet.Subdivisions,
		Radius:       cfg.Planet.Radius,
		LandColor:    cfg.Planet.LandColor,
		OceanColor:   cfg.Planet.OceanColor,
		OceanLevel:   cfg.Planet.OceanLevel,
		Texture:      texture,
	})
	if err != nil {
		return nil, fmt.Errorf("building planet: %w", err)
	}
	if err := g.AddChild(w.Root, w.Planet.Root); err != nil {
		return nil, err
	}

	w.Sun = scene.NewLightSource(g, scene.LightPoint, mgl32.Vec3(cfg.Sun.Color), "sun")
	g.Node(w.Sun.Node).Position = SunPosition(cfg.Sun)
	if err := g.AddChild(w.Root, w.Sun.Node); err != nil {
		return nil, err
	}

	w.Cross, err = scene.BuildCrosshair(g, b, crosshairSize, crosshairColor)
	if err != nil {
		return nil, err
	}
	if err := g.AddChild(w.HUD, w.Cross); err != nil {
		return nil, err
	}
	return w, nil
}

// SunPosition places the sun Distance units from the origin along the
// configured longitude and latitude.
func SunPosition(sun config.SunConfig) mgl32.Vec3 {
	return scene.SunDirection(sun.Longitude, sun.Latitude).Mul(sun.Distance)
}

func newCamera(cfg *config.Config) *camera.FlyCamera {
	c := camera.NewFlyCamera(mgl32.Vec3(cfg.Camera.Position))
	c.Yaw = mgl32.DegToRad(cfg.Camera.Yaw)
	c.Pitch = mgl32.DegToRad(cfg.Camera.Pitch)
	c.Roll = mgl32.DegToRad(cfg.Camera.Roll)
	c.FOV = mgl32.DegToRad(cfg.Camera.FOV)
	c.Near = cfg.Camera.Near
	c.Far = cfg.Camera.Far
	c.MoveSpeed = cfg.Controls.MovementSpeed
	c.MouseSpeed = cfg.Controls.MouseSpeed
	c.TiltSpeed = cfg.Controls.TiltSpeed
	return c
}

// SetProgram switches the renderer to a newly linked program.
func (w *World) SetProgram(prog scene.Program) {
	w.renderer.SetProgram(prog)
}

// Apply handles a control message from the inspector.
func (w *World) Apply(cmd inspect.Command) {
	if cmd.SpinSpeed != nil {
		w.SpinSpeed = *cmd.SpinSpeed
	}
	if cmd.Paused != nil {
		w.Paused = *cmd.Paused
	}
}

// Step advances the world by dt seconds and draws it. All transforms are
// recomputed before the first draw call.
func (w *World) Step(in input.Snapshot, dt, aspect float32) scene.Stats {
	w.Camera.Update(in, dt)

	if !w.Paused {
		w.spin += w.SpinSpeed * dt
		w.Graph.Node(w.Planet.Root).Rotation = mgl32.Vec3{0, w.spin, 0}
	}
	w.Graph.Node(w.Skybox).Position = w.Camera.Position
	// Crosshair vertices are in clip space; undo the horizontal stretch
	w.Graph.Node(w.Cross).Scale = mgl32.Vec3{1 / aspect, 1, 1}

	w.Graph.UpdateTransforms(w.Root, mgl32.Ident4())
	w.Graph.UpdateTransforms(w.HUD, mgl32.Ident4())

	vp := w.Camera.ViewProjection(aspect)
	w.renderer.Begin(w.Graph, w.Sun, w.Camera.Position)
	st := w.renderer.Draw(w.Graph, w.Root, vp)
	hud := w.renderer.Draw(w.Graph, w.HUD, vp)

	st.Nodes += hud.Nodes
	st.DrawCalls += hud.DrawCalls
	st.Indices += hud.Indices
	return st
}
