// Package app runs the viewer: the SDL event loop on the main thread, the
// render loop on a dedicated OS thread, and a supervisor between them.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/planetarium/internal/config"
	"github.com/Faultbox/planetarium/internal/engine/gpu"
	"github.com/Faultbox/planetarium/internal/engine/input"
	"github.com/Faultbox/planetarium/internal/engine/renderer"
	"github.com/Faultbox/planetarium/internal/engine/scene"
	"github.com/Faultbox/planetarium/internal/engine/shader"
	"github.com/Faultbox/planetarium/internal/engine/texture"
	"github.com/Faultbox/planetarium/internal/engine/window"
	"github.com/Faultbox/planetarium/internal/inspect"
	"github.com/Faultbox/planetarium/internal/logger"
	"github.com/Faultbox/planetarium/internal/viewer"
)

// eventTimeoutMS bounds how long the event loop waits before re-checking health.
const eventTimeoutMS = 10

const title = "Planetarium"

// App owns the window and the goroutines driving it.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	win    *window.Window
	bus    *input.Bus
	health viewer.Health
	stop   chan struct{}

	// fps is written by the render loop once per second and shown in the
	// title by the event loop, which owns the window.
	fps atomic.Int64

	inspector *inspect.Server
}

// New creates the window. It must be called from the main goroutine.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")
	win, err := window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a := &App{
		cfg:  cfg,
		log:  log,
		win:  win,
		bus:  input.NewBus(input.DefaultBusSize),
		stop: make(chan struct{}),
	}
	if cfg.Inspect.Enabled {
		a.inspector = inspect.New(logger.Named("inspect"))
	}
	return a, nil
}

// Run pumps window events until the user quits or the render loop fails.
// It returns the render failure, if any.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.inspector != nil {
		go func() {
			if err := a.inspector.ListenAndServe(ctx, a.cfg.Inspect.Address); err != nil {
				a.log.Warn("inspector stopped", zap.Error(err))
			}
		}()
	}

	done := viewer.Supervise(&a.health, a.log, a.render)

	a.log.Info("starting event loop")
	var shownFPS int64
loop:
	for {
		if a.win.PumpEvents(a.bus, eventTimeoutMS) {
			a.log.Info("quit requested")
			break
		}
		if !a.health.OK() {
			break
		}
		if fps := a.fps.Load(); fps != shownFPS {
			shownFPS = fps
			a.win.SetTitle(fmt.Sprintf("%s - %d fps", title, fps))
		}
		select {
		case <-done:
			break loop
		default:
		}
	}

	close(a.stop)
	<-done
	return a.health.Err()
}

// Close destroys the window. Call after Run returns.
func (a *App) Close() {
	a.win.Close()
}

// render is the render goroutine body. It owns the GL context for its whole
// lifetime and releases every GPU resource it created before returning.
func (a *App) render() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := a.win.MakeCurrent(); err != nil {
		return err
	}
	defer a.win.ReleaseCurrent()

	width, height := a.win.DrawableSize()
	glctx, err := renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Background: a.cfg.Graphics.Background,
	}, logger.Named("gl"))
	if err != nil {
		return err
	}
	dev := renderer.NewDevice()

	prog, err := a.loadProgram()
	if err != nil {
		return err
	}
	defer func() { prog.Delete() }()

	builder := gpu.NewBuilder(dev, logger.Named("gpu"))
	defer builder.Release()

	tex := a.loadTexture(dev)
	if tex != 0 {
		defer dev.DeleteTexture(tex)
	}

	world, err := viewer.NewWorld(a.cfg, builder, dev, prog, tex)
	if err != nil {
		return err
	}
	a.log.Info("scene ready",
		zap.Int("nodes", world.Graph.Len()),
		zap.Int("gpu_objects", builder.Len()),
	)
	world.Graph.Walk(world.Root, func(id scene.NodeID, _ *scene.Node) bool {
		a.log.Debug("scene node\n" + world.Graph.Dump(id))
		return true
	})

	var reload <-chan struct{}
	if a.cfg.Shaders.HotReload {
		w, err := shader.NewWatcher(logger.Named("shader"), a.cfg.Shaders.Vertex, a.cfg.Shaders.Fragment)
		if err != nil {
			a.log.Warn("shader hot reload disabled", zap.Error(err))
		} else {
			defer w.Close()
			reload = w.Changed()
		}
	}

	var commands <-chan inspect.Command
	if a.inspector != nil {
		commands = a.inspector.Commands()
	}

	shots := texture.NewScreenshotter(a.cfg.Graphics.ScreenshotDir, "planetarium")

	// glGetError stalls the pipeline, so it only runs when debug output is on
	checkGL := a.log.Core().Enabled(zap.DebugLevel)

	var (
		state       = input.NewState()
		last        = time.Now()
		fpsTimer    = last
		publishTime = last
		frame       uint64
		frames      int
		fps         float64
	)

	for {
		select {
		case <-a.stop:
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(last)
		last = now

		a.bus.Drain(state)
		snap := state.Snapshot()
		if snap.Resized {
			glctx.Resize(a.win.DrawableSize())
		}

		select {
		case <-reload:
			if next, err := a.loadProgram(); err != nil {
				a.log.Error("shader reload failed, keeping previous program", zap.Error(err))
			} else {
				prog.Delete()
				prog = next
				world.SetProgram(prog)
				a.log.Info("shaders reloaded")
			}
		default:
		}

	commandsLoop:
		for {
			select {
			case cmd := <-commands:
				world.Apply(cmd)
			default:
				break commandsLoop
			}
		}

		glctx.Begin()
		stats := world.Step(snap, float32(dt.Seconds()), glctx.Aspect())
		if snap.JustPressed(input.KeyF12) {
			pixels, w, h := glctx.ReadPixels()
			go a.saveScreenshot(shots, pixels, w, h)
		}
		if checkGL {
			_ = glctx.CheckError("frame")
		}
		a.win.SwapBuffers()

		frame++
		frames++
		if elapsed := now.Sub(fpsTimer); elapsed >= time.Second {
			fps = float64(frames) / elapsed.Seconds()
			a.fps.Store(int64(fps + 0.5))
			a.log.Debug("fps",
				zap.Float64("fps", fps),
				zap.Duration("frame_time", dt),
				zap.Int("draw_calls", stats.DrawCalls),
			)
			frames = 0
			fpsTimer = now
		}

		if a.inspector != nil && now.Sub(publishTime) >= a.cfg.Inspect.Interval {
			publishTime = now
			a.inspector.Publish(inspect.FrameStats{
				Frame:           frame,
				FPS:             fps,
				FrameTimeMS:     float64(dt.Microseconds()) / 1000,
				Nodes:           stats.Nodes,
				DrawCalls:       stats.DrawCalls,
				Indices:         stats.Indices,
				OverflowedInput: a.bus.Overflowed(),
				Camera:          [3]float32(world.Camera.Position),
				Time:            now,
			})
		}
	}
}

func (a *App) saveScreenshot(shots *texture.Screenshotter, pixels []byte, width, height int) {
	path, err := shots.Save(pixels, width, height)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) loadProgram() (*shader.Program, error) {
	src, err := shader.Load(a.cfg.Shaders.Vertex, a.cfg.Shaders.Fragment)
	if err != nil {
		return nil, err
	}
	return shader.NewProgram(src)
}

// loadTexture uploads the configured planet texture. A missing or broken
// texture is logged and the planet is drawn with vertex colors instead.
func (a *App) loadTexture(dev gpu.Device) uint32 {
	path := a.cfg.Planet.Texture
	if path == "" {
		return 0
	}
	img, err := texture.Load(path)
	if err != nil {
		a.log.Warn("planet texture unavailable", zap.String("path", path), zap.Error(err))
		return 0
	}
	a.log.Info("planet texture loaded", zap.String("path", path), zap.Stringer("bounds", img.Bounds()))
	return texture.Upload(dev, img)
}
