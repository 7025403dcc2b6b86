// Package window handles the SDL2 window, its OpenGL context and the event pump.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/planetarium/internal/engine/input"
)

func init() {
	// SDL event handling must stay on the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps an SDL2 window and its OpenGL context. Events are pumped on
// the main thread; the context is made current on the render thread.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

// New creates a window with an OpenGL 4.1 core context. The context is not
// current on return; call MakeCurrent from the render thread.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{config: cfg, log: log}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core is the newest profile macOS offers
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}
	// Hand the context over to whichever thread calls MakeCurrent
	if err := w.sdlWindow.GLMakeCurrent(nil); err != nil {
		log.Warn("failed to release GL context", zap.Error(err))
	}

	sdl.SetRelativeMouseMode(true)

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
	)
	return w, nil
}

// MakeCurrent binds the GL context to the calling OS thread and applies the
// swap interval. The caller must have locked its goroutine to the thread.
func (w *Window) MakeCurrent() error {
	if err := w.sdlWindow.GLMakeCurrent(w.glContext); err != nil {
		return fmt.Errorf("SDL_GL_MakeCurrent failed: %w", err)
	}
	interval := 0
	if w.config.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}
	return nil
}

// ReleaseCurrent detaches the GL context from the calling thread.
func (w *Window) ReleaseCurrent() {
	_ = w.sdlWindow.GLMakeCurrent(nil)
}

// PumpEvents waits up to timeoutMS for events, publishes them to bus and
// reports whether the user asked to quit. Must be called on the main thread.
func (w *Window) PumpEvents(bus *input.Bus, timeoutMS int) (quit bool) {
	ev := sdl.WaitEventTimeout(timeoutMS)
	for ; ev != nil; ev = sdl.PollEvent() {
		e, q := translate(ev)
		if q {
			quit = true
		}
		if e.Type == input.EventNone {
			continue
		}
		if !bus.Publish(e) {
			w.log.Debug("input queue full, event merged", zap.Uint64("overflowed", bus.Overflowed()))
		}
	}
	return quit
}

// translate maps an SDL event to an input event. Unhandled events map to
// EventNone.
func translate(ev sdl.Event) (input.Event, bool) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return input.Event{}, true
	case *sdl.KeyboardEvent:
		key := input.Key(e.Keysym.Scancode)
		if e.Type == sdl.KEYDOWN {
			if key == input.KeyEscape {
				return input.Event{}, true
			}
			if e.Repeat != 0 {
				return input.Event{}, false
			}
			return input.Event{Type: input.EventKeyDown, Key: key}, false
		}
		return input.Event{Type: input.EventKeyUp, Key: key}, false
	case *sdl.MouseMotionEvent:
		return input.Event{Type: input.EventMouseMove, DX: float32(e.XRel), DY: float32(e.YRel)}, false
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return input.Event{Type: input.EventResize, Width: int(e.Data1), Height: int(e.Data2)}, false
		}
	}
	return input.Event{}, false
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// SwapBuffers presents the back buffer. Call from the render thread.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// DrawableSize returns the framebuffer size in pixels, which differs from the
// window size on high-DPI displays.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
