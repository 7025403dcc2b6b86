// Package renderer is the OpenGL backend: context state setup and a gpu.Device
// that issues real GL calls.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background [4]float32
}

// Context owns global GL state for the frame loop.
type Context struct {
	config Config
	log    *zap.Logger
}

// New initializes GL function pointers and default state.
// Must be called on the thread that owns the current GL context.
func New(cfg Config, log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	c := &Context{config: cfg, log: log}
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	c.Resize(cfg.Width, cfg.Height)
	return c, nil
}

// Resize updates the viewport.
func (c *Context) Resize(width, height int) {
	c.config.Width = width
	c.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	c.log.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns width / height of the current viewport.
func (c *Context) Aspect() float32 {
	if c.config.Height == 0 {
		return 1
	}
	return float32(c.config.Width) / float32(c.config.Height)
}

// Begin clears the color and depth buffers.
func (c *Context) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// CheckError logs and returns the first pending GL error, if any.
func (c *Context) CheckError(where string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		c.log.Warn("gl error", zap.String("where", where), zap.Uint32("code", code))
		return fmt.Errorf("gl error 0x%x at %s", code, where)
	}
	return nil
}

// ReadPixels reads the back buffer as bottom-up RGBA. Call before SwapBuffers.
func (c *Context) ReadPixels() ([]byte, int, int) {
	w, h := c.config.Width, c.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
