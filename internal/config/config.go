// Package config handles loading and validating the viewer configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Controls ControlsConfig `yaml:"controls"`
	Planet   PlanetConfig   `yaml:"planet"`
	Sun      SunConfig      `yaml:"sun"`
	Shaders  ShaderConfig   `yaml:"shaders"`
	Inspect  InspectConfig  `yaml:"inspect"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source is the file the config was loaded from, empty for defaults only.
	Source string `yaml:"-"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	Background [4]float32 `yaml:"background"` // clear color, RGBA

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// CameraConfig holds the initial camera placement and projection.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`   // degrees
	Pitch    float32    `yaml:"pitch"` // degrees
	Roll     float32    `yaml:"roll"`  // degrees
	FOV      float32    `yaml:"fov"`   // vertical, degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// ControlsConfig holds input sensitivities.
type ControlsConfig struct {
	MovementSpeed float32 `yaml:"movement_speed"` // units per second
	MouseSpeed    float32 `yaml:"mouse_speed"`    // radians per pixel
	TiltSpeed     float32 `yaml:"tilt_speed"`     // radians per second
}

// PlanetConfig describes the generated planet.
type PlanetConfig struct {
	Subdivisions int        `yaml:"subdivisions"`
	Radius       float32    `yaml:"radius"`
	LandColor    [4]float32 `yaml:"land_color"`
	OceanColor   [4]float32 `yaml:"ocean_color"`
	OceanLevel   float32    `yaml:"ocean_level"` // relative to radius, 0 disables
	Texture      string     `yaml:"texture"`     // optional image path
	SpinSpeed    float32    `yaml:"spin_speed"`  // radians per second about Y
}

// SunConfig places the scene's light.
type SunConfig struct {
	Longitude float32    `yaml:"longitude"` // degrees about +Y
	Latitude  float32    `yaml:"latitude"`  // degrees above the horizon
	Distance  float32    `yaml:"distance"`
	Color     [3]float32 `yaml:"color"`
}

// ShaderConfig points at GLSL sources on disk. Empty paths use the built-in shaders.
type ShaderConfig struct {
	Vertex    string `yaml:"vertex"`
	Fragment  string `yaml:"fragment"`
	HotReload bool   `yaml:"hot_reload"`
}

// InspectConfig controls the frame statistics endpoint.
type InspectConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address"`
	Interval time.Duration `yaml:"interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Background: [4]float32{0.02, 0.02, 0.05, 1},

			ScreenshotDir: "screenshots",
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 0, 30},
			FOV:      60,
			Near:     0.1,
			Far:      2000,
		},
		Controls: ControlsConfig{
			MovementSpeed: 10,
			MouseSpeed:    0.003,
			TiltSpeed:     1,
		},
		Planet: PlanetConfig{
			Subdivisions: 64,
			Radius:       10,
			LandColor:    [4]float32{0.2, 0.8, 0.4, 1},
			OceanColor:   [4]float32{0.1, 0.3, 0.8, 0.7},
			OceanLevel:   0.995,
			SpinSpeed:    0.05,
		},
		Sun: SunConfig{
			Longitude: 50,
			Latitude:  20,
			Distance:  250,
			Color:     [3]float32{1, 0.95, 0.85},
		},
		Inspect: InspectConfig{
			Enabled:  false,
			Address:  "127.0.0.1:8089",
			Interval: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports the first setting that cannot produce a working viewer.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: fov %.1f outside (0, 180)", ErrInvalid, c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far:
		return fmt.Errorf("%w: clip planes near=%g far=%g", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Planet.Subdivisions < 1:
		return fmt.Errorf("%w: planet subdivisions %d", ErrInvalid, c.Planet.Subdivisions)
	case c.Planet.Radius <= 0:
		return fmt.Errorf("%w: planet radius %g", ErrInvalid, c.Planet.Radius)
	case c.Sun.Distance <= 0:
		return fmt.Errorf("%w: sun distance %g", ErrInvalid, c.Sun.Distance)
	case c.Planet.OceanLevel < 0:
		return fmt.Errorf("%w: ocean level %g", ErrInvalid, c.Planet.OceanLevel)
	case c.Shaders.HotReload && (c.Shaders.Vertex == "" || c.Shaders.Fragment == ""):
		return fmt.Errorf("%w: shader hot reload needs vertex and fragment paths", ErrInvalid)
	case c.Inspect.Enabled && c.Inspect.Interval <= 0:
		return fmt.Errorf("%w: inspect interval %s", ErrInvalid, c.Inspect.Interval)
	}
	return nil
}
