package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// LayerError reports which configuration layer produced a setting that
// failed to load or validate.
type LayerError struct {
	Layer string // "file <path>" or "flags"
	Err   error
}

func (e *LayerError) Error() string {
	return e.Layer + ": " + e.Err.Error()
}

func (e *LayerError) Unwrap() error {
	return e.Err
}

// Load loads configuration with priority: defaults < file < flags. Each layer
// is validated as it is applied, so an error names the layer that broke it.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		layer := "file " + configPath
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, &LayerError{Layer: layer, Err: err}
		}
		if err := cfg.Validate(); err != nil {
			return nil, &LayerError{Layer: layer, Err: err}
		}
		cfg.Source = configPath
	}

	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &LayerError{Layer: "flags", Err: err}
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file: the working
// directory first, then the user's config directory.
func findConfigFile() string {
	for _, path := range []string{"./config.yaml", DefaultPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultPath is where Save writes and where Load looks after the working directory.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Planetarium")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Planetarium")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "planetarium")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "planetarium")
	}
}

// loadFromFile merges a YAML file over the values already in cfg. Unknown
// keys are rejected so a misspelt setting is not silently ignored. An empty
// file leaves cfg unchanged.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}
