// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Projection ProjectionConfig `yaml:"projection"`
	Render     RenderConfig     `yaml:"render"`
	Assets     AssetsConfig     `yaml:"assets"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"` // Frame cap when vsync is off, 0 = uncapped
}

// ProjectionConfig holds the perspective projection parameters.
type ProjectionConfig struct {
	FOVDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// RenderConfig holds per-frame rendering settings.
type RenderConfig struct {
	// Uniform buffers per node (frames in flight).
	InflightBuffers int `yaml:"inflight_buffers"`
	// Upper bound on waiting for a free uniform buffer, 0 = wait forever.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	ClearColor     [4]float32    `yaml:"clear_color"`
	Lit            bool          `yaml:"lit"`
}

// AssetsConfig holds asset locations.
type AssetsConfig struct {
	Texture string `yaml:"texture"` // Image file for the cube, empty = procedural checkerboard
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "nodering",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   60,
		},
		Projection: ProjectionConfig{
			FOVDegrees: 85,
			Near:       0.01,
			Far:        100,
		},
		Render: RenderConfig{
			InflightBuffers: 3,
			AcquireTimeout:  0,
			ClearColor:      [4]float32{0, 104.0 / 255.0, 5.0 / 255.0, 1},
			Lit:             true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that the configuration can drive a renderer.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("fps_limit %d must not be negative", c.Window.FPSLimit))
	}
	if c.Projection.FOVDegrees <= 0 || c.Projection.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("fov_degrees %v must be in (0, 180)", c.Projection.FOVDegrees))
	}
	if c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near {
		errs = append(errs, fmt.Errorf("clip planes near=%v far=%v must satisfy 0 < near < far", c.Projection.Near, c.Projection.Far))
	}
	if c.Render.InflightBuffers < 1 {
		errs = append(errs, fmt.Errorf("inflight_buffers %d must be at least 1", c.Render.InflightBuffers))
	}
	if c.Render.AcquireTimeout < 0 {
		errs = append(errs, fmt.Errorf("acquire_timeout %v must not be negative", c.Render.AcquireTimeout))
	}
	return errors.Join(errs...)
}
