// Package config handles viewer and import settings.
package config

import (
	"errors"
	"fmt"
	"slices"
)

// MB is one megabyte, the unit of the buffer size flags.
const MB = 1 << 20

// RenderModes lists the accepted viewer.render_mode values.
var RenderModes = []string{"flat", "stripey", "wireframe"}

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Buffers BufferConfig  `yaml:"buffers"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Samples    int  `yaml:"samples"` // MSAA, 0 disables
}

// BufferConfig sizes the GPU vertex and index buffers.
type BufferConfig struct {
	VertexBytes uint64 `yaml:"vertex_bytes"`
	IndexBytes  uint64 `yaml:"index_bytes"`
}

// ViewerConfig holds camera and drawing settings.
type ViewerConfig struct {
	FOV              float32 `yaml:"fov"` // vertical, degrees
	DrawDistance     float32 `yaml:"draw_distance"`
	RenderMode       string  `yaml:"render_mode"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"` // degrees per pixel
	MoveSpeed        float32 `yaml:"move_speed"`        // units per second
	ScreenshotDir    string  `yaml:"screenshot_dir"`    // empty means the working directory
}

// ImportConfig holds map import settings.
type ImportConfig struct {
	Workers  int    `yaml:"workers"`   // 0 means GOMAXPROCS
	ErrorLog string `yaml:"error_log"` // file that rejected brushes are logged to
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
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Buffers: BufferConfig{
			VertexBytes: 64 * MB,
			IndexBytes:  64 * MB,
		},
		Viewer: ViewerConfig{
			FOV:              90,
			DrawDistance:     16384,
			RenderMode:       "flat",
			MouseSensitivity: 0.2,
			MoveSpeed:        512,
		},
		Import: ImportConfig{
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.Samples < 0 || c.Window.Samples > 16 {
		errs = append(errs, fmt.Errorf("samples %d out of range [0, 16]", c.Window.Samples))
	}
	if c.Buffers.VertexBytes == 0 || c.Buffers.IndexBytes == 0 {
		errs = append(errs, errors.New("buffer sizes must be positive"))
	}
	if c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov %g out of range (0, 180)", c.Viewer.FOV))
	}
	if c.Viewer.DrawDistance <= 1 {
		errs = append(errs, fmt.Errorf("draw distance %g", c.Viewer.DrawDistance))
	}
	if !slices.Contains(RenderModes, c.Viewer.RenderMode) {
		errs = append(errs, fmt.Errorf("render mode %q not one of %v", c.Viewer.RenderMode, RenderModes))
	}
	if c.Import.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d", c.Import.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
