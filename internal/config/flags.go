package config

import "flag"

// Flags holds command-line overrides. Zero values leave the loaded config
// untouched.
type Flags struct {
	Config     string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Workers    int
	VertexMB   int
	IndexMB    int
	RenderMode string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel brush import workers")
	fs.IntVar(&f.VertexMB, "vertex-mb", 0, "Vertex buffer size in MB")
	fs.IntVar(&f.IndexMB, "index-mb", 0, "Index buffer size in MB")
	fs.StringVar(&f.RenderMode, "mode", "", "Render mode: flat, stripey or wireframe")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.Workers > 0 {
		cfg.Import.Workers = f.Workers
	}
	if f.VertexMB > 0 {
		cfg.Buffers.VertexBytes = uint64(f.VertexMB) * MB
	}
	if f.IndexMB > 0 {
		cfg.Buffers.IndexBytes = uint64(f.IndexMB) * MB
	}
	if f.RenderMode != "" {
		cfg.Viewer.RenderMode = f.RenderMode
	}
}
