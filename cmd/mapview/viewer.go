package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/config"
	"github.com/Faultbox/brushwork/internal/engine/camera"
	"github.com/Faultbox/brushwork/internal/engine/input"
	"github.com/Faultbox/brushwork/internal/engine/picking"
	"github.com/Faultbox/brushwork/internal/engine/renderer"
	"github.com/Faultbox/brushwork/internal/engine/screenshot"
	"github.com/Faultbox/brushwork/internal/engine/window"
	"github.com/Faultbox/brushwork/internal/logger"
	"github.com/Faultbox/brushwork/internal/scene"
	"github.com/Faultbox/brushwork/pkg/math"
)

type viewer struct {
	cfg    *config.Config
	title  string
	name   string
	logger *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	binds    input.Keybinds

	alloc  *alloc.Allocator
	scene  *scene.Scene
	hidden hideStack

	orbit    *camera.OrbitCamera
	free     *camera.FreeCamera
	flying   bool
	dragging bool

	width, height int
	running       bool
	capture       bool
}

func newViewer(cfg *config.Config, path string, models []string) (*viewer, error) {
	mode, err := renderer.ParseMode(cfg.Viewer.RenderMode)
	if err != nil {
		return nil, err
	}

	v := &viewer{
		cfg:    cfg,
		title:  "brushwork - " + filepath.Base(path),
		name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		logger: logger.Named("viewer"),
		input:  input.New(),
		binds:  input.DefaultKeybinds(),
		orbit:  camera.NewOrbitCamera(),
	}
	v.orbit.MaxDistance = cfg.Viewer.DrawDistance
	v.free = camera.NewFreeCamera(math.Vec3{})
	v.free.Sensitivity = cfg.Viewer.MouseSensitivity
	v.free.Speed = cfg.Viewer.MoveSpeed

	v.window, err = window.New(window.Config{
		Title:      v.title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
		Logger:     logger.Named("window"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window created.
	v.width, v.height = v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:        v.width,
		Height:       v.height,
		Mode:         mode,
		FOV:          cfg.Viewer.FOV,
		DrawDistance: cfg.Viewer.DrawDistance,
		VertexBytes:  cfg.Buffers.VertexBytes,
		IndexBytes:   cfg.Buffers.IndexBytes,
		Logger:       logger.Named("renderer"),
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.alloc = alloc.New(alloc.Options{
		VertexCapacity: cfg.Buffers.VertexBytes,
		IndexCapacity:  cfg.Buffers.IndexBytes,
		Logger:         logger.Named("alloc"),
	})
	importLog := logger.Named("import")
	if cfg.Import.ErrorLog != "" {
		importLog = logger.WithErrorFile(importLog, cfg.Import.ErrorLog)
	}
	v.scene = scene.New(v.alloc, scene.Options{Workers: cfg.Import.Workers, Logger: importLog})

	start := time.Now()
	rep, err := v.scene.LoadFile(path)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	v.logger.Info("map loaded",
		zap.String("path", path),
		zap.Int("solids", rep.Solids),
		zap.Int("displacements", rep.Displacements),
		zap.Int("skipped", rep.Skipped),
		zap.Int("uploads", v.alloc.Pending()),
		zap.Duration("took", time.Since(start)),
	)

	for _, m := range models {
		id, err := v.scene.LoadModelFile(m)
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("loading model: %w", err)
		}
		v.logger.Info("model loaded", zap.String("path", m), zap.Uint64("id", id))
	}

	if b, ok := v.scene.Bounds(); ok {
		v.orbit.FitToBounds(b.Min, b.Max)
	}
	return v, nil
}

// Close releases GL and SDL resources. It is safe to call twice.
func (v *viewer) Close() {
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}

func (v *viewer) camera() camera.Camera {
	if v.flying {
		return v.free
	}
	return v.orbit
}

// Run is the main loop. Each frame sends at most one queued upload to the
// GPU so a large map streams in without stalling the window.
func (v *viewer) Run() error {
	v.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.logger.Info("starting main loop")
	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			break
		}
		for _, e := range v.input.Events() {
			if err := v.handle(e); err != nil {
				return err
			}
		}
		if v.flying {
			v.free.Update(v.binds.Move(input.Held), dt)
		}

		if _, err := v.alloc.Flush(v.renderer.Uploads()); err != nil {
			return fmt.Errorf("upload: %w", err)
		}

		v.renderer.Begin()
		v.renderer.Draw(v.camera().ViewMatrix(), v.alloc.DrawCalls())
		if v.capture {
			v.capture = false
			v.screenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s - %d fps - %s - %d pending",
				v.title, frameCount, v.renderer.Mode(), v.alloc.Pending()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *viewer) handle(e input.Event) error {
	switch e.Type {
	case input.EventWindowResize:
		v.width, v.height = v.window.DrawableSize()
		v.renderer.Resize(v.width, v.height)

	case input.EventKeyDown:
		return v.key(e)

	case input.EventMouseDown:
		switch e.Button {
		case sdl.BUTTON_LEFT:
			return v.pick(v.window.ToPixels(e.MouseX, e.MouseY))
		case sdl.BUTTON_RIGHT:
			v.dragging = true
			v.window.GrabMouse(v.flying)
		}

	case input.EventMouseUp:
		if e.Button == sdl.BUTTON_RIGHT {
			v.dragging = false
			v.window.GrabMouse(false)
		}

	case input.EventMouseMove:
		if !v.dragging {
			break
		}
		if v.flying {
			v.free.Look(float32(e.DX), float32(e.DY))
		} else {
			v.orbit.HandleDrag(float32(e.DX), float32(e.DY))
		}

	case input.EventMouseWheel:
		if !v.flying {
			v.orbit.HandleZoom(float32(e.Wheel))
		}
	}
	return nil
}

func (v *viewer) key(e input.Event) error {
	switch e.Key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_F11:
		if err := v.window.ToggleFullscreen(); err != nil {
			v.logger.Warn("fullscreen toggle failed", zap.Error(err))
		}
	case sdl.SCANCODE_F12:
		v.capture = true
	case sdl.SCANCODE_TAB:
		v.renderer.SetMode(v.renderer.Mode().Next())
	case sdl.SCANCODE_F:
		v.flying = !v.flying
		if v.flying {
			v.free.Pos = v.orbit.Position()
			v.free.LookAt(v.orbit.Center)
		}
	case sdl.SCANCODE_H:
		if e.Shift {
			n, err := v.hidden.showAll(v.scene)
			v.logger.Debug("all brushes shown", zap.Int("count", n))
			return err
		}
		id, ok, err := v.hidden.showLast(v.scene)
		if ok {
			v.logger.Debug("brush shown", zap.Uint64("solid", id))
		}
		return err
	}
	return nil
}

func (v *viewer) screenshot() {
	name, err := screenshot.Capture(v.cfg.Viewer.ScreenshotDir, v.name, v.width, v.height)
	if err != nil {
		v.logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.logger.Info("screenshot saved", zap.String("path", name))
}

// pick hides the nearest visible brush under the cursor.
func (v *viewer) pick(x, y int) error {
	viewProj := v.renderer.Projection().Mul(v.camera().ViewMatrix())
	inv, ok := viewProj.Inverse()
	if !ok {
		return nil
	}
	ray := picking.ScreenToRay(float32(x), float32(y), float32(v.width), float32(v.height), inv)
	hit, ok := picking.Pick(ray, v.scene.Solids(), v.scene.Hidden)
	if !ok {
		return nil
	}
	v.logger.Debug("brush picked",
		zap.Uint64("solid", hit.Solid),
		zap.Uint64("side", hit.Face),
		zap.Float64("distance", hit.T),
	)
	return v.hidden.hide(v.scene, hit.Solid)
}
