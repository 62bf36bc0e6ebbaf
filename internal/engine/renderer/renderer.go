// Package renderer draws the allocator's draw list with one program per
// renderable type.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/engine/gpubuffer"
	"github.com/Faultbox/brushwork/internal/engine/shader"
	"github.com/Faultbox/brushwork/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width        int
	Height       int
	Mode         Mode
	FOV          float32 // vertical, degrees
	DrawDistance float32
	VertexBytes  uint64
	IndexBytes   uint64
	Logger       *zap.Logger
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	logger  *zap.Logger
	buffers *gpubuffer.Buffers

	brush        [numModes]*shader.Program
	displacement *shader.Program
	model        *shader.Program

	lightDir math.Vec3
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		logger:   cfg.Logger,
		lightDir: math.Vec3{X: 0.3, Y: 0.5, Z: 0.8}.Normalize(),
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// Brush faces are wound clockwise seen from outside.
	gl.FrontFace(gl.CW)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	if err := r.loadPrograms(); err != nil {
		r.Close()
		return nil, err
	}

	var err error
	r.buffers, err = gpubuffer.New(cfg.VertexBytes, cfg.IndexBytes, r.logger.Named("gpubuffer"))
	if err != nil {
		r.Close()
		return nil, err
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

func (r *Renderer) loadPrograms() error {
	for m := range numModes {
		if m == Wireframe {
			r.brush[m] = r.brush[Flat]
			continue
		}
		p, err := shader.Load("brush.vert", m.fragmentShader())
		if err != nil {
			return fmt.Errorf("%s brush program: %w", m, err)
		}
		r.brush[m] = p
	}
	p, err := shader.Load("displacement.vert", "flat_displacement.frag")
	if err != nil {
		return fmt.Errorf("displacement program: %w", err)
	}
	r.displacement = p
	if p, err = shader.Load("obj_model.vert", "flat_obj_model.frag"); err != nil {
		return fmt.Errorf("model program: %w", err)
	}
	r.model = p
	r.logger.Debug("programs linked")
	return nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.logger.Info("closing renderer")
	if r.buffers != nil {
		r.buffers.Close()
	}
	for m := range numModes {
		if m != Wireframe && r.brush[m] != nil {
			r.brush[m].Delete()
		}
	}
	if r.displacement != nil {
		r.displacement.Delete()
	}
	if r.model != nil {
		r.model.Delete()
	}
}

// Uploads returns the sink the allocator's upload queue drains into.
func (r *Renderer) Uploads() alloc.Uploader {
	return r.buffers
}

// Mode returns the current render mode.
func (r *Renderer) Mode() Mode {
	return r.config.Mode
}

// SetMode switches the render mode.
func (r *Renderer) SetMode(m Mode) {
	r.config.Mode = m
	r.logger.Debug("render mode", zap.Stringer("mode", m))
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Projection returns the current projection matrix.
func (r *Renderer) Projection() math.Mat4 {
	return Projection(r.config.Width, r.config.Height, r.config.FOV, r.config.DrawDistance)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders every draw call with the program for its renderable type.
// calls must be grouped by type, as Allocator.DrawCalls returns them.
func (r *Renderer) Draw(view math.Mat4, calls []alloc.DrawCall) {
	viewProj := r.Projection().Mul(view)

	if r.config.Mode == Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.buffers.Bind()
	defer r.buffers.Unbind()

	for len(calls) > 0 {
		typ := calls[0].Type
		n := 1
		for n < len(calls) && calls[n].Type == typ {
			n++
		}
		group := calls[:n]
		calls = calls[n:]

		var p *shader.Program
		switch typ {
		case alloc.Brush:
			p = r.brush[r.config.Mode]
			if r.config.Mode != Wireframe {
				gl.Enable(gl.CULL_FACE)
			}
		case alloc.Displacement:
			p = r.displacement
			gl.Disable(gl.CULL_FACE)
		case alloc.Model:
			// exported winding is not reliable
			p = r.model
			gl.Disable(gl.CULL_FACE)
		default:
			continue // no program for this type
		}

		p.Use()
		gl.UniformMatrix4fv(p.Uniform("uViewProjection"), 1, false, viewProj.Ptr())
		if loc := p.Uniform("uLightDir"); loc >= 0 {
			gl.Uniform3f(loc, r.lightDir.X, r.lightDir.Y, r.lightDir.Z)
		}
		r.buffers.Draw(group)
	}
	gl.Disable(gl.CULL_FACE)
	gl.UseProgram(0)
}
