package glgpu

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/internal/engine/shader"
	"github.com/Faultbox/nodering/internal/gpu"
)

// Pipeline is a linked shader program and the vertex layout it reads.
type Pipeline struct {
	dev     *Device
	kind    shader.Kind
	program uint32
	layout  *mesh.Layout

	once sync.Once
}

// Kind returns the shading program of the pipeline.
func (p *Pipeline) Kind() shader.Kind { return p.kind }

// Layout returns the vertex layout draws through p must use.
func (p *Pipeline) Layout() *mesh.Layout { return p.layout }

// Destroy implements gpu.Destroyer.
func (p *Pipeline) Destroy() {
	p.once.Do(func() {
		program := p.program
		p.dev.later(func() { gl.DeleteProgram(program) })
	})
}

// LayoutFor returns the vertex layout of a program kind.
func LayoutFor(k shader.Kind) *mesh.Layout {
	switch k {
	case shader.KindTextured:
		return mesh.TexturedLayout
	case shader.KindTexturedLit:
		return mesh.LitLayout
	default:
		return mesh.ColorLayout
	}
}

// NewPipeline compiles the program of kind k.
// Failures wrap gpu.ErrResourceCreation.
func (d *Device) NewPipeline(k shader.Kind) (*Pipeline, error) {
	p := &Pipeline{dev: d, kind: k, layout: LayoutFor(k)}
	err := d.do(func() error {
		var err error
		p.program, err = shader.Build(k)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pipeline: %w", gpu.ErrResourceCreation, err)
	}
	d.log.Debug("pipeline created", zap.Stringer("kind", k), zap.Uint32("program", p.program))
	return p, nil
}
