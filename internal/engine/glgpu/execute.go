package glgpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/internal/engine/shader"
	"github.com/Faultbox/nodering/internal/gpu"
)

type vaoKey struct {
	vbo, ibo uint32
	layout   *mesh.Layout
}

// execute runs on the render goroutine.
func (d *Device) execute(cb *gpu.CommandBuffer) {
	if cb.Target == nil {
		cb.Complete(nil)
		return
	}

	w, h := cb.Target.Size()
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(cb.Clear.R, cb.Clear.G, cb.Clear.B, cb.Clear.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	var errs []error
	for i := range cb.Draws {
		if err := d.draw(&cb.Draws[i]); err != nil {
			errs = append(errs, fmt.Errorf("draw %d: %w", i, err))
		}
	}
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	if err := glError("frame"); err != nil {
		errs = append(errs, err)
	}

	cb.Target.Present()
	err := errors.Join(errs...)
	if err != nil {
		d.log.Warn("command buffer executed with errors", zap.Error(err))
	}
	cb.Complete(err)
}

func (d *Device) draw(dr *gpu.Draw) error {
	p, ok := dr.Pipeline.(*Pipeline)
	if !ok {
		return fmt.Errorf("pipeline %T is not a glgpu pipeline", dr.Pipeline)
	}
	vb, ok := dr.Vertices.(*Buffer)
	if !ok {
		return fmt.Errorf("vertex buffer %T is not a glgpu buffer", dr.Vertices)
	}
	if dr.Stride != p.layout.Stride {
		return fmt.Errorf("vertex stride %d does not match %s pipeline stride %d", dr.Stride, p.kind, p.layout.Stride)
	}
	var ib *Buffer
	if dr.Indices != nil {
		if ib, ok = dr.Indices.(*Buffer); !ok {
			return fmt.Errorf("index buffer %T is not a glgpu buffer", dr.Indices)
		}
	}
	ub, ok := dr.Uniforms.(*Buffer)
	if !ok {
		return fmt.Errorf("uniform buffer %T is not a glgpu buffer", dr.Uniforms)
	}

	gl.UseProgram(p.program)

	switch dr.Cull {
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case gpu.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	default:
		gl.Disable(gl.CULL_FACE)
	}

	// The host copy was written before Submit; push the draw's range.
	gl.BindBuffer(gl.UNIFORM_BUFFER, ub.id)
	gl.BufferSubData(gl.UNIFORM_BUFFER, dr.UniformOffset, dr.UniformSize, gl.Ptr(ub.data[dr.UniformOffset:]))
	gl.BindBufferRange(gl.UNIFORM_BUFFER, shader.UniformBinding, ub.id, dr.UniformOffset, dr.UniformSize)

	if dr.Texture != nil {
		tex, ok := dr.Texture.(*Texture)
		if !ok {
			return fmt.Errorf("texture %T is not a glgpu texture", dr.Texture)
		}
		smp, ok := dr.Sampler.(*Sampler)
		if !ok {
			return fmt.Errorf("sampler %T is not a glgpu sampler", dr.Sampler)
		}
		gl.ActiveTexture(gl.TEXTURE0 + shader.TextureUnit)
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		gl.BindSampler(shader.TextureUnit, smp.id)
	}

	gl.BindVertexArray(d.vao(vb, ib, p.layout))
	if ib != nil {
		gl.DrawElements(gl.TRIANGLES, int32(dr.IndexCount), gl.UNSIGNED_SHORT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(dr.VertexCount))
	}
	return nil
}

// vao returns the vertex array binding vb (and ib) with layout,
// creating it on first use.
func (d *Device) vao(vb, ib *Buffer, layout *mesh.Layout) uint32 {
	key := vaoKey{vbo: vb.id, layout: layout}
	if ib != nil {
		key.ibo = ib.id
	}
	if vao, ok := d.vaos[key]; ok {
		return vao
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.id)
	for _, a := range layout.Attributes {
		gl.VertexAttribPointerWithOffset(a.Location, int32(a.Components), gl.FLOAT, false, int32(layout.Stride), uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Location)
	}
	if ib != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.id)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	d.vaos[key] = vao
	d.log.Debug("vertex array created",
		zap.Uint32("vao", vao),
		zap.Uint32("vbo", key.vbo),
		zap.Uint32("ibo", key.ibo),
		zap.String("layout", layout.Name))
	return vao
}

// forgetVAOs deletes every vertex array that references buffer id.
// It runs on the render goroutine.
func (d *Device) forgetVAOs(id uint32) {
	for key, vao := range d.vaos {
		if key.vbo == id || key.ibo == id {
			gl.DeleteVertexArrays(1, &vao)
			delete(d.vaos, key)
		}
	}
}
