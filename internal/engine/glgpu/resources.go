package glgpu

import (
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/nodering/internal/gpu"
)

// Buffer is a GL buffer object with a host copy of its contents.
type Buffer struct {
	dev    *Device
	id     uint32
	target uint32
	hint   uint32
	usage  gpu.Usage
	data   []byte

	once sync.Once
}

// Bytes implements gpu.Buffer.
func (b *Buffer) Bytes() []byte { return b.data }

// Len implements gpu.Buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Usage implements gpu.Buffer.
func (b *Buffer) Usage() gpu.Usage { return b.usage }

// Destroy implements gpu.Destroyer.
// The GL object is deleted on the render goroutine.
func (b *Buffer) Destroy() {
	b.once.Do(func() {
		id := b.id
		b.dev.later(func() {
			b.dev.forgetVAOs(id)
			gl.DeleteBuffers(1, &id)
		})
	})
}

// Texture is a GL 2D texture.
type Texture struct {
	dev           *Device
	id            uint32
	width, height int

	once sync.Once
}

// Size implements gpu.Texture.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Destroy implements gpu.Destroyer.
func (t *Texture) Destroy() {
	t.once.Do(func() {
		id := t.id
		t.dev.later(func() { gl.DeleteTextures(1, &id) })
	})
}

// Sampler is a GL sampler object.
type Sampler struct {
	dev *Device
	id  uint32

	once sync.Once
}

// Destroy implements gpu.Destroyer.
func (s *Sampler) Destroy() {
	s.once.Do(func() {
		id := s.id
		s.dev.later(func() { gl.DeleteSamplers(1, &id) })
	})
}

func glFilter(f gpu.Filter) int32 {
	if f == gpu.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func glAddrMode(m gpu.AddrMode) int32 {
	switch m {
	case gpu.AddrRepeat:
		return gl.REPEAT
	case gpu.AddrMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}
