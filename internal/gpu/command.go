package gpu

import "sync"

// Color is a linear RGBA colour.
type Color struct {
	R, G, B, A float32
}

// CullMode is the type of triangle cull modes.
type CullMode int

// Cull modes.
// Triangles wound counter-clockwise are front facing.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// Draw is a single recorded draw call.
type Draw struct {
	Pipeline Pipeline

	// Vertices holds the mesh's vertex data, laid out with Stride
	// bytes per vertex.
	Vertices Buffer
	Stride   int

	// Indices is nil for unindexed draws.
	// Indices are 16-bit.
	Indices Buffer

	// VertexCount is used by unindexed draws, IndexCount by
	// indexed ones. Both are multiples of 3.
	VertexCount int
	IndexCount  int

	// Uniforms is read by the shaders, starting at UniformOffset,
	// for UniformSize bytes.
	Uniforms      Buffer
	UniformOffset int
	UniformSize   int

	// Texture and Sampler are either both set or both nil.
	Texture Texture
	Sampler Sampler

	Cull CullMode
}

// Indexed reports whether the draw uses an index buffer.
func (d *Draw) Indexed() bool { return d.Indices != nil }

// Triangles returns the number of triangles the draw emits.
func (d *Draw) Triangles() int {
	if d.Indexed() {
		return d.IndexCount / 3
	}
	return d.VertexCount / 3
}

// CommandBuffer records the draws for one frame into a single surface.
// It is filled by a single producer goroutine, handed to Device.Submit,
// and completed by the device from its execution context.
type CommandBuffer struct {
	// Target is the surface the draws render into.
	// The device presents it after the last draw.
	Target Surface

	// Clear is the colour the target is cleared to before the
	// first draw.
	Clear Color

	Draws []Draw

	mu       sync.Mutex
	handlers []func(error)
	done     bool
}

// NewCommandBuffer creates a command buffer targeting surf.
func NewCommandBuffer(surf Surface, clear Color) *CommandBuffer {
	return &CommandBuffer{Target: surf, Clear: clear}
}

// Record appends a draw.
func (cb *CommandBuffer) Record(d Draw) {
	cb.Draws = append(cb.Draws, d)
}

// AddCompletedHandler registers f to run when the command buffer
// completes. Handlers run in registration order, exactly once.
func (cb *CommandBuffer) AddCompletedHandler(f func(error)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.done {
		panic("gpu: AddCompletedHandler on completed command buffer")
	}
	cb.handlers = append(cb.handlers, f)
}

// Complete runs the completed handlers with err.
// Devices call it exactly once per submitted command buffer;
// a second call panics.
func (cb *CommandBuffer) Complete(err error) {
	cb.mu.Lock()
	if cb.done {
		cb.mu.Unlock()
		panic("gpu: command buffer completed twice")
	}
	cb.done = true
	handlers := cb.handlers
	cb.handlers = nil
	cb.mu.Unlock()

	for _, f := range handlers {
		f(err)
	}
}

// Discard completes a command buffer that will never be submitted,
// so that resources referenced by its draws are given back.
// Nothing is presented.
func (cb *CommandBuffer) Discard(err error) {
	cb.Target = nil
	cb.Draws = nil
	cb.Complete(err)
}

// Completed reports whether Complete has run.
func (cb *CommandBuffer) Completed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.done
}
