// Package gpu defines the services the renderer core consumes from the
// platform: memory allocation, command submission and presentation.
// Implementations live elsewhere (see glgpu for OpenGL and gputest for an
// in-memory device used by tests); the core only sees these interfaces.
package gpu

import (
	"errors"
	"image"
)

// ErrResourceCreation means that a buffer, texture, sampler or pipeline
// could not be created. Backends wrap it with the underlying cause.
// It is fatal for whatever was being constructed.
var ErrResourceCreation = errors.New("gpu: resource creation failed")

// ErrDeviceLost means that the device can no longer execute work.
// Command buffers submitted after this point complete with it.
var ErrDeviceLost = errors.New("gpu: device lost")

// Usage indicates how a buffer is going to be consumed.
type Usage int

// Buffer usages.
const (
	// The buffer provides vertex data for draws.
	UsageVertex Usage = 1 << iota
	// The buffer provides index data for draws.
	UsageIndex
	// The buffer provides per-draw shading constants.
	// Uniform buffers are host visible and rewritten by the CPU.
	UsageUniform
)

// String implements fmt.Stringer.
func (u Usage) String() string {
	switch u {
	case UsageVertex:
		return "vertex"
	case UsageIndex:
		return "index"
	case UsageUniform:
		return "uniform"
	default:
		return "mixed"
	}
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement it may hold memory that is not managed by
// the GC, so Destroy must be called explicitly.
type Destroyer interface {
	Destroy()
}

// Device is the interface to an underlying GPU implementation.
type Device interface {
	// NewBuffer creates a buffer of size bytes.
	// If data is not nil, it is copied into the start of the buffer.
	// Failures wrap ErrResourceCreation.
	NewBuffer(data []byte, size int, usage Usage) (Buffer, error)

	// NewTexture creates a 2D RGBA8 texture from img.
	// Failures wrap ErrResourceCreation.
	NewTexture(img *image.RGBA) (Texture, error)

	// NewSampler creates a sampler.
	// Failures wrap ErrResourceCreation.
	NewSampler(s Sampling) (Sampler, error)

	// Submit hands cb over for asynchronous execution.
	// The device takes ownership of cb: it executes the draws in order,
	// presents cb.Target if set, and then calls cb.Complete exactly
	// once from its own execution context, with a non-nil error if
	// execution failed. Writes made to host-visible buffers before
	// Submit are visible to that execution.
	Submit(cb *CommandBuffer)
}

// Buffer is the interface that defines a GPU buffer.
// Its size is fixed at creation.
type Buffer interface {
	Destroyer

	// Bytes returns a slice of length Len referring to the
	// host-visible contents of the buffer.
	// The slice is valid until Destroy is called.
	Bytes() []byte

	// Len returns the size of the buffer in bytes.
	Len() int

	// Usage returns the usage the buffer was created with.
	Usage() Usage
}

// Texture is the interface that defines an immutable 2D texture.
type Texture interface {
	Destroyer

	// Size returns the dimensions in pixels.
	Size() (width, height int)
}

// Filter is the type of sampler filters.
type Filter int

// Filters.
const (
	FilterLinear Filter = iota
	FilterNearest
)

// AddrMode is the type of sampler address modes.
type AddrMode int

// Address modes.
const (
	AddrClamp AddrMode = iota
	AddrRepeat
	AddrMirror
)

// Sampling describes a sampler.
type Sampling struct {
	Min, Mag Filter
	AddrU    AddrMode
	AddrV    AddrMode
}

// DefaultSampling is the linear, clamp-to-edge sampling used by textured
// nodes unless told otherwise.
var DefaultSampling = Sampling{Min: FilterLinear, Mag: FilterLinear}

// Sampler is the interface that defines an image sampler.
type Sampler interface {
	Destroyer
}

// Pipeline is an opaque, precompiled pipeline state.
// The core binds it to draws but never inspects it.
type Pipeline interface {
	Destroyer
}

// Surface is a presentable render target for a single frame.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Present queues the surface for display.
	// Devices call it on their execution context once every
	// draw targeting the surface has executed.
	Present()
}

// Presenter supplies surfaces to render into.
type Presenter interface {
	// AcquireNextSurface returns the next surface, or nil if none is
	// available right now (e.g. the window is minimized or being
	// resized). A nil surface is not an error.
	AcquireNextSurface() Surface
}
