// Package glgpu implements gpu.Device on OpenGL 4.1.
//
// A GL context can only be current on one OS thread, so the device owns
// a render goroutine locked to its thread. Resource creation runs there
// synchronously; submitted command buffers are executed there in order
// and completed from there, which makes the render goroutine the GPU
// completion context as far as the rest of the program is concerned.
package glgpu

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/logger"
)

// Context is a GL context that can be moved between threads.
type Context interface {
	// MakeCurrent binds the context to the calling thread.
	MakeCurrent() error
	// ReleaseCurrent unbinds the context from the calling thread.
	ReleaseCurrent()
}

// queueDepth bounds the command buffers waiting for the render goroutine.
const queueDepth = 8

// Device is an OpenGL gpu.Device.
type Device struct {
	jobs chan func()
	done chan struct{}

	mu     sync.Mutex
	closed bool

	// Deletions requested from any goroutine, including completion
	// handlers running on the render goroutine itself. Flushed by the
	// render goroutine before each job.
	delMu   sync.Mutex
	deletes []func()

	// Owned by the render goroutine.
	vaos map[vaoKey]uint32

	log *zap.Logger
}

var _ gpu.Device = (*Device)(nil)

// New starts the render goroutine and moves ctx onto it.
// ctx must be current on the calling thread, or on none.
func New(ctx Context) (*Device, error) {
	d := &Device{
		jobs: make(chan func(), queueDepth),
		done: make(chan struct{}),
		vaos: make(map[vaoKey]uint32),
		log:  logger.Named("glgpu"),
	}

	ctx.ReleaseCurrent()
	ready := make(chan error, 1)
	go d.loop(ctx, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) loop(ctx Context, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(d.done)

	if err := ctx.MakeCurrent(); err != nil {
		ready <- fmt.Errorf("%w: make context current: %w", gpu.ErrDeviceLost, err)
		return
	}
	if err := gl.Init(); err != nil {
		ctx.ReleaseCurrent()
		ready <- fmt.Errorf("%w: failed to initialize OpenGL: %w", gpu.ErrDeviceLost, err)
		return
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// No depth buffer: faces are culled per draw instead.
	gl.Disable(gl.DEPTH_TEST)
	gl.FrontFace(gl.CCW)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	ready <- nil

	for job := range d.jobs {
		d.flushDeletes()
		job()
	}

	d.flushDeletes()
	for key, vao := range d.vaos {
		gl.DeleteVertexArrays(1, &vao)
		delete(d.vaos, key)
	}
	ctx.ReleaseCurrent()
	d.log.Info("render goroutine stopped")
}

// do runs f on the render goroutine and waits for it.
// It must not be called from a completion handler.
func (d *Device) do(f func() error) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return gpu.ErrDeviceLost
	}
	errc := make(chan error, 1)
	d.jobs <- func() { errc <- f() }
	d.mu.Unlock()
	return <-errc
}

// later queues f to run on the render goroutine before its next job.
// It never blocks and may be called from any goroutine.
func (d *Device) later(f func()) {
	d.delMu.Lock()
	d.deletes = append(d.deletes, f)
	d.delMu.Unlock()
}

func (d *Device) flushDeletes() {
	d.delMu.Lock()
	fs := d.deletes
	d.deletes = nil
	d.delMu.Unlock()
	for _, f := range fs {
		f()
	}
}

// NewBuffer implements gpu.Device.
// Vertex and index buffers are uploaded once; uniform buffers are
// uploaded from their host copy whenever a draw reads them.
func (d *Device) NewBuffer(data []byte, size int, usage gpu.Usage) (gpu.Buffer, error) {
	if size <= 0 || len(data) > size {
		return nil, fmt.Errorf("%w: invalid buffer size %d for %d bytes", gpu.ErrResourceCreation, size, len(data))
	}

	b := &Buffer{dev: d, data: make([]byte, size), usage: usage}
	copy(b.data, data)

	switch usage {
	case gpu.UsageVertex:
		b.target, b.hint = gl.ARRAY_BUFFER, gl.STATIC_DRAW
	case gpu.UsageIndex:
		b.target, b.hint = gl.ELEMENT_ARRAY_BUFFER, gl.STATIC_DRAW
	case gpu.UsageUniform:
		b.target, b.hint = gl.UNIFORM_BUFFER, gl.DYNAMIC_DRAW
	default:
		return nil, fmt.Errorf("%w: unsupported buffer usage %s", gpu.ErrResourceCreation, usage)
	}

	err := d.do(func() error {
		gl.GenBuffers(1, &b.id)
		if b.id == 0 {
			return errors.New("glGenBuffers returned 0")
		}
		// Index buffers are bound through a VAO when drawing; outside of
		// one, any target works for the upload.
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
		gl.BufferData(gl.COPY_WRITE_BUFFER, size, gl.Ptr(b.data), b.hint)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
		return glError("buffer upload")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s buffer: %w", gpu.ErrResourceCreation, usage, err)
	}
	return b, nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(img *image.RGBA) (gpu.Texture, error) {
	if img == nil || img.Rect.Empty() {
		return nil, fmt.Errorf("%w: empty texture image", gpu.ErrResourceCreation)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := img.Pix
	if img.Stride != 4*w || img.Rect.Min != (image.Point{}) {
		tight := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(tight.Pix[y*tight.Stride:], img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):][:4*w])
		}
		pix = tight.Pix
	}

	t := &Texture{dev: d, width: w, height: h}
	err := d.do(func() error {
		gl.GenTextures(1, &t.id)
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return glError("texture upload")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: texture %dx%d: %w", gpu.ErrResourceCreation, w, h, err)
	}
	return t, nil
}

// NewSampler implements gpu.Device.
func (d *Device) NewSampler(s gpu.Sampling) (gpu.Sampler, error) {
	smp := &Sampler{dev: d}
	err := d.do(func() error {
		gl.GenSamplers(1, &smp.id)
		gl.SamplerParameteri(smp.id, gl.TEXTURE_MIN_FILTER, glFilter(s.Min))
		gl.SamplerParameteri(smp.id, gl.TEXTURE_MAG_FILTER, glFilter(s.Mag))
		gl.SamplerParameteri(smp.id, gl.TEXTURE_WRAP_S, glAddrMode(s.AddrU))
		gl.SamplerParameteri(smp.id, gl.TEXTURE_WRAP_T, glAddrMode(s.AddrV))
		return glError("sampler")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sampler: %w", gpu.ErrResourceCreation, err)
	}
	return smp, nil
}

// Submit implements gpu.Device.
// It blocks while queueDepth command buffers are waiting.
func (d *Device) Submit(cb *gpu.CommandBuffer) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		go cb.Complete(gpu.ErrDeviceLost)
		return
	}
	d.jobs <- func() { d.execute(cb) }
	d.mu.Unlock()
}

// Close executes whatever was submitted, stops the render goroutine and
// releases the context. Command buffers submitted afterwards complete
// with gpu.ErrDeviceLost.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	<-d.done
}

func glError(what string) error {
	var codes []uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}
	return fmt.Errorf("%s: GL error %#x", what, codes)
}

