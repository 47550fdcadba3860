// Package gputest provides an in-memory gpu.Device and gpu.Presenter.
//
// The device executes submitted command buffers on a goroutine other than
// the submitter's, the same way a real GPU signals completion from its own
// notification context. Execution can be driven by hand (NewDevice) or run
// continuously with a fixed latency (NewAsyncDevice).
package gputest

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/Faultbox/nodering/internal/gpu"
)

// ExecutedDraw is a draw as the device saw it at execution time.
type ExecutedDraw struct {
	gpu.Draw

	// UniformBytes is a copy of the uniform range read by the draw.
	UniformBytes []byte
}

// Execution records one executed command buffer.
type Execution struct {
	Target gpu.Surface
	Clear  gpu.Color
	Draws  []ExecutedDraw
}

// Device is an in-memory gpu.Device.
type Device struct {
	mu        sync.Mutex
	pending   []*gpu.CommandBuffer
	executed  []Execution
	submitted int
	buffers   []*Buffer
	failAfter int
	lost      bool

	latency time.Duration
	queue   chan *gpu.CommandBuffer
	wg      sync.WaitGroup
}

// NewDevice creates a device whose submissions stay pending until
// CompleteNext or CompleteAll is called.
func NewDevice() *Device {
	return &Device{failAfter: -1}
}

// NewAsyncDevice creates a device that executes submissions in order on
// a background goroutine, each one after latency has elapsed.
// Call Close to stop it.
func NewAsyncDevice(latency time.Duration) *Device {
	d := &Device{
		failAfter: -1,
		latency:   latency,
		queue:     make(chan *gpu.CommandBuffer, 64),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Device) run() {
	defer d.wg.Done()
	for cb := range d.queue {
		if d.latency > 0 {
			time.Sleep(d.latency)
		}
		d.execute(cb)
	}
}

// FailAfter makes resource creation fail once n more resources have
// been created successfully. A negative n disables failures.
func (d *Device) FailAfter(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAfter = n
}

// allocate reports whether a resource allocation may succeed.
func (d *Device) allocate(what string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAfter == 0 {
		return fmt.Errorf("%w: gputest: %s allocation refused", gpu.ErrResourceCreation, what)
	}
	if d.failAfter > 0 {
		d.failAfter--
	}
	return nil
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(data []byte, size int, usage gpu.Usage) (gpu.Buffer, error) {
	if size <= 0 || len(data) > size {
		return nil, fmt.Errorf("%w: gputest: invalid buffer size %d for %d bytes", gpu.ErrResourceCreation, size, len(data))
	}
	if err := d.allocate("buffer"); err != nil {
		return nil, err
	}
	b := &Buffer{data: make([]byte, size), usage: usage}
	copy(b.data, data)

	d.mu.Lock()
	d.buffers = append(d.buffers, b)
	d.mu.Unlock()
	return b, nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(img *image.RGBA) (gpu.Texture, error) {
	if img == nil || img.Rect.Empty() {
		return nil, fmt.Errorf("%w: gputest: empty texture image", gpu.ErrResourceCreation)
	}
	if err := d.allocate("texture"); err != nil {
		return nil, err
	}
	return &Texture{w: img.Rect.Dx(), h: img.Rect.Dy()}, nil
}

// NewSampler implements gpu.Device.
func (d *Device) NewSampler(s gpu.Sampling) (gpu.Sampler, error) {
	if err := d.allocate("sampler"); err != nil {
		return nil, err
	}
	return &Sampler{Sampling: s}, nil
}

// Submit implements gpu.Device.
func (d *Device) Submit(cb *gpu.CommandBuffer) {
	d.mu.Lock()
	d.submitted++
	lost := d.lost
	if !lost && d.queue == nil {
		d.pending = append(d.pending, cb)
	}
	d.mu.Unlock()

	switch {
	case lost:
		go cb.Complete(gpu.ErrDeviceLost)
	case d.queue != nil:
		d.queue <- cb
	}
}

// execute snapshots cb, presents its target and completes it.
func (d *Device) execute(cb *gpu.CommandBuffer) {
	ex := Execution{Target: cb.Target, Clear: cb.Clear}
	for _, dr := range cb.Draws {
		ed := ExecutedDraw{Draw: dr}
		if dr.Uniforms != nil {
			src := dr.Uniforms.Bytes()[dr.UniformOffset : dr.UniformOffset+dr.UniformSize]
			ed.UniformBytes = append([]byte(nil), src...)
		}
		ex.Draws = append(ex.Draws, ed)
	}

	d.mu.Lock()
	d.executed = append(d.executed, ex)
	d.mu.Unlock()

	if cb.Target != nil {
		cb.Target.Present()
	}
	cb.Complete(nil)
}

// CompleteNext executes the oldest pending submission on a separate
// goroutine and waits for its completed handlers to return.
// It reports whether there was anything to execute.
func (d *Device) CompleteNext() bool {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return false
	}
	cb := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.execute(cb)
	}()
	<-done
	return true
}

// CompleteAll executes every pending submission and returns how many ran.
func (d *Device) CompleteAll() int {
	n := 0
	for d.CompleteNext() {
		n++
	}
	return n
}

// Pending returns the number of submissions waiting for execution.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Submitted returns the number of command buffers submitted so far.
func (d *Device) Submitted() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

// Executions returns a copy of the executed command buffers, oldest first.
func (d *Device) Executions() []Execution {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Execution(nil), d.executed...)
}

// DrawCount returns the total number of executed draws.
func (d *Device) DrawCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, ex := range d.executed {
		n += len(ex.Draws)
	}
	return n
}

// LiveBuffers returns the number of buffers not yet destroyed.
func (d *Device) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, b := range d.buffers {
		if !b.Destroyed() {
			n++
		}
	}
	return n
}

// Lose puts the device in the lost state: pending and future
// submissions complete with gpu.ErrDeviceLost.
func (d *Device) Lose() {
	d.mu.Lock()
	d.lost = true
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, cb := range pending {
		cb.Complete(gpu.ErrDeviceLost)
	}
}

// Close stops the execution goroutine of an async device after it has
// drained the queue, and fails whatever is still pending.
// It must not be called concurrently with Submit.
func (d *Device) Close() {
	if d.queue != nil {
		close(d.queue)
		d.wg.Wait()
	}
	d.Lose()
}

// Buffer is an in-memory gpu.Buffer.
type Buffer struct {
	mu        sync.Mutex
	data      []byte
	usage     gpu.Usage
	destroyed bool
}

// Bytes implements gpu.Buffer.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		panic("gputest: Bytes called on destroyed buffer")
	}
	return b.data
}

// Len implements gpu.Buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Usage implements gpu.Buffer.
func (b *Buffer) Usage() gpu.Usage { return b.usage }

// Destroy implements gpu.Destroyer.
// Destroying a buffer twice panics.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		panic("gputest: buffer destroyed twice")
	}
	b.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (b *Buffer) Destroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

// Texture is an in-memory gpu.Texture.
type Texture struct {
	w, h      int
	destroyed bool
}

// Size implements gpu.Texture.
func (t *Texture) Size() (int, int) { return t.w, t.h }

// Destroy implements gpu.Destroyer.
func (t *Texture) Destroy() { t.destroyed = true }

// Sampler is an in-memory gpu.Sampler.
type Sampler struct {
	gpu.Sampling
	destroyed bool
}

// Destroy implements gpu.Destroyer.
func (s *Sampler) Destroy() { s.destroyed = true }

// Pipeline is a named stand-in for a compiled pipeline.
type Pipeline struct {
	Name      string
	destroyed bool
}

// Destroy implements gpu.Destroyer.
func (p *Pipeline) Destroy() { p.destroyed = true }
