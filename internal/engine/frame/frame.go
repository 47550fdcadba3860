// Package frame drives per-tick rendering: it acquires a surface, keeps
// the projection in step with the surface size, lets a Delegate update
// and record the frame, and submits the result as one command buffer.
package frame

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/logger"
	"github.com/Faultbox/nodering/pkg/math"
)

// Delegate is the scene side of the frame loop.
type Delegate interface {
	// UpdateLogic advances the scene by elapsed.
	// It is called once per tick, even when the frame is skipped.
	UpdateLogic(elapsed time.Duration)

	// RenderObjects records the scene's draws into f.Commands.
	// Returning an error drops the whole frame.
	RenderObjects(f *Frame) error
}

// Frame is what a Delegate renders into.
type Frame struct {
	// Index counts ticks from 1.
	Index uint64

	Surface  gpu.Surface
	Commands *gpu.CommandBuffer

	// Pipeline is the default pipeline for draws that do not pick
	// their own.
	Pipeline gpu.Pipeline

	// Parent is the view transform applied on top of every node.
	Parent     math.Mat4
	Projection math.Mat4
}

// Config holds the projection and clear settings of a Driver.
type Config struct {
	FOVY       float32 // radians
	Near, Far  float32
	ClearColor gpu.Color
}

// DefaultConfig returns an 85 degree field of view, clip planes at 0.01
// and 100 and a dark green clear colour.
func DefaultConfig() Config {
	return Config{
		FOVY:       math.Radians(85),
		Near:       0.01,
		Far:        100,
		ClearColor: gpu.Color{R: 0, G: 104.0 / 255.0, B: 5.0 / 255.0, A: 1},
	}
}

// Stats counts what the driver did.
type Stats struct {
	Ticks     uint64
	Submitted uint64
	// Skipped frames had no surface. Dropped frames failed to render.
	Skipped uint64
	Dropped uint64
}

// Driver runs the frame loop over a presenter and a device.
// Tick must be called from a single goroutine.
type Driver struct {
	presenter gpu.Presenter
	device    gpu.Device
	pipeline  gpu.Pipeline
	cfg       Config

	// tickMu is held for the whole of Tick, so that SetDelegate can
	// wait out a tick in progress.
	tickMu   sync.Mutex
	delegate Delegate
	parent   math.Mat4

	projection    math.Mat4
	width, height int

	statsMu sync.Mutex
	stats   Stats

	log *zap.Logger
}

// New creates a driver. pipeline is handed to delegates as the default.
func New(presenter gpu.Presenter, device gpu.Device, pipeline gpu.Pipeline, cfg Config) *Driver {
	return &Driver{
		presenter: presenter,
		device:    device,
		pipeline:  pipeline,
		cfg:       cfg,
		parent:    math.Identity(),
		log:       logger.Named("frame"),
	}
}

// SetDelegate replaces the delegate. The driver does not own it: the
// owner must call SetDelegate(nil) before tearing the delegate down.
// When SetDelegate returns, no call into the previous delegate is in
// progress and none will be made.
func (d *Driver) SetDelegate(del Delegate) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()
	d.delegate = del
}

// SetParent sets the view transform passed to every frame.
func (d *Driver) SetParent(m math.Mat4) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()
	d.parent = m
}

// Projection returns the projection used by the last rendered frame.
func (d *Driver) Projection() math.Mat4 {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()
	return d.projection
}

// Stats returns a snapshot of the counters.
func (d *Driver) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

func (d *Driver) count(f func(*Stats)) {
	d.statsMu.Lock()
	f(&d.stats)
	d.statsMu.Unlock()
}

// Tick runs one frame. It returns the delegate's render error, after
// having discarded the frame's commands; nothing is presented then.
// A missing surface skips the frame and is not an error.
func (d *Driver) Tick(elapsed time.Duration) error {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	var index uint64
	d.count(func(s *Stats) { s.Ticks++; index = s.Ticks })

	del := d.delegate
	if del == nil {
		return nil
	}
	del.UpdateLogic(elapsed)

	surf := d.presenter.AcquireNextSurface()
	if surf == nil {
		d.count(func(s *Stats) { s.Skipped++ })
		d.log.Debug("no surface, frame skipped", zap.Uint64("frame", index))
		return nil
	}
	w, h := surf.Size()
	if w <= 0 || h <= 0 {
		d.count(func(s *Stats) { s.Skipped++ })
		d.log.Debug("empty surface, frame skipped", zap.Uint64("frame", index), zap.Int("width", w), zap.Int("height", h))
		return nil
	}
	if w != d.width || h != d.height {
		d.resize(w, h)
	}

	cb := gpu.NewCommandBuffer(surf, d.cfg.ClearColor)
	f := &Frame{
		Index:      index,
		Surface:    surf,
		Commands:   cb,
		Pipeline:   d.pipeline,
		Parent:     d.parent,
		Projection: d.projection,
	}
	if err := del.RenderObjects(f); err != nil {
		cb.Discard(err)
		d.count(func(s *Stats) { s.Dropped++ })
		return fmt.Errorf("frame %d: %w", index, err)
	}

	d.device.Submit(cb)
	d.count(func(s *Stats) { s.Submitted++ })
	return nil
}

func (d *Driver) resize(w, h int) {
	d.width, d.height = w, h
	d.projection = math.Perspective(d.cfg.FOVY, float32(w)/float32(h), d.cfg.Near, d.cfg.Far)
	d.log.Debug("projection updated", zap.Int("width", w), zap.Int("height", h))
}
