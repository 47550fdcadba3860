// Package ring implements the uniform ring: a fixed set of host-visible
// buffers handed out round-robin to a single producer and given back by
// the GPU completion context once the draws that read them have executed.
//
// A counting semaphore sized to the ring capacity gates Acquire, so at
// most Cap slots are ever checked out. Slots are always handed out in
// strict (last+1) mod Cap order, even when the device completes work in
// a different order.
package ring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/logger"
)

// DefaultCapacity is the number of slots used for triple buffering.
const DefaultCapacity = 3

var (
	// ErrTimeout is returned by a bounded Acquire when no slot came back
	// in time. It wraps the context error.
	ErrTimeout = errors.New("ring: acquire timed out")

	// ErrClosed is returned by Acquire once Close has been called.
	ErrClosed = errors.New("ring: closed")
)

// ProtocolError is the panic value for misuse of the acquire/release
// protocol. Continuing after one would let the CPU overwrite memory the
// GPU may still be reading.
type ProtocolError struct {
	Op    string
	Slot  int
	Cause string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ring: %s slot %d: %s", e.Op, e.Slot, e.Cause)
}

// Slot is one region of a Ring.
type Slot struct {
	ring  *Ring
	index int
	buf   gpu.Buffer

	// out is set while the slot is checked out.
	// home is closed when it is released.
	out  bool
	home chan struct{}
}

// Index returns the position of the slot in its ring.
func (s *Slot) Index() int { return s.index }

// Buffer returns the GPU buffer backing the slot.
func (s *Slot) Buffer() gpu.Buffer { return s.buf }

// Write copies data into the slot starting at offset.
// The slot must be checked out and the write must fit in it.
func (s *Slot) Write(offset int, data []byte) {
	r := s.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	if !s.out {
		panic(&ProtocolError{Op: "write", Slot: s.index, Cause: "slot is not checked out"})
	}
	if offset < 0 || offset+len(data) > r.slotSize {
		panic(&ProtocolError{
			Op:    "write",
			Slot:  s.index,
			Cause: fmt.Sprintf("range [%d:%d] exceeds slot size %d", offset, offset+len(data), r.slotSize),
		})
	}
	copy(s.buf.Bytes()[offset:], data)
}

// Ring is a fixed-capacity pool of uniform buffers.
// Acquire must be called by a single producer at a time; Release may be
// called from any goroutine.
type Ring struct {
	sem      *semaphore.Weighted
	slotSize int

	mu          sync.Mutex
	slots       []*Slot
	next        int
	outstanding int
	closed      bool
	destroyed   bool
	// idle is closed when outstanding drops to zero.
	idle chan struct{}

	log *zap.Logger
}

// New creates a ring of capacity slots of slotSize bytes each.
// If any allocation fails, the slots created so far are destroyed and
// the error, which wraps gpu.ErrResourceCreation, is returned.
func New(dev gpu.Device, capacity, slotSize int) (*Ring, error) {
	if dev == nil {
		return nil, errors.New("ring: nil device")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("ring: capacity %d must be at least 1", capacity)
	}
	if slotSize <= 0 {
		return nil, fmt.Errorf("ring: slot size %d must be positive", slotSize)
	}

	r := &Ring{
		sem:      semaphore.NewWeighted(int64(capacity)),
		slotSize: slotSize,
		slots:    make([]*Slot, 0, capacity),
		idle:     closedChan(),
		log:      logger.Named("ring"),
	}
	for i := 0; i < capacity; i++ {
		buf, err := dev.NewBuffer(nil, slotSize, gpu.UsageUniform)
		if err != nil {
			for _, s := range r.slots {
				s.buf.Destroy()
			}
			return nil, fmt.Errorf("ring: slot %d: %w", i, err)
		}
		r.slots = append(r.slots, &Slot{ring: r, index: i, buf: buf})
	}

	r.log.Debug("ring created", zap.Int("capacity", capacity), zap.Int("slot_size", slotSize))
	return r, nil
}

// Cap returns the number of slots.
func (r *Ring) Cap() int { return len(r.slots) }

// SlotSize returns the size of every slot in bytes.
func (r *Ring) SlotSize() int { return r.slotSize }

// Outstanding returns the number of slots checked out.
func (r *Ring) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outstanding
}

// Free returns the number of slots not checked out.
func (r *Ring) Free() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots) - r.outstanding
}

// Acquire returns the next slot in round-robin order, blocking until it
// is available or ctx is done. A done context yields an error wrapping
// both ErrTimeout and the context error.
func (r *Ring) Acquire(ctx context.Context) (*Slot, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	r.mu.Lock()
	for {
		if r.closed {
			r.mu.Unlock()
			r.sem.Release(1)
			return nil, ErrClosed
		}
		s := r.slots[r.next]
		if !s.out {
			s.out = true
			s.home = make(chan struct{})
			r.next = (r.next + 1) % len(r.slots)
			if r.outstanding == 0 {
				r.idle = make(chan struct{})
			}
			r.outstanding++
			r.mu.Unlock()
			return s, nil
		}

		// A permit is free but the slot whose turn it is has not come
		// back yet: completions arrived out of order. Wait for it.
		home := s.home
		r.mu.Unlock()
		select {
		case <-home:
		case <-ctx.Done():
			r.sem.Release(1)
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		r.mu.Lock()
	}
}

// AcquireTimeout is Acquire bounded by d.
// A non-positive d waits forever.
func (r *Ring) AcquireTimeout(d time.Duration) (*Slot, error) {
	if d <= 0 {
		return r.Acquire(context.Background())
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Acquire(ctx)
}

// Release gives s back to the ring.
// It must be called exactly once per Acquire, after the consumer is
// done reading the slot.
func (r *Ring) Release(s *Slot) {
	if s == nil {
		panic(&ProtocolError{Op: "release", Slot: -1, Cause: "nil slot"})
	}

	r.mu.Lock()
	if s.ring != r {
		r.mu.Unlock()
		panic(&ProtocolError{Op: "release", Slot: s.index, Cause: "slot belongs to another ring"})
	}
	if !s.out {
		r.mu.Unlock()
		panic(&ProtocolError{Op: "release", Slot: s.index, Cause: "slot is not checked out"})
	}
	s.out = false
	close(s.home)
	r.outstanding--
	if r.outstanding == 0 {
		if r.closed {
			r.destroyLocked()
		}
		close(r.idle)
	}
	r.mu.Unlock()

	r.sem.Release(1)
}

// Close marks the ring closed. Slot memory is destroyed right away if
// nothing is outstanding, otherwise by the release of the last
// outstanding slot. Close is idempotent.
func (r *Ring) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.outstanding == 0 {
		r.destroyLocked()
		return
	}
	r.log.Debug("ring closed with slots in flight, deferring destruction",
		zap.Int("outstanding", r.outstanding))
}

// Drain blocks until every slot has been released or ctx is done.
func (r *Ring) Drain(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ring: drain: %w", ctx.Err())
	}
}

// Destroyed reports whether the slot memory has been freed.
func (r *Ring) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

func (r *Ring) destroyLocked() {
	if r.destroyed {
		return
	}
	for _, s := range r.slots {
		s.buf.Destroy()
	}
	r.destroyed = true
	r.log.Debug("ring destroyed", zap.Int("capacity", len(r.slots)))
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
