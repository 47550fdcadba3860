// Package scene draws a flat set of nodes, each with its own uniform ring,
// under one parent transform and projection.
package scene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/engine/frame"
	"github.com/Faultbox/nodering/internal/engine/ring"
	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/logger"
)

// Animator moves the nodes of a scene. It runs at the start of every
// UpdateLogic, before the nodes' clocks advance.
type Animator func(s *Scene, elapsed time.Duration)

type entry struct {
	node *Node
	pipe gpu.Pipeline
}

// Scene is an ordered set of nodes. It implements frame.Delegate.
type Scene struct {
	entries []entry
	animate Animator

	log *zap.Logger
}

var _ frame.Delegate = (*Scene)(nil)

// New creates an empty scene.
func New() *Scene {
	return &Scene{log: logger.Named("scene")}
}

// Add appends n, drawn with pipe. A nil pipe uses the frame's default
// pipeline. The scene takes ownership of n.
func (s *Scene) Add(n *Node, pipe gpu.Pipeline) {
	s.entries = append(s.entries, entry{node: n, pipe: pipe})
}

// SetAnimator installs the per-tick animation hook.
func (s *Scene) SetAnimator(a Animator) { s.animate = a }

// Nodes returns the nodes in drawing order.
func (s *Scene) Nodes() []*Node {
	nodes := make([]*Node, len(s.entries))
	for i, e := range s.entries {
		nodes[i] = e.node
	}
	return nodes
}

// Node returns the first node with the given name, or nil.
func (s *Scene) Node(name string) *Node {
	for _, e := range s.entries {
		if e.node.Name == name {
			return e.node
		}
	}
	return nil
}

// UpdateLogic implements frame.Delegate.
func (s *Scene) UpdateLogic(elapsed time.Duration) {
	if s.animate != nil {
		s.animate(s, elapsed)
	}
	for _, e := range s.entries {
		e.node.Update(elapsed)
	}
}

// RenderObjects implements frame.Delegate.
// A node whose uniform slot did not free up in time is left out of the
// frame, and the rest of the frame is still submitted and presented.
// Any other error fails the frame.
func (s *Scene) RenderObjects(f *frame.Frame) error {
	for _, e := range s.entries {
		pipe := e.pipe
		if pipe == nil {
			pipe = f.Pipeline
		}
		err := e.node.Render(f.Commands, pipe, f.Surface, &f.Parent, &f.Projection)
		switch {
		case err == nil:
		case errors.Is(err, ring.ErrTimeout):
			s.log.Warn("uniform slot not available, node skipped",
				zap.String("node", e.node.Name),
				zap.Uint64("frame", f.Index),
				zap.Int("in_flight", e.node.InFlight()))
		default:
			return fmt.Errorf("render %q: %w", e.node.Name, err)
		}
	}
	return nil
}

// Destroy destroys every node. Memory still read by the GPU is freed
// once it is given back.
func (s *Scene) Destroy() {
	for _, e := range s.entries {
		e.node.Destroy()
	}
}

// Wait blocks until no node has a uniform slot in flight.
func (s *Scene) Wait(ctx context.Context) error {
	for _, e := range s.entries {
		if err := e.node.Wait(ctx); err != nil {
			return fmt.Errorf("wait %q: %w", e.node.Name, err)
		}
	}
	return nil
}
