package scene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/engine/lighting"
	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/internal/engine/ring"
	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/logger"
	"github.com/Faultbox/nodering/pkg/math"
)

// Uniform slot layout: two matrices, then the light block when lit.
const (
	offProjection = 0
	offWorldView  = math.Mat4Size
	offLight      = 2 * math.Mat4Size

	// UnlitSlotSize is the uniform slot size of an unlit node.
	UnlitSlotSize = 2 * math.Mat4Size
	// LitSlotSize is the uniform slot size of a lit node.
	LitSlotSize = UnlitSlotSize + lighting.Size
)

// Errors returned by NewNode and Node.Render.
var (
	ErrNilMesh        = errors.New("scene: nil mesh")
	ErrNilDevice      = errors.New("scene: nil device")
	ErrNilPipeline    = errors.New("scene: nil pipeline")
	ErrTextureSampler = errors.New("scene: texture and sampler must be set together")
	ErrLayout         = errors.New("scene: mesh layout does not fit node shading")
	ErrSurface        = errors.New("scene: command buffer does not target the surface")
)

type options struct {
	texture gpu.Texture
	sampler gpu.Sampler
	light   *lighting.Light
	buffers int
	timeout time.Duration
	cull    gpu.CullMode
}

// Option configures a Node.
type Option func(*options)

// WithTexture shades the node with tex sampled through smp.
func WithTexture(tex gpu.Texture, smp gpu.Sampler) Option {
	return func(o *options) { o.texture, o.sampler = tex, smp }
}

// WithLight lights the node. The mesh must carry normals.
func WithLight(l lighting.Light) Option {
	return func(o *options) { o.light = &l }
}

// WithBuffers sets the number of uniform slots (frames in flight).
func WithBuffers(n int) Option {
	return func(o *options) { o.buffers = n }
}

// WithAcquireTimeout bounds the wait for a free uniform slot.
// Zero waits forever.
func WithAcquireTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCullMode sets the face culling used by the node's draws.
func WithCullMode(c gpu.CullMode) Option {
	return func(o *options) { o.cull = c }
}

// Node is a mesh drawn once per frame with its own transform.
//
// The transform fields are set directly by whatever animates the node.
// Render must not be called concurrently with itself or with changes to
// those fields.
type Node struct {
	Name string

	Position math.Vec3
	Rotation math.Vec3 // radians, applied X then Y then Z
	Scale    float32

	mesh    *mesh.Mesh
	texture gpu.Texture
	sampler gpu.Sampler
	light   *lighting.Light
	cull    gpu.CullMode
	timeout time.Duration

	ring    *ring.Ring
	scratch []byte
	elapsed time.Duration

	log *zap.Logger
}

// NewNode creates a node drawing m.
// The mesh, texture and sampler are shared and not owned by the node.
func NewNode(name string, m *mesh.Mesh, dev gpu.Device, opts ...Option) (*Node, error) {
	o := options{buffers: ring.DefaultCapacity, cull: gpu.CullNone}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case m == nil:
		return nil, ErrNilMesh
	case dev == nil:
		return nil, ErrNilDevice
	case (o.texture == nil) != (o.sampler == nil):
		return nil, ErrTextureSampler
	case o.texture != nil && !m.Layout.Has("texcoord"):
		return nil, fmt.Errorf("%w: textured node %q needs texture coordinates in %s", ErrLayout, name, m.Layout.Name)
	case o.light != nil && !m.Layout.Has("normal"):
		return nil, fmt.Errorf("%w: lit node %q needs normals in %s", ErrLayout, name, m.Layout.Name)
	}

	size := UnlitSlotSize
	if o.light != nil {
		size = LitSlotSize
	}
	r, err := ring.New(dev, o.buffers, size)
	if err != nil {
		return nil, fmt.Errorf("scene: node %q: %w", name, err)
	}

	n := &Node{
		Name:    name,
		Scale:   1,
		mesh:    m,
		texture: o.texture,
		sampler: o.sampler,
		light:   o.light,
		cull:    o.cull,
		timeout: o.timeout,
		ring:    r,
		scratch: make([]byte, size),
		log:     logger.Named("scene").With(zap.String("node", name)),
	}
	n.log.Debug("node created",
		zap.Int("vertices", m.VertexCount),
		zap.Int("indices", m.IndexCount),
		zap.Int("buffers", o.buffers),
		zap.Bool("textured", o.texture != nil),
		zap.Bool("lit", o.light != nil))
	return n, nil
}

// Update advances the node's clock.
func (n *Node) Update(elapsed time.Duration) {
	n.elapsed += elapsed
}

// Elapsed returns the total time passed to Update.
func (n *Node) Elapsed() time.Duration { return n.elapsed }

// Light returns the node's light, or nil if it is unlit.
// The light can be changed between frames.
func (n *Node) Light() *lighting.Light { return n.light }

// Mesh returns the mesh drawn by the node.
func (n *Node) Mesh() *mesh.Mesh { return n.mesh }

// InFlight returns the number of uniform slots still read by the GPU.
func (n *Node) InFlight() int { return n.ring.Outstanding() }

// ModelMatrix returns translate * rotate * scale.
func (n *Node) ModelMatrix() math.Mat4 {
	m := math.Identity()
	m.Translate(n.Position.X, n.Position.Y, n.Position.Z).
		RotateAround(n.Rotation.X, n.Rotation.Y, n.Rotation.Z).
		Scale(n.Scale, n.Scale, n.Scale)
	return m
}

// Render records the node's draw for this frame into cb.
//
// It acquires a uniform slot, blocking while every slot is in flight
// (or failing with ring.ErrTimeout once the acquire timeout passes),
// writes projection and parent * model into it, followed by the light
// when lit, and records a draw that reads the slot. The slot is given
// back when cb completes.
//
// A node with an empty mesh records nothing.
func (n *Node) Render(cb *gpu.CommandBuffer, pipe gpu.Pipeline, surf gpu.Surface, parent, projection *math.Mat4) error {
	if n.mesh.Empty() {
		return nil
	}
	if pipe == nil {
		return ErrNilPipeline
	}
	if surf == nil || cb.Target != surf {
		return ErrSurface
	}

	slot, err := n.ring.AcquireTimeout(n.timeout)
	if err != nil {
		return fmt.Errorf("scene: node %q: %w", n.Name, err)
	}

	world := n.ModelMatrix()
	world.MultiplyLeft(parent)
	n.pack(projection, &world)
	slot.Write(0, n.scratch)

	cb.Record(gpu.Draw{
		Pipeline:      pipe,
		Vertices:      n.mesh.Vertices,
		Stride:        n.mesh.Layout.Stride,
		Indices:       n.mesh.Indices,
		VertexCount:   n.mesh.VertexCount,
		IndexCount:    n.mesh.IndexCount,
		Uniforms:      slot.Buffer(),
		UniformOffset: 0,
		UniformSize:   len(n.scratch),
		Texture:       n.texture,
		Sampler:       n.sampler,
		Cull:          n.cull,
	})
	cb.AddCompletedHandler(func(err error) {
		if err != nil {
			n.log.Debug("draw completed with error", zap.Int("slot", slot.Index()), zap.Error(err))
		}
		n.ring.Release(slot)
	})
	return nil
}

func (n *Node) pack(projection, world *math.Mat4) {
	projection.PutBytes(n.scratch[offProjection:])
	world.PutBytes(n.scratch[offWorldView:])
	if n.light != nil {
		n.light.PutBytes(n.scratch[offLight:])
	}
}

// Destroy releases the node's uniform memory. Slots still in flight
// are freed as the GPU gives them back; use Wait to block until then.
// Render fails with ring.ErrClosed afterwards.
func (n *Node) Destroy() {
	n.ring.Close()
	n.log.Debug("node destroyed", zap.Int("in_flight", n.ring.Outstanding()))
}

// Wait blocks until no slot of the node is in flight or ctx is done.
func (n *Node) Wait(ctx context.Context) error {
	return n.ring.Drain(ctx)
}
