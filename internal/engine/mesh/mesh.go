// Package mesh holds immutable GPU-resident geometry shared read-only by
// scene nodes.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/nodering/internal/gpu"
)

var (
	// ErrNotTriangles means that the vertex count of an unindexed mesh,
	// or the index count of an indexed one, is not a multiple of 3.
	ErrNotTriangles = errors.New("mesh: primitive count is not a multiple of 3")

	// ErrIndexRange means that an index refers past the last vertex.
	ErrIndexRange = errors.New("mesh: index out of range")
)

// Mesh is uploaded vertex and optional index data.
// It is never modified after creation.
type Mesh struct {
	Layout *Layout

	// Vertices is nil for an empty mesh.
	Vertices    gpu.Buffer
	VertexCount int

	// Indices is nil for unindexed meshes.
	Indices    gpu.Buffer
	IndexCount int
}

// New uploads vertices and, if not empty, indices.
// An empty vertex slice yields an empty mesh that draws nothing.
func New[V Vertex](dev gpu.Device, vertices []V, indices []uint16) (*Mesh, error) {
	var v V
	return NewRaw(dev, v.Layout(), Encode(vertices), indices)
}

// NewRaw uploads vertex data already encoded with layout.
func NewRaw(dev gpu.Device, layout *Layout, data []byte, indices []uint16) (*Mesh, error) {
	if dev == nil || layout == nil {
		return nil, errors.New("mesh: nil device or layout")
	}
	if len(data)%layout.Stride != 0 {
		return nil, fmt.Errorf("mesh: %d bytes is not a whole number of %d-byte %s vertices",
			len(data), layout.Stride, layout.Name)
	}

	m := &Mesh{Layout: layout, VertexCount: len(data) / layout.Stride, IndexCount: len(indices)}
	if err := m.validate(indices); err != nil {
		return nil, err
	}
	if m.VertexCount == 0 {
		return m, nil
	}

	vb, err := dev.NewBuffer(data, len(data), gpu.UsageVertex)
	if err != nil {
		return nil, fmt.Errorf("mesh: vertex buffer: %w", err)
	}
	m.Vertices = vb

	if len(indices) > 0 {
		ib, err := dev.NewBuffer(EncodeIndices(indices), len(indices)*2, gpu.UsageIndex)
		if err != nil {
			vb.Destroy()
			return nil, fmt.Errorf("mesh: index buffer: %w", err)
		}
		m.Indices = ib
	}
	return m, nil
}

func (m *Mesh) validate(indices []uint16) error {
	if m.VertexCount == 0 {
		if len(indices) > 0 {
			return fmt.Errorf("%w: %d indices into an empty mesh", ErrIndexRange, len(indices))
		}
		return nil
	}
	if len(indices) == 0 {
		if m.VertexCount%3 != 0 {
			return fmt.Errorf("%w: %d vertices", ErrNotTriangles, m.VertexCount)
		}
		return nil
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrNotTriangles, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= m.VertexCount {
			return fmt.Errorf("%w: index %d is %d, mesh has %d vertices", ErrIndexRange, i, idx, m.VertexCount)
		}
	}
	return nil
}

// Empty reports whether the mesh has no vertices.
func (m *Mesh) Empty() bool { return m.VertexCount == 0 }

// Indexed reports whether the mesh is drawn with indices.
func (m *Mesh) Indexed() bool { return m.Indices != nil }

// Triangles returns the number of triangles a draw of the mesh emits.
func (m *Mesh) Triangles() int {
	if m.Indexed() {
		return m.IndexCount / 3
	}
	return m.VertexCount / 3
}

// Destroy frees the GPU buffers.
// The mesh must not be referenced by draws still in flight.
func (m *Mesh) Destroy() {
	if m.Vertices != nil {
		m.Vertices.Destroy()
		m.Vertices = nil
	}
	if m.Indices != nil {
		m.Indices.Destroy()
		m.Indices = nil
	}
}
