package mesh

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/gpu/gputest"
	"github.com/Faultbox/nodering/pkg/math"
)

func quad() []TexturedVertex {
	return []TexturedVertex{
		{Position: math.Vec3{X: -1, Y: -1}, UV: [2]float32{0, 1}},
		{Position: math.Vec3{X: 1, Y: -1}, UV: [2]float32{1, 1}},
		{Position: math.Vec3{X: 1, Y: 1}, UV: [2]float32{1, 0}},
		{Position: math.Vec3{X: -1, Y: 1}, UV: [2]float32{0, 0}},
	}
}

func TestLayoutStrides(t *testing.T) {
	for _, l := range []*Layout{ColorLayout, TexturedLayout, LitLayout} {
		n := 0
		for _, a := range l.Attributes {
			assert.Equal(t, n, a.Offset, "%s: %s offset", l.Name, a.Name)
			n += a.Components * 4
		}
		assert.Equal(t, l.Stride, n, "%s stride", l.Name)
	}
	assert.True(t, LitLayout.Has("normal"))
	assert.False(t, TexturedLayout.Has("normal"))
}

func TestEncode(t *testing.T) {
	b := Encode([]ColorVertex{{
		Position: math.Vec3{X: 1, Y: 2, Z: 3},
		Color:    [4]float32{4, 5, 6, 7},
	}})
	require.Len(t, b, ColorLayout.Stride)
	for i := 0; i < 7; i++ {
		got := stdmath.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		assert.Equal(t, float32(i+1), got)
	}

	lit := Encode([]LitVertex{{Normal: math.Vec3{Z: 1}}})
	require.Len(t, lit, LitLayout.Stride)
	assert.Equal(t, float32(1), stdmath.Float32frombits(binary.LittleEndian.Uint32(lit[28:])))

	assert.Equal(t, []byte{1, 0, 2, 1}, EncodeIndices([]uint16{1, 258}))
}

func TestNewUnindexed(t *testing.T) {
	dev := gputest.NewDevice()
	m, err := New(dev, []ColorVertex{{}, {}, {}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, m.VertexCount)
	assert.False(t, m.Indexed())
	assert.Equal(t, 1, m.Triangles())
	assert.Equal(t, gpu.UsageVertex, m.Vertices.Usage())
	assert.Equal(t, 3*ColorLayout.Stride, m.Vertices.Len())
}

func TestNewIndexedQuad(t *testing.T) {
	dev := gputest.NewDevice()
	m, err := New(dev, quad(), []uint16{0, 1, 2, 2, 3, 0})
	require.NoError(t, err)

	assert.Equal(t, 4, m.VertexCount)
	assert.Equal(t, 6, m.IndexCount)
	assert.True(t, m.Indexed())
	assert.Equal(t, 2, m.Triangles())
	assert.Equal(t, gpu.UsageIndex, m.Indices.Usage())
	assert.Equal(t, 12, m.Indices.Len())
}

func TestNewEmpty(t *testing.T) {
	dev := gputest.NewDevice()
	m, err := New[TexturedVertex](dev, nil, nil)
	require.NoError(t, err)

	assert.True(t, m.Empty())
	assert.Nil(t, m.Vertices)
	assert.Equal(t, 0, m.Triangles())
	assert.Equal(t, 0, dev.LiveBuffers())
	m.Destroy()
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name     string
		vertices []TexturedVertex
		indices  []uint16
		want     error
	}{
		{"four unindexed vertices", quad(), nil, ErrNotTriangles},
		{"five indices", quad(), []uint16{0, 1, 2, 2, 3}, ErrNotTriangles},
		{"index past end", quad(), []uint16{0, 1, 4}, ErrIndexRange},
		{"indices without vertices", nil, []uint16{0, 1, 2}, ErrIndexRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice()
			_, err := New(dev, tt.vertices, tt.indices)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, dev.LiveBuffers())
		})
	}
}

func TestNewRawPartialVertex(t *testing.T) {
	_, err := NewRaw(gputest.NewDevice(), ColorLayout, make([]byte, 30), nil)
	assert.Error(t, err)
}

func TestNewAllocationFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailAfter(1)

	_, err := New(dev, quad(), []uint16{0, 1, 2, 2, 3, 0})
	assert.ErrorIs(t, err, gpu.ErrResourceCreation)
	assert.Equal(t, 0, dev.LiveBuffers(), "vertex buffer must be freed when the index buffer fails")
}

func TestDestroy(t *testing.T) {
	dev := gputest.NewDevice()
	m, err := New(dev, quad(), []uint16{0, 1, 2, 2, 3, 0})
	require.NoError(t, err)
	require.Equal(t, 2, dev.LiveBuffers())

	m.Destroy()
	assert.Equal(t, 0, dev.LiveBuffers())
	m.Destroy()
}
