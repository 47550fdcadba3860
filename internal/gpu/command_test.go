package gpu_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/gpu/gputest"
)

func TestCommandBufferHandlersRunInOrder(t *testing.T) {
	cb := gpu.NewCommandBuffer(nil, gpu.Color{})

	var order []int
	for i := 0; i < 3; i++ {
		cb.AddCompletedHandler(func(err error) {
			assert.NoError(t, err)
			order = append(order, i)
		})
	}
	assert.False(t, cb.Completed())

	cb.Complete(nil)
	assert.True(t, cb.Completed())
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestCommandBufferCompletePassesError(t *testing.T) {
	cb := gpu.NewCommandBuffer(nil, gpu.Color{})
	lost := errors.New("device lost")

	var got error
	cb.AddCompletedHandler(func(err error) { got = err })
	cb.Complete(lost)

	assert.ErrorIs(t, got, lost)
}

func TestCommandBufferCompleteTwicePanics(t *testing.T) {
	cb := gpu.NewCommandBuffer(nil, gpu.Color{})
	calls := 0
	cb.AddCompletedHandler(func(error) { calls++ })

	cb.Complete(nil)
	assert.Panics(t, func() { cb.Complete(nil) })
	assert.Equal(t, 1, calls)
}

func TestCommandBufferAddHandlerAfterCompletePanics(t *testing.T) {
	cb := gpu.NewCommandBuffer(nil, gpu.Color{})
	cb.Complete(nil)

	assert.Panics(t, func() { cb.AddCompletedHandler(func(error) {}) })
}

func TestCommandBufferDiscard(t *testing.T) {
	p := gputest.NewPresenter(4, 4)
	cb := gpu.NewCommandBuffer(p.AcquireNextSurface(), gpu.Color{A: 1})
	cb.Record(gpu.Draw{VertexCount: 3})

	var got error
	cb.AddCompletedHandler(func(err error) { got = err })

	cause := errors.New("render failed")
	cb.Discard(cause)

	assert.Nil(t, cb.Target)
	assert.Empty(t, cb.Draws)
	assert.True(t, cb.Completed())
	assert.ErrorIs(t, got, cause)
	assert.Zero(t, p.Presented())
}

func TestDrawTriangles(t *testing.T) {
	dev := gputest.NewDevice()
	defer dev.Close()
	ibo, err := dev.NewBuffer(make([]byte, 12), 12, gpu.UsageIndex)
	require.NoError(t, err)

	tests := []struct {
		name    string
		draw    gpu.Draw
		indexed bool
		want    int
	}{
		{"unindexed", gpu.Draw{VertexCount: 9}, false, 3},
		{"indexed", gpu.Draw{Indices: ibo, IndexCount: 6, VertexCount: 4}, true, 2},
		{"empty", gpu.Draw{}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.indexed, tt.draw.Indexed())
			assert.Equal(t, tt.want, tt.draw.Triangles())
		})
	}
}
