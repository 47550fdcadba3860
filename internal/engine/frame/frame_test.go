package frame_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nodering/internal/engine/frame"
	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/internal/engine/scene"
	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/internal/gpu/gputest"
	"github.com/Faultbox/nodering/pkg/math"
)

var pipe = &gputest.Pipeline{Name: "default"}

// recorder is a Delegate that records what the driver asked of it.
type recorder struct {
	mu      sync.Mutex
	updates []time.Duration
	frames  []*frame.Frame
	err     error
}

func (r *recorder) UpdateLogic(elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, elapsed)
}

func (r *recorder) RenderObjects(f *frame.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return r.err
}

func newScene(t *testing.T, dev gpu.Device) (*scene.Scene, *scene.Node) {
	t.Helper()
	m, err := mesh.New(dev, []mesh.ColorVertex{
		{Position: math.Vec3{X: 0, Y: 1}},
		{Position: math.Vec3{X: -1, Y: -1}},
		{Position: math.Vec3{X: 1, Y: -1}},
	}, nil)
	require.NoError(t, err)
	n, err := scene.NewNode("triangle", m, dev)
	require.NoError(t, err)

	s := scene.New()
	s.Add(n, nil)
	return s, n
}

func TestTickSubmitsOneCommandBuffer(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(800, 600)
	s, n := newScene(t, dev)

	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(s)

	require.NoError(t, d.Tick(16*time.Millisecond))
	assert.Equal(t, 1, dev.Submitted())
	assert.Equal(t, 1, n.InFlight())
	assert.Equal(t, 16*time.Millisecond, n.Elapsed())

	dev.CompleteAll()
	ex := dev.Executions()
	require.Len(t, ex, 1)
	assert.Len(t, ex[0].Draws, 1)
	assert.Equal(t, frame.DefaultConfig().ClearColor, ex[0].Clear)
	assert.Equal(t, 1, p.Presented())
	assert.Equal(t, 0, n.InFlight())

	assert.Equal(t, frame.Stats{Ticks: 1, Submitted: 1}, d.Stats())
}

func TestNoSurfaceSkipsFrames(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(800, 600)
	s, n := newScene(t, dev)
	rec := &recorder{}

	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(s)
	p.Unavailable(5)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Tick(10*time.Millisecond))
	}

	assert.Equal(t, 0, dev.Submitted())
	assert.Equal(t, 0, dev.DrawCount())
	assert.Equal(t, 0, n.InFlight(), "no slot may be acquired for a skipped frame")
	assert.Equal(t, 50*time.Millisecond, n.Elapsed(), "logic still advances")
	assert.Equal(t, frame.Stats{Ticks: 5, Skipped: 5}, d.Stats())

	d.SetDelegate(rec)
	p.Unavailable(2)
	require.NoError(t, d.Tick(time.Millisecond))
	require.NoError(t, d.Tick(time.Millisecond))
	assert.Len(t, rec.updates, 2)
	assert.Empty(t, rec.frames)

	require.NoError(t, d.Tick(time.Millisecond))
	assert.Len(t, rec.frames, 1, "rendering resumes once a surface is back")
}

func TestProjectionFollowsSurfaceSize(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(800, 600)
	rec := &recorder{}
	cfg := frame.DefaultConfig()

	d := frame.New(p, dev, pipe, cfg)
	d.SetDelegate(rec)

	require.NoError(t, d.Tick(0))
	want := math.Perspective(cfg.FOVY, 800.0/600.0, cfg.Near, cfg.Far)
	assert.Equal(t, want, d.Projection())
	assert.Equal(t, want, rec.frames[0].Projection)

	p.Resize(1024, 512)
	require.NoError(t, d.Tick(0))
	want = math.Perspective(cfg.FOVY, 2, cfg.Near, cfg.Far)
	assert.Equal(t, want, rec.frames[1].Projection)
	assert.Equal(t, math.Identity(), rec.frames[1].Parent)
	assert.Same(t, pipe, rec.frames[1].Pipeline)
	assert.Equal(t, uint64(2), rec.frames[1].Index)
}

func TestZeroSizedSurfaceSkipsFrame(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(0, 0)
	rec := &recorder{}

	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(rec)
	require.NoError(t, d.Tick(0))

	assert.Empty(t, rec.frames)
	assert.Equal(t, uint64(1), d.Stats().Skipped)
}

func TestRenderErrorDropsFrame(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(800, 600)
	s, n := newScene(t, dev)
	boom := errors.New("boom")

	// Render the node, then fail the frame.
	failing := &failAfter{Delegate: s, err: boom}
	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(failing)

	err := d.Tick(0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, dev.Submitted())
	assert.Equal(t, 0, p.Presented())
	assert.Equal(t, 0, n.InFlight(), "slots of a dropped frame come home")
	assert.Equal(t, frame.Stats{Ticks: 1, Dropped: 1}, d.Stats())
}

// failAfter renders the wrapped delegate and then reports err.
type failAfter struct {
	frame.Delegate
	err error
}

func (f *failAfter) RenderObjects(fr *frame.Frame) error {
	if err := f.Delegate.RenderObjects(fr); err != nil {
		return err
	}
	return f.err
}

func TestSetDelegateNil(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(800, 600)
	rec := &recorder{}

	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(rec)
	require.NoError(t, d.Tick(0))
	d.SetDelegate(nil)
	require.NoError(t, d.Tick(0))

	assert.Len(t, rec.updates, 1)
	assert.Equal(t, 1, p.Acquired(), "no surface is taken without a delegate")
}

func TestSetParent(t *testing.T) {
	dev := gputest.NewDevice()
	p := gputest.NewPresenter(800, 600)
	rec := &recorder{}

	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(rec)
	view := math.Translation(0, 0, -4)
	d.SetParent(view)
	require.NoError(t, d.Tick(0))
	assert.Equal(t, view, rec.frames[0].Parent)
}

func TestTickWithAsyncDevice(t *testing.T) {
	dev := gputest.NewAsyncDevice(time.Millisecond)
	p := gputest.NewPresenter(800, 600)
	s, n := newScene(t, dev)

	d := frame.New(p, dev, pipe, frame.DefaultConfig())
	d.SetDelegate(s)
	for i := 0; i < 50; i++ {
		require.NoError(t, d.Tick(time.Millisecond))
		assert.LessOrEqual(t, n.InFlight(), 3)
	}
	dev.Close()

	assert.Equal(t, 50, dev.Submitted())
	assert.Equal(t, 50, p.Presented())
	assert.Equal(t, 0, n.InFlight())
	d.SetDelegate(nil)
	s.Destroy()
}
