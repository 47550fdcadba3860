package gputest

import (
	"sync"

	"github.com/Faultbox/nodering/internal/gpu"
)

// Presenter is an in-memory gpu.Presenter.
type Presenter struct {
	mu          sync.Mutex
	width       int
	height      int
	unavailable int
	acquired    int
	presented   int
}

// NewPresenter creates a presenter handing out surfaces of the given size.
func NewPresenter(width, height int) *Presenter {
	return &Presenter{width: width, height: height}
}

// Unavailable makes the next n acquisitions return nil.
func (p *Presenter) Unavailable(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unavailable = n
}

// Resize changes the size of surfaces acquired from now on.
func (p *Presenter) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

// AcquireNextSurface implements gpu.Presenter.
func (p *Presenter) AcquireNextSurface() gpu.Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable > 0 {
		p.unavailable--
		return nil
	}
	p.acquired++
	return &Surface{p: p, width: p.width, height: p.height}
}

// Acquired returns how many surfaces were handed out.
func (p *Presenter) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Presented returns how many surfaces were presented.
func (p *Presenter) Presented() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presented
}

// Surface is an in-memory gpu.Surface.
type Surface struct {
	p      *Presenter
	width  int
	height int
}

// Size implements gpu.Surface.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Present implements gpu.Surface.
func (s *Surface) Present() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.presented++
}
