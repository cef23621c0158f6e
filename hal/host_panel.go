//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"sync"
)

// Push records one region accepted by a MemPanel.
type Push struct {
	X, Y, W, H int
}

// MemPanel is an in-memory RGB565 panel. It mirrors every accepted region so
// host views can show what a real controller would.
type MemPanel struct {
	mu       sync.Mutex
	width    int
	height   int
	buf      []byte
	ready    bool
	failNext int
	pushes   []Push
	seq      uint64
}

// NewMemPanel returns an uninitialized panel of the given size.
func NewMemPanel(width, height int) *MemPanel {
	return &MemPanel{
		width:  width,
		height: height,
		buf:    make([]byte, width*height*2),
	}
}

func (p *MemPanel) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	return nil
}

func (p *MemPanel) Size() (int, int)    { return p.width, p.height }
func (p *MemPanel) Format() PixelFormat { return PixelFormatRGB565 }

func (p *MemPanel) PushRegion(x, y, w, h int, pix []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return errors.New("panel: not initialized")
	}
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x+w > p.width || y+h > p.height {
		return fmt.Errorf("panel: region %dx%d at (%d,%d) outside %dx%d", w, h, x, y, p.width, p.height)
	}
	if len(pix) != w*h*2 {
		return fmt.Errorf("panel: region %dx%d needs %d bytes, got %d", w, h, w*h*2, len(pix))
	}
	if p.failNext > 0 {
		p.failNext--
		return fmt.Errorf("%w: injected fault", ErrPushFailed)
	}

	stride := p.width * 2
	for row := 0; row < h; row++ {
		dst := (y+row)*stride + x*2
		src := row * w * 2
		copy(p.buf[dst:dst+w*2], pix[src:src+w*2])
	}
	p.pushes = append(p.pushes, Push{X: x, Y: y, W: w, H: h})
	p.seq++
	return nil
}

// FailNext makes the next n pushes fail with ErrPushFailed.
func (p *MemPanel) FailNext(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = n
}

// Pushes returns the accepted regions in order.
func (p *MemPanel) Pushes() []Push {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Push, len(p.pushes))
	copy(out, p.pushes)
	return out
}

// Seq counts accepted pushes; views use it to skip unchanged frames.
func (p *MemPanel) Seq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Snapshot copies the mirror into dst, growing it as needed.
func (p *MemPanel) Snapshot(dst []byte) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cap(dst) < len(p.buf) {
		dst = make([]byte, len(p.buf))
	}
	dst = dst[:len(p.buf)]
	copy(dst, p.buf)
	return dst
}
