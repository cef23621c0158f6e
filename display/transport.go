// Package display moves frame-buffer bytes to the panel: the whole frame once
// at startup, full-width row stripes afterwards.
package display

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"keyvisor/gfx"
	"keyvisor/hal"
)

// ErrRegionOutOfBounds rejects stripes that do not fit the panel. Nothing is
// sent for them.
var ErrRegionOutOfBounds = errors.New("display: region out of bounds")

// Config tunes failure handling.
type Config struct {
	// Retries is how many times a failed push is attempted again before the
	// error is returned. Zero makes the first failure final.
	Retries int
	Backoff time.Duration
	Logger  *slog.Logger
}

// Stats are cumulative counters.
type Stats struct {
	Pushes   uint64
	Bytes    uint64
	Failures uint64
	Retries  uint64
}

// Transport pushes regions of a frame buffer to a panel. It borrows the
// buffer bytes only for the duration of a push.
type Transport struct {
	panel hal.Panel
	fb    *gfx.FrameBuffer
	cfg   Config
	log   *slog.Logger
	sleep func(time.Duration)

	mu    sync.Mutex
	stats Stats
}

// New checks that fb matches the panel geometry and format.
func New(panel hal.Panel, fb *gfx.FrameBuffer, cfg Config) (*Transport, error) {
	if panel == nil || fb == nil {
		return nil, errors.New("display: nil panel or frame buffer")
	}
	if f := panel.Format(); f.BytesPerPixel() != gfx.BytesPerPixel {
		return nil, fmt.Errorf("display: unsupported panel format %d", f)
	}
	if w, h := panel.Size(); w != fb.Width() || h != fb.Height() {
		return nil, fmt.Errorf("display: frame buffer %dx%d does not match panel %dx%d", fb.Width(), fb.Height(), w, h)
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Transport{panel: panel, fb: fb, cfg: cfg, log: log, sleep: time.Sleep}, nil
}

// PushFull sends the whole frame buffer.
func (t *Transport) PushFull() error {
	return t.PushRegion(0, t.fb.Height())
}

// PushRegion sends the full-width stripe of rows [y, y+h).
func (t *Transport) PushRegion(y, h int) error {
	if y < 0 || h <= 0 || y+h > t.fb.Height() {
		return fmt.Errorf("%w: rows [%d,%d) of %d", ErrRegionOutOfBounds, y, y+h, t.fb.Height())
	}
	w := t.fb.Width()
	pix := t.fb.Rows(y, h)

	var err error
	for attempt := 0; attempt <= t.cfg.Retries; attempt++ {
		if attempt > 0 {
			t.count(func(s *Stats) { s.Retries++ })
			t.log.Warn("retrying panel push", "y", y, "h", h, "attempt", attempt, "error", err)
			if t.cfg.Backoff > 0 {
				t.sleep(t.cfg.Backoff)
			}
		}
		err = t.panel.PushRegion(0, y, w, h, pix)
		if err == nil {
			t.count(func(s *Stats) {
				s.Pushes++
				s.Bytes += uint64(len(pix))
			})
			return nil
		}
		t.count(func(s *Stats) { s.Failures++ })
	}
	return fmt.Errorf("display: push rows [%d,%d): %w", y, y+h, err)
}

func (t *Transport) count(f func(*Stats)) {
	t.mu.Lock()
	f(&t.stats)
	t.mu.Unlock()
}

// Stats returns a copy of the counters. Safe to call from any goroutine.
func (t *Transport) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
