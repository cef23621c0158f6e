package keypad

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultScanHz is the outer scan rate; every column is sampled once per
// cycle.
const DefaultScanHz = 400

// Publisher takes events without blocking. It reports whether the event was
// queued.
type Publisher interface {
	Publish(ev KeyEvent) bool
}

// TaskConfig tunes the scan loop.
type TaskConfig struct {
	ScanHz    int
	Threshold uint8
}

// ScanTask is the scan/debounce loop: once per period it samples every
// column, debounces the samples and publishes the confirmed transitions.
type ScanTask struct {
	scanner *Scanner
	filter  *Filter
	pub     Publisher
	period  time.Duration
	log     *slog.Logger

	events []KeyEvent
	cycles atomic.Uint64
}

// NewScanTask wires a scanner to a publisher.
func NewScanTask(s *Scanner, pub Publisher, cfg TaskConfig, log *slog.Logger) *ScanTask {
	if cfg.ScanHz <= 0 {
		cfg.ScanHz = DefaultScanHz
	}
	if log == nil {
		log = slog.Default()
	}
	return &ScanTask{
		scanner: s,
		filter:  NewFilter(cfg.Threshold),
		pub:     pub,
		period:  time.Second / time.Duration(cfg.ScanHz),
		log:     log,
		events:  make([]KeyEvent, 0, NRows*2),
	}
}

// Period is the time between two cycles.
func (t *ScanTask) Period() time.Duration { return t.period }

// Cycles counts completed cycles.
func (t *ScanTask) Cycles() uint64 { return t.cycles.Load() }

// Cycle samples and debounces every column once. Within a column, releases
// are published before presses.
func (t *ScanTask) Cycle() error {
	for col := 0; col < NCols; col++ {
		raw, err := t.scanner.Sample(col)
		if err != nil {
			return err
		}
		tr := t.filter.Apply(col, raw)
		if !tr.Any() {
			continue
		}

		t.events = Events(col, tr, t.events[:0])
		for _, ev := range t.events {
			if !t.pub.Publish(ev) {
				t.log.Warn("key event dropped, queue full", "event", ev.String())
				continue
			}
			t.log.Debug("key event", "event", ev.String())
		}
	}
	t.cycles.Add(1)
	return nil
}

// Run cycles at the configured rate until ctx ends. GPIO errors stop the
// loop; they only happen with a misconfigured matrix.
func (t *ScanTask) Run(ctx context.Context) error {
	t.log.Info("scan loop started", "period", t.period, "threshold", t.filter.Threshold())
	defer t.scanner.Release()

	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		if err := t.Cycle(); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
