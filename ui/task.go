package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"keyvisor/keypad"
)

// Pusher is the display transport as seen by the render loop.
type Pusher interface {
	PushFull() error
	PushRegion(y, h int) error
}

// Source yields key events in order.
type Source interface {
	Next(ctx context.Context) (keypad.KeyEvent, error)
	Lagged() uint64
}

// RenderTask is the render loop: one full frame at startup, then one cell and
// one row stripe per event.
type RenderTask struct {
	r       *Renderer
	out     Pusher
	src     Source
	log     *slog.Logger
	started bool
	handled atomic.Uint64
}

func NewRenderTask(r *Renderer, out Pusher, src Source, log *slog.Logger) *RenderTask {
	if log == nil {
		log = slog.Default()
	}
	return &RenderTask{r: r, out: out, src: src, log: log}
}

// Handled counts processed events.
func (t *RenderTask) Handled() uint64 { return t.handled.Load() }

// Start draws the released keypad and pushes the whole frame.
func (t *RenderTask) Start() error {
	if _, err := t.r.DrawAll(); err != nil {
		return err
	}
	if err := t.out.PushFull(); err != nil {
		return fmt.Errorf("render: initial frame: %w", err)
	}
	t.started = true
	t.log.Info("keypad drawn", "cell_w", t.r.layout.CellW, "cell_h", t.r.layout.CellH)
	return nil
}

// Handle redraws the key of ev and pushes the rows of its cell.
func (t *RenderTask) Handle(ev keypad.KeyEvent) error {
	rect, err := t.r.Apply(ev)
	if err != nil {
		return err
	}
	if err := t.out.PushRegion(rect.Y, rect.H); err != nil {
		return fmt.Errorf("render: %s: %w", ev, err)
	}
	t.handled.Add(1)
	t.log.Debug("key redrawn", "event", ev.String(), "rect", rect.String())
	return nil
}

// Run starts the display if needed, then handles events until ctx ends or a
// push fails.
func (t *RenderTask) Run(ctx context.Context) error {
	if !t.started {
		if err := t.Start(); err != nil {
			return err
		}
	}
	for {
		ev, err := t.src.Next(ctx)
		if err != nil {
			return err
		}
		if n := t.src.Lagged(); n > 0 {
			t.log.Warn("render loop fell behind, events lost", "lost", n)
		}
		if err := t.Handle(ev); err != nil {
			return err
		}
	}
}
