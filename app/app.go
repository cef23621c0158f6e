package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"keyvisor/bus"
	"keyvisor/display"
	"keyvisor/gfx"
	"keyvisor/hal"
	"keyvisor/internal/buildinfo"
	"keyvisor/keypad"
	"keyvisor/ui"
)

// System is the brought-up firmware: the scan loop and the render loop joined
// by the event bus.
type System struct {
	cfg Config
	log *slog.Logger

	fb        *gfx.FrameBuffer
	events    *bus.Bus[keypad.KeyEvent]
	transport *display.Transport
	scan      *keypad.ScanTask
	render    *ui.RenderTask
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	ScanCycles uint64
	Rendered   uint64
	Bus        bus.Stats
	Transport  display.Stats
}

// New performs the one-time bring-up: backlight, panel, frame buffer, bus,
// keypad lines. Any failure here is fatal for the device.
func New(h hal.HAL, cfg Config, log *slog.Logger) (*System, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, errors.New("init: no hal")
	}

	if bl := h.Backlight(); bl != nil {
		if err := bl.SetBrightnessPercent(cfg.Brightness); err != nil {
			return nil, fmt.Errorf("init backlight: %w", err)
		}
	}

	panel := h.Panel()
	if panel == nil {
		return nil, fmt.Errorf("init panel: %w", hal.ErrNotImplemented)
	}
	if err := panel.Init(); err != nil {
		return nil, fmt.Errorf("init panel: %w", err)
	}
	w, ht := panel.Size()
	fb := gfx.NewFrameBuffer(w, ht)

	transport, err := display.New(panel, fb, display.Config{
		Retries: cfg.PushRetries,
		Backoff: cfg.RetryBackoff,
		Logger:  log.With("component", "display"),
	})
	if err != nil {
		return nil, fmt.Errorf("init display: %w", err)
	}

	events := bus.New[keypad.KeyEvent](bus.Config{
		Capacity:    cfg.BusCapacity,
		Subscribers: cfg.BusSubscribers,
		Policy:      cfg.BusPolicy,
	})
	sub, err := events.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("init render subscription: %w", err)
	}

	scanner, err := keypad.NewScanner(h.Keypad(), cfg.SettleDelay)
	if err != nil {
		return nil, fmt.Errorf("init keypad: %w", err)
	}
	if err := scanner.Configure(); err != nil {
		return nil, fmt.Errorf("init keypad: %w", err)
	}

	s := &System{
		cfg:       cfg,
		log:       log,
		fb:        fb,
		events:    events,
		transport: transport,
		scan: keypad.NewScanTask(scanner, events, keypad.TaskConfig{
			ScanHz:    cfg.ScanHz,
			Threshold: cfg.Threshold,
		}, log.With("component", "scan")),
		render: ui.NewRenderTask(ui.NewRenderer(fb, nil), transport, sub, log.With("component", "render")),
	}

	log.Info("keyvisor up",
		"version", buildinfo.Short(),
		"panel", fmt.Sprintf("%dx%d", w, ht),
		"scan_hz", cfg.ScanHz,
		"threshold", cfg.Threshold,
		"confirm_samples", keypad.ConfirmationSamples(cfg.Threshold),
		"bus_capacity", cfg.BusCapacity,
		"bus_policy", cfg.BusPolicy.String(),
		"push_retries", cfg.PushRetries,
	)
	return s, nil
}

// Run runs both loops until ctx ends or one of them fails; the first error
// stops the other loop and is returned.
func (s *System) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.scan.Run(gctx) })
	g.Go(func() error { return s.render.Run(gctx) })

	err := g.Wait()
	s.events.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("firmware stopped", "error", err)
	}
	return err
}

// FrameBuffer is the buffer the render loop draws into.
func (s *System) FrameBuffer() *gfx.FrameBuffer { return s.fb }

// Stats may be called while the system runs.
func (s *System) Stats() Stats {
	return Stats{
		ScanCycles: s.scan.Cycles(),
		Rendered:   s.render.Handled(),
		Bus:        s.events.Stats(),
		Transport:  s.transport.Stats(),
	}
}
