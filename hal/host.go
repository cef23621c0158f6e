//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// SwitchMap resolves a key legend to its matrix position.
type SwitchMap func(label rune) (col, row int, ok bool)

// HostConfig describes the simulated board.
type HostConfig struct {
	Width, Height int
	Cols, Rows    int
	// Chatter is the number of bouncing reads after each switch change.
	Chatter int
	Seed    int64
	// Scale multiplies the window size.
	Scale int
	// Switches maps keyboard input onto the matrix.
	Switches SwitchMap
	// Log receives log lines; nil writes to stderr.
	Log Logger
}

// DefaultHostConfig mirrors the device: a 240x240 panel and a 3x4 matrix.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Width:  240,
		Height: 240,
		Cols:   3,
		Rows:   4,
		Scale:  2,
	}
}

// Host is the simulator HAL.
type Host struct {
	cfg       HostConfig
	logger    Logger
	matrix    *SwitchMatrix
	panel     *MemPanel
	backlight *hostBacklight
}

// NewHost builds a simulated board.
func NewHost(cfg HostConfig) *Host {
	def := DefaultHostConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		cfg.Cols, cfg.Rows = def.Cols, def.Rows
	}
	if cfg.Scale <= 0 {
		cfg.Scale = def.Scale
	}

	logger := cfg.Log
	if logger == nil {
		logger = &hostLogger{w: os.Stderr}
	}
	m := NewSwitchMatrix(cfg.Cols, cfg.Rows, cfg.Seed)
	m.SetChatter(cfg.Chatter)

	return &Host{
		cfg:       cfg,
		logger:    logger,
		matrix:    m,
		panel:     NewMemPanel(cfg.Width, cfg.Height),
		backlight: &hostBacklight{},
	}
}

func (h *Host) Logger() Logger       { return h.logger }
func (h *Host) Keypad() Keypad       { return h.matrix }
func (h *Host) Panel() Panel         { return h.panel }
func (h *Host) Backlight() Backlight { return h.backlight }

// Matrix exposes the simulated switches.
func (h *Host) Matrix() *SwitchMatrix { return h.matrix }

// MemPanel exposes the simulated panel.
func (h *Host) MemPanel() *MemPanel { return h.panel }

// Brightness returns the last backlight level set.
func (h *Host) Brightness() uint8 { return h.backlight.get() }

// press closes or opens the switch carrying label.
func (h *Host) press(label rune, closed bool) bool {
	if h.cfg.Switches == nil {
		return false
	}
	col, row, ok := h.cfg.Switches(label)
	if !ok {
		return false
	}
	h.matrix.Set(col, row, closed)
	return true
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostBacklight struct {
	mu  sync.Mutex
	pct uint8
}

func (b *hostBacklight) SetBrightnessPercent(pct uint8) error {
	if pct > 100 {
		return fmt.Errorf("backlight: brightness %d%% out of range", pct)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pct = pct
	return nil
}

func (b *hostBacklight) get() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pct
}
