//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"keyvisor/gfx"
	"keyvisor/internal/buildinfo"
)

// TerminalConfig controls the terminal view.
type TerminalConfig struct {
	// Hold keeps a switch closed after its last key event. Terminals report
	// presses and auto-repeat only, never releases.
	Hold time.Duration
	// Step is the number of panel pixels per terminal column.
	Step     int
	LogLines int
	Frame    time.Duration
}

func DefaultTerminalConfig() TerminalConfig {
	return TerminalConfig{
		Hold:     150 * time.Millisecond,
		Step:     4,
		LogLines: 6,
		Frame:    time.Second / 30,
	}
}

// RunTerminal draws the simulated panel with half-block characters and maps
// typed keys onto the switch matrix. Esc, q or Ctrl-C quits.
func RunTerminal(ctx context.Context, h *Host, run RunFunc, cfg TerminalConfig) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	return runTerminal(ctx, screen, h, run, cfg)
}

func runTerminal(ctx context.Context, screen tcell.Screen, h *Host, run RunFunc, cfg TerminalConfig) error {
	def := DefaultTerminalConfig()
	if cfg.Hold <= 0 {
		cfg.Hold = def.Hold
	}
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Frame <= 0 {
		cfg.Frame = def.Frame
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := startRun(ctx, run)

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	v := &termView{
		screen: screen,
		h:      h,
		cfg:    cfg,
		holds:  newKeyHolds(cfg.Hold),
	}
	tick := time.NewTicker(cfg.Frame)
	defer tick.Stop()

	for {
		select {
		case err := <-w.errc:
			v.holds.releaseAll(h)
			w.finish(err)
			return w.wait()
		case <-ctx.Done():
			return w.wait()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quitKey(ev) {
					cancel()
					return w.wait()
				}
				if ev.Key() == tcell.KeyRune {
					v.holds.press(h, ev.Rune(), time.Now())
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case now := <-tick.C:
			v.holds.expire(h, now)
			v.draw()
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// keyHolds turns key-repeat streams into press and release edges.
type keyHolds struct {
	hold time.Duration
	last map[rune]time.Time
}

func newKeyHolds(hold time.Duration) *keyHolds {
	return &keyHolds{hold: hold, last: make(map[rune]time.Time)}
}

func (k *keyHolds) press(h *Host, label rune, now time.Time) {
	if label == ',' {
		label = '*'
	}
	if label == '.' {
		label = '#'
	}
	if _, held := k.last[label]; !held {
		if !h.press(label, true) {
			return
		}
	}
	k.last[label] = now
}

func (k *keyHolds) expire(h *Host, now time.Time) {
	for label, at := range k.last {
		if now.Sub(at) >= k.hold {
			h.press(label, false)
			delete(k.last, label)
		}
	}
}

func (k *keyHolds) releaseAll(h *Host) {
	for label := range k.last {
		h.press(label, false)
		delete(k.last, label)
	}
}

type termView struct {
	screen  tcell.Screen
	h       *Host
	cfg     TerminalConfig
	holds   *keyHolds
	seq     uint64
	scratch []byte
}

func (v *termView) draw() {
	p := v.h.panel
	if seq := p.Seq(); seq != v.seq || v.scratch == nil {
		v.seq = seq
		v.scratch = p.Snapshot(v.scratch)
	}

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	drawText(v.screen, 0, 0, title, "keyvisor "+buildinfo.Short()+"  (0-9 , . keys, q quits)")

	step := v.cfg.Step
	rows := 0
	for py := 0; py+step < p.height; py += 2 * step {
		for col, px := 0, 0; px < p.width; col, px = col+1, px+step {
			top := sampleAt(v.scratch, p.width, px, py)
			bot := sampleAt(v.scratch, p.width, px, py+step)
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			v.screen.SetContent(col, 1+rows, '▀', nil, st)
		}
		rows++
	}

	if ring, ok := v.h.logger.(*LogRing); ok && v.cfg.LogLines > 0 {
		y := 2 + rows
		dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
		for i, line := range ring.Recent(v.cfg.LogLines) {
			clearLine(v.screen, y+i)
			drawText(v.screen, 0, y+i, dim, line)
		}
	}
	v.screen.Show()
}

func sampleAt(pix []byte, w, x, y int) color.RGBA {
	off := (y*w + x) * gfx.BytesPerPixel
	if off < 0 || off+1 >= len(pix) {
		return color.RGBA{A: 0xFF}
	}
	return gfx.RGBA(gfx.GetRGB565(pix[off:]))
}

func drawText(s tcell.Screen, x, y int, st tcell.Style, text string) {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, st)
		x++
	}
}

func clearLine(s tcell.Screen, y int) {
	w, _ := s.Size()
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}
