//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// RunFunc runs the firmware until ctx is cancelled or it fails.
type RunFunc func(ctx context.Context) error

// ScriptedPress closes the switch labelled Label At after start, for Hold.
type ScriptedPress struct {
	Label rune
	At    time.Duration
	Hold  time.Duration
}

func (p ScriptedPress) String() string {
	return fmt.Sprintf("%c@%s+%s", p.Label, p.At, p.Hold)
}

// ParseScriptedPress parses LABEL@AT+HOLD, e.g. "5@100ms+200ms".
func ParseScriptedPress(s string) (ScriptedPress, error) {
	label, rest, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok || utf8.RuneCountInString(label) != 1 {
		return ScriptedPress{}, fmt.Errorf("press %q: want LABEL@AT+HOLD", s)
	}
	at, hold, ok := strings.Cut(rest, "+")
	if !ok {
		return ScriptedPress{}, fmt.Errorf("press %q: missing +HOLD", s)
	}
	atD, err := time.ParseDuration(at)
	if err != nil {
		return ScriptedPress{}, fmt.Errorf("press %q: %w", s, err)
	}
	holdD, err := time.ParseDuration(hold)
	if err != nil {
		return ScriptedPress{}, fmt.Errorf("press %q: %w", s, err)
	}
	if atD < 0 || holdD <= 0 {
		return ScriptedPress{}, fmt.Errorf("press %q: negative offset or empty hold", s)
	}
	r, _ := utf8.DecodeRuneInString(label)
	return ScriptedPress{Label: r, At: atD, Hold: holdD}, nil
}

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Duration stops the run; zero runs until ctx is cancelled.
	Duration time.Duration
	Presses  []ScriptedPress
	// Step is the script resolution.
	Step time.Duration
}

// RunHeadless runs the firmware without any view, replaying scripted presses
// on the switch matrix. A run stopped by the duration or by ctx is not an
// error.
func RunHeadless(ctx context.Context, h *Host, run RunFunc, cfg HeadlessConfig) error {
	if cfg.Step <= 0 {
		cfg.Step = time.Millisecond
	}
	for _, p := range cfg.Presses {
		if h.cfg.Switches == nil {
			return errors.New("headless: scripted presses need a switch map")
		}
		if _, _, ok := h.cfg.Switches(p.Label); !ok {
			return fmt.Errorf("headless: press %s: unknown key", p)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := startRun(ctx, run)

	t := time.NewTicker(cfg.Step)
	defer t.Stop()

	start := time.Now()
	held := make([]bool, len(cfg.Presses))
	for {
		select {
		case err := <-w.errc:
			w.finish(err)
			return w.wait()
		case <-ctx.Done():
			return w.wait()
		case now := <-t.C:
			elapsed := now.Sub(start)
			for i, p := range cfg.Presses {
				down := elapsed >= p.At && elapsed < p.At+p.Hold
				if down != held[i] {
					h.press(p.Label, down)
					held[i] = down
				}
			}
			if cfg.Duration > 0 && elapsed >= cfg.Duration {
				cancel()
				return w.wait()
			}
		}
	}
}

// runWatch holds the result of a firmware goroutine. The channel carries a
// single value, so once a view has seen it, wait must not read again.
type runWatch struct {
	errc chan error
	done bool
	err  error
}

func startRun(ctx context.Context, run RunFunc) *runWatch {
	w := &runWatch{errc: make(chan error, 1)}
	go func() { w.errc <- run(ctx) }()
	return w
}

func (w *runWatch) finish(err error) {
	w.done = true
	if !errors.Is(err, context.Canceled) {
		w.err = err
	}
}

// poll reports whether run has returned, without blocking.
func (w *runWatch) poll() bool {
	if !w.done {
		select {
		case err := <-w.errc:
			w.finish(err)
		default:
		}
	}
	return w.done
}

// wait blocks until run has returned. Cancellation is a clean stop.
func (w *runWatch) wait() error {
	if !w.done {
		w.finish(<-w.errc)
	}
	return w.err
}
