//go:build !tinygo

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli"

	"keyvisor/app"
	"keyvisor/bus"
	"keyvisor/hal"
	"keyvisor/internal/buildinfo"
	"keyvisor/internal/snapshot"
	"keyvisor/keypad"
)

func main() {
	def := app.DefaultConfig()
	hostDef := hal.DefaultHostConfig()

	a := cli.NewApp()
	a.Name = "keyvisor"
	a.Usage = "simulate the keypad visualizer on the host"
	a.Version = buildinfo.String()
	a.Flags = []cli.Flag{
		cli.BoolFlag{Name: "headless", Usage: "run without any view"},
		cli.BoolFlag{Name: "terminal", Usage: "draw the panel in the terminal"},
		cli.IntFlag{Name: "scan-hz", Value: def.ScanHz, Usage: "matrix scan rate"},
		cli.IntFlag{Name: "threshold", Value: int(def.Threshold), Usage: "debounce threshold in scan cycles"},
		cli.IntFlag{Name: "bus-capacity", Value: def.BusCapacity, Usage: "event bus capacity"},
		cli.StringFlag{Name: "bus-policy", Value: def.BusPolicy.String(), Usage: "evict-oldest or drop-newest"},
		cli.IntFlag{Name: "push-retries", Value: def.PushRetries, Usage: "extra attempts for a failed panel push"},
		cli.IntFlag{Name: "brightness", Value: int(def.Brightness), Usage: "backlight percent"},
		cli.IntFlag{Name: "chatter", Value: hostDef.Chatter, Usage: "bouncing reads after each switch change"},
		cli.Int64Flag{Name: "seed", Value: 1, Usage: "chatter random seed"},
		cli.IntFlag{Name: "scale", Value: hostDef.Scale, Usage: "window scale"},
		cli.DurationFlag{Name: "duration", Usage: "stop a headless run after this long (0 = until interrupted)"},
		cli.StringSliceFlag{Name: "press", Usage: "scripted press LABEL@AT+HOLD, repeatable (headless)"},
		cli.StringFlag{Name: "snapshot", Usage: "write the final panel as PNG to this file"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
	}
	a.Action = run

	if err := a.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "keyvisor:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	runID := uuid.New()

	hcfg := hal.DefaultHostConfig()
	hcfg.Chatter = c.Int("chatter")
	hcfg.Seed = c.Int64("seed")
	hcfg.Scale = c.Int("scale")
	hcfg.Switches = switchFor

	// The terminal view owns stdout; logs go to the ring it shows.
	var logOut io.Writer = os.Stderr
	if c.Bool("terminal") {
		ring := hal.NewLogRing(64)
		hcfg.Log = ring
		logOut = hal.NewLogWriter(ring)
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})).
		With("run", runID.String()[:8])
	slog.SetDefault(log)

	h := hal.NewHost(hcfg)
	sys, err := app.New(h, cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case c.Bool("headless"):
		var presses []hal.ScriptedPress
		for _, s := range c.StringSlice("press") {
			p, err := hal.ParseScriptedPress(s)
			if err != nil {
				return err
			}
			presses = append(presses, p)
		}
		err = hal.RunHeadless(ctx, h, sys.Run, hal.HeadlessConfig{
			Duration: c.Duration("duration"),
			Presses:  presses,
		})
	case c.Bool("terminal"):
		err = hal.RunTerminal(ctx, h, sys.Run, hal.DefaultTerminalConfig())
	default:
		err = hal.RunWindow(ctx, h, sys.Run)
	}

	st := sys.Stats()
	log.Info("keyvisor stopped",
		"scan_cycles", st.ScanCycles,
		"rendered", st.Rendered,
		"published", st.Bus.Published,
		"evicted", st.Bus.Evicted,
		"dropped", st.Bus.Dropped,
		"pushes", st.Transport.Pushes,
		"push_failures", st.Transport.Failures,
	)

	if path := c.String("snapshot"); path != "" {
		w, ht := h.MemPanel().Size()
		if serr := snapshot.Save(path, h.MemPanel().Snapshot(nil), w, ht, snapshot.Options{
			Scale: 2,
			RunID: runID,
		}); serr != nil {
			log.Error("snapshot failed", "error", serr)
		} else {
			log.Info("snapshot saved", "path", path)
		}
	}
	return err
}

func configFromFlags(c *cli.Context) (app.Config, error) {
	cfg := app.DefaultConfig()
	policy, err := bus.ParsePolicy(c.String("bus-policy"))
	if err != nil {
		return cfg, err
	}
	threshold := c.Int("threshold")
	if threshold < 0 || threshold > 255 {
		return cfg, fmt.Errorf("%w: threshold %d", app.ErrInvalidConfig, threshold)
	}
	brightness := c.Int("brightness")
	if brightness < 0 || brightness > 255 {
		return cfg, fmt.Errorf("%w: brightness %d%%", app.ErrInvalidConfig, brightness)
	}

	cfg.ScanHz = c.Int("scan-hz")
	cfg.Threshold = uint8(threshold)
	cfg.BusCapacity = c.Int("bus-capacity")
	cfg.BusPolicy = policy
	cfg.PushRetries = c.Int("push-retries")
	cfg.Brightness = uint8(brightness)
	return cfg, cfg.Validate()
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

func switchFor(label rune) (col, row int, ok bool) {
	k, ok := keypad.KeyForLabel(label)
	if !ok {
		return 0, 0, false
	}
	return int(k.Col), int(k.Row), true
}
