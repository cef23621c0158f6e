package app

import (
	"context"
	"log/slog"

	"keyvisor/hal"
)

// Run is the device entry point. It never returns: after a fatal error the
// diagnostics stay on screen until reset.
func Run(h hal.HAL) {
	log := slog.New(slog.NewTextHandler(hal.NewLogWriter(h.Logger()), &slog.HandlerOptions{Level: slog.LevelInfo}))

	sys, err := New(h, DefaultConfig(), log)
	if err == nil {
		err = sys.Run(context.Background())
	}
	if err != nil {
		if ferr := ShowFatal(h, err); ferr != nil {
			log.Error("fatal screen", "error", ferr)
		}
	}
	select {}
}
