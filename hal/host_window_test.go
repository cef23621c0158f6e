//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestWindowUpdateStopsAfterCancelledRun(t *testing.T) {
	h := testHost()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &hostGame{
		h:    h,
		ctx:  context.Background(),
		run:  startRun(ctx, func(ctx context.Context) error { return ctx.Err() }),
		held: make(map[rune]bool),
	}

	deadline := time.Now().Add(time.Second)
	for len(g.run.errc) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("run never returned")
		}
		time.Sleep(time.Millisecond)
	}
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Update = %v, want Termination", err)
	}

	done := make(chan error, 1)
	go func() { done <- g.run.wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("shutdown blocked after Update consumed the run result")
	}
}
