package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyvisor/bus"
	"keyvisor/gfx"
	"keyvisor/keypad"
)

type push struct {
	full bool
	y, h int
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []push
	fail   error
}

func (p *fakePusher) PushFull() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, push{full: true})
	return nil
}

func (p *fakePusher) PushRegion(y, h int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.pushes = append(p.pushes, push{y: y, h: h})
	return nil
}

func (p *fakePusher) snapshot() []push {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]push(nil), p.pushes...)
}

func newTask(t *testing.T) (*bus.Bus[keypad.KeyEvent], *fakePusher, *RenderTask) {
	t.Helper()
	b := bus.New[keypad.KeyEvent](bus.DefaultConfig())
	sub, err := b.Subscribe()
	require.NoError(t, err)
	out := &fakePusher{}
	r := NewRenderer(gfx.NewFrameBuffer(240, 240), nil)
	return b, out, NewRenderTask(r, out, sub, nil)
}

func TestRenderTaskStartsWithOneFullPush(t *testing.T) {
	b, out, task := newTask(t)
	// Published before the loop starts; still handled after the full frame.
	b.Publish(keypad.Down(keypad.Key{Col: 0, Row: 0}))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- task.Run(ctx) }()

	require.Eventually(t, func() bool { return len(out.snapshot()) == 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	pushes := out.snapshot()
	assert.Equal(t, push{full: true}, pushes[0])
	assert.Equal(t, push{y: 0, h: 60}, pushes[1])
}

func TestRenderTaskScenarios(t *testing.T) {
	b, out, task := newTask(t)
	require.NoError(t, task.Start())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- task.Run(ctx) }()

	k := keypad.Key{Col: 0, Row: 0}
	b.Publish(keypad.Down(k))
	require.Eventually(t, func() bool { return task.Handled() == 1 }, time.Second, time.Millisecond)
	assert.True(t, task.r.Pressed(k))

	b.Publish(keypad.Up(k))
	require.Eventually(t, func() bool { return task.Handled() == 2 }, time.Second, time.Millisecond)
	assert.False(t, task.r.Pressed(k))

	k = keypad.Key{Col: 2, Row: 3}
	b.Publish(keypad.Down(k))
	require.Eventually(t, func() bool { return task.Handled() == 3 }, time.Second, time.Millisecond)

	cancel()
	<-errc
	assert.Equal(t, []push{
		{full: true},
		{y: 0, h: 60},
		{y: 0, h: 60},
		{y: 180, h: 60},
	}, out.snapshot())
}

func TestRenderTaskStopsOnPushFailure(t *testing.T) {
	b, out, task := newTask(t)
	require.NoError(t, task.Start())
	boom := errors.New("boom")
	out.fail = boom

	b.Publish(keypad.Down(keypad.Key{Col: 1, Row: 1}))
	err := task.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, task.Handled())
}

func TestRenderTaskEndsWhenBusCloses(t *testing.T) {
	b, _, task := newTask(t)
	b.Close()
	err := task.Run(context.Background())
	assert.ErrorIs(t, err, bus.ErrClosed)
}
