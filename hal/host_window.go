//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"keyvisor/gfx"
	"keyvisor/internal/buildinfo"
)

// windowKeys maps physical keys onto key legends. ',' and '.' stand in for
// '*' and '#' so the keypad can be played from the number row.
var windowKeys = map[ebiten.Key]rune{
	ebiten.KeyDigit0: '0', ebiten.KeyNumpad0: '0',
	ebiten.KeyDigit1: '1', ebiten.KeyNumpad1: '1',
	ebiten.KeyDigit2: '2', ebiten.KeyNumpad2: '2',
	ebiten.KeyDigit3: '3', ebiten.KeyNumpad3: '3',
	ebiten.KeyDigit4: '4', ebiten.KeyNumpad4: '4',
	ebiten.KeyDigit5: '5', ebiten.KeyNumpad5: '5',
	ebiten.KeyDigit6: '6', ebiten.KeyNumpad6: '6',
	ebiten.KeyDigit7: '7', ebiten.KeyNumpad7: '7',
	ebiten.KeyDigit8: '8', ebiten.KeyNumpad8: '8',
	ebiten.KeyDigit9: '9', ebiten.KeyNumpad9: '9',
	ebiten.KeyComma: '*', ebiten.KeyNumpadMultiply: '*',
	ebiten.KeyPeriod: '#', ebiten.KeyNumpadEnter: '#',
}

// RunWindow shows the simulated panel in a desktop window and turns held
// keys into closed switches. It blocks until the window closes or run fails.
func RunWindow(ctx context.Context, h *Host, run RunFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := &hostGame{h: h, run: startRun(ctx, run), ctx: ctx, held: make(map[rune]bool)}
	ebiten.SetWindowTitle("keyvisor (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.cfg.Width*h.cfg.Scale, h.cfg.Height*h.cfg.Scale)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	cancel()
	if rerr := g.run.wait(); rerr != nil {
		return rerr
	}
	return err
}

type hostGame struct {
	h   *Host
	ctx context.Context
	run *runWatch

	held    map[rune]bool
	seq     uint64
	scratch []byte
	img     *image.RGBA
	fbImg   *ebiten.Image
}

func (g *hostGame) Update() error {
	if g.run.poll() || g.ctx.Err() != nil {
		return ebiten.Termination
	}

	down := make(map[rune]bool, len(g.held))
	for key, label := range windowKeys {
		if ebiten.IsKeyPressed(key) {
			down[label] = true
		}
	}
	for label := range down {
		if !g.held[label] {
			g.h.press(label, true)
		}
	}
	for label := range g.held {
		if !down[label] {
			g.h.press(label, false)
		}
	}
	g.held = down
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	if g.fbImg == nil {
		g.fbImg = ebiten.NewImage(p.width, p.height)
	}
	if seq := p.Seq(); seq != g.seq || g.img == nil {
		g.seq = seq
		g.scratch = p.Snapshot(g.scratch)
		g.img = gfx.ToRGBA(g.scratch, p.width, p.height, g.img)
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.width, g.h.panel.height
}
