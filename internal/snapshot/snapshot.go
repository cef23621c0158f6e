//go:build !tinygo

// Package snapshot renders the simulated panel to PNG with a caption strip,
// for bug reports and docs.
package snapshot

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"golang.org/x/image/font/basicfont"

	"keyvisor/gfx"
)

const captionHeight = 20

// Options tune a snapshot.
type Options struct {
	// Scale enlarges each panel pixel.
	Scale int
	// Caption is printed under the panel; empty uses the run id and time.
	Caption string
	RunID   uuid.UUID
	Now     func() time.Time
}

// Render converts a w*h RGB565 buffer into a scaled image with a caption.
func Render(pix []byte, w, h int, opts Options) image.Image {
	scale := max(1, opts.Scale)
	panel := gfx.ToRGBA(pix, w, h, nil)

	dc := gg.NewContext(w*scale, h*scale+captionHeight)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.Clear()

	dc.Push()
	dc.Scale(float64(scale), float64(scale))
	dc.DrawImage(panel, 0, 0)
	dc.Pop()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0.85, 0.85, 0.85)
	dc.DrawStringAnchored(caption(opts), 4, float64(h*scale)+captionHeight/2, 0, 0.5)
	return dc.Image()
}

// Save writes the snapshot as PNG to path, creating its directory.
func Save(path string, pix []byte, w, h int, opts Options) error {
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	dc := gg.NewContextForImage(Render(pix, w, h, opts))
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

func caption(opts Options) string {
	if opts.Caption != "" {
		return opts.Caption
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return fmt.Sprintf("run %s  %s", opts.RunID.String()[:8], now().UTC().Format(time.RFC3339))
}
