package snapshot

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyvisor/gfx"
)

func TestRenderScalesPanelAndAddsCaption(t *testing.T) {
	fb := gfx.NewFrameBuffer(10, 8)
	fb.FillRect(gfx.Rect{X: 0, Y: 0, W: 5, H: 8}, gfx.RGBA(0xF800))

	img := Render(fb.Bytes(), 10, 8, Options{Scale: 3, Caption: "hello"})
	assert.Equal(t, image.Rect(0, 0, 30, 24+captionHeight), img.Bounds())

	r, g, b, _ := img.At(4, 4).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Zero(t, g)
	assert.Zero(t, b)

	r, _, _, _ = img.At(25, 4).RGBA()
	assert.Zero(t, r)
}

func TestCaptionUsesRunID(t *testing.T) {
	id := uuid.MustParse("0123abcd-0000-4000-8000-000000000000")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := caption(Options{RunID: id, Now: func() time.Time { return at }})
	assert.Equal(t, "run 0123abcd  2024-05-01T12:00:00Z", got)
}

func TestSaveWritesPNG(t *testing.T) {
	dir := t.TempDir()
	id := uuid.New()
	fb := gfx.NewFrameBuffer(4, 4)

	path := filepath.Join(dir, "shots", "panel.png")
	require.NoError(t, Save(path, fb.Bytes(), 4, 4, Options{RunID: id}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}
