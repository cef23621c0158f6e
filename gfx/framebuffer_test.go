package gfx

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/tinyfont/freemono"
)

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

func TestRGB565RoundTrip(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), RGB565(white))
	assert.Equal(t, uint16(0xF800), RGB565(red))
	assert.Equal(t, white, RGBA(0xFFFF))
	assert.Equal(t, red, RGBA(0xF800))

	salmon := color.RGBA{R: 0xFA, G: 0x80, B: 0x72, A: 0xFF}
	assert.Equal(t, RGB565(salmon), RGB565(Quantize(salmon)))
}

func TestSetPixelStoresBigEndian(t *testing.T) {
	fb := NewFrameBuffer(4, 2)
	fb.SetPixel(1, 1, red)

	off := 1*fb.StrideBytes() + 1*BytesPerPixel
	assert.Equal(t, byte(0xF8), fb.Bytes()[off])
	assert.Equal(t, byte(0x00), fb.Bytes()[off+1])
	assert.Equal(t, red, fb.Pixel(1, 1))

	fb.SetPixel(-1, 0, red)
	fb.SetPixel(4, 0, red)
	fb.SetPixel(0, 2, red)
	assert.Equal(t, black, fb.Pixel(0, 0))
}

func TestFillRectClips(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	fb.FillRect(Rect{X: 6, Y: 6, W: 10, H: 10}, white)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := black
			if x >= 6 && y >= 6 {
				want = white
			}
			require.Equal(t, want, fb.Pixel(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestFillRoundedRectCornersAndCenter(t *testing.T) {
	fb := NewFrameBuffer(40, 40)
	r := Rect{X: 5, Y: 5, W: 30, H: 20}
	require.NoError(t, fb.FillRoundedRect(r, 6, white))

	assert.Equal(t, white, fb.Pixel(20, 15), "center")
	assert.Equal(t, white, fb.Pixel(20, 5), "top edge middle")
	assert.Equal(t, white, fb.Pixel(5, 15), "left edge middle")
	assert.Equal(t, black, fb.Pixel(5, 5), "top-left corner cut")
	assert.Equal(t, black, fb.Pixel(34, 24), "bottom-right corner cut")
	assert.Equal(t, black, fb.Pixel(4, 15), "outside left")
	assert.Equal(t, black, fb.Pixel(35, 15), "outside right")
}

func TestFillRoundedRectStaysInside(t *testing.T) {
	fb := NewFrameBuffer(40, 40)
	r := Rect{X: 3, Y: 3, W: 20, H: 20}
	require.NoError(t, fb.FillRoundedRect(r, 10, white))

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if !r.Contains(x, y) {
				require.Equal(t, black, fb.Pixel(x, y), "pixel (%d,%d) outside the rect", x, y)
			}
		}
	}
}

func TestDrawLabelCentered(t *testing.T) {
	fb := NewFrameBuffer(80, 60)
	cell := Rect{W: 80, H: 60}
	fb.DrawLabel(cell, "8", &freemono.Bold12pt7b, white)

	minX, minY, maxX, maxY := 80, 60, -1, -1
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			if fb.Pixel(x, y) == white {
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}
		}
	}
	require.GreaterOrEqual(t, maxX, 0, "label drew nothing")

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	assert.InDelta(t, 40, cx, 4)
	assert.InDelta(t, 30, cy, 4)
}

func TestRowsAndRegion(t *testing.T) {
	fb := NewFrameBuffer(6, 5)
	fb.FillRect(Rect{X: 2, Y: 1, W: 2, H: 2}, white)

	rows := fb.Rows(1, 2)
	require.Len(t, rows, 2*fb.StrideBytes())
	assert.Equal(t, fb.Bytes()[fb.StrideBytes():3*fb.StrideBytes()], rows)

	region := fb.Region(Rect{X: 2, Y: 1, W: 2, H: 2})
	require.Len(t, region, 2*2*BytesPerPixel)
	for i := 0; i < len(region); i += 2 {
		assert.Equal(t, uint16(0xFFFF), GetRGB565(region[i:]))
	}

	assert.Nil(t, fb.Rows(4, 2))
	assert.Nil(t, fb.Region(Rect{X: 5, Y: 0, W: 2, H: 1}))
	assert.Nil(t, fb.Region(Rect{}))
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 80, H: 60}
	assert.Equal(t, Rect{X: 13, Y: 23, W: 74, H: 54}, r.Inset(3))
	assert.True(t, r.Within(Rect{W: 240, H: 240}))
	assert.False(t, r.Within(Rect{W: 50, H: 240}))
	assert.Equal(t, Rect{X: 10, Y: 20, W: 40, H: 60}, r.Intersect(Rect{W: 50, H: 240}))
	assert.True(t, r.Intersect(Rect{X: 200, Y: 200, W: 5, H: 5}).Empty())
	assert.Equal(t, "80x60@(10,20)", r.String())
}
