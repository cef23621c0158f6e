package gfx

import (
	"image"
	"image/color"
)

// BytesPerPixel is the size of one RGB565 pixel.
const BytesPerPixel = 2

// RGB565 packs c into rrrrrggggggbbbbb.
func RGB565(c color.RGBA) uint16 {
	rr := uint16(c.R>>3) & 0x1F
	gg := uint16(c.G>>2) & 0x3F
	bb := uint16(c.B>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGBA expands an RGB565 pixel back to 8 bits per channel.
func RGBA(p uint16) color.RGBA {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F
	return color.RGBA{
		R: uint8((rr * 255) / 31),
		G: uint8((gg * 255) / 63),
		B: uint8((bb * 255) / 31),
		A: 0xFF,
	}
}

// Quantize returns c as it reads back after a round trip through RGB565.
func Quantize(c color.RGBA) color.RGBA { return RGBA(RGB565(c)) }

// PutRGB565 stores p high byte first, the order the panel expects on the wire.
func PutRGB565(b []byte, p uint16) {
	b[0] = byte(p >> 8)
	b[1] = byte(p)
}

// GetRGB565 reads a pixel stored by PutRGB565.
func GetRGB565(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// ToRGBA converts a w*h RGB565 buffer into dst, allocating it when its
// bounds do not match.
func ToRGBA(pix []byte, w, h int, dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	out := dst.Pix
	for i, j := 0, 0; i+1 < len(pix) && j+3 < len(out); i, j = i+2, j+4 {
		c := RGBA(GetRGB565(pix[i:]))
		out[j+0] = c.R
		out[j+1] = c.G
		out[j+2] = c.B
		out[j+3] = 0xFF
	}
	return dst
}
