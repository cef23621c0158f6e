// Package gfx holds the RGB565 frame buffer the firmware draws into and the
// drawing target interface the renderer works against.
package gfx

import (
	"errors"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
)

// Target is what the renderer draws on.
type Target interface {
	Bounds() Rect
	FillRect(r Rect, c color.RGBA)
	FillRoundedRect(r Rect, radius int, c color.RGBA) error
	// DrawLabel draws label centered inside r.
	DrawLabel(r Rect, label string, font tinyfont.Fonter, c color.RGBA)
	// Region reads back the encoded bytes of r, row-major.
	Region(r Rect) []byte
}

// FrameBuffer is a contiguous RGB565 pixel array, big-endian, row-major,
// stride width*2. It implements drivers.Displayer so tinydraw, tinyfont and
// tinyterm can draw on it.
type FrameBuffer struct {
	width  int
	height int
	stride int
	buf    []byte
}

var (
	_ Target            = (*FrameBuffer)(nil)
	_ drivers.Displayer = (*FrameBuffer)(nil)
)

// NewFrameBuffer allocates a zeroed (black) buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	stride := width * BytesPerPixel
	return &FrameBuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *FrameBuffer) Width() int       { return f.width }
func (f *FrameBuffer) Height() int      { return f.height }
func (f *FrameBuffer) StrideBytes() int { return f.stride }
func (f *FrameBuffer) Bytes() []byte    { return f.buf }
func (f *FrameBuffer) Bounds() Rect     { return Rect{W: f.width, H: f.height} }

// Size implements drivers.Displayer.
func (f *FrameBuffer) Size() (x, y int16) { return int16(f.width), int16(f.height) }

// SetPixel implements drivers.Displayer. Pixels outside the buffer are dropped.
func (f *FrameBuffer) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= f.width || iy < 0 || iy >= f.height {
		return
	}
	off := iy*f.stride + ix*BytesPerPixel
	PutRGB565(f.buf[off:], RGB565(c))
}

// Display implements drivers.Displayer. Pushing to the panel is the
// transport's job, so this is a no-op.
func (f *FrameBuffer) Display() error { return nil }

// FillRectangle clips and fills, for tinyterm.
func (f *FrameBuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	f.FillRect(Rect{X: int(x), Y: int(y), W: int(width), H: int(height)}, c)
	return nil
}

// SetScroll is a no-op: the buffer has no hardware scroll.
func (f *FrameBuffer) SetScroll(line int16) {}

// SetRotation only accepts the native orientation.
func (f *FrameBuffer) SetRotation(rotation drivers.Rotation) error {
	if rotation != drivers.Rotation0 {
		return errRotation
	}
	return nil
}

var errRotation = errors.New("gfx: frame buffer has a fixed orientation")

// Pixel returns the color stored at (x, y).
func (f *FrameBuffer) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return color.RGBA{}
	}
	return RGBA(GetRGB565(f.buf[y*f.stride+x*BytesPerPixel:]))
}

// Clear fills the whole buffer with c.
func (f *FrameBuffer) Clear(c color.RGBA) {
	f.FillRect(f.Bounds(), c)
}

// FillRect fills r clipped to the buffer.
func (f *FrameBuffer) FillRect(r Rect, c color.RGBA) {
	r = r.Intersect(f.Bounds())
	if r.Empty() {
		return
	}
	var px [BytesPerPixel]byte
	PutRGB565(px[:], RGB565(c))

	first := r.Y*f.stride + r.X*BytesPerPixel
	row := f.buf[first : first+r.W*BytesPerPixel]
	for i := 0; i < len(row); i += BytesPerPixel {
		row[i], row[i+1] = px[0], px[1]
	}
	for y := 1; y < r.H; y++ {
		off := first + y*f.stride
		copy(f.buf[off:off+len(row)], row)
	}
}

// FillRoundedRect fills r with corners of the given radius: two crossing
// rectangles plus a filled circle in each corner.
func (f *FrameBuffer) FillRoundedRect(r Rect, radius int, c color.RGBA) error {
	if r.Empty() {
		return nil
	}
	// A circle of radius n spans 2n+1 pixels.
	radius = min(radius, (r.W-1)/2, (r.H-1)/2)
	if radius <= 0 {
		f.FillRect(r, c)
		return nil
	}

	x, y, w, h := int16(r.X), int16(r.Y), int16(r.W), int16(r.H)
	rr := int16(radius)
	if w > 2*rr {
		if err := tinydraw.FilledRectangle(f, x+rr, y, w-2*rr, h, c); err != nil {
			return err
		}
	}
	if h > 2*rr {
		if err := tinydraw.FilledRectangle(f, x, y+rr, w, h-2*rr, c); err != nil {
			return err
		}
	}
	right, bottom := x+w-1-rr, y+h-1-rr
	tinydraw.FilledCircle(f, x+rr, y+rr, rr, c)
	tinydraw.FilledCircle(f, right, y+rr, rr, c)
	tinydraw.FilledCircle(f, x+rr, bottom, rr, c)
	tinydraw.FilledCircle(f, right, bottom, rr, c)
	return nil
}

// DrawLabel centers label in r. The horizontal extent comes from the line
// width and the vertical one from the tallest glyph of the label.
func (f *FrameBuffer) DrawLabel(r Rect, label string, font tinyfont.Fonter, c color.RGBA) {
	if label == "" || font == nil {
		return
	}
	width, _ := tinyfont.LineWidth(font, label)

	top, bottom := 0, 0
	for i, ch := range label {
		info := font.GetGlyph(ch).Info()
		gt := int(info.YOffset)
		gb := gt + int(info.Height)
		if i == 0 || gt < top {
			top = gt
		}
		if i == 0 || gb > bottom {
			bottom = gb
		}
	}

	x := r.X + (r.W-int(width))/2
	baseline := r.Y + (r.H-(bottom-top))/2 - top
	tinyfont.WriteLine(f, font, int16(x), int16(baseline), label, c)
}

// Rows returns the bytes of the full-width stripe [y, y+h) without copying.
// Callers must not keep the slice past the next draw.
func (f *FrameBuffer) Rows(y, h int) []byte {
	if y < 0 || h <= 0 || y+h > f.height {
		return nil
	}
	return f.buf[y*f.stride : (y+h)*f.stride]
}

// Region copies out the bytes of r, row-major with no padding. Regions not
// fully inside the buffer yield nil.
func (f *FrameBuffer) Region(r Rect) []byte {
	if !r.Within(f.Bounds()) {
		return nil
	}
	if r.X == 0 && r.W == f.width {
		out := make([]byte, r.H*f.stride)
		copy(out, f.Rows(r.Y, r.H))
		return out
	}
	rowBytes := r.W * BytesPerPixel
	out := make([]byte, 0, rowBytes*r.H)
	for y := r.Y; y < r.Y+r.H; y++ {
		off := y*f.stride + r.X*BytesPerPixel
		out = append(out, f.buf[off:off+rowBytes]...)
	}
	return out
}
