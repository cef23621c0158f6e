package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrPushFailed is returned by a Panel when the controller did not accept a
	// region. Nothing of the region is considered shown.
	ErrPushFailed = errors.New("panel push failed")
)

// PixelFormat defines the wire encoding of pixel bytes.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp rrrrrggg gggbbbbb, high byte first.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// BytesPerPixel returns the encoded size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB565:
		return 2
	default:
		return 0
	}
}

// Panel is the display transport capability: a controller that accepts
// rectangular regions of encoded pixels.
//
// PushRegion is atomic: either the whole region is accepted or an error is
// returned. pix holds w*h pixels, row-major, without padding.
type Panel interface {
	Init() error
	Size() (w, h int)
	Format() PixelFormat
	PushRegion(x, y, w, h int, pix []byte) error
}

// Backlight drives the panel backlight.
type Backlight interface {
	// SetBrightnessPercent accepts 0..100.
	SetBrightnessPercent(pct uint8) error
}

// Keypad exposes the matrix lines: columns are driven, rows are sensed.
type Keypad interface {
	Columns() []GPIOPin
	Rows() []GPIOPin
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	Keypad() Keypad
	Panel() Panel
	Backlight() Backlight
}
