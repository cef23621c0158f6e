//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"machine"

	"tinygo.org/x/drivers/st7789"
)

// st7789Panel pushes big-endian RGB565 regions to an ST7789 over SPI1. The
// backlight pin belongs to pwmBacklight, so the driver gets NoPin for it.
type st7789Panel struct {
	width, height int
	dev           *st7789.Device
}

func newST7789Panel(w, h int) *st7789Panel {
	return &st7789Panel{width: w, height: h}
}

func (p *st7789Panel) Init() error {
	if machine.SPI1 == nil {
		return errors.New("panel: SPI1 unavailable")
	}
	if err := machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		Frequency: 40_000_000,
		Mode:      0,
	}); err != nil {
		return fmt.Errorf("panel: spi: %w", err)
	}

	dev := st7789.New(machine.SPI1, machine.GP15, machine.GP14, machine.GP13, machine.NoPin)
	dev.Configure(st7789.Config{
		Width:    int16(p.width),
		Height:   int16(p.height),
		Rotation: st7789.NO_ROTATION,
	})
	dev.InvertColors(true)
	p.dev = &dev
	return nil
}

func (p *st7789Panel) Size() (int, int)    { return p.width, p.height }
func (p *st7789Panel) Format() PixelFormat { return PixelFormatRGB565 }

func (p *st7789Panel) PushRegion(x, y, w, h int, pix []byte) error {
	if p.dev == nil {
		return errors.New("panel: not initialized")
	}
	if len(pix) != w*h*2 {
		return fmt.Errorf("panel: region %dx%d needs %d bytes, got %d", w, h, w*h*2, len(pix))
	}
	if err := p.dev.DrawRGBBitmap8(int16(x), int16(y), pix, int16(w), int16(h)); err != nil {
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}
	return nil
}
