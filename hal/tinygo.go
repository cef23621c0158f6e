//go:build tinygo && baremetal

package hal

import (
	"machine"
)

// Board wiring (RP2040/RP2350 Pico).
//
// UART0: GP0 (TX) / GP1 (RX), 115200 8N1.
// Keypad: columns GP2..GP4, rows GP5..GP8.
// ST7789 on SPI1: SCK GP10, SDO GP11, CS GP13, DC GP14, RST GP15, BL GP12.
var (
	keypadCols = []machine.Pin{machine.GP2, machine.GP3, machine.GP4}
	keypadRows = []machine.Pin{machine.GP5, machine.GP6, machine.GP7, machine.GP8}
)

const (
	panelWidth  = 240
	panelHeight = 240
)

type deviceHAL struct {
	logger    *uartLogger
	keypad    *pinKeypad
	panel     *st7789Panel
	backlight *pwmBacklight
}

// New returns the device HAL. Nothing is driven until the firmware
// configures it.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	kp := &pinKeypad{}
	for i, p := range keypadCols {
		kp.cols = append(kp.cols, &machinePin{pin: p, name: pinName("COL", i), openDrain: true,
			caps: GPIOCapInput | GPIOCapOutput | GPIOCapPullUp})
	}
	for i, p := range keypadRows {
		kp.rows = append(kp.rows, &machinePin{pin: p, name: pinName("ROW", i),
			caps: GPIOCapInput | GPIOCapPullUp | GPIOCapPullDown})
	}

	panel := newST7789Panel(panelWidth, panelHeight)
	return &deviceHAL{
		logger:    &uartLogger{uart: uart},
		keypad:    kp,
		panel:     panel,
		backlight: newPWMBacklight(machine.GP12),
	}
}

func (h *deviceHAL) Logger() Logger       { return h.logger }
func (h *deviceHAL) Keypad() Keypad       { return h.keypad }
func (h *deviceHAL) Panel() Panel         { return h.panel }
func (h *deviceHAL) Backlight() Backlight { return h.backlight }

func pinName(prefix string, i int) string {
	return prefix + string(rune('0'+i))
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}
