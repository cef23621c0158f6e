//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
)

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmBacklight dims the panel backlight through the PWM slice of its pin.
type pwmBacklight struct {
	pin        machine.Pin
	pwm        pwmDevice
	ch         uint8
	configured bool
}

func newPWMBacklight(pin machine.Pin) *pwmBacklight {
	return &pwmBacklight{pin: pin, pwm: pwmForPin(pin)}
}

func (b *pwmBacklight) SetBrightnessPercent(pct uint8) error {
	if pct > 100 {
		return fmt.Errorf("backlight: brightness %d%% out of range", pct)
	}
	if b.pwm == nil {
		// No PWM on this pin: on or off.
		b.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		b.pin.Set(pct > 0)
		return nil
	}
	if !b.configured {
		// 1 kHz carrier.
		if err := b.pwm.Configure(machine.PWMConfig{Period: 1e6}); err != nil {
			return fmt.Errorf("backlight: %w", err)
		}
		ch, err := b.pwm.Channel(b.pin)
		if err != nil {
			return fmt.Errorf("backlight: %w", err)
		}
		b.ch, b.configured = ch, true
	}
	b.pwm.Set(b.ch, b.pwm.Top()*uint32(pct)/100)
	return nil
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}
