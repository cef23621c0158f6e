//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
)

type pinKeypad struct {
	cols []GPIOPin
	rows []GPIOPin
}

func (k *pinKeypad) Columns() []GPIOPin { return k.cols }
func (k *pinKeypad) Rows() []GPIOPin    { return k.rows }

// machinePin is a GPIOPin over a machine.Pin. An openDrain output never
// drives high: a high level releases the line to the input pull-up, so two
// columns can never fight through a pair of closed switches.
type machinePin struct {
	pin       machine.Pin
	name      string
	caps      GPIOCaps
	openDrain bool
	mode      GPIOMode
	pull      GPIOPull
	level     bool
}

func (p *machinePin) Name() string   { return p.name }
func (p *machinePin) Caps() GPIOCaps { return p.caps }

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkConfig(p.name, p.caps, mode, pull); err != nil {
		return err
	}
	p.mode, p.pull = mode, pull
	if mode == GPIOModeOutput {
		return p.Write(true)
	}
	p.pin.Configure(machine.PinConfig{Mode: inputMode(pull)})
	return nil
}

func inputMode(pull GPIOPull) machine.PinMode {
	switch pull {
	case GPIOPullUp:
		return machine.PinInputPullup
	case GPIOPullDown:
		return machine.PinInputPulldown
	default:
		return machine.PinInput
	}
}

func (p *machinePin) Read() (bool, error) {
	if p.mode == GPIOModeUnset {
		return false, fmt.Errorf("gpio: pin %s: not configured", p.name)
	}
	return p.pin.Get(), nil
}

func (p *machinePin) Write(level bool) error {
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	if p.openDrain {
		if level {
			p.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
			return nil
		}
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.pin.Low()
		return nil
	}
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.pin.Set(level)
	return nil
}
