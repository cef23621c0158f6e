package app

import (
	"errors"
	"fmt"
	"time"

	"keyvisor/bus"
	"keyvisor/keypad"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config tunes the firmware. The device runs DefaultConfig; the host command
// overrides it from flags.
type Config struct {
	ScanHz      int
	SettleDelay time.Duration
	Threshold   uint8

	BusCapacity    int
	BusSubscribers int
	BusPolicy      bus.Policy

	// PushRetries is the number of extra attempts for a failed panel push.
	// Zero makes any push failure fatal.
	PushRetries  int
	RetryBackoff time.Duration

	Brightness uint8
}

func DefaultConfig() Config {
	return Config{
		ScanHz:         keypad.DefaultScanHz,
		SettleDelay:    keypad.DefaultSettleDelay,
		Threshold:      keypad.DefaultThreshold,
		BusCapacity:    32,
		BusSubscribers: 1,
		BusPolicy:      bus.EvictOldest,
		PushRetries:    0,
		RetryBackoff:   time.Millisecond,
		Brightness:     10,
	}
}

// Validate reports every problem at once; each wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.ScanHz <= 0 || c.ScanHz > 100_000 {
		bad("scan rate %d Hz", c.ScanHz)
	}
	if c.SettleDelay < 0 {
		bad("negative settle delay %s", c.SettleDelay)
	}
	if c.ScanHz > 0 && c.SettleDelay*time.Duration(keypad.NCols) >= time.Second/time.Duration(c.ScanHz) {
		bad("settle delay %s does not fit a %d Hz scan", c.SettleDelay, c.ScanHz)
	}
	if c.BusCapacity <= 0 {
		bad("bus capacity %d", c.BusCapacity)
	}
	if c.BusSubscribers <= 0 {
		bad("bus subscribers %d", c.BusSubscribers)
	}
	if c.BusPolicy != bus.EvictOldest && c.BusPolicy != bus.DropNewest {
		bad("bus policy %s", c.BusPolicy)
	}
	if c.PushRetries < 0 {
		bad("push retries %d", c.PushRetries)
	}
	if c.RetryBackoff < 0 {
		bad("negative retry backoff %s", c.RetryBackoff)
	}
	if c.Brightness > 100 {
		bad("brightness %d%%", c.Brightness)
	}
	return errors.Join(errs...)
}
