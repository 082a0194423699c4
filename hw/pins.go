package hw

import (
	"time"

	"github.com/go-faster/errors"

	"port51/emu/log"
	"port51/hw/hwio"
	"port51/hw/timing"
)

// ReadPin returns the live level (0 or 1) of pin.
func ReadPin(p PortIO, pin uint) (uint8, error) {
	if err := hwio.CheckBit(pin); err != nil {
		return 0, err
	}
	return hwio.GetBiti8(p.Read(), pin), nil
}

// WritePin sets the latch bit of pin to 1 if val is non-zero, to 0
// otherwise. Other latch bits are left untouched.
func WritePin(p PortIO, pin uint, val uint8) error {
	if err := hwio.CheckBit(pin); err != nil {
		return err
	}
	modify(p, func(latch uint8) uint8 {
		return hwio.WithBitValue8(latch, pin, val != 0)
	})
	return nil
}

// TogglePin flips the latch bit of pin.
func TogglePin(p PortIO, pin uint) error {
	if err := hwio.CheckBit(pin); err != nil {
		return err
	}
	modify(p, func(latch uint8) uint8 {
		return hwio.Flipped8(latch, pin)
	})
	return nil
}

// SetMask sets the latch bits selected by mask.
func SetMask(p PortIO, mask uint8) {
	modify(p, func(latch uint8) uint8 { return hwio.WithBits8(latch, mask) })
}

// ClearMask clears the latch bits selected by mask.
func ClearMask(p PortIO, mask uint8) {
	modify(p, func(latch uint8) uint8 { return hwio.WithoutBits8(latch, mask) })
}

// ReadPort returns the live levels of all pins.
func ReadPort(p PortIO) uint8 {
	return p.Read()
}

// WritePort writes val to the port latch.
func WritePort(p PortIO, val uint8) {
	p.Write(val)
}

func modify(p PortIO, f func(uint8) uint8) {
	if m, ok := p.(Modifier); ok {
		m.Modify(f)
		return
	}
	p.Write(f(p.ReadLatch()))
}

// BlinkPattern sets the bits of pattern, waits for duration, clears them
// and waits again.
func BlinkPattern(p PortIO, d timing.Delayer, pattern uint8, duration time.Duration) {
	SetMask(p, pattern)
	d.Delay(duration)
	ClearMask(p, pattern)
	d.Delay(duration)
}

// Default debounce settings.
const (
	DefaultSettle     = 20 * time.Millisecond
	DefaultMaxRetries = 50
)

// A Debouncer filters contact bounce on an input pin by sampling it twice,
// Settle apart, until both samples agree.
type Debouncer struct {
	Delay  timing.Delayer
	Settle time.Duration

	// MaxRetries bounds the number of disagreeing sample pairs before
	// giving up with ErrBouncing. Zero means retry forever.
	MaxRetries int
}

type debounceState uint8

const (
	sample1 debounceState = iota
	wait
	sample2
	settled
)

// Read returns the settled level of pin.
func (db Debouncer) Read(p PortIO, pin uint) (uint8, error) {
	if err := hwio.CheckBit(pin); err != nil {
		return 0, err
	}

	var first, second uint8
	retries := 0
	state := sample1
	for state != settled {
		switch state {
		case sample1:
			first = hwio.GetBiti8(p.Read(), pin)
			state = wait
		case wait:
			db.Delay.Delay(db.Settle)
			state = sample2
		case sample2:
			second = hwio.GetBiti8(p.Read(), pin)
			if first == second {
				state = settled
				break
			}
			retries++
			log.ModInput.DebugZ("bounce").
				Uint("pin", pin).
				Int("retries", retries).
				End()
			if db.MaxRetries > 0 && retries >= db.MaxRetries {
				return 0, errors.Wrapf(ErrBouncing, "pin %d after %d retries", pin, retries)
			}
			state = sample1
		}
	}
	return second, nil
}
