// Package patterns implements the LED animations of the demo board. Each
// animation writes whole bytes to the LED port and paces itself with the
// board delay.
package patterns

import (
	"time"

	"port51/emu/log"
	"port51/hw"
	"port51/hw/hwio"
	"port51/hw/timing"
)

// Player plays animations on an LED port.
type Player struct {
	LEDs  hw.PortIO
	Delay timing.Delayer
}

func (p *Player) show(v uint8, d time.Duration) {
	p.LEDs.Write(v)
	p.Delay.Delay(d)
}

func begin(name string) {
	log.ModPattern.DebugZ("start").String("name", name).End()
}

// KnightRider bounces a single lit LED between both ends for steps steps,
// then turns all LEDs off.
func (p *Player) KnightRider(steps int) {
	begin("knight-rider")

	pattern := uint8(0x01)
	left := true
	for range steps {
		p.show(pattern, 100*time.Millisecond)
		if left {
			pattern <<= 1
			left = pattern != 0x80
		} else {
			pattern >>= 1
			left = pattern == 0x01
		}
	}
	p.LEDs.Write(0x00)
}

// Sweep moves a lit LED from LED0 to LED7 then back, then turns all LEDs
// off.
func (p *Player) Sweep() {
	begin("sweep")

	pattern := uint8(0x01)
	for range 7 {
		p.show(pattern, 100*time.Millisecond)
		pattern <<= 1
	}
	for range 7 {
		p.show(pattern, 100*time.Millisecond)
		pattern >>= 1
	}
	p.LEDs.Write(0x00)
}

// BinaryCounter displays 0 to limit-1 in binary. limit is at most 256.
func (p *Player) BinaryCounter(limit int, step time.Duration) {
	begin("binary-counter")

	for count := range min(limit, 256) {
		p.show(uint8(count), step)
	}
}

// RunningLights lights each LED in turn, forward then backward.
func (p *Player) RunningLights() {
	begin("running-lights")

	for i := range uint(8) {
		hw.WritePin(p.LEDs, i, 1)
		p.Delay.Delay(100 * time.Millisecond)
		hw.WritePin(p.LEDs, i, 0)
	}
	for i := 7; i >= 0; i-- {
		hw.WritePin(p.LEDs, uint(i), 1)
		p.Delay.Delay(100 * time.Millisecond)
		hw.WritePin(p.LEDs, uint(i), 0)
	}
}

// Alternating swaps even and odd LEDs, cycles times.
func (p *Player) Alternating(cycles int) {
	begin("alternating")

	for range cycles {
		p.show(0xAA, 300*time.Millisecond)
		p.show(0x55, 300*time.Millisecond)
	}
	p.LEDs.Write(0x00)
}

// bar returns a byte with the n lowest bits set.
func bar(n int) uint8 {
	var v uint8
	for j := range uint(8) {
		hwio.WriteBit8(&v, j, int(j) < n)
	}
	return v
}

// Breathing grows a bar of lit LEDs from none to all, then shrinks it back.
func (p *Player) Breathing() {
	begin("breathing")

	for i := range 10 {
		p.show(bar(i), 100*time.Millisecond)
	}
	for i := 10; i > 0; i-- {
		p.show(bar(i), 100*time.Millisecond)
	}
	p.LEDs.Write(0x00)
}

// lfsrTaps is a maximal-length feedback polynomial for an 8-bit Galois
// LFSR (x^8 + x^6 + x^5 + x^4 + 1).
const lfsrTaps = 0xB8

// NextRandom returns the successor of v in the LFSR sequence. Its period
// is 255 for any non-zero seed, 0 maps to 0.
func NextRandom(v uint8) uint8 {
	lsb := v & 1
	v >>= 1
	if lsb != 0 {
		v ^= lfsrTaps
	}
	return v
}

// Random shows steps pseudo-random patterns.
func (p *Player) Random(steps int) {
	begin("random")

	pattern := uint8(0x01)
	for range steps {
		p.show(pattern, 150*time.Millisecond)
		pattern = NextRandom(pattern)
	}
	p.LEDs.Write(0x00)
}

// ButtonPattern maps the button nibble, as read on the active-low button
// port, to an LED pattern: a single pressed button n lights LEDs 0 to n.
func ButtonPattern(buttons uint8) uint8 {
	switch buttons & hw.ButtonMask {
	case 0x0E:
		return 0x01
	case 0x0D:
		return 0x03
	case 0x0B:
		return 0x07
	case 0x07:
		return 0x0F
	}
	return 0x00
}

// ButtonControl samples the buttons once and shows the matching pattern.
func (p *Player) ButtonControl(buttons hw.PortIO) {
	begin("button-control")
	p.show(ButtonPattern(buttons.Read()), 200*time.Millisecond)
}

// Showcase walks through the bit primitives on the LED port: single bit
// set/clear/toggle, a button bit copied to LED7, mask set/clear, a rotate
// and a nibble split of the display port.
func (p *Player) Showcase(buttons, display hw.PortIO) {
	begin("showcase")

	const pause = 500 * time.Millisecond

	hw.WritePin(p.LEDs, 3, 1)
	p.Delay.Delay(pause)
	hw.WritePin(p.LEDs, 3, 0)
	p.Delay.Delay(pause)

	for i := range uint(4) {
		hw.TogglePin(p.LEDs, i)
	}
	p.Delay.Delay(pause)

	btn, _ := hw.ReadPin(buttons, 0)
	hw.WritePin(p.LEDs, 7, btn)

	hw.SetMask(p.LEDs, 0xAA)
	p.Delay.Delay(pause)
	hw.ClearMask(p.LEDs, 0xAA)

	p.show(hwio.RotateLeft8(0x0F, 2), pause)

	v := display.Read()
	p.show(hwio.CombineNibbles(hwio.UpperNibble(v), hwio.LowerNibble(v)), 2*pause)
}
