package patterns

import (
	"testing"
	"time"

	"port51/hw"
	"port51/hw/timing"
)

func newDemo(t *testing.T) (*Demo, *timing.VirtualClock) {
	t.Helper()
	clk := timing.NewVirtualClock(epoch)
	m := hw.NewMCU(timing.NewLoop(clk, timing.Default8051))
	m.Init(hw.DefaultDirections)
	return NewDemo(hw.NewBoard(m)), clk
}

func TestDemoRunCycles(t *testing.T) {
	d, clk := newDemo(t)

	var writes int
	d.Board.LEDs().OnWrite(func(hw.PortID, uint8, uint8) { writes++ })

	if n := d.Run(2, nil); n != 2 {
		t.Fatalf("Run(2) ran %d cycles", n)
	}

	// showcase 11 + knight rider 21 + button 1 + counter 16
	if writes != 2*49 {
		t.Errorf("%d LED writes, want %d", writes, 2*49)
	}

	// showcase 3.5s, pause 1s, knight rider 2s, button 0.2s, counter 8s
	const cycle = 14700 * time.Millisecond
	if el := clk.Now().Sub(epoch); el < 2*cycle || el > 2*cycle+100*time.Millisecond {
		t.Errorf("2 cycles took %v, want about %v", el, 2*cycle)
	}
}

func TestDemoButtonPressed(t *testing.T) {
	d, _ := newDemo(t)
	d.Board.PressButton(3)

	var last []uint8
	d.Board.LEDs().OnWrite(func(_ hw.PortID, _, val uint8) { last = append(last, val) })
	d.Run(1, nil)

	// button control result is right before the binary counter
	if got := last[len(last)-17]; got != 0x0F {
		t.Errorf("button 3 pattern = %02x, want 0f", got)
	}
}

func TestDemoStop(t *testing.T) {
	d, _ := newDemo(t)
	d.Extended = true

	calls := 0
	n := d.Run(0, func() bool {
		calls++
		return calls > 1
	})
	if n != 1 {
		t.Errorf("Run ran %d cycles, want 1", n)
	}
}
