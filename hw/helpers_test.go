package hw

import (
	"testing"
	"time"

	"port51/hw/timing"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// scriptPort is a PortIO returning a scripted sequence of pin reads. Once
// the script is exhausted, the last value is repeated.
type scriptPort struct {
	reads  []uint8
	nreads int
	latch  uint8
	writes []uint8
}

func (p *scriptPort) Read() uint8 {
	i := min(p.nreads, len(p.reads)-1)
	p.nreads++
	return p.reads[i]
}

func (p *scriptPort) ReadLatch() uint8 { return p.latch }

func (p *scriptPort) Write(val uint8) {
	p.latch = val
	p.writes = append(p.writes, val)
}

func newTestMCU(tb testing.TB) (*MCU, *timing.VirtualClock) {
	tb.Helper()
	clk := timing.NewVirtualClock(epoch)
	return NewMCU(timing.NewLoop(clk, timing.Default8051)), clk
}
