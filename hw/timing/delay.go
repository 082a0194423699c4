package timing

import (
	"math/bits"
	"sync/atomic"
	"time"

	"port51/emu/log"
)

// Oscillator describes the crystal driving the microcontroller.
type Oscillator struct {
	Hz             uint64 // crystal frequency
	ClocksPerCycle int    // oscillator periods per machine cycle
}

// Default8051 is the classic 11.0592MHz crystal, 12 clocks per machine
// cycle (921600 machine cycles per second).
var Default8051 = Oscillator{Hz: 11_059_200, ClocksPerCycle: 12}

// CyclesPerSecond returns the machine cycle rate.
func (o Oscillator) CyclesPerSecond() float64 {
	return float64(o.Hz) / float64(o.ClocksPerCycle)
}

// Cycles returns the number of machine cycles covering d, rounded up.
func (o Oscillator) Cycles(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	// d*Hz overflows 64 bits past a few minutes.
	return int64(mulDivCeil(uint64(d), o.Hz, uint64(time.Second)*uint64(o.ClocksPerCycle)))
}

// Duration returns the time taken by n machine cycles, rounded up to the
// nanosecond. Cycles(Duration(n)) == n.
func (o Oscillator) Duration(n int64) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(mulDivCeil(uint64(n)*uint64(o.ClocksPerCycle), uint64(time.Second), o.Hz))
}

// mulDivCeil returns ceil(a*b/c) without overflowing the product.
func mulDivCeil(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, r := bits.Div64(hi, lo, c)
	if r != 0 {
		q++
	}
	return q
}

// A Delayer blocks the calling goroutine for at least the given duration.
type Delayer interface {
	Delay(d time.Duration)
}

// A CycleCounter reports the machine cycles spent in delays so far.
type CycleCounter interface {
	Cycles() int64
}

type counter struct {
	cycles atomic.Int64
}

func (c *counter) Cycles() int64 { return c.cycles.Load() }

// AddLogContext implements log.LogContext.
func (c *counter) AddLogContext(e *log.EntryZ) { e.Int64("cycles", c.Cycles()) }

// DJNZ takes 2 machine cycles, the body of the classic delay loop.
const DefaultLoopCycles = 2

// Loop is a busy-wait delay calibrated in loop iterations: the requested
// duration is rounded up to a whole number of iterations of CyclesPerIter
// machine cycles each.
type Loop struct {
	counter

	Clock         Clock
	Osc           Oscillator
	CyclesPerIter int
}

// NewLoop returns a Loop delay with the default loop body.
func NewLoop(clk Clock, osc Oscillator) *Loop {
	return &Loop{Clock: clk, Osc: osc, CyclesPerIter: DefaultLoopCycles}
}

// Iterations returns the number of loop iterations covering d.
func (l *Loop) Iterations(d time.Duration) int64 {
	per := int64(max(l.CyclesPerIter, 1))
	return (l.Osc.Cycles(d) + per - 1) / per
}

func (l *Loop) Delay(d time.Duration) {
	l.run(l.Iterations(d), d)
}

// Iterate runs the delay loop count times.
func (l *Loop) Iterate(count uint) {
	l.run(int64(count), 0)
}

func (l *Loop) run(iters int64, atLeast time.Duration) {
	cycles := iters * int64(max(l.CyclesPerIter, 1))
	blocked := max(l.Osc.Duration(cycles), atLeast)

	log.ModTiming.DebugZ("loop delay").
		Duration("want", atLeast).
		Int64("iters", iters).
		Duration("blocked", blocked).
		End()

	l.cycles.Add(cycles)
	l.Clock.Sleep(blocked)
}

// Timer0 reload value giving ~1ms overflow period at 11.0592MHz.
// (65536 - 0xFC66 = 922 machine cycles)
const DefaultTimerReload = 0xFC66

// Timer is a timer-backed delay: the duration is rounded up to whole
// overflow periods of a 16-bit timer reloaded with Reload.
type Timer struct {
	counter

	Clock  Clock
	Osc    Oscillator
	Reload uint16
}

// NewTimer returns a Timer delay with a ~1ms tick.
func NewTimer(clk Clock, osc Oscillator) *Timer {
	return &Timer{Clock: clk, Osc: osc, Reload: DefaultTimerReload}
}

// TickCycles returns the number of machine cycles between overflows.
func (t *Timer) TickCycles() int64 {
	return 0x10000 - int64(t.Reload)
}

// Ticks returns the number of timer overflows covering d.
func (t *Timer) Ticks(d time.Duration) int64 {
	per := t.TickCycles()
	return (t.Osc.Cycles(d) + per - 1) / per
}

func (t *Timer) Delay(d time.Duration) {
	ticks := t.Ticks(d)
	cycles := ticks * t.TickCycles()
	blocked := max(t.Osc.Duration(cycles), d)

	log.ModTiming.DebugZ("timer delay").
		Duration("want", d).
		Int64("ticks", ticks).
		Duration("blocked", blocked).
		End()

	t.cycles.Add(cycles)
	t.Clock.Sleep(blocked)
}

func DelayMs(d Delayer, ms uint) {
	d.Delay(time.Duration(ms) * time.Millisecond)
}

func DelayUs(d Delayer, us uint) {
	d.Delay(time.Duration(us) * time.Microsecond)
}

func DelaySeconds(d Delayer, s uint8) {
	d.Delay(time.Duration(s) * time.Second)
}
