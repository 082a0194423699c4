package timing

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestOscillatorCycles(t *testing.T) {
	osc := Default8051
	tests := []struct {
		d    time.Duration
		want int64
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Second, 921600},
		{time.Millisecond, 922}, // 921.6 rounded up
		{10 * time.Millisecond, 9216},
		{time.Microsecond, 1},
		{255 * time.Second, 255 * 921600},
	}
	for _, tt := range tests {
		if got := osc.Cycles(tt.d); got != tt.want {
			t.Errorf("Cycles(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}

	if got := osc.Duration(921600); got != time.Second {
		t.Errorf("Duration(921600) = %v, want 1s", got)
	}
}

func TestOscillatorRoundTrip(t *testing.T) {
	for _, osc := range []Oscillator{
		Default8051,
		{Hz: 12_000_000, ClocksPerCycle: 12},
		{Hz: 11_059_201, ClocksPerCycle: 12},
		{Hz: 24_000_000, ClocksPerCycle: 6},
	} {
		for _, n := range []int64{1, 2, 3, 461, 922, 18432, 921599, 1 << 40} {
			d := osc.Duration(n)
			if got := osc.Cycles(d); got != n {
				t.Errorf("%+v: Cycles(Duration(%d) = %v) = %d", osc, n, d, got)
			}
		}
	}
}

func TestLoopDelayAtLeast(t *testing.T) {
	for _, d := range []time.Duration{
		time.Microsecond,
		3 * time.Microsecond,
		time.Millisecond,
		20 * time.Millisecond,
		time.Second,
	} {
		clk := NewVirtualClock(epoch)
		l := NewLoop(clk, Default8051)
		l.Delay(d)

		slept, n := clk.Slept()
		if n != 1 {
			t.Fatalf("Delay(%v): %d sleeps, want 1", d, n)
		}
		if slept < d {
			t.Errorf("Delay(%v) blocked for %v", d, slept)
		}
		// At most one loop iteration of slack.
		if slack := slept - d; slack > Default8051.Duration(DefaultLoopCycles)+time.Nanosecond {
			t.Errorf("Delay(%v) blocked for %v, too much slack", d, slept)
		}
		if got := clk.Now().Sub(epoch); got != slept {
			t.Errorf("clock advanced by %v, want %v", got, slept)
		}
	}
}

func TestLoopIterate(t *testing.T) {
	clk := NewVirtualClock(epoch)
	l := NewLoop(clk, Default8051)

	if got := l.Iterations(time.Millisecond); got != 461 {
		t.Errorf("Iterations(1ms) = %d, want 461", got)
	}

	l.Iterate(1000)
	if got := l.Cycles(); got != 2000 {
		t.Errorf("Cycles() = %d, want 2000", got)
	}
	slept, _ := clk.Slept()
	if want := Default8051.Duration(2000); slept != want {
		t.Errorf("Iterate(1000) slept %v, want %v", slept, want)
	}
}

func TestTimerDelay(t *testing.T) {
	clk := NewVirtualClock(epoch)
	tm := NewTimer(clk, Default8051)

	if got := tm.TickCycles(); got != 922 {
		t.Fatalf("TickCycles() = %d, want 922", got)
	}

	tests := []struct {
		d     time.Duration
		ticks int64
	}{
		{time.Microsecond, 1},
		{time.Millisecond, 1},
		{10 * time.Millisecond, 10},
		{time.Second, 1000},
	}
	for _, tt := range tests {
		if got := tm.Ticks(tt.d); got != tt.ticks {
			t.Errorf("Ticks(%v) = %d, want %d", tt.d, got, tt.ticks)
		}
	}

	before := tm.Cycles()
	DelayMs(tm, 10)
	if got := tm.Cycles() - before; got != 9220 {
		t.Errorf("DelayMs(10) counted %d cycles, want 9220", got)
	}
	if slept, _ := clk.Slept(); slept < 10*time.Millisecond {
		t.Errorf("DelayMs(10) blocked for %v", slept)
	}
}

func TestDelayHelpers(t *testing.T) {
	clk := NewVirtualClock(epoch)
	d := delayFunc(clk.Sleep)

	DelayMs(d, 500)
	DelayUs(d, 250)
	DelaySeconds(d, 2)

	slept, n := clk.Slept()
	if want := 2*time.Second + 500*time.Millisecond + 250*time.Microsecond; slept != want {
		t.Errorf("slept %v, want %v", slept, want)
	}
	if n != 3 {
		t.Errorf("%d sleeps, want 3", n)
	}
}

type delayFunc func(time.Duration)

func (f delayFunc) Delay(d time.Duration) { f(d) }

func TestVirtualClockOnSleep(t *testing.T) {
	clk := NewVirtualClock(epoch)

	var seen []time.Duration
	clk.OnSleep(func(now time.Time) { seen = append(seen, now.Sub(epoch)) })

	clk.Sleep(time.Millisecond)
	clk.Advance(time.Second)
	clk.Sleep(time.Millisecond)

	if len(seen) != 2 || seen[0] != time.Millisecond || seen[1] != time.Second+2*time.Millisecond {
		t.Errorf("OnSleep hook saw %v", seen)
	}
	if slept, n := clk.Slept(); slept != 2*time.Millisecond || n != 2 {
		t.Errorf("Slept() = %v, %d", slept, n)
	}
}
