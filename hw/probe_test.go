package hw

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"port51/hw/timing"
)

func TestProbeSquareWave(t *testing.T) {
	clk := timing.NewVirtualClock(epoch)
	loop := timing.NewLoop(clk, timing.Default8051)
	m := NewMCU(loop)
	m.Init(DefaultDirections)

	var out bytes.Buffer
	pr, err := NewProbe(&out, 5, loop, timing.Default8051, DefaultSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	pr.Attach(m.Port(P1))

	// 500Hz square wave on P1.5 for 100ms.
	for range 50 {
		WritePin(m.Port(P1), 5, 1)
		m.Delay.Delay(time.Millisecond)
		WritePin(m.Port(P1), 5, 0)
		m.Delay.Delay(time.Millisecond)
	}
	if err := pr.Flush(); err != nil {
		t.Fatal(err)
	}

	const want = DefaultSampleRate / 10
	n := pr.Samples()
	if n < want-10 || n > want+10 {
		t.Fatalf("%d samples for 100ms, want about %d", n, want)
	}
	if out.Len() != 2*n {
		t.Fatalf("wrote %d bytes for %d samples", out.Len(), n)
	}

	samples := make([]int16, n)
	if err := binary.Read(&out, binary.LittleEndian, samples); err != nil {
		t.Fatal(err)
	}
	var lo, hi int16
	for _, s := range samples {
		lo, hi = min(lo, s), max(hi, s)
	}
	if hi < probeAmplitude/8 || lo > -probeAmplitude/8 {
		t.Errorf("signal range [%d, %d] doesn't look like a square wave", lo, hi)
	}
}

func TestProbeSilence(t *testing.T) {
	clk := timing.NewVirtualClock(epoch)
	loop := timing.NewLoop(clk, timing.Default8051)
	m := NewMCU(loop)

	var out bytes.Buffer
	pr, err := NewProbe(&out, 0, loop, timing.Default8051, 8000)
	if err != nil {
		t.Fatal(err)
	}
	pr.Attach(m.Port(P3))

	// Writes that don't touch the probed pin.
	for range 10 {
		m.Port(P3).Write(0xF1)
		m.Delay.Delay(10 * time.Millisecond)
		m.Port(P3).Write(0x0F)
	}
	if err := pr.Flush(); err != nil {
		t.Fatal(err)
	}

	if pr.Samples() == 0 {
		t.Fatalf("no samples produced")
	}
	for i, b := range out.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %02x, want silence", i, b)
		}
	}
}

func TestNewProbeErrors(t *testing.T) {
	loop := timing.NewLoop(timing.NewVirtualClock(epoch), timing.Default8051)
	if _, err := NewProbe(&bytes.Buffer{}, 8, loop, timing.Default8051, DefaultSampleRate); err == nil {
		t.Errorf("NewProbe(pin 8) should fail")
	}
	if _, err := NewProbe(&bytes.Buffer{}, 0, loop, timing.Default8051, 0); err == nil {
		t.Errorf("NewProbe(rate 0) should fail")
	}
}
