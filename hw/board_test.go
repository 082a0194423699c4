package hw

import (
	"errors"
	"testing"
	"time"

	"port51/hw/hwio"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	m, _ := newTestMCU(t)
	m.Init(DefaultDirections)
	return NewBoard(m)
}

func TestBoardLEDs(t *testing.T) {
	b := newTestBoard(t)

	if err := b.TurnOnLED(0); err != nil {
		t.Fatal(err)
	}
	if err := b.TurnOnLED(7); err != nil {
		t.Fatal(err)
	}
	if err := b.ToggleLED(3); err != nil {
		t.Fatal(err)
	}
	if err := b.TurnOffLED(0); err != nil {
		t.Fatal(err)
	}
	if got := b.LEDs().Read(); got != 0x88 {
		t.Errorf("LEDs = %08b, want 10001000", got)
	}

	b.SetLEDPattern(0xAA)
	if got := b.LEDs().Read(); got != 0xAA {
		t.Errorf("LEDs = %08b, want 10101010", got)
	}
	b.ClearAllLEDs()
	if got := b.LEDs().Read(); got != 0 {
		t.Errorf("LEDs = %08b, want 0", got)
	}

	if err := b.TurnOnLED(8); !errors.Is(err, hwio.ErrInvalidBitIndex) {
		t.Errorf("TurnOnLED(8) = %v, want ErrInvalidBitIndex", err)
	}
}

func TestBoardButtons(t *testing.T) {
	b := newTestBoard(t)

	if got := b.ReadAllButtons(); got != 0 {
		t.Errorf("ReadAllButtons = %04b, want none", got)
	}
	if err := b.PressButton(1); err != nil {
		t.Fatal(err)
	}
	if err := b.PressButton(3); err != nil {
		t.Fatal(err)
	}
	if got := b.ReadAllButtons(); got != 0x0A {
		t.Errorf("ReadAllButtons = %04b, want 1010", got)
	}

	pressed, err := b.ReadButton(1)
	if err != nil || !pressed {
		t.Errorf("ReadButton(1) = %v, %v", pressed, err)
	}
	pressed, err = b.ReadButton(0)
	if err != nil || pressed {
		t.Errorf("ReadButton(0) = %v, %v", pressed, err)
	}

	if err := b.ReleaseButton(1); err != nil {
		t.Fatal(err)
	}
	if got := b.ReadAllButtons(); got != 0x08 {
		t.Errorf("ReadAllButtons = %04b, want 1000", got)
	}

	// Only 4 buttons, on the lower nibble.
	if _, err := b.ReadButton(4); !errors.Is(err, hwio.ErrInvalidBitIndex) {
		t.Errorf("ReadButton(4) = %v, want ErrInvalidBitIndex", err)
	}
	if err := b.PressButton(5); err == nil {
		t.Errorf("PressButton(5) should fail")
	}
}

func TestWaitForButtonPress(t *testing.T) {
	m, clk := newTestMCU(t)
	m.Init(DefaultDirections)
	b := NewBoard(m)

	// Press button 2 after 100ms.
	clk.OnSleep(func(now time.Time) {
		if now.Sub(epoch) >= 100*time.Millisecond {
			b.PressButton(2)
		}
	})

	if err := b.WaitForButtonPress(2, time.Second); err != nil {
		t.Fatalf("WaitForButtonPress: %v", err)
	}
	if elapsed := clk.Now().Sub(epoch); elapsed < 100*time.Millisecond || elapsed > 200*time.Millisecond {
		t.Errorf("returned after %v", elapsed)
	}
}

func TestWaitForButtonPressTimeout(t *testing.T) {
	b := newTestBoard(t)

	err := b.WaitForButtonPress(0, 500*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitForButtonPress = %v, want ErrTimeout", err)
	}
}

func TestWaitForButtonPressBouncing(t *testing.T) {
	m, clk := newTestMCU(t)
	m.Init(DefaultDirections)
	b := NewBoard(m)

	// Button 0 never settles: its level flips on every delay.
	level := uint8(1)
	clk.OnSleep(func(time.Time) {
		level ^= 1
		b.Buttons().Drive(0, level)
	})

	const timeout = 100 * time.Millisecond
	err := b.WaitForButtonPress(0, timeout)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitForButtonPress = %v, want ErrTimeout", err)
	}
	if slept, _ := clk.Slept(); slept < timeout || slept > timeout+b.Debounce.Settle {
		t.Errorf("blocked %v, want between %v and %v", slept, timeout, timeout+b.Debounce.Settle)
	}
}

func TestRetriesWithin(t *testing.T) {
	db := Debouncer{Settle: 20 * time.Millisecond, MaxRetries: 50}
	tests := []struct {
		left time.Duration
		want int
	}{
		{0, 1},
		{-time.Second, 1},
		{10 * time.Millisecond, 1},
		{100 * time.Millisecond, 5},
		{110 * time.Millisecond, 6},
		{time.Hour, 50},
	}
	for _, tt := range tests {
		if got := retriesWithin(db, tt.left); got != tt.want {
			t.Errorf("retriesWithin(%v) = %d, want %d", tt.left, got, tt.want)
		}
	}

	db.MaxRetries = 0
	if got := retriesWithin(db, time.Second); got != 50 {
		t.Errorf("unbounded retriesWithin(1s) = %d, want 50", got)
	}
}

func TestPortSelfTests(t *testing.T) {
	b := newTestBoard(t)
	b.SetLEDPattern(0x5A)

	if err := b.TestPortOutput(P1, time.Millisecond); err != nil {
		t.Errorf("TestPortOutput(P1): %v", err)
	}
	if got := b.LEDs().ReadLatch(); got != 0x5A {
		t.Errorf("latch not restored: %02x", got)
	}

	// A pin shorted to ground fails the output test.
	b.Port(P2).Drive(4, 0)
	if err := b.TestPortOutput(P2, time.Millisecond); err == nil {
		t.Errorf("TestPortOutput(P2) should report the shorted pin")
	}

	b.PressButton(0)
	if got := b.TestPortInput(P0); got != 0xFE {
		t.Errorf("TestPortInput(P0) = %02x, want fe", got)
	}
	if got := b.Port(P1).ReadLatch(); got != 0x5A {
		t.Errorf("TestPortInput changed another port: %02x", got)
	}
}
