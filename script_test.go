package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"port51/hw"
	"port51/hw/timing"
)

func TestParseScript(t *testing.T) {
	got, err := parseScript([]string{"2@1.5s+300ms", "0@500ms"})
	if err != nil {
		t.Fatal(err)
	}
	want := script{
		{Button: 0, At: 500 * time.Millisecond, Hold: defaultHold},
		{Button: 2, At: 1500 * time.Millisecond, Hold: 300 * time.Millisecond},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parseScript mismatch (-want +got):\n%s", diff)
	}
	if end := got.end(); end != 1800*time.Millisecond {
		t.Errorf("end() = %v", end)
	}
}

func TestParseScriptErrors(t *testing.T) {
	for _, arg := range []string{
		"1",
		"x@1s",
		"4@1s",
		"1@soon",
		"1@1s+",
		"1@-1s",
		"1@1s+0s",
	} {
		if _, err := parseScript([]string{arg}); err == nil {
			t.Errorf("parseScript(%q) should fail", arg)
		}
	}
}

func TestScriptHeld(t *testing.T) {
	s, err := parseScript([]string{"1@10ms+20ms", "3@20ms+20ms"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		elapsed time.Duration
		held    uint8
	}{
		{0, 0b0000},
		{10 * time.Millisecond, 0b0010},
		{25 * time.Millisecond, 0b1010},
		{30 * time.Millisecond, 0b1000},
		{40 * time.Millisecond, 0b0000},
	}
	for _, tt := range tests {
		held, used := s.held(tt.elapsed)
		if held != tt.held || used != 0b1010 {
			t.Errorf("held(%v) = %04b, %04b, want %04b, 1010", tt.elapsed, held, used, tt.held)
		}
	}
}

func newTestBoard() (*hw.Board, *timing.VirtualClock) {
	clk := timing.NewVirtualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m := hw.NewMCU(timing.NewLoop(clk, timing.Default8051))
	m.Init(hw.DefaultDirections)
	return hw.NewBoard(m), clk
}

func TestScriptApply(t *testing.T) {
	b, _ := newTestBoard()
	s, err := parseScript([]string{"2@10ms"})
	if err != nil {
		t.Fatal(err)
	}

	// Button 0 isn't scripted, it stays pressed.
	if err := b.PressButton(0); err != nil {
		t.Fatal(err)
	}

	for _, step := range []struct {
		elapsed time.Duration
		want    uint8
	}{
		{0, 0b0001},
		{10 * time.Millisecond, 0b0101},
		{110 * time.Millisecond, 0b0001},
	} {
		if err := s.apply(b, step.elapsed); err != nil {
			t.Fatal(err)
		}
		if got := b.ReadAllButtons(); got != step.want {
			t.Errorf("at %v: ReadAllButtons() = %04b, want %04b", step.elapsed, got, step.want)
		}
	}
}

func TestScriptOnVirtualClock(t *testing.T) {
	b, clk := newTestBoard()
	s, err := parseScript([]string{"1@50ms+100ms"})
	if err != nil {
		t.Fatal(err)
	}
	start := clk.Now()
	clk.OnSleep(func(now time.Time) {
		if err := s.apply(b, now.Sub(start)); err != nil {
			t.Error(err)
		}
	})

	if err := b.WaitForButtonPress(1, time.Second); err != nil {
		t.Fatalf("WaitForButtonPress: %v", err)
	}
	if elapsed := clk.Now().Sub(start); elapsed < 50*time.Millisecond || elapsed >= 150*time.Millisecond {
		t.Errorf("button seen pressed at %v", elapsed)
	}
}

func TestScriptPlayCanceled(t *testing.T) {
	b, _ := newTestBoard()
	s, err := parseScript([]string{"0@1h"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.play(ctx, b, timing.SystemClock{}, time.Now()); err != nil {
		t.Fatal(err)
	}
}

func TestScriptPlay(t *testing.T) {
	b, _ := newTestBoard()
	s, err := parseScript([]string{"3@0s+10ms"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.play(context.Background(), b, timing.SystemClock{}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if got := b.ReadAllButtons(); got != 0 {
		t.Errorf("ReadAllButtons() = %04b after the script, want 0000", got)
	}
}
