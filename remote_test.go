package main

import (
	"bytes"
	"testing"

	"port51/emu/rpc"
	"port51/hw/snapshot"
)

func TestRemoteMain(t *testing.T) {
	cfg := fastConfig()
	board := cfg.NewBoard(cfg.NewClock())
	srv, err := rpc.NewServer(0, board)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	port := srv.Port()

	var out bytes.Buffer
	run := func(op string, args ...string) string {
		t.Helper()
		out.Reset()
		if err := remoteMain(&out, Remote{Port: port, Op: op, Args: args}); err != nil {
			t.Fatalf("remote %s %q: %v", op, args, err)
		}
		return out.String()
	}

	run("write", "P1", "0x81")
	if got := run("read", "P1"); got != "0x81 10000001\n" {
		t.Errorf("read P1 = %q", got)
	}

	run("press", "1")
	if got := board.ReadAllButtons(); got != 0b0010 {
		t.Errorf("buttons = %04b after press", got)
	}
	run("release", "1")
	if got := board.ReadAllButtons(); got != 0 {
		t.Errorf("buttons = %04b after release", got)
	}

	var s snapshot.MCU
	if err := s.UnmarshalJSON([]byte(run("state"))); err != nil {
		t.Fatal(err)
	}
	if s.Ports[1].Latch != 0x81 {
		t.Errorf("P1 latch = %02x in state", s.Ports[1].Latch)
	}

	for _, args := range []Remote{
		{Port: port, Op: "read"},
		{Port: port, Op: "write", Args: []string{"P1", "0x100"}},
		{Port: port, Op: "press", Args: []string{"x"}},
		{Port: port, Op: "press", Args: []string{"7"}},
	} {
		if err := remoteMain(&out, args); err == nil {
			t.Errorf("remoteMain(%+v) should fail", args)
		}
	}
}
