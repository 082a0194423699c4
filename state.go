package main

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"port51/emu"
	"port51/hw"
	"port51/hw/snapshot"
)

// stateMain prints the port state of a freshly initialized board, after
// applying the snapshot, writes and button presses given in args.
func stateMain(w io.Writer, args State, cfg emu.Config) error {
	board := cfg.NewBoard(cfg.NewClock())

	if args.Load != "" {
		buf, err := os.ReadFile(args.Load)
		if err != nil {
			return err
		}
		var s snapshot.MCU
		if err := s.UnmarshalJSON(buf); err != nil {
			return errors.Wrapf(err, "load %s", args.Load)
		}
		if err := board.SetState(&s); err != nil {
			return err
		}
	}

	for _, wr := range args.Write {
		name, val, ok := strings.Cut(wr, "=")
		if !ok {
			return errors.Errorf("invalid write %q, want Pn=VALUE", wr)
		}
		p, err := board.PortByName(name)
		if err != nil {
			return err
		}
		v, err := parseByte(val)
		if err != nil {
			return err
		}
		hw.WritePort(p, v)
	}

	for _, n := range args.Press {
		if err := board.PressButton(n); err != nil {
			return err
		}
	}

	var e jx.Encoder
	e.SetIdent(2)
	board.State().Encode(&e)
	_, err := w.Write(append(e.Bytes(), '\n'))
	return err
}

// configMain writes cfg as TOML to w, or to args.Save.
func configMain(w io.Writer, args ConfigCmd, cfg emu.Config) error {
	if args.Save != "" {
		return emu.SaveConfig(args.Save, cfg)
	}
	return toml.NewEncoder(w).Encode(cfg)
}
