package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"port51/emu/rpc"
)

// remoteMain runs one operation on the board of a running demo.
func remoteMain(w io.Writer, args Remote) error {
	want := map[string]int{"state": 0, "read": 1, "write": 2, "press": 1, "release": 1}[args.Op]
	if len(args.Args) != want {
		return errors.Errorf("%s takes %d arguments, got %d", args.Op, want, len(args.Args))
	}

	c, err := rpc.NewClient(args.Port)
	if err != nil {
		return err
	}
	defer c.Close()

	switch args.Op {
	case "state":
		s, err := c.State()
		if err != nil {
			return err
		}
		var e jx.Encoder
		e.SetIdent(2)
		s.Encode(&e)
		_, err = w.Write(append(e.Bytes(), '\n'))
		return err
	case "read":
		v, err := c.ReadPort(args.Args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatByte(v))
		return nil
	case "write":
		v, err := parseByte(args.Args[1])
		if err != nil {
			return err
		}
		return c.WritePort(args.Args[0], v)
	}

	n, err := strconv.ParseUint(args.Args[0], 10, 8)
	if err != nil {
		return errors.Wrap(err, "button")
	}
	if args.Op == "press" {
		return c.PressButton(uint(n))
	}
	return c.ReleaseButton(uint(n))
}
