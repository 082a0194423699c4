package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"port51/emu"
	"port51/emu/log"
	"port51/emu/rpc"
	"port51/hw"
	"port51/hw/timing"
	"port51/patterns"
)

// runMain runs the LED demo on a board built from cfg, with the command
// line overrides in args.
func runMain(args Run, cfg emu.Config) error {
	if args.Cycles >= 0 {
		cfg.Demo.Cycles = args.Cycles
	}
	if args.Extended {
		cfg.Demo.Extended = true
	}
	if args.Fast {
		cfg.Clock.Realtime = false
	}
	if args.Mode != "" {
		cfg.Clock.Mode = args.Mode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	script, err := parseScript(args.Press)
	if err != nil {
		return err
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	clk := cfg.NewClock()
	board := cfg.NewBoard(clk)
	log.AddContext(board.MCU)
	defer log.RemoveContext(board.MCU)

	if args.Trace != nil {
		defer args.Trace.Close()
		tr := hw.NewTracer(args.Trace, board.MCU)
		tr.Attach(board.MCU)
		defer func() {
			if err := tr.Err(); err != nil {
				log.ModEmu.WarnZ("trace incomplete").Error("err", err).End()
			}
		}()
	}

	if args.Probe != nil {
		defer args.Probe.Close()
		pr, err := hw.NewProbe(args.Probe, args.ProbePin, board.MCU, cfg.Oscillator(), args.SampleRate)
		if err != nil {
			return err
		}
		pr.Attach(board.LEDs())
		defer func() {
			if err := pr.Flush(); err != nil {
				log.ModEmu.WarnZ("probe incomplete").Error("err", err).End()
			}
			log.ModEmu.InfoZ("probe recorded").Int("samples", pr.Samples()).End()
		}()
	}

	if args.Show {
		showLEDs(os.Stdout, board.LEDs())
	}

	if args.Port != 0 {
		server, err := rpc.NewServer(args.Port, board)
		if err != nil {
			return err
		}
		defer server.Close()
	}

	return runDemo(board, clk, cfg.Demo, script)
}

// runDemo plays the demo while the button script runs, until the demo is
// over or the process is interrupted. A second interrupt kills the process.
func runDemo(board *hw.Board, clk timing.Clock, cfg emu.DemoConfig, s script) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		<-ctx.Done()
		stop()
		return nil
	})

	start := clk.Now()
	if vclk, ok := clk.(*timing.VirtualClock); ok {
		vclk.OnSleep(func(now time.Time) {
			if err := s.apply(board, now.Sub(start)); err != nil {
				log.ModInput.ErrorZ("script").Error("err", err).End()
			}
		})
	} else if len(s) > 0 {
		g.Go(func() error { return s.play(ctx, board, clk, start) })
	}

	demo := patterns.NewDemo(board)
	demo.Extended = cfg.Extended
	g.Go(func() error {
		defer cancel()
		n := demo.Run(cfg.Cycles, func() bool { return ctx.Err() != nil })
		log.ModEmu.InfoZ("demo over").Int("cycles", n).End()
		return board.VerifyConfiguration()
	})

	return g.Wait()
}

// showLEDs prints the LED bar each time the port latch changes.
func showLEDs(w io.Writer, leds *hw.Port) {
	leds.OnWrite(func(_ hw.PortID, old, val uint8) {
		if old != val {
			fmt.Fprintln(w, ledBar(val))
		}
	})
}

// ledBar draws LED7 to LED0, left to right.
func ledBar(v uint8) string {
	var sb strings.Builder
	for n := hw.NumLEDs - 1; n >= 0; n-- {
		if v&(1<<n) != 0 {
			sb.WriteByte('*')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
