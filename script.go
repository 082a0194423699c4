package main

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"port51/emu/log"
	"port51/hw"
	"port51/hw/timing"
)

const defaultHold = 100 * time.Millisecond

// A press holds a button down during [At, At+Hold), measured from the start
// of the demo.
type press struct {
	Button uint
	At     time.Duration
	Hold   time.Duration
}

func (p press) end() time.Duration { return p.At + p.Hold }

// script is a list of button presses played while the demo runs.
type script []press

// parseScript parses presses written B@T[+D], for example "2@1.5s+300ms".
func parseScript(args []string) (script, error) {
	var s script
	for _, arg := range args {
		p, err := parsePress(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "press %q", arg)
		}
		s = append(s, p)
	}
	slices.SortFunc(s, func(a, b press) int { return int(a.At - b.At) })
	return s, nil
}

func parsePress(arg string) (press, error) {
	btn, when, ok := strings.Cut(arg, "@")
	if !ok {
		return press{}, errors.New("missing '@'")
	}
	n, err := strconv.ParseUint(btn, 10, 8)
	if err != nil {
		return press{}, errors.Wrap(err, "button")
	}
	if n >= hw.NumButtons {
		return press{}, errors.Errorf("no button %d", n)
	}

	p := press{Button: uint(n), Hold: defaultHold}
	at, hold, hasHold := strings.Cut(when, "+")
	if p.At, err = time.ParseDuration(at); err != nil {
		return press{}, err
	}
	if hasHold {
		if p.Hold, err = time.ParseDuration(hold); err != nil {
			return press{}, err
		}
	}
	if p.At < 0 || p.Hold <= 0 {
		return press{}, errors.New("negative time")
	}
	return p, nil
}

// held returns the mask of buttons held down at elapsed, and the mask of
// all the buttons the script uses.
func (s script) held(elapsed time.Duration) (held, used uint8) {
	for _, p := range s {
		used |= 1 << p.Button
		if elapsed >= p.At && elapsed < p.end() {
			held |= 1 << p.Button
		}
	}
	return held, used
}

// end returns the time at which the last button is released.
func (s script) end() time.Duration {
	var end time.Duration
	for _, p := range s {
		end = max(end, p.end())
	}
	return end
}

// apply sets the buttons used by the script to their state at elapsed.
// Buttons it doesn't use are left alone.
func (s script) apply(b *hw.Board, elapsed time.Duration) error {
	held, used := s.held(elapsed)
	for n := range uint(hw.NumButtons) {
		if used&(1<<n) == 0 {
			continue
		}
		var err error
		if held&(1<<n) != 0 {
			err = b.PressButton(n)
		} else {
			err = b.ReleaseButton(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// play applies the script on wall clock time until it's over or ctx is
// done.
func (s script) play(ctx context.Context, b *hw.Board, clk timing.Clock, start time.Time) error {
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()

	end := s.end()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}

		elapsed := clk.Now().Sub(start)
		if err := s.apply(b, elapsed); err != nil {
			return err
		}
		if elapsed >= end {
			log.ModInput.DebugZ("script over").Duration("elapsed", elapsed).End()
			return nil
		}
	}
}
