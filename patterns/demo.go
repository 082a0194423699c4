package patterns

import (
	"time"

	"port51/emu/log"
	"port51/hw"
)

// Demo runs the board demo: the showcase, a knight rider scan, one button
// poll and a 4-bit binary counter, in a loop.
type Demo struct {
	Board  *hw.Board
	Player *Player

	// Extended adds the remaining animations to each cycle.
	Extended bool
}

// NewDemo returns a demo playing on the LEDs of b.
func NewDemo(b *hw.Board) *Demo {
	return &Demo{
		Board:  b,
		Player: &Player{LEDs: b.LEDs(), Delay: b.Delay},
	}
}

// RunCycle runs one iteration of the demo loop.
func (d *Demo) RunCycle() {
	p := d.Player
	p.Showcase(d.Board.Buttons(), d.Board.Port(hw.DisplayPort))
	p.Delay.Delay(time.Second)
	p.KnightRider(20)
	p.ButtonControl(d.Board.Buttons())
	p.BinaryCounter(16, 500*time.Millisecond)

	if d.Extended {
		p.Sweep()
		p.RunningLights()
		p.Alternating(10)
		p.Breathing()
		p.Random(20)
	}
}

// Run runs n demo cycles, or forever if n is 0, until stop returns true.
// stop may be nil.
func (d *Demo) Run(n int, stop func() bool) int {
	done := 0
	for n == 0 || done < n {
		if stop != nil && stop() {
			break
		}
		d.RunCycle()
		done++
		log.ModPattern.DebugZ("demo cycle").Int("n", done).End()
	}
	return done
}
