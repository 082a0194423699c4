package hw

import (
	"time"

	"github.com/go-faster/errors"

	"port51/emu/log"
	"port51/hw/hwio"
	"port51/hw/timing"
)

// Board wiring.
const (
	LEDPort     = P1 // 8 active-high LEDs
	ButtonPort  = P0 // 4 active-low push buttons on the lower nibble
	DisplayPort = P2 // 7-segment display
	AuxPort     = P3 // special functions

	NumLEDs    = 8
	NumButtons = 4
	ButtonMask = 0x0F
)

// P3 alternate functions.
const (
	RXPin   = 0 // serial receive
	TXPin   = 1 // serial transmit
	INT0Pin = 2 // external interrupt 0
	INT1Pin = 3 // external interrupt 1
	T0Pin   = 4 // timer 0 external input
	T1Pin   = 5 // timer 1 external input
	WRPin   = 6 // external memory write strobe
	RDPin   = 7 // external memory read strobe
)

// Board is the demo board: LEDs on P1, buttons on P0.
type Board struct {
	*MCU
	Debounce Debouncer

	// PollInterval is the pause between two polls in WaitForButtonPress.
	PollInterval time.Duration
}

// NewBoard wraps m with the default debounce settings.
func NewBoard(m *MCU) *Board {
	return &Board{
		MCU: m,
		Debounce: Debouncer{
			Delay:      m.Delay,
			Settle:     DefaultSettle,
			MaxRetries: DefaultMaxRetries,
		},
		PollInterval: 10 * time.Millisecond,
	}
}

func (b *Board) LEDs() *Port    { return b.Port(LEDPort) }
func (b *Board) Buttons() *Port { return b.Port(ButtonPort) }

func (b *Board) TurnOnLED(n uint) error  { return WritePin(b.LEDs(), n, 1) }
func (b *Board) TurnOffLED(n uint) error { return WritePin(b.LEDs(), n, 0) }
func (b *Board) ToggleLED(n uint) error  { return TogglePin(b.LEDs(), n) }
func (b *Board) SetLEDPattern(v uint8)   { b.LEDs().Write(v) }
func (b *Board) ClearAllLEDs()           { b.LEDs().Write(0x00) }

func checkButton(n uint) error {
	if n >= NumButtons {
		return errors.Wrapf(hwio.ErrInvalidBitIndex, "button %d not in [0,%d]", n, NumButtons-1)
	}
	return nil
}

// ReadButton reports whether button n is pressed, after debouncing.
func (b *Board) ReadButton(n uint) (bool, error) {
	if err := checkButton(n); err != nil {
		return false, err
	}
	lvl, err := b.Debounce.Read(b.Buttons(), n)
	if err != nil {
		return false, err
	}
	return lvl == 0, nil
}

// ReadAllButtons returns the raw button nibble, one bit per pressed button.
func (b *Board) ReadAllButtons() uint8 {
	return ^b.Buttons().Read() & ButtonMask
}

// WaitForButtonPress polls button n until it reads pressed, or until
// timeout has elapsed on the board clock. A zero timeout waits forever.
// The debounce of the last poll is cut short so that a bouncing button
// can't hold the caller past the timeout by more than one settle period.
func (b *Board) WaitForButtonPress(n uint, timeout time.Duration) error {
	if err := checkButton(n); err != nil {
		return err
	}

	delay := &meteredDelay{Delayer: b.Delay}
	db := b.Debounce
	db.Delay = delay
	for {
		if timeout > 0 {
			db.MaxRetries = retriesWithin(b.Debounce, timeout-delay.spent)
		}
		lvl, err := db.Read(b.Buttons(), n)
		switch {
		case errors.Is(err, ErrBouncing):
		case err != nil:
			return err
		case lvl == 0:
			log.ModInput.DebugZ("button pressed").Uint("button", n).End()
			return nil
		}

		if timeout > 0 && delay.spent >= timeout {
			return errors.Wrapf(ErrTimeout, "button %d not pressed after %v", n, timeout)
		}
		poll := b.PollInterval
		if timeout > 0 {
			poll = min(poll, timeout-delay.spent)
		}
		delay.Delay(poll)
	}
}

// retriesWithin returns the number of debounce retries of db fitting in
// left, at least 1 and no more than db.MaxRetries.
func retriesWithin(db Debouncer, left time.Duration) int {
	n := 1
	if db.Settle > 0 && left > 0 {
		n = max(1, int((left+db.Settle-1)/db.Settle))
	}
	if db.MaxRetries > 0 {
		n = min(n, db.MaxRetries)
	}
	return n
}

// meteredDelay sums the durations it has been asked to wait.
type meteredDelay struct {
	timing.Delayer
	spent time.Duration
}

func (md *meteredDelay) Delay(d time.Duration) {
	md.spent += d
	md.Delayer.Delay(d)
}

// PressButton and ReleaseButton simulate the external switch.
func (b *Board) PressButton(n uint) error {
	if err := checkButton(n); err != nil {
		return err
	}
	return b.Buttons().Drive(n, 0)
}

func (b *Board) ReleaseButton(n uint) error {
	if err := checkButton(n); err != nil {
		return err
	}
	return b.Buttons().Drive(n, 1)
}

// TestPortOutput walks a single high bit through all pins of port id, and
// checks the pins follow the latch. The previous latch value is restored.
func (b *Board) TestPortOutput(id PortID, step time.Duration) error {
	p := b.Port(id)
	saved := p.ReadLatch()
	defer p.Write(saved)

	for pin := range uint(8) {
		want := uint8(1) << pin
		p.Write(want)
		b.Delay.Delay(step)
		if got := p.Read(); got != want {
			return errors.Errorf("%s: wrote %08b, pins read %08b", p, want, got)
		}
	}
	return nil
}

// TestPortInput releases all pins of port id and returns what external
// devices drive on it. The previous latch value is restored.
func (b *Board) TestPortInput(id PortID) uint8 {
	p := b.Port(id)
	saved := p.ReadLatch()
	defer p.Write(saved)

	p.Write(0xFF)
	return p.Read()
}
