package hw

import (
	"github.com/go-faster/errors"

	"port51/emu/log"
	"port51/hw/hwio"
	"port51/hw/timing"
)

// Directions is the static port direction table, one byte per port with 1
// meaning input. Initializing the ports writes this table to the latches:
// input pins are released (pulled up), output pins start low.
type Directions [NumPorts]uint8

// DefaultDirections: buttons on P0, LEDs on P1, P2 split between inputs
// (upper nibble) and outputs (lower nibble), P3 left to its special
// functions.
var DefaultDirections = Directions{0xFF, 0x00, 0xF0, 0xFF}

// MCU holds the I/O side of an 8051: its four ports mapped in the SFR space,
// and the delay used to pace port effects.
type MCU struct {
	Ports [NumPorts]*Port
	SFR   *hwio.Table
	Delay timing.Delayer

	dirs Directions
}

// NewMCU returns an MCU with ports in their reset state (all latches 0xFF).
func NewMCU(delay timing.Delayer) *MCU {
	m := &MCU{
		SFR:   hwio.NewTable("sfr"),
		Delay: delay,
		dirs:  Directions{0xFF, 0xFF, 0xFF, 0xFF},
	}
	for id := range PortID(NumPorts) {
		m.Ports[id] = NewPort(id)
		m.SFR.Map(id.Addr(), m.Ports[id])
	}
	return m
}

// Port returns the port identified by id.
func (m *MCU) Port(id PortID) *Port {
	return m.Ports[id]
}

// PortByName returns the port named "P0".."P3".
func (m *MCU) PortByName(name string) (*Port, error) {
	id, err := ParsePortID(name)
	if err != nil {
		return nil, err
	}
	return m.Ports[id], nil
}

// Init configures all ports from the direction table.
func (m *MCU) Init(dirs Directions) {
	m.dirs = dirs
	for id, p := range m.Ports {
		p.Write(dirs[id])
		log.ModPort.DebugZ("init").
			Stringer("port", p.ID()).
			Bin8("inputs", dirs[id]).
			End()
	}
}

// Directions returns the direction table last applied with Init.
func (m *MCU) Directions() Directions {
	return m.dirs
}

// Reset puts all ports back in their reset state.
func (m *MCU) Reset() {
	for _, p := range m.Ports {
		p.Reset()
	}
	m.dirs = Directions{0xFF, 0xFF, 0xFF, 0xFF}
}

// VerifyConfiguration checks that input pins are still released: an input
// whose latch bit has been cleared can no longer be read.
func (m *MCU) VerifyConfiguration() error {
	for id, p := range m.Ports {
		latch := p.ReadLatch()
		if stuck := m.dirs[id] &^ latch; stuck != 0 {
			return errors.Errorf("%s: input pins %08b driven low by latch %08b", p, stuck, latch)
		}
	}
	return nil
}

// AddLogContext implements log.LogContext, adding the machine cycles spent
// so far when the delay counts them.
func (m *MCU) AddLogContext(e *log.EntryZ) {
	if cc, ok := m.Delay.(timing.CycleCounter); ok {
		e.Int64("cycles", cc.Cycles())
	}
}

// Cycles returns the machine cycles spent in delays, or 0 if the delay
// doesn't count them.
func (m *MCU) Cycles() int64 {
	if cc, ok := m.Delay.(timing.CycleCounter); ok {
		return cc.Cycles()
	}
	return 0
}
