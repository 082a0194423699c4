package hw

import (
	"sync"

	"github.com/go-faster/errors"

	"port51/emu/log"
	"port51/hw/hwio"
)

//go:generate go tool stringer -type=PortID

// PortID identifies one of the four 8051 I/O ports.
type PortID uint8

const (
	P0 PortID = iota
	P1
	P2
	P3

	NumPorts = 4
)

// Addr returns the SFR address of the port latch.
func (id PortID) Addr() uint8 {
	return 0x80 + uint8(id)<<4
}

// ParsePortID parses "P0".."P3" (case insensitive).
func ParsePortID(s string) (PortID, error) {
	if len(s) == 2 && (s[0] == 'P' || s[0] == 'p') && s[1] >= '0' && s[1] < '0'+NumPorts {
		return PortID(s[1] - '0'), nil
	}
	return 0, errors.Wrapf(ErrUnknownPort, "%q", s)
}

// PortIO is byte-level access to an 8-bit port. Read returns the live pin
// levels, ReadLatch the value last written, which is what read-modify-write
// operations start from.
type PortIO interface {
	Read() uint8
	ReadLatch() uint8
	Write(val uint8)
}

// A Modifier performs read-modify-write cycles on its latch atomically.
type Modifier interface {
	Modify(f func(latch uint8) uint8)
}

// Port is a quasi-bidirectional 8051 port. Each pin is driven low by its
// latch bit or by an external device, and pulled up otherwise: the pin level
// is latch AND external. Writing 1 to a latch bit releases the pin, turning
// it into an input.
//
// Port is safe for concurrent use. Write callbacks registered with OnWrite
// run after the port lock is released.
type Port struct {
	Latch hwio.Reg8 `hwio:"offset=0x0,reset=0xFF,rcb,pcb,wcb"`

	id       PortID
	mu       sync.Mutex
	ext      uint8
	watchers []func(id PortID, old, val uint8)
}

// NewPort returns a port with all pins released.
func NewPort(id PortID) *Port {
	p := &Port{id: id, ext: 0xFF}
	hwio.MustInitRegs(p)
	p.Latch.Name = id.String()
	return p
}

func (p *Port) ID() PortID { return p.id }

func (p *Port) String() string { return p.id.String() }

// Latch callbacks, wired by hwio.MustInitRegs. They run with p.mu held.

func (p *Port) ReadLATCH(val uint8) uint8 { return val & p.ext }
func (p *Port) PeekLATCH(val uint8) uint8 { return val }
func (p *Port) WriteLATCH(old, val uint8) {
	log.ModPort.DebugZ("write").
		Stringer("port", p.id).
		Bin8("old", old).
		Bin8("val", val).
		End()
}

// Read8 implements hwio.BankIO8: a CPU read of the port SFR returns the pins,
// a peek returns the latch.
func (p *Port) Read8(addr uint8, peek bool) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Latch.Read8(addr, peek)
}

// Write8 implements hwio.BankIO8.
func (p *Port) Write8(addr uint8, val uint8) {
	p.mu.Lock()
	old := p.Latch.Value
	p.Latch.Write8(addr, val)
	val = p.Latch.Value
	watchers := p.watchers
	p.mu.Unlock()

	for _, w := range watchers {
		w(p.id, old, val)
	}
}

func (p *Port) Read() uint8      { return p.Read8(p.id.Addr(), false) }
func (p *Port) ReadLatch() uint8 { return p.Read8(p.id.Addr(), true) }
func (p *Port) Write(val uint8)  { p.Write8(p.id.Addr(), val) }

// External returns the levels imposed by external devices (1 = released).
func (p *Port) External() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ext
}

// SetExternal sets the levels imposed by external devices on all pins.
func (p *Port) SetExternal(v uint8) {
	p.mu.Lock()
	p.ext = v
	p.mu.Unlock()
}

// Modify implements Modifier.
func (p *Port) Modify(f func(latch uint8) uint8) {
	p.mu.Lock()
	old := p.Latch.Value
	p.Latch.Write8(p.id.Addr(), f(old))
	val := p.Latch.Value
	watchers := p.watchers
	p.mu.Unlock()

	for _, w := range watchers {
		w(p.id, old, val)
	}
}

// Drive makes an external device pull pin low (level 0) or release it
// (level 1).
func (p *Port) Drive(pin uint, level uint8) error {
	if err := hwio.CheckBit(pin); err != nil {
		return err
	}
	p.mu.Lock()
	hwio.WriteBit8(&p.ext, pin, level != 0)
	p.mu.Unlock()

	log.ModInput.DebugZ("drive").
		Stringer("port", p.id).
		Uint("pin", pin).
		Int("level", int(level)).
		End()
	return nil
}

// OnWrite registers f to be called after each latch write.
func (p *Port) OnWrite(f func(id PortID, old, val uint8)) {
	p.mu.Lock()
	p.watchers = append(p.watchers, f)
	p.mu.Unlock()
}

// Reset releases all pins and restores the latch reset value. Write
// callbacks see the latch change like any other write.
func (p *Port) Reset() {
	p.mu.Lock()
	old := p.Latch.Value
	p.Latch.Value = 0xFF
	p.ext = 0xFF
	watchers := p.watchers
	p.mu.Unlock()

	for _, w := range watchers {
		w(p.id, old, 0xFF)
	}
}
