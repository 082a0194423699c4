package hwio

import (
	"github.com/go-faster/errors"

	"port51/emu/log"
)

// log unmapped accesses (the 8051 SFR space is sparse, so this is noisy)
const logUnmapped = false

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint8, peek bool) uint8
	Write8(addr uint8, val uint8)
}

// Table maps the 8-bit direct address space of the special function
// registers (0x80-0xFF on an 8051) to the devices that implement them.
type Table struct {
	Name string

	// Unmapped, if set, serves accesses to addresses with nothing mapped.
	Unmapped BankIO8

	regs [256]BankIO8
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

func (t *Table) Reset() {
	t.regs = [256]BankIO8{}
}

// MapBank maps all registers of bank (a pointer to a structure containing
// Reg8 fields with an "hwio" offset tag) at addr+offset.
func (t *Table) MapBank(addr uint8, bank any) {
	regs, err := bankGetRegs(bank)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		default:
			panic(errors.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) UnmapBank(addr uint8, bank any) {
	regs, err := bankGetRegs(bank)
	if err != nil {
		panic(err)
	}
	for _, reg := range regs {
		t.Unmap(addr + reg.offset)
	}
}

func (t *Table) MapReg8(addr uint8, io *Reg8) {
	t.Map(addr, io)
}

// Map maps io at addr. It panics if addr is already mapped.
func (t *Table) Map(addr uint8, io BankIO8) {
	if t.regs[addr] != nil {
		panic(errors.Errorf("%s: address %02x already mapped", t.Name, addr))
	}
	log.ModHwIo.DebugZ("mapping reg").
		Hex8("addr", addr).
		String("bus", t.Name).
		End()
	t.regs[addr] = io
}

func (t *Table) Unmap(addr uint8) {
	t.regs[addr] = nil
}

// Search returns the device mapped at addr, or nil.
func (t *Table) Search(addr uint8) BankIO8 {
	return t.regs[addr]
}

// Read8 forwards the read to the device mapped at the given address.
func (t *Table) Read8(addr uint8, peek bool) uint8 {
	io := t.regs[addr]
	if io == nil {
		if logUnmapped && !peek {
			log.ModHwIo.ErrorZ("unmapped Read8").
				String("name", t.Name).
				Hex8("addr", addr).
				End()
		}
		if t.Unmapped != nil {
			return t.Unmapped.Read8(addr, peek)
		}
		return 0
	}
	return io.Read8(addr, peek)
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint8) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint8, val uint8) {
	io := t.regs[addr]
	if io == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex8("addr", addr).
				Hex8("val", val).
				End()
		}
		if t.Unmapped != nil {
			t.Unmapped.Write8(addr, val)
		}
		return
	}
	io.Write8(addr, val)
}
