package hwio

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// regField describes a register found in a bank structure.
type regField struct {
	offset uint8
	regPtr any
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(bank any) {
	if err := InitRegs(bank); err != nil {
		panic(err)
	}
}

// InitRegs initializes all Reg8 fields of the structure pointed to by bank,
// according to their "hwio" struct tag:
//
//	offset=0x12     Byte-offset within the bank. Fields without an offset
//	                are ignored.
//	reset=0xFF      Initial value (and value after Reset).
//	romask=0xF0     Bits that can't be written.
//	readonly        Writes are rejected and logged.
//	writeonly       Reads are rejected and logged.
//	rcb[=Name]      Read callback, method Read<FIELD> by default.
//	pcb[=Name]      Peek callback, method Peek<FIELD> by default.
//	wcb[=Name]      Write callback, method Write<FIELD> by default.
//
// Callback methods are looked up on bank itself.
func InitRegs(bank any) error {
	pval := reflect.ValueOf(bank)
	if pval.Kind() != reflect.Pointer || pval.Elem().Kind() != reflect.Struct {
		return errors.Errorf("hwio: bank must be a pointer to struct, got %T", bank)
	}
	val := pval.Elem()
	typ := val.Type()

	for i := range typ.NumField() {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		reg, ok := val.Field(i).Addr().Interface().(*Reg8)
		if !ok {
			return errors.Errorf("hwio: field %s: unsupported type %s", f.Name, f.Type)
		}
		reg.Name = f.Name
		reg.ReadCb, reg.PeekCb, reg.WriteCb = nil, nil, nil
		reg.Flags = ReadWriteFlag

		for _, opt := range strings.Split(tag, ",") {
			key, arg, _ := strings.Cut(strings.TrimSpace(opt), "=")
			switch key {
			case "offset":
			case "reset":
				v, err := parseUint8(f.Name, key, arg)
				if err != nil {
					return err
				}
				reg.Value = v
			case "romask":
				v, err := parseUint8(f.Name, key, arg)
				if err != nil {
					return err
				}
				reg.RoMask = v
			case "readonly":
				reg.Flags |= ReadOnlyFlag
			case "writeonly":
				reg.Flags |= WriteOnlyFlag
			case "rcb":
				cb, err := lookupCallback[func(uint8) uint8](pval, f.Name, "Read", arg)
				if err != nil {
					return err
				}
				reg.ReadCb = cb
			case "pcb":
				cb, err := lookupCallback[func(uint8) uint8](pval, f.Name, "Peek", arg)
				if err != nil {
					return err
				}
				reg.PeekCb = cb
			case "wcb":
				cb, err := lookupCallback[func(uint8, uint8)](pval, f.Name, "Write", arg)
				if err != nil {
					return err
				}
				reg.WriteCb = cb
			default:
				return errors.Errorf("hwio: field %s: unknown tag option %q", f.Name, key)
			}
		}
	}
	return nil
}

func parseUint8(field, key, arg string) (uint8, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "hwio: field %s: invalid %s", field, key)
	}
	return uint8(v), nil
}

func lookupCallback[F any](bank reflect.Value, field, prefix, name string) (F, error) {
	var zero F
	if name == "" {
		name = prefix + strings.ToUpper(field)
	}
	m := bank.MethodByName(name)
	if !m.IsValid() {
		return zero, errors.Errorf("hwio: field %s: missing method %s", field, name)
	}
	cb, ok := m.Interface().(F)
	if !ok {
		return zero, errors.Errorf("hwio: field %s: method %s has signature %s, want %T", field, name, m.Type(), zero)
	}
	return cb, nil
}

// bankGetRegs returns the registers of bank that have an offset.
func bankGetRegs(bank any) ([]regField, error) {
	pval := reflect.ValueOf(bank)
	if pval.Kind() != reflect.Pointer || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("hwio: bank must be a pointer to struct, got %T", bank)
	}
	val := pval.Elem()
	typ := val.Type()

	var regs []regField
	for i := range typ.NumField() {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		for _, opt := range strings.Split(tag, ",") {
			key, arg, _ := strings.Cut(strings.TrimSpace(opt), "=")
			if key != "offset" {
				continue
			}
			off, err := parseUint8(f.Name, key, arg)
			if err != nil {
				return nil, err
			}
			regs = append(regs, regField{offset: off, regPtr: val.Field(i).Addr().Interface()})
		}
	}
	return regs, nil
}
