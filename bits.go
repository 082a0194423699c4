package main

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"

	"port51/hw/hwio"
)

// evalBits evaluates one of the bit primitives on value. arg is the bit
// index (set, clear, flip, get), the mask (setmask, clearmask), the rotation
// amount (rotl, rotr) or the lower nibble (combine). toggle and test are
// aliases for flip and get.
func evalBits(op, value, arg string) (string, error) {
	v, err := parseByte(value)
	if err != nil {
		return "", err
	}

	var n uint8
	switch op {
	case "upper", "lower":
		if arg != "" {
			return "", errors.Errorf("%s takes no argument", op)
		}
	default:
		if arg == "" {
			return "", errors.Errorf("%s needs an argument", op)
		}
		if n, err = parseByte(arg); err != nil {
			return "", err
		}
	}

	var res uint8
	switch op {
	case "set":
		res, err = hwio.CheckedSetBit8(v, uint(n))
	case "clear":
		res, err = hwio.CheckedClearBit8(v, uint(n))
	case "flip", "toggle":
		res, err = hwio.CheckedFlipBit8(v, uint(n))
	case "get", "test":
		var b bool
		if b, err = hwio.CheckedGetBit8(v, uint(n)); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case "setmask":
		res = hwio.WithBits8(v, n)
	case "clearmask":
		res = hwio.WithoutBits8(v, n)
	case "rotl":
		res, err = hwio.CheckedRotateLeft8(v, uint(n))
	case "rotr":
		res, err = hwio.CheckedRotateRight8(v, uint(n))
	case "upper":
		res = hwio.UpperNibble(v)
	case "lower":
		res = hwio.LowerNibble(v)
	case "combine":
		res = hwio.CombineNibbles(v, n)
	default:
		return "", errors.Errorf("unknown operation %q", op)
	}
	if err != nil {
		return "", err
	}
	return formatByte(res), nil
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid byte %q", s)
	}
	return uint8(v), nil
}

func formatByte(v uint8) string {
	return fmt.Sprintf("0x%02X %08b", v, v)
}
