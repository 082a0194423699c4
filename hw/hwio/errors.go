package hwio

import "github.com/go-faster/errors"

var (
	ErrInvalidBitIndex    = errors.New("invalid bit index")
	ErrInvalidShiftAmount = errors.New("invalid shift amount")
)

// CheckBit reports whether n is a valid bit index for an 8-bit register.
func CheckBit(n uint) error {
	if n > 7 {
		return errors.Wrapf(ErrInvalidBitIndex, "bit %d not in [0,7]", n)
	}
	return nil
}

// CheckShift reports whether n is a valid rotate amount for an 8-bit
// register.
func CheckShift(n uint) error {
	if n > 7 {
		return errors.Wrapf(ErrInvalidShiftAmount, "shift %d not in [0,7]", n)
	}
	return nil
}

func CheckedSetBit8(v uint8, n uint) (uint8, error) {
	if err := CheckBit(n); err != nil {
		return v, err
	}
	return WithBit8(v, n), nil
}

func CheckedClearBit8(v uint8, n uint) (uint8, error) {
	if err := CheckBit(n); err != nil {
		return v, err
	}
	return WithoutBit8(v, n), nil
}

func CheckedFlipBit8(v uint8, n uint) (uint8, error) {
	if err := CheckBit(n); err != nil {
		return v, err
	}
	return Flipped8(v, n), nil
}

func CheckedGetBit8(v uint8, n uint) (bool, error) {
	if err := CheckBit(n); err != nil {
		return false, err
	}
	return GetBit8(v, n), nil
}

func CheckedWriteBit8(v uint8, n uint, val bool) (uint8, error) {
	if err := CheckBit(n); err != nil {
		return v, err
	}
	return WithBitValue8(v, n, val), nil
}

func CheckedRotateLeft8(v uint8, n uint) (uint8, error) {
	if err := CheckShift(n); err != nil {
		return v, err
	}
	return RotateLeft8(v, n), nil
}

func CheckedRotateRight8(v uint8, n uint) (uint8, error) {
	if err := CheckShift(n); err != nil {
		return v, err
	}
	return RotateRight8(v, n), nil
}
