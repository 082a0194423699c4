package hwio

import (
	"math/bits"
	"unsafe"
)

// 8-bit operations. Bit indices are expected in [0,7]: out of range indices
// address no bit at all (1<<8 truncates to 0 in uint8). Use CheckBit and
// the Checked* functions on untrusted input.

func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}

func IsClear8(v uint8, n uint) bool {
	return GetBiti8(v, n) == 0
}

func SetBit8(v *uint8, n uint) {
	*v |= (1 << n)
}

func ClearBit8(v *uint8, n uint) {
	*v &= ^(1 << n)
}

func FlipBit8(v *uint8, n uint) {
	*v ^= (1 << n)
}

// WriteBit8 sets bit n of v if val is true, clears it otherwise.
func WriteBit8(v *uint8, n uint, val bool) {
	*v = *v&^(1<<n) | b2u8(val)<<n
}

func SetBits8(v *uint8, mask uint8) {
	*v |= mask
}

func ClearBits8(v *uint8, mask uint8) {
	*v &= ^mask
}

// Value forms, for registers that aren't addressable.

func WithBit8(v uint8, n uint) uint8    { SetBit8(&v, n); return v }
func WithoutBit8(v uint8, n uint) uint8 { ClearBit8(&v, n); return v }
func Flipped8(v uint8, n uint) uint8    { FlipBit8(&v, n); return v }
func WithBits8(v, mask uint8) uint8     { return v | mask }
func WithoutBits8(v, mask uint8) uint8  { return v &^ mask }
func WithBitValue8(v uint8, n uint, val bool) uint8 {
	WriteBit8(&v, n, val)
	return v
}

// RotateLeft8 rotates v left by n bits, bits shifted out of bit 7 re-enter
// at bit 0. n is taken modulo 8, so n=0 and n=8 both leave v unchanged.
func RotateLeft8(v uint8, n uint) uint8 {
	return bits.RotateLeft8(v, int(n%8))
}

// RotateRight8 rotates v right by n bits, modulo 8.
func RotateRight8(v uint8, n uint) uint8 {
	return bits.RotateLeft8(v, -int(n%8))
}

// UpperNibble returns bits [7:4] of v, right-aligned.
func UpperNibble(v uint8) uint8 {
	return (v >> 4) & 0x0F
}

// LowerNibble returns bits [3:0] of v.
func LowerNibble(v uint8) uint8 {
	return v & 0x0F
}

// CombineNibbles returns upper<<4 | lower. lower is masked to 4 bits, upper
// is not: its bits [7:4] fall off the 8-bit result, so callers must pass a
// pre-masked nibble to get a meaningful value.
func CombineNibbles(upper, lower uint8) uint8 {
	return upper<<4 | lower&0x0F
}

// Avoid branches. In the SSA compiler, this compiles to
// exactly what you would want it to.
func b2u8(x bool) uint8 { return *(*uint8)(unsafe.Pointer(&x)) }
