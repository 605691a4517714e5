package builder

import (
	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/types"
)

// The machine has no variable-distance shift; a bit-field's offset is
// always a compile-time constant, so shifting by it is unrolled into
// that many SHL/SHR instructions.

func (b *Builder) shiftLeftConst(n int, comment string) {
	for i := 0; i < n; i++ {
		b.Body.Emit(asmbuf.SHL, asmbuf.Operand{}, comment)
		comment = ""
	}
}

func (b *Builder) shiftRightConst(n int, comment string) {
	for i := 0; i < n; i++ {
		b.Body.Emit(asmbuf.SHR, asmbuf.Operand{}, comment)
		comment = ""
	}
}

// emitMulByConst multiplies the value currently in A by the non-negative
// compile-time constant c, via shifts for powers of two and c unrolled
// additions of the multiplicand otherwise. c is always a struct/array element
// size here, never user-controlled, so the unroll stays small.
func (b *Builder) emitMulByConst(c int) {
	switch {
	case c == 0:
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(0), "multiply by zero")
	case c == 1:
		// no-op
	case c&(c-1) == 0:
		n := 0
		for v := c; v > 1; v >>= 1 {
			n++
		}
		b.shiftLeftConst(n, "multiply by power of two")
	default:
		acc := b.NewTemp(types.TInteger)
		b.StoreAtoHome(acc.Home, 0, "stash multiplicand")
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(0), "accumulator = 0")
		remaining := c
		for remaining > 0 {
			b.Body.Emit(asmbuf.BIN, asmbuf.Addr(acc.Home), "")
			b.Body.Emit(asmbuf.ADD, asmbuf.Operand{}, "accumulate one multiplicand")
			remaining--
		}
		b.Release(acc)
	}
}

// emitBitfieldReadFromA leaves the field's value, right-justified, in A. The
// host word is assumed already loaded into A by the caller.
func (b *Builder) emitBitfieldReadFromA(bf *types.BitField) {
	b.shiftRightConst(bf.Offset, "shift field down")
	mask := (1 << bf.Size) - 1
	b.Body.Emit(asmbuf.LDIB, asmbuf.Imm(mask), "")
	b.Body.Emit(asmbuf.AND, asmbuf.Operand{}, "mask to field width")
}

// emitBitfieldWriteFromA rewrites a bit-field with whatever value is
// currently in A, masking it to the field's width first. home+offset
// addresses the host word exactly as LoadHomeToA/StoreAtoHome do
// elsewhere, so a bit-field packed at a non-zero word offset inside its
// struct (a second or later bit-field group) still targets the right
// word.
func (b *Builder) emitBitfieldWriteFromA(home *asmbuf.Pointer, offset int, bf *types.BitField) {
	mask := (1 << bf.Size) - 1
	tmp := b.NewTemp(types.TInteger)

	b.Body.Emit(asmbuf.LDIB, asmbuf.Imm(mask), "")
	b.Body.Emit(asmbuf.AND, asmbuf.Operand{}, "mask rhs to field width")
	b.shiftLeftConst(bf.Offset, "shift rhs into place")
	b.StoreAtoHome(tmp.Home, 0, "stash masked+shifted rhs")

	b.LoadHomeToA(home, offset, "load host word")
	b.Body.Emit(asmbuf.LDIB, asmbuf.Imm((^(mask<<bf.Offset))&0xFFFF), "")
	b.Body.Emit(asmbuf.AND, asmbuf.Operand{}, "clear field bits")
	b.Body.Emit(asmbuf.BIN, asmbuf.Addr(tmp.Home), "reload masked rhs")
	b.Body.Emit(asmbuf.OR, asmbuf.Operand{}, "merge field bits")
	b.StoreAtoHome(home, offset, "store host word")

	b.Release(tmp)
}

// StoreAtoHome stores the current value of A into home+wordOffset. Bank
// switches are bracketed around the store when home lives outside bank
// zero.
func (b *Builder) StoreAtoHome(home *asmbuf.Pointer, wordOffset int, comment string) {
	operand := asmbuf.Addr(home)
	if wordOffset != 0 {
		operand = asmbuf.AddrOffset(home, wordOffset)
	}
	if home.Bank() != 0 {
		b.Body.Emit(asmbuf.SETBANK, asmbuf.Imm(home.Bank()), "")
		b.Body.Emit(asmbuf.STA, operand, comment)
		b.Body.Emit(asmbuf.SETBANK, asmbuf.Imm(0), "")
		return
	}
	b.Body.Emit(asmbuf.STA, operand, comment)
}

// LoadHomeToA loads home+wordOffset into A, bracketing a bank switch
// when needed.
func (b *Builder) LoadHomeToA(home *asmbuf.Pointer, wordOffset int, comment string) {
	operand := asmbuf.Addr(home)
	if wordOffset != 0 {
		operand = asmbuf.AddrOffset(home, wordOffset)
	}
	if home.Bank() != 0 {
		b.Body.Emit(asmbuf.SETBANK, asmbuf.Imm(home.Bank()), "")
		b.Body.Emit(asmbuf.AIN, operand, comment)
		b.Body.Emit(asmbuf.SETBANK, asmbuf.Imm(0), "")
		return
	}
	b.Body.Emit(asmbuf.AIN, operand, comment)
}
