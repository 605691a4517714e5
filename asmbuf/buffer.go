// Package asmbuf implements the machine's instruction buffer: an
// append-only sequence of symbolic instructions and raw data words,
// together with the pointer/label symbols it owns, and the single-pass
// linker that resolves every symbol to an absolute address (see
// linker.go).
package asmbuf

import (
	"fmt"

	"github.com/mileusna/conditional"
)

// OperandKind discriminates what an Operand carries.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandData             // a literal value, known at emission time
	OperandAddr             // a symbol reference, resolved at link time
)

// Operand is an instruction's argument: either an immediate data value
// or a reference to a pointer/label symbol (with an optional extra
// constant offset, for field access on top of a PointerWithOffset).
type Operand struct {
	Kind   OperandKind
	Data   int
	Sym    Symbol
	Offset int
}

// Imm builds an immediate-data operand.
func Imm(v int) Operand { return Operand{Kind: OperandData, Data: v} }

// Addr builds a symbol-reference operand.
func Addr(sym Symbol) Operand { return Operand{Kind: OperandAddr, Sym: sym} }

// AddrOffset builds a symbol-reference operand with an additional
// constant word offset applied after the symbol resolves.
func AddrOffset(sym Symbol, offset int) Operand {
	return Operand{Kind: OperandAddr, Sym: sym, Offset: offset}
}

// entryKind distinguishes buffer entries.
type entryKind int

const (
	kindInstr entryKind = iota
	kindRaw
	kindMark
)

type entry struct {
	kind    entryKind
	op      Opcode
	operand Operand

	rawValue int

	mark *Pointer

	comment string
}

// shortFits reports whether v fits the machine's 5-bit immediate form.
func shortFits(v int) bool { return v >= 0 && v < 32 }

// wordLen returns how many words an entry will occupy in the final
// image. This is fully determined at emission time: a literal operand's
// length depends only on its value, and a symbol reference always
// reserves the long (two-word) form, since addresses routinely exceed
// the 5-bit immediate range.
func (e *entry) wordLen() int {
	switch e.kind {
	case kindMark:
		return 0
	case kindRaw:
		return 1
	case kindInstr:
		switch e.operand.Kind {
		case OperandNone:
			return 1
		case OperandData:
			return conditional.Int(shortFits(e.operand.Data), 1, 2)
		case OperandAddr:
			return 2
		}
	}
	return 1
}

// Buffer is an append-only sequence of (opcode, operand) entries and raw
// words, plus the label/pointer symbols it has allocated. Emission is
// purely local: emitting an instruction that references a symbol never
// requires that symbol to be resolved yet. Forward references are the
// norm.
type Buffer struct {
	entries []*entry
	symbols []*Pointer

	pos int

	labelCounter   int
	pointerCounter int
}

// NewBuffer returns an empty instruction buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// CreateLabel allocates a fresh label symbol. An empty name gets an
// automatically generated one.
func (b *Buffer) CreateLabel(name string) *Pointer {
	if name == "" {
		b.labelCounter++
		name = fmt.Sprintf("__label_%d", b.labelCounter)
	}
	p := &Pointer{Name: name, IsLabel: true, SizeWords: 1}
	b.symbols = append(b.symbols, p)
	return p
}

// CreatePointer allocates a fresh pointer symbol of the given bank and
// size (in words). fixedIndex, if non-nil, forces the pointer to a
// specific address regardless of where the linker would otherwise place
// it.
func (b *Buffer) CreatePointer(name string, bank, size int, fixedIndex *int) *Pointer {
	if name == "" {
		b.pointerCounter++
		name = fmt.Sprintf("__ptr_%d", b.pointerCounter)
	}
	if size <= 0 {
		size = 1
	}
	p := &Pointer{Name: name, BankNum: bank, SizeWords: size, FixedIndex: fixedIndex}
	b.symbols = append(b.symbols, p)
	return p
}

// Symbols returns every symbol this buffer has allocated, in creation
// order.
func (b *Buffer) Symbols() []*Pointer { return b.symbols }

// Position returns the current local emission position, in words, within
// this buffer. It is only meaningful before the buffer is spliced into a
// larger one by Append — useful for mid-build diagnostics, never for
// resolving an address, since marks are applied later, during Resolve,
// against the buffer's final emission order (see Mark).
func (b *Buffer) Position() int { return b.pos }

// Mark records that p's address should be bound to whatever position it
// ends up at once every buffer that precedes this point has been
// concatenated in. The binding itself happens lazily, during Resolve's
// single walk over the final buffer — this is what lets a function body
// built in isolation, then spliced after a header of unknown-at-the-time
// length via Append, still end up with the right address for its entry
// label and any labels inside it.
func (b *Buffer) Mark(p *Pointer) {
	e := &entry{kind: kindMark, mark: p}
	b.entries = append(b.entries, e)
}

// Emit appends an opcode with its operand. Short operands (fitting the
// 5-bit immediate form) take one word; everything else takes the
// two-word long form, the second word patched in at link time if it
// references a symbol.
func (b *Buffer) Emit(op Opcode, operand Operand, comment string) {
	e := &entry{kind: kindInstr, op: op, operand: operand, comment: comment}
	b.entries = append(b.entries, e)
	b.pos += e.wordLen()
}

// EmitRaw appends a literal data word, used for string/binary/data
// pools and for the reserved header cells.
func (b *Buffer) EmitRaw(value int, comment string) {
	e := &entry{kind: kindRaw, rawValue: value, comment: comment}
	b.entries = append(b.entries, e)
	b.pos += 1
}

// Append splices another buffer's entries and symbols onto the end of
// this one. Because marks are deferred (see Mark), splicing buffers
// together before resolving is always safe: a label marked while a
// function body was generated in isolation still ends up bound to its
// true position once the body is appended after a header of whatever
// length the final layout turns out to need. Used by the builder to
// concatenate the header, function bodies, user code, and literal pools
// into one linear image before resolving.
func (b *Buffer) Append(other *Buffer) {
	b.entries = append(b.entries, other.entries...)
	b.symbols = append(b.symbols, other.symbols...)
	b.pos += other.pos
}
