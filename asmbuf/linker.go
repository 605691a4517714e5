package asmbuf

import "fmt"

// BuildResult is the output of a single resolution pass: the final word
// array plus a snapshot of every symbol's resolved address, keyed by
// name (useful to callers and tests that want to know where a given
// global ended up without re-walking the symbol table).
type BuildResult struct {
	Words         []int
	PointerValues map[string]int
}

// Resolve performs the linker's single patch pass (spec §4.7 step 5):
// it walks every entry, and for each one referencing a symbol computes
// symbol.address+offset and patches the word(s). offset shifts every
// instruction-derived address by a constant base (used when the image is
// rendered to run somewhere other than address 0, e.g. under a
// bootloader). Resolve does not itself decide layout order — the caller
// (the builder) is responsible for emitting the header, function
// bodies, user code and literal pools in the right sequence first.
func (b *Buffer) Resolve(offset int) (*BuildResult, error) {
	words := make([]int, 0, b.pos)

	// First walk: apply every deferred mark at its final position, so
	// that later entries in the same walk can reference earlier labels
	// and earlier entries can reference later (forward) ones once this
	// pass completes. Address operands are only read on the second walk.
	position := offset
	for _, e := range b.entries {
		switch e.kind {
		case kindMark:
			if err := e.mark.Mark(position); err != nil {
				return nil, err
			}
		default:
			position += e.wordLen()
		}
	}

	for _, e := range b.entries {
		switch e.kind {
		case kindMark:
			continue

		case kindRaw:
			words = append(words, e.rawValue&0xFFFF)

		case kindInstr:
			ws, err := encodeInstr(e)
			if err != nil {
				return nil, err
			}
			words = append(words, ws...)
		}
	}

	values := make(map[string]int, len(b.symbols))
	for _, sym := range b.symbols {
		addr, ok := sym.Resolved()
		if !ok {
			return nil, fmt.Errorf("internal error: pointer %q was never marked", sym.Name)
		}
		values[sym.Name] = addr
	}

	return &BuildResult{Words: words, PointerValues: values}, nil
}

// encodeInstr renders one instruction entry to its final word(s).
func encodeInstr(e *entry) ([]int, error) {
	switch e.operand.Kind {
	case OperandNone:
		return []int{opcodeWord(e.op, 0, false)}, nil

	case OperandData:
		if shortFits(e.operand.Data) {
			return []int{opcodeWord(e.op, e.operand.Data, true)}, nil
		}
		return []int{opcodeWord(e.op, 0, false), e.operand.Data & 0xFFFF}, nil

	case OperandAddr:
		addr, ok := e.operand.Sym.Resolved()
		if !ok {
			return nil, fmt.Errorf("internal error: unresolved symbol %q referenced by %s", e.operand.Sym.SymbolName(), e.op)
		}
		return []int{opcodeWord(e.op, 0, false), (addr + e.operand.Offset) & 0xFFFF}, nil

	default:
		return []int{opcodeWord(e.op, 0, false)}, nil
	}
}

// opcodeWord packs an opcode into the instruction word's top bits, with
// a short-form immediate (5 bits) inlined when present. Long-form
// operands follow in a second word written separately by the caller.
func opcodeWord(op Opcode, imm int, short bool) int {
	w := int(op) << 10
	if short {
		w |= 1 << 9
		w |= imm & 0x1F
	}
	return w & 0xFFFF
}
