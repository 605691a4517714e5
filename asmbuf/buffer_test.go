package asmbuf

import "testing"

import "github.com/stretchr/testify/assert"

func TestEmitShortImmediateOneWord(t *testing.T) {
	b := NewBuffer()
	b.Emit(LDI, Imm(5), "")
	res, err := b.Resolve(0)
	assert.NoError(t, err)
	assert.Len(t, res.Words, 1)
}

func TestEmitLongImmediateTwoWords(t *testing.T) {
	b := NewBuffer()
	b.Emit(LDI, Imm(1000), "")
	res, err := b.Resolve(0)
	assert.NoError(t, err)
	assert.Len(t, res.Words, 2)
	assert.Equal(t, 1000, res.Words[1])
}

func TestEmitNoOperandOneWord(t *testing.T) {
	b := NewBuffer()
	b.Emit(HALT, Operand{Kind: OperandNone}, "")
	res, err := b.Resolve(0)
	assert.NoError(t, err)
	assert.Len(t, res.Words, 1)
}

func TestForwardLabelReference(t *testing.T) {
	b := NewBuffer()
	target := b.CreateLabel("end")

	b.Emit(JMP, Addr(target), "jump forward")
	b.Emit(LDI, Imm(1), "") // 1 word, skipped by the jump
	b.Mark(target)
	b.Emit(HALT, Operand{Kind: OperandNone}, "")

	res, err := b.Resolve(0)
	assert.NoError(t, err)
	// JMP (2 words) + LDI (1 word) + HALT (1 word) = 4
	assert.Len(t, res.Words, 4)
	assert.Equal(t, 3, res.Words[1], "JMP operand should resolve to the HALT's position")
	assert.Equal(t, 3, res.PointerValues["end"])
}

func TestAppendPreservesDeferredMarks(t *testing.T) {
	header := NewBuffer()
	header.Emit(NOP, Operand{Kind: OperandNone}, "")

	body := NewBuffer()
	entry := body.CreateLabel("fn_entry")
	body.Mark(entry)
	body.Emit(HALT, Operand{Kind: OperandNone}, "")

	final := NewBuffer()
	final.Append(header)
	final.Append(body)

	res, err := final.Resolve(0)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.PointerValues["fn_entry"], "entry should land after the header's one word")
}

func TestFixedIndexOverridesLayoutPosition(t *testing.T) {
	fixed := 100
	b := NewBuffer()
	p := b.CreatePointer("slot", 0, 1, &fixed)

	b.Emit(NOP, Operand{Kind: OperandNone}, "")
	b.Mark(p)
	b.EmitRaw(0, "")

	res, err := b.Resolve(0)
	assert.NoError(t, err)
	assert.Equal(t, fixed, res.PointerValues["slot"])
}

func TestResolveOffsetShiftsEveryAddress(t *testing.T) {
	b := NewBuffer()
	label := b.CreateLabel("")
	b.Mark(label)
	b.Emit(HALT, Operand{Kind: OperandNone}, "")

	res, err := b.Resolve(100)
	assert.NoError(t, err)
	addr, ok := label.Resolved()
	assert.True(t, ok)
	assert.Equal(t, 100, addr)
	assert.Equal(t, 100, res.PointerValues[label.Name])
}

func TestMarkTwiceErrors(t *testing.T) {
	b := NewBuffer()
	p := b.CreateLabel("dup")
	b.Mark(p)
	b.Mark(p)

	_, err := b.Resolve(0)
	assert.Error(t, err)
}

func TestUnresolvedSymbolErrorsOnEncode(t *testing.T) {
	b := NewBuffer()
	other := NewBuffer()
	stray := other.CreateLabel("stray") // never marked, never appended

	b.Emit(JMP, Addr(stray), "")
	_, err := b.Resolve(0)
	assert.Error(t, err)
}

func TestAddrOffsetAppliesAfterResolve(t *testing.T) {
	b := NewBuffer()
	base := b.CreatePointer("base", 0, 4, nil)
	b.Mark(base)
	for i := 0; i < 4; i++ {
		b.EmitRaw(0, "")
	}
	b.Emit(STA, AddrOffset(base, 2), "")

	res, err := b.Resolve(0)
	assert.NoError(t, err)
	baseAddr, _ := base.Resolved()
	last := res.Words[len(res.Words)-1]
	assert.Equal(t, baseAddr+2, last)
}
