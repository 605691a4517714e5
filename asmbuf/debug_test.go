package asmbuf

import "testing"

import "github.com/stretchr/testify/assert"

func TestDumpIncludesMnemonicAndComment(t *testing.T) {
	b := NewBuffer()
	b.Emit(LDI, Imm(5), "seed")
	b.Emit(HALT, Operand{Kind: OperandNone}, "")
	_, err := b.Resolve(0)
	assert.NoError(t, err)

	out := b.Dump(true)
	assert.Contains(t, out, "LDI")
	assert.Contains(t, out, "seed")
	assert.Contains(t, out, "HALT")
}

func TestDumpOmitsCommentsWhenDisabled(t *testing.T) {
	b := NewBuffer()
	b.Emit(LDI, Imm(5), "seed")
	_, err := b.Resolve(0)
	assert.NoError(t, err)

	out := b.Dump(false)
	assert.NotContains(t, out, "seed")
}

func TestDumpRendersMarkedLabel(t *testing.T) {
	b := NewBuffer()
	label := b.CreateLabel("fn_entry")
	b.Mark(label)
	b.Emit(HALT, Operand{Kind: OperandNone}, "")
	_, err := b.Resolve(0)
	assert.NoError(t, err)

	out := b.Dump(false)
	assert.Contains(t, out, "fn_entry:")
}

func TestDumpSymbolsContainsSymbolNames(t *testing.T) {
	b := NewBuffer()
	p := b.CreatePointer("counter", 0, 1, nil)
	b.Mark(p)
	b.EmitRaw(0, "")
	_, err := b.Resolve(0)
	assert.NoError(t, err)

	out := b.DumpSymbols()
	assert.Contains(t, out, "counter")
}
