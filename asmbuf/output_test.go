package asmbuf

import (
	"strings"
	"testing"
)

import "github.com/stretchr/testify/assert"

func buildSimpleProgram(t *testing.T) *Buffer {
	b := NewBuffer()
	b.Emit(LDI, Imm(5), "load accumulator")
	b.Emit(HALT, Operand{Kind: OperandNone}, "")
	_, err := b.Resolve(0)
	assert.NoError(t, err)
	return b
}

func TestAssemblyTextWithComments(t *testing.T) {
	b := buildSimpleProgram(t)
	text, err := b.AssemblyText(true)
	assert.NoError(t, err)
	assert.Contains(t, text, "LDI 0x5")
	assert.Contains(t, text, ";load accumulator")
	assert.Contains(t, text, "HALT")
}

func TestAssemblyTextWithoutComments(t *testing.T) {
	b := buildSimpleProgram(t)
	text, err := b.AssemblyText(false)
	assert.NoError(t, err)
	assert.NotContains(t, text, ";load accumulator")
}

func TestAssemblyTextAddressOperandShowsSymbolName(t *testing.T) {
	b := NewBuffer()
	target := b.CreateLabel("loop")
	b.Emit(JMP, Addr(target), "")
	b.Mark(target)
	b.Emit(HALT, Operand{Kind: OperandNone}, "")
	_, err := b.Resolve(0)
	assert.NoError(t, err)

	text, err := b.AssemblyText(false)
	assert.NoError(t, err)
	assert.Contains(t, text, "loop")
}

func TestHexDumpFormat(t *testing.T) {
	out := HexDump([]int{0, 5, 65535})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"0x0000", "0x0005", "0xffff"}, lines)
}

func TestLogisimImageHeaderAndAddressing(t *testing.T) {
	out := LogisimImage([]int{1, 2, 3}, 3)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "v3.0 hex words addressed", lines[0])
	assert.Equal(t, "0: 1 2 3", lines[1])
}

func TestLogisimImageRunLengthCollapsing(t *testing.T) {
	words := []int{0, 0, 0, 0, 1}
	out := LogisimImage(words, len(words))
	assert.Contains(t, out, "4*0")
	assert.Contains(t, out, "1")
}

func TestLogisimImagePadsToMinSize(t *testing.T) {
	out := LogisimImage([]int{1}, 10)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header + one addressed line covering all 10 padded words
	assert.Equal(t, 2, len(lines))
	assert.Contains(t, lines[1], "9*0")
}

func TestLogisimImageCollapsesRunLongerThanLine(t *testing.T) {
	words := make([]int, wordsPerLine+1)
	out := LogisimImage(words, len(words))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// a single run longer than wordsPerLine still collapses to one token
	// ("9*0") on one addressed line: wordsPerLine counts tokens, not words
	assert.True(t, len(lines) >= 2)
}
