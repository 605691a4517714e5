package errs

import "testing"

import (
	"github.com/alecthomas/participle/lexer"
	"github.com/stretchr/testify/assert"
)

func pos(line int) lexer.Position {
	return lexer.Position{Filename: "main.yabal", Line: line, Column: 1}
}

func TestHasErrorsFalseForWarningsOnly(t *testing.T) {
	l := NewList()
	l.Warnf(Single(pos(1)), "unused variable %q", "x")
	assert.False(t, l.HasErrors())
}

func TestHasErrorsTrueAfterErrorf(t *testing.T) {
	l := NewList()
	l.Debugf(Single(pos(1)), "function never called")
	l.Errorf(Single(pos(2)), "undefined symbol %q", "y")
	assert.True(t, l.HasErrors())
}

func TestAllOrdersBySourcePosition(t *testing.T) {
	l := NewList()
	l.Errorf(Single(pos(5)), "second")
	l.Errorf(Single(pos(1)), "first")
	l.Warnf(Single(pos(3)), "middle")

	all := l.All()
	assert.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "middle", all[1].Message)
	assert.Equal(t, "second", all[2].Message)
}

func TestSameRangeAccumulatesMultipleDiagnostics(t *testing.T) {
	l := NewList()
	r := Single(pos(1))
	l.Warnf(r, "a")
	l.Warnf(r, "b")

	all := l.All()
	assert.Len(t, all, 2)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", Debug.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
}
