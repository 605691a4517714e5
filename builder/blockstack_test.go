package builder

import "testing"

import (
	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/types"
	"github.com/stretchr/testify/assert"
)

func TestDeclareRejectsRedeclarationInSameScope(t *testing.T) {
	block := NewGlobalBlock()
	v := &Variable{Name: "x", Type: types.TInteger}
	assert.NoError(t, block.Declare(v))
	assert.Error(t, block.Declare(&Variable{Name: "x", Type: types.TInteger}))
}

func TestLookupWalksOuterScopes(t *testing.T) {
	outer := NewGlobalBlock()
	assert.NoError(t, outer.Declare(&Variable{Name: "x", Type: types.TInteger}))

	inner := outer.Child(nil)
	v, ok := inner.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, "x", v.Name)

	_, ok = inner.Lookup("missing")
	assert.False(t, ok)
}

func TestShadowingAllowedInNestedScope(t *testing.T) {
	outer := NewGlobalBlock()
	outerVar := &Variable{Name: "x", Type: types.TInteger}
	assert.NoError(t, outer.Declare(outerVar))

	inner := outer.Child(nil)
	innerVar := &Variable{Name: "x", Type: types.TBoolean}
	assert.NoError(t, inner.Declare(innerVar))

	found, _ := inner.Lookup("x")
	assert.Same(t, innerVar, found)
}

func TestPushPopTempReusesMatchingSize(t *testing.T) {
	block := NewGlobalBlock()
	scalar := &Variable{Name: "t1", Type: types.TInteger, Home: &asmbuf.Pointer{Name: "t1"}}
	ptr := &Variable{Name: "t2", Type: types.PointerTo(types.TInteger, 0), Home: &asmbuf.Pointer{Name: "t2"}}

	block.PushTemp(scalar)
	block.PushTemp(ptr)

	reused, ok := block.PopTemp(2)
	assert.True(t, ok)
	assert.Same(t, ptr, reused)

	reused, ok = block.PopTemp(1)
	assert.True(t, ok)
	assert.Same(t, scalar, reused)

	_, ok = block.PopTemp(1)
	assert.False(t, ok)
}

func TestChildInheritsFunctionWhenNilPassed(t *testing.T) {
	fn := &Function{Name: "f"}
	root := NewGlobalBlock()
	fnBlock := root.Child(fn)
	nested := fnBlock.Child(nil)
	assert.Same(t, fn, nested.Function)
}

func TestMarkAssignedClearsConstant(t *testing.T) {
	v := &Variable{Name: "x", Constant: true}
	c := 5
	v.ConstInit = &c
	v.MarkAssigned()
	assert.False(t, v.Constant)
	assert.Nil(t, v.ConstInit)
}
