package types

import "testing"

import "github.com/stretchr/testify/assert"

func TestPrimitiveSizes(t *testing.T) {
	assert.Equal(t, 1, TInteger.Size())
	assert.Equal(t, 1, TBoolean.Size())
	assert.Equal(t, 1, TChar.Size())
	assert.Equal(t, 0, TVoid.Size())
}

func TestPointerSizeIsTwoWords(t *testing.T) {
	p := PointerTo(TInteger, 0)
	assert.Equal(t, 2, p.Size())
}

func TestArraySize(t *testing.T) {
	arr := ArrayOf(TInteger, 4)
	assert.Equal(t, 4, arr.Size())

	nested := ArrayOf(PointerTo(TChar, 1), 3)
	assert.Equal(t, 6, nested.Size())
}

func TestReferenceSizeDelegatesToElement(t *testing.T) {
	ref := ReferenceTo(PointerTo(TInteger, 0))
	assert.Equal(t, 2, ref.Size())
}

func TestStructSizeCountsBitFieldWordOnce(t *testing.T) {
	ref := &StructRef{
		Name: "Flags",
		Fields: []*Field{
			{Name: "a", Offset: 0, Type: TInteger, BitField: &BitField{Offset: 0, Size: 4}},
			{Name: "b", Offset: 0, Type: TInteger, BitField: &BitField{Offset: 4, Size: 4}},
			{Name: "c", Offset: 1, Type: TInteger},
		},
	}
	assert.Equal(t, 2, ref.Size())
}

func TestFieldByName(t *testing.T) {
	ref := &StructRef{Fields: []*Field{{Name: "x", Type: TInteger}}}

	f, ok := ref.FieldByName("x")
	assert.True(t, ok)
	assert.Equal(t, "x", f.Name)

	_, ok = ref.FieldByName("missing")
	assert.False(t, ok)
}

func TestEqualPointer(t *testing.T) {
	a := PointerTo(TInteger, 1)
	b := PointerTo(TInteger, 1)
	c := PointerTo(TInteger, 2)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestEqualArrayChecksLength(t *testing.T) {
	a := ArrayOf(TInteger, 3)
	b := ArrayOf(TInteger, 3)
	c := ArrayOf(TInteger, 4)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestEqualStructIdentityOnly(t *testing.T) {
	refA := &StructRef{Name: "Point", Fields: []*Field{{Name: "x", Type: TInteger}}}
	refB := &StructRef{Name: "Point", Fields: []*Field{{Name: "x", Type: TInteger}}}

	a := StructType(refA)
	b := StructType(refB)
	same := StructType(refA)

	assert.False(t, a.Equal(b), "distinct struct declarations are never equal")
	assert.True(t, a.Equal(same))
}

func TestEqualNilHandling(t *testing.T) {
	assert.True(t, (*Type)(nil).Equal(nil))
	assert.False(t, TInteger.Equal(nil))
}

func TestIsNumericAndAddressable(t *testing.T) {
	assert.True(t, TInteger.IsNumeric())
	assert.True(t, TBoolean.IsNumeric())
	assert.False(t, TVoid.IsNumeric())

	assert.True(t, TInteger.IsAddressable())
	assert.False(t, TVoid.IsAddressable())
	assert.False(t, TUnknown.IsAddressable())
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "int", TInteger.String())
	assert.Equal(t, "int*", PointerTo(TInteger, 0).String())
	assert.Equal(t, "int*@2", PointerTo(TInteger, 2).String())
	assert.Equal(t, "int[4]", ArrayOf(TInteger, 4).String())
	assert.Equal(t, "ref int", ReferenceTo(TInteger).String())

	ref := &StructRef{Name: "Point"}
	assert.Equal(t, "Point", StructType(ref).String())
}
