// Package types implements Yabal's small type system: primitive kinds,
// pointers, references, structs with optional bit-field members, and
// fixed-size arrays.
package types

import "fmt"

// Kind discriminates the shape of a Type.
type Kind int

const (
	Unknown Kind = iota
	Void
	Integer
	Boolean
	Char
	Pointer
	Reference
	Struct
	Array
)

// Type is the single representation for every Yabal type. Which fields
// are meaningful depends on Kind: Pointer uses Element/Bank, Reference
// uses Element, Struct uses Ref, Array uses Element/Length.
type Type struct {
	Kind    Kind
	Element *Type     // Pointer, Reference, Array
	Bank    int        // Pointer
	Ref     *StructRef // Struct
	Length  int        // Array
}

// StructRef is an ordered, named field list shared by every Type whose
// Kind is Struct referencing it.
type StructRef struct {
	Name   string
	Fields []*Field
}

// Field describes one struct member: its offset in words, its type, and
// an optional bit-field descriptor when it shares a word with siblings.
type Field struct {
	Name     string
	Offset   int
	Type     *Type
	BitField *BitField
}

// BitField locates a field's bits within the word at its Offset.
type BitField struct {
	Offset int // bit offset within the host word
	Size   int // width in bits
}

var (
	TInteger = &Type{Kind: Integer}
	TBoolean = &Type{Kind: Boolean}
	TChar    = &Type{Kind: Char}
	TVoid    = &Type{Kind: Void}
	TUnknown = &Type{Kind: Unknown}
)

// PointerTo builds a Pointer type over element in the given bank.
func PointerTo(element *Type, bank int) *Type {
	return &Type{Kind: Pointer, Element: element, Bank: bank}
}

// ReferenceTo builds a Reference type over element.
func ReferenceTo(element *Type) *Type {
	return &Type{Kind: Reference, Element: element}
}

// ArrayOf builds a fixed-size Array type.
func ArrayOf(element *Type, length int) *Type {
	return &Type{Kind: Array, Element: element, Length: length}
}

// StructType builds a Struct type over an existing StructRef.
func StructType(ref *StructRef) *Type {
	return &Type{Kind: Struct, Ref: ref}
}

// Size returns a type's size in machine words: 1 for primitives, 2 for
// pointers (address + bank), the sum of non-bit-field field sizes for
// structs (bit-fields contribute to their host word once, not per
// bit-field), and element size * length for arrays.
func (t *Type) Size() int {
	switch t.Kind {
	case Integer, Boolean, Char:
		return 1
	case Pointer:
		return 2
	case Reference:
		return t.Element.Size()
	case Array:
		return t.Element.Size() * t.Length
	case Struct:
		return t.Ref.Size()
	case Void, Unknown:
		return 0
	default:
		return 0
	}
}

// Size sums the sizes of a struct's fields, counting a word shared by
// several bit-fields only once.
func (r *StructRef) Size() int {
	seenWords := make(map[int]bool)
	size := 0
	for _, f := range r.Fields {
		if f.BitField != nil {
			if seenWords[f.Offset] {
				continue
			}
			seenWords[f.Offset] = true
			size++
			continue
		}
		size += f.Type.Size()
	}
	return size
}

// FieldByName looks up a direct (non-nested) member of a struct.
func (r *StructRef) FieldByName(name string) (*Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Equal reports structural equality, following pointer/reference/array
// elements and comparing struct types by their underlying StructRef
// identity (two distinct struct declarations are never equal even if
// their field lists match).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Pointer:
		return t.Bank == other.Bank && t.Element.Equal(other.Element)
	case Reference, Array:
		if t.Kind == Array && t.Length != other.Length {
			return false
		}
		return t.Element.Equal(other.Element)
	case Struct:
		return t.Ref == other.Ref
	default:
		return true
	}
}

func (t *Type) String() string {
	switch t.Kind {
	case Integer:
		return "int"
	case Boolean:
		return "bool"
	case Char:
		return "char"
	case Void:
		return "void"
	case Unknown:
		return "<unknown>"
	case Pointer:
		if t.Bank != 0 {
			return fmt.Sprintf("%s*@%d", t.Element, t.Bank)
		}
		return fmt.Sprintf("%s*", t.Element)
	case Reference:
		return fmt.Sprintf("ref %s", t.Element)
	case Array:
		return fmt.Sprintf("%s[%d]", t.Element, t.Length)
	case Struct:
		return t.Ref.Name
	default:
		return "?"
	}
}

// IsNumeric reports whether values of t participate in arithmetic
// directly (integers, booleans and chars are all representable as a
// single machine word and accepted by the arithmetic operators).
func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case Integer, Boolean, Char:
		return true
	default:
		return false
	}
}

// IsAddressable reports whether t can appear as the target of
// store_address_in_a (identifiers, indexing, field access).
func (t *Type) IsAddressable() bool {
	return t.Kind != Void && t.Kind != Unknown
}
