package builder

import (
	"fmt"

	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/chartable"
	"github.com/PiMaker/yabal/types"
)

// EncodeChar looks a rune up in the shared character table.
func (b *Builder) EncodeChar(r rune) (int, bool) { return chartable.Encode(r) }

// ResolveTypeRef turns a parsed TypeRef into a concrete Type, resolving
// struct names against the builder's struct table and applying any
// pointer/bank/array/ref modifiers in source order.
func (b *Builder) ResolveTypeRef(t *ast.TypeRef) (*types.Type, error) {
	var base *types.Type
	switch t.Name {
	case "int":
		base = types.TInteger
	case "bool":
		base = types.TBoolean
	case "char":
		base = types.TChar
	case "void":
		base = types.TVoid
	default:
		ref, ok := b.Root.Structs[t.Name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown type %q", t.Pos, t.Name)
		}
		base = types.StructType(ref)
	}

	if t.Pointer {
		bank := 0
		if t.Bank != nil {
			bank = *t.Bank
		}
		base = types.PointerTo(base, bank)
	}
	if t.HasArray {
		if t.Array != nil {
			base = types.ArrayOf(base, *t.Array)
		} else {
			base = types.PointerTo(base, 0)
		}
	}
	if t.IsRef {
		base = types.ReferenceTo(base)
	}
	return base, nil
}

// PreDeclareStruct registers an empty stub for decl's name, so a
// pointer field anywhere in the file can reference a struct declared
// later in source order. DeclareStruct fills the stub in.
func (b *Builder) PreDeclareStruct(name string) error {
	if _, exists := b.Root.Structs[name]; exists {
		return fmt.Errorf("struct %q already declared", name)
	}
	b.Root.Structs[name] = &types.StructRef{Name: name}
	return nil
}

// DeclareStruct fills in a struct declaration's fields against its
// pre-registered stub (see PreDeclareStruct), computing each member's
// word offset and, for bit-field members, packing consecutive
// same-word bit-fields declared back to back into one host word — the
// same layout rule types.StructRef.Size assumes when it counts a
// shared word once.
func (b *Builder) DeclareStruct(decl *ast.StructDecl) error {
	ref, ok := b.Root.Structs[decl.Name]
	if !ok {
		return fmt.Errorf("%s: struct %q was not pre-declared", decl.Pos, decl.Name)
	}

	offset := 0
	bitCursor := 0
	bitWordOffset := -1

	for _, m := range decl.Members {
		mt, err := b.ResolveTypeRef(m.Type)
		if err != nil {
			return err
		}

		if m.BitSize != nil {
			if bitWordOffset == -1 || bitCursor+*m.BitSize > 16 {
				bitWordOffset = offset
				bitCursor = 0
				offset++
			}
			ref.Fields = append(ref.Fields, &types.Field{
				Name:   m.Name,
				Offset: bitWordOffset,
				Type:   mt,
				BitField: &types.BitField{
					Offset: bitCursor,
					Size:   *m.BitSize,
				},
			})
			bitCursor += *m.BitSize
			continue
		}

		bitWordOffset = -1
		ref.Fields = append(ref.Fields, &types.Field{Name: m.Name, Offset: offset, Type: mt})
		offset += mt.Size()
	}

	return nil
}
