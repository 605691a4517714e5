package builder

import (
	"fmt"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/types"
)

// place is a resolved storage location: a fixed-address symbol, a
// constant word offset from it (struct-field / constant-index access),
// and, when the location is a bit-field, the field descriptor that
// narrows it further. Indexing deeper than one level (through an array
// of arrays, or through a second pointer dereference) is rejected
// during resolution.
type place struct {
	Home        *asmbuf.Pointer
	WordOffset  int
	Type        *types.Type
	BitField    *types.BitField
	DynamicSize bool // true if WordOffset must be computed at runtime (non-constant index)
	IndexExpr   *ast.Expr
	ElemSize    int

	// PointerIndirect is set when the step being resolved indexes
	// through a Pointer-typed value rather than an inline Array: the
	// target address is whatever address is stored at Home+WordOffset,
	// not Home+WordOffset itself, so every access needs one dereference
	// before the index is applied. IndexOffset is the constant addend to
	// apply after that dereference, when the index folds to a constant.
	PointerIndirect bool
	IndexOffset     int
}

// resolvePlace walks an LValue's access chain against the current
// scope, returning the storage location it names.
func (b *Builder) resolvePlace(lv *ast.LValue) (*place, error) {
	v, ok := b.Block.Lookup(lv.Name)
	if !ok {
		return nil, fmt.Errorf("%s: undeclared identifier %q", lv.Pos, lv.Name)
	}
	v.MarkUsed()

	p := &place{Home: v.Home, Type: v.Type}

	for _, step := range lv.Steps {
		switch {
		case step.Field != nil:
			if p.Type.Kind != types.Struct {
				return nil, fmt.Errorf("%s: %q is not a struct", step.Pos, lv.Name)
			}
			f, ok := p.Type.Ref.FieldByName(*step.Field)
			if !ok {
				return nil, fmt.Errorf("%s: struct %q has no field %q", step.Pos, p.Type.Ref.Name, *step.Field)
			}
			if p.DynamicSize {
				return nil, fmt.Errorf("%s: field access after a dynamic index is not supported", step.Pos)
			}
			p.WordOffset += f.Offset
			p.Type = f.Type
			p.BitField = f.BitField

		case step.Index != nil:
			if p.Type.Kind != types.Array && p.Type.Kind != types.Pointer {
				return nil, fmt.Errorf("%s: %q is not indexable", step.Pos, lv.Name)
			}
			if p.DynamicSize || p.PointerIndirect {
				return nil, fmt.Errorf("%s: only one index level is supported", step.Pos)
			}
			elem := p.Type.Element
			indirect := p.Type.Kind == types.Pointer
			c, constIndex := b.foldConst(step.Index)
			switch {
			case indirect && constIndex:
				p.PointerIndirect = true
				p.IndexOffset = c * elem.Size()
			case indirect:
				p.PointerIndirect = true
				p.DynamicSize = true
				p.IndexExpr = step.Index
				p.ElemSize = elem.Size()
			case constIndex:
				p.WordOffset += c * elem.Size()
			default:
				p.DynamicSize = true
				p.IndexExpr = step.Index
				p.ElemSize = elem.Size()
			}
			p.Type = elem
			p.BitField = nil
		}
	}

	return p, nil
}

// LoadToA emits code that leaves p's value in A.
func (b *Builder) LoadToA(p *place) error {
	if p.DynamicSize || p.PointerIndirect {
		return b.loadDynamicToA(p)
	}
	if p.BitField != nil {
		b.LoadHomeToA(p.Home, p.WordOffset, "load bit-field host word")
		b.emitBitfieldReadFromA(p.BitField)
		return nil
	}
	b.LoadHomeToA(p.Home, p.WordOffset, "load "+p.Home.Name)
	return nil
}

// StoreFromA emits code that stores A's current value into p.
func (b *Builder) StoreFromA(p *place) error {
	if p.DynamicSize || p.PointerIndirect {
		return b.storeDynamicFromA(p)
	}
	if p.BitField != nil {
		b.emitBitfieldWriteFromA(p.Home, p.WordOffset, p.BitField)
		return nil
	}
	b.StoreAtoHome(p.Home, p.WordOffset, "store "+p.Home.Name)
	return nil
}

// Address leaves p's address in A: either the home's own address plus
// a constant/dynamic index term (array indexing), or, when
// PointerIndirect is set, whatever address is stored at the home
// itself, plus the index term applied on top of that loaded value
// (pointer indexing — the home holds an address, not the target). Used
// for the "&" operator and for passing arrays/structs by reference.
func (b *Builder) Address(p *place) error {
	if p.BitField != nil {
		return fmt.Errorf("cannot take the address of a bit-field member")
	}

	if p.PointerIndirect {
		b.LoadHomeToA(p.Home, p.WordOffset, "load pointer value")
		switch {
		case p.DynamicSize:
			if err := b.BuildExpr(p.IndexExpr); err != nil {
				return err
			}
			b.emitMulByConst(p.ElemSize)
			idx := b.NewTemp(types.TInteger)
			b.StoreAtoHome(idx.Home, 0, "stash scaled index")
			b.LoadHomeToA(p.Home, p.WordOffset, "reload pointer value")
			b.Body.Emit(asmbuf.BIN, asmbuf.Addr(idx.Home), "")
			b.Body.Emit(asmbuf.ADD, asmbuf.Operand{}, "pointer + scaled index")
			b.Release(idx)
		case p.IndexOffset != 0:
			b.Body.Emit(asmbuf.LDIB, asmbuf.Imm(p.IndexOffset), "")
			b.Body.Emit(asmbuf.ADD, asmbuf.Operand{}, "pointer + constant offset")
		}
		return nil
	}

	if !p.DynamicSize {
		b.Body.Emit(asmbuf.LDI, asmbuf.AddrOffset(p.Home, p.WordOffset), "address of "+p.Home.Name)
		return nil
	}
	if err := b.BuildExpr(p.IndexExpr); err != nil {
		return err
	}
	b.emitMulByConst(p.ElemSize)
	idx := b.NewTemp(types.TInteger)
	b.StoreAtoHome(idx.Home, 0, "stash scaled index")
	b.Body.Emit(asmbuf.LDI, asmbuf.AddrOffset(p.Home, p.WordOffset), "base address")
	b.Body.Emit(asmbuf.BIN, asmbuf.Addr(idx.Home), "")
	b.Body.Emit(asmbuf.ADD, asmbuf.Operand{}, "base + scaled index")
	b.Release(idx)
	return nil
}

func (b *Builder) loadDynamicToA(p *place) error {
	if err := b.Address(p); err != nil {
		return err
	}
	b.Body.Emit(asmbuf.LDIND, asmbuf.Operand{}, "load through computed address")
	return nil
}

func (b *Builder) storeDynamicFromA(p *place) error {
	val := b.NewTemp(p.Type)
	b.StoreAtoHome(val.Home, 0, "stash value to store")
	if err := b.Address(p); err != nil {
		return err
	}
	b.Body.Emit(asmbuf.SWAPAB, asmbuf.Operand{}, "address -> B for now")
	b.Body.Emit(asmbuf.AIN, asmbuf.Addr(val.Home), "A = value")
	b.Body.Emit(asmbuf.SWAPAB, asmbuf.Operand{}, "value <-> address: address -> A, value -> B")
	b.Body.Emit(asmbuf.STIND, asmbuf.Operand{}, "mem[address] = value")
	b.Release(val)
	return nil
}
