package asmbuf

import "fmt"

// Symbol is the read side of a resolvable address: everything the linker
// and the instruction encoder need once a Pointer or Label has been
// marked.
type Symbol interface {
	SymbolName() string
	Bank() int
	Size() int
	Resolved() (address int, ok bool)
}

// Pointer is a named placeholder for a machine address. A Pointer whose
// IsLabel flag is set marks an instruction position rather than a data
// cell, but is otherwise an ordinary Pointer.
type Pointer struct {
	Name              string
	BankNum           int
	SizeWords         int
	FixedIndex        *int
	AssignedVariables []string
	IsLabel           bool

	address int
	marked  bool
}

func (p *Pointer) SymbolName() string { return p.Name }
func (p *Pointer) Bank() int          { return p.BankNum }

func (p *Pointer) Size() int {
	if p.SizeWords <= 0 {
		return 1
	}
	return p.SizeWords
}

func (p *Pointer) Resolved() (int, bool) { return p.address, p.marked }

// Mark binds the pointer's address. A fixed index overrides the position
// the linker would otherwise assign. Every pointer symbol may be marked
// at most once. Exported so the linker's single resolution walk (see
// linker.go) can apply deferred marks in final emission order.
func (p *Pointer) Mark(position int) error {
	if p.marked {
		return fmt.Errorf("pointer %q marked twice", p.Name)
	}
	if p.FixedIndex != nil {
		position = *p.FixedIndex
	}
	p.address = position
	p.marked = true
	return nil
}

// PointerWithOffset is a view over a base pointer that resolves to
// base.address+Offset, sharing the base's bank and locality.
type PointerWithOffset struct {
	Base   *Pointer
	Offset int
}

func (p *PointerWithOffset) SymbolName() string {
	return fmt.Sprintf("%s+%d", p.Base.Name, p.Offset)
}

func (p *PointerWithOffset) Bank() int { return p.Base.Bank() }
func (p *PointerWithOffset) Size() int { return 1 }

func (p *PointerWithOffset) Resolved() (int, bool) {
	base, ok := p.Base.Resolved()
	if !ok {
		return 0, false
	}
	return base + p.Offset, true
}

// RawAddress is a (pointer, element-type-sized) pair representing a
// typed pointer value; callers attach their own element-type metadata,
// asmbuf only cares about the symbol and an optional constant offset.
type RawAddress struct {
	Pointer *PointerWithOffset
}
