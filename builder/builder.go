// Package builder implements the Yabal code generator: the single
// mutable context ("the builder") threaded through code generation,
// holding the instruction buffer, the block stack, the pointer
// collections, the function table, the string/binary-file tables and
// the accumulated diagnostics.
package builder

import (
	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/errs"
	"github.com/PiMaker/yabal/types"
)

// Builder is the code-generation context. A root Builder owns the
// shared tables; a child Builder (one per function body) holds its own
// instruction buffer but shares every table with its parent by
// reference, per spec §9's cyclic-reference note: one owner holds the
// tables, children hold non-owning handles.
type Builder struct {
	Parent *Builder
	Root   *Builder

	Body    *asmbuf.Buffer // this builder's own instruction stream
	symbols *asmbuf.Buffer // shared symbol-allocation space (root's Body)

	Globals     *PointerCollection
	Temporaries *PointerCollection
	Stack       *PointerCollection

	Functions map[string]*Function
	Structs   map[string]*types.StructRef
	Strings   *StringTable
	BinFiles  *BinFileTable

	Errors *errs.List

	Block *BlockStack

	CurrentFunction *Function

	// CallUsed records whether any call site was ever emitted; the
	// __call/__return trampoline and its reserved cells are only
	// included in the final image if at least one call needs them.
	CallUsed bool

	spCell     *asmbuf.Pointer
	retvalCell *asmbuf.Pointer
	tempCell   *asmbuf.Pointer
	callLabel  *asmbuf.Pointer
	returnLabel *asmbuf.Pointer
}

// NewRoot creates the top-level builder for a compilation unit.
func NewRoot() *Builder {
	symbols := asmbuf.NewBuffer()
	b := &Builder{
		Body:      asmbuf.NewBuffer(),
		symbols:   symbols,
		Functions: make(map[string]*Function),
		Structs:   make(map[string]*types.StructRef),
		Strings:   newStringTable(),
		BinFiles:  newBinFileTable(),
		Errors:    errs.NewList(),
		Block:     NewGlobalBlock(),
	}
	b.Root = b
	b.Globals = newCollection(Globals, symbols)
	b.Temporaries = newCollection(Temporaries, symbols)
	b.Stack = newCollection(Stack, symbols)

	b.spCell = symbols.CreatePointer("__sp", 0, 1, nil)
	b.retvalCell = symbols.CreatePointer("__retval", 0, 1, nil)
	b.tempCell = symbols.CreatePointer("__temp", 0, 1, nil)
	b.callLabel = symbols.CreateLabel("__call")
	b.returnLabel = symbols.CreateLabel("__return")

	return b
}

// Child opens a new builder for a function body, sharing every table
// with the root by reference but owning its own instruction stream.
func (b *Builder) Child(fn *Function) *Builder {
	root := b.Root
	child := &Builder{
		Parent:      b,
		Root:        root,
		Body:        asmbuf.NewBuffer(),
		symbols:     root.symbols,
		Globals:     root.Globals,
		Temporaries: root.Temporaries,
		Stack:       root.Stack,
		Functions:   root.Functions,
		Structs:     root.Structs,
		Strings:     root.Strings,
		BinFiles:    root.BinFiles,
		Errors:      root.Errors,
		Block:       b.Block.Child(fn),
		CurrentFunction: fn,
	}
	return child
}

// SPCell, RetvalCell and TempCell are the three fixed header cells the
// calling convention reserves: the stack-pointer register location, the
// return-value location, and a scratch temp location, per spec §3's
// invariant that these are reserved once at a fixed position.
func (b *Builder) SPCell() *asmbuf.Pointer     { return b.Root.spCell }
func (b *Builder) RetvalCell() *asmbuf.Pointer { return b.Root.retvalCell }
func (b *Builder) TempCell() *asmbuf.Pointer   { return b.Root.tempCell }
func (b *Builder) CallLabel() *asmbuf.Pointer  { return b.Root.callLabel }
func (b *Builder) ReturnLabel() *asmbuf.Pointer { return b.Root.returnLabel }

// Symbols exposes the shared symbol-allocation buffer — only
// CreateLabel/CreatePointer are ever called on it directly; it is never
// itself emitted into or resolved.
func (b *Builder) Symbols() *asmbuf.Buffer { return b.Root.symbols }

// NewTemp acquires a temporary variable from the current block's reuse
// stack, or allocates a fresh one from the Temporaries collection.
// Callers must Release it on every scope-exit path, including error
// paths (spec §5: temporary acquisition is a scoped resource).
func (b *Builder) NewTemp(typ *types.Type) *Variable {
	if v, ok := b.Block.PopTemp(typ.Size()); ok {
		return v
	}
	p := b.Temporaries.GetNext("", typ)
	return &Variable{Name: p.Name, Home: p, Type: typ, isTemp: true}
}

// Release returns a temporary to its scope's reuse stack.
func (b *Builder) Release(v *Variable) {
	if v == nil || !v.isTemp {
		return
	}
	b.Block.PushTemp(v)
}

// PushBlock opens a nested lexical scope.
func (b *Builder) PushBlock() *BlockStack {
	prev := b.Block
	b.Block = b.Block.Child(nil)
	return prev
}

// PopBlock restores the enclosing scope, releasing every temporary the
// exiting scope acquired back to its parent.
func (b *Builder) PopBlock(prev *BlockStack) {
	for _, t := range b.Block.temps {
		prev.PushTemp(t)
	}
	b.Block = prev
}
