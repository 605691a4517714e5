package builder

import (
	"fmt"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/types"
)

// CollectionKind names which of the three pointer collections a
// PointerCollection backs.
type CollectionKind int

const (
	Globals CollectionKind = iota
	Temporaries
	Stack
)

func (k CollectionKind) String() string {
	switch k {
	case Globals:
		return "global"
	case Temporaries:
		return "temp"
	case Stack:
		return "stack"
	default:
		return "?"
	}
}

// PointerCollection is an ordered set of data-region pointers, one of
// {Globals, Temporaries, Stack}. GetNext hands out a fresh pointer
// large enough for the requested type; reuse of released temporaries
// happens before that, in Builder.NewTemp, via the block's reuse stack.
type PointerCollection struct {
	Kind    CollectionKind
	symbols *asmbuf.Buffer // shared symbol-allocation space; never emitted into directly
	bank    int

	all     []*asmbuf.Pointer
	counter int
}

func newCollection(kind CollectionKind, symbols *asmbuf.Buffer) *PointerCollection {
	return &PointerCollection{Kind: kind, symbols: symbols}
}

// GetNext allocates a new pointer sized for typ; it never reclaims one.
func (pc *PointerCollection) GetNext(name string, typ *types.Type) *asmbuf.Pointer {
	pc.counter++
	if name == "" {
		name = fmt.Sprintf("%s_%d", pc.Kind, pc.counter)
	}
	p := pc.symbols.CreatePointer(name, pc.bank, typ.Size(), nil)
	pc.all = append(pc.all, p)
	return p
}

// All returns every pointer this collection has ever allocated, in
// allocation order — the order the linker lays the data region out in.
func (pc *PointerCollection) All() []*asmbuf.Pointer { return pc.all }

// Count is the number of pointers currently allocated (for the Stack
// collection, the slot count the initial stack pointer is computed from).
func (pc *PointerCollection) Count() int { return len(pc.all) }

// WordCount is the total word footprint of every pointer this
// collection has allocated.
func (pc *PointerCollection) WordCount() int {
	total := 0
	for _, p := range pc.all {
		total += p.Size()
	}
	return total
}
