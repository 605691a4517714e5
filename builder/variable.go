package builder

import (
	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/types"
)

// Variable is a declared name: its home pointer, its type, an optional
// constant initializer, and the bookkeeping the optimizer needs to
// decide whether it can be inlined or elided.
type Variable struct {
	Name string
	Home *asmbuf.Pointer
	Type *types.Type

	// ConstInit holds the variable's initializer value as long as
	// Constant is true; it is cleared (along with Constant) the moment
	// any assignment to the variable is seen.
	ConstInit *int
	Constant  bool

	Usages int

	isTemp bool
}

// MarkUsed records one more read of the variable, for dead-store and
// dead-variable elision during optimize.
func (v *Variable) MarkUsed() { v.Usages++ }

// MarkAssigned clears the Constant flag: a variable's initializer is
// only trustworthy for inlining until the first assignment after
// declaration.
func (v *Variable) MarkAssigned() {
	v.Constant = false
	v.ConstInit = nil
}
