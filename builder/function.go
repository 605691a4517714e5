package builder

import (
	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/types"
)

// FuncParam is one parameter slot: name, type, and the home pointer (a
// Stack-collection slot) a caller writes it to.
type FuncParam struct {
	Name string
	Type *types.Type
	Home *asmbuf.Pointer
}

// Function is a declared function: its entry label, its parameter and
// return types, and the child builder that holds its body's
// instructions. Functions with zero call sites are omitted from the
// final image (with a Debug diagnostic) rather than emitted dead.
type Function struct {
	Name       string
	Params     []FuncParam
	ReturnType *types.Type

	Entry *asmbuf.Pointer
	Body  *asmbuf.Buffer

	RefCount int

	Decl  *ast.FunctionDecl
	Block *BlockStack
}

func (f *Function) AddRef() { f.RefCount++ }
