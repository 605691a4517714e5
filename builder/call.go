package builder

import (
	"fmt"

	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/types"
)

// buildCall evaluates a function's arguments left to right, storing
// each one straight into the callee's parameter home (see the note in
// callconv.go on why parameter storage is a fixed address rather than
// a relocatable stack frame), then emits the call-site trampoline jump.
func (b *Builder) buildCall(c *ast.CallExpr) (*types.Type, error) {
	fn, ok := b.Root.Functions[c.FunctionName]
	if !ok {
		return nil, fmt.Errorf("%s: call to undeclared function %q", c.Pos, c.FunctionName)
	}
	if len(c.Arguments) != len(fn.Params) {
		return nil, fmt.Errorf("%s: %q takes %d argument(s), %d given", c.Pos, c.FunctionName, len(fn.Params), len(c.Arguments))
	}

	for i, arg := range c.Arguments {
		if err := b.BuildExpr(arg); err != nil {
			return nil, err
		}
		b.StoreAtoHome(fn.Params[i].Home, 0, "arg "+fn.Params[i].Name)
	}

	fn.AddRef()
	b.EmitCallSite(fn.Entry)

	if fn.ReturnType == nil {
		return types.TVoid, nil
	}
	return fn.ReturnType, nil
}
