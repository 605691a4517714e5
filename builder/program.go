package builder

import (
	"fmt"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/constants"
	"github.com/PiMaker/yabal/errs"
	"github.com/PiMaker/yabal/types"
)

// BuildProgram runs the full declare/build pipeline over a parsed
// program: structs, then every top-level variable that can be
// pre-declared without building its initializer (see
// preDeclareGlobalVar), then function signatures (so forward calls
// resolve) and bodies, then the program's top-level statements in
// source order as its implicit body, finishing with a HALT. There is no
// "main" convention: a function runs only if some top-level statement
// (or another function, transitively) actually calls it.
func BuildProgram(prog *ast.Program) (*Builder, error) {
	root := NewRoot()

	for _, d := range prog.Declarations {
		if d.Struct != nil {
			if err := root.PreDeclareStruct(d.Struct.Name); err != nil {
				root.Errors.Errorf(errs.Single(d.Struct.Pos), "%s", err)
			}
		}
	}
	for _, d := range prog.Declarations {
		if d.Struct != nil {
			if err := root.DeclareStruct(d.Struct); err != nil {
				root.Errors.Errorf(errs.Single(d.Struct.Pos), "%s", err)
			}
		}
	}
	// A global variable needs to exist in the block stack before any
	// function body builds, because every function body is built before
	// any top-level statement runs: even a global written ahead of the
	// functions in source (`var a=0;` ahead of `f`/`g`, both of which
	// assign through `a`) would otherwise not be visible to them. Only its home
	// and type are registered here; the store that actually initializes
	// it still runs in source order during the top-level statement pass
	// below, alongside every other top-level statement.
	for _, d := range prog.Declarations {
		if d.Statement != nil && d.Statement.VarDecl != nil {
			if err := root.preDeclareGlobalVar(d.Statement.VarDecl); err != nil {
				root.Errors.Errorf(errs.Single(d.Statement.VarDecl.Pos), "%s", err)
			}
		}
	}
	for _, d := range prog.Declarations {
		if d.Function != nil {
			if err := root.declareFunctionSignature(d.Function); err != nil {
				root.Errors.Errorf(errs.Single(d.Function.Pos), "%s", err)
			}
		}
	}
	for _, d := range prog.Declarations {
		if d.Function != nil {
			if err := root.buildFunctionBody(d.Function); err != nil {
				root.Errors.Errorf(errs.Single(d.Function.Pos), "%s", err)
			}
		}
	}
	for _, d := range prog.Declarations {
		if d.Statement != nil {
			if err := root.BuildStatement(d.Statement); err != nil {
				root.Errors.Errorf(errs.Single(d.Statement.Pos), "%s", err)
			}
		}
	}
	root.Body.Emit(asmbuf.HALT, asmbuf.Operand{}, "program end")

	// The SP cell is only part of the image when some call was emitted
	// (see the header layout in compiler/link.go), so the prologue that
	// primes it is prepended to the user code only then. Every
	// stack-resident slot has been allocated by now, so the initial SP
	// value is final, and it runs before any top-level statement.
	if root.CallUsed {
		prologue := asmbuf.NewBuffer()
		sp := constants.DefaultStackPointer(root.Stack.Count())
		prologue.Emit(asmbuf.LDI, asmbuf.Imm(sp), "initial stack pointer")
		prologue.Emit(asmbuf.STA, asmbuf.Addr(root.SPCell()), "")
		prologue.Append(root.Body)
		root.Body = prologue
	}

	if root.Errors.HasErrors() {
		return root, fmt.Errorf("compilation failed with errors")
	}
	return root, nil
}

// preDeclareGlobalVar registers a top-level variable's home and type
// ahead of building any function body, mirroring how every function's
// own signature is declared before any body is built. Only a variable
// with an explicit type, or an initializer that folds to a compile-time
// constant, can be pre-declared this way — its initializer may not be
// built yet (it could contain a call, and SP isn't primed this early).
// Anything else is declared in the ordinary course of running top-level
// statements instead (see buildVarDecl), and so is visible only from
// that point in source order onward.
func (b *Builder) preDeclareGlobalVar(d *ast.VarDecl) error {
	var declType *types.Type
	if !d.Inferred {
		t, err := b.ResolveTypeRef(d.Type)
		if err != nil {
			return err
		}
		declType = t
	} else if d.Init != nil {
		if _, ok := b.foldConst(d.Init); !ok {
			return nil
		}
		declType = types.TInteger
	} else {
		return nil
	}

	var constInit *int
	if d.Init != nil {
		if c, ok := b.foldConst(d.Init); ok {
			constInit = &c
		}
	}

	home := b.Globals.GetNext(d.Name, declType)
	v := &Variable{Name: d.Name, Home: home, Type: declType, ConstInit: constInit, Constant: constInit != nil}
	return b.Block.Declare(v)
}

func (b *Builder) declareFunctionSignature(fd *ast.FunctionDecl) error {
	if _, exists := b.Root.Functions[fd.Name]; exists {
		return fmt.Errorf("function %q already declared", fd.Name)
	}

	retType, err := b.ResolveTypeRef(fd.ReturnType)
	if err != nil {
		return err
	}

	params := make([]FuncParam, len(fd.Params))
	for i, p := range fd.Params {
		pt, err := b.ResolveTypeRef(p.Type)
		if err != nil {
			return err
		}
		home := b.Stack.GetNext(fd.Name+"."+p.Name, pt)
		params[i] = FuncParam{Name: p.Name, Type: pt, Home: home}
	}

	entry := b.Symbols().CreateLabel(fd.Name)
	b.Root.Functions[fd.Name] = &Function{
		Name:       fd.Name,
		Params:     params,
		ReturnType: retType,
		Entry:      entry,
		Decl:       fd,
	}
	return nil
}

func (b *Builder) buildFunctionBody(fd *ast.FunctionDecl) error {
	fn := b.Root.Functions[fd.Name]
	child := b.Child(fn)
	fn.Block = child.Block

	child.Body.Mark(fn.Entry)
	for _, p := range fn.Params {
		if err := child.Block.Declare(&Variable{Name: p.Name, Home: p.Home, Type: p.Type}); err != nil {
			return err
		}
	}

	if err := child.BuildStatements(fd.Body); err != nil {
		return err
	}

	child.Body.Emit(asmbuf.JMP, asmbuf.Addr(b.ReturnLabel()), "implicit return")
	fn.Body = child.Body
	return nil
}
