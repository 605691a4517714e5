package builder

import (
	"fmt"
	"strings"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/types"
)

// BuildStatements lowers a statement list in order, within the current
// block scope.
func (b *Builder) BuildStatements(stmts []*ast.Statement) error {
	for _, s := range stmts {
		if err := b.BuildStatement(s); err != nil {
			return err
		}
	}
	return nil
}

// BuildStatement lowers one statement. Each case leaves no value
// live in A across the call other than what the statement itself
// produces incidentally (e.g. a bare call expression's discarded
// return value).
func (b *Builder) BuildStatement(s *ast.Statement) error {
	switch {
	case s.VarDecl != nil:
		return b.buildVarDecl(s.VarDecl)
	case s.IncDec != nil:
		return b.buildIncDec(s.IncDec)
	case s.Assign != nil:
		return b.buildAssignment(s.Assign)
	case s.Return != nil:
		return b.buildReturn(s.Return)
	case s.Call != nil:
		return b.BuildExpr(s.Call)
	case s.If != nil:
		return b.buildIf(s.If)
	case s.While != nil:
		return b.buildWhile(s.While)
	case s.For != nil:
		return b.buildFor(s.For)
	case s.Asm != nil:
		return b.buildInlineAsm(*s.Asm)
	default:
		return fmt.Errorf("%s: empty statement", s.Pos)
	}
}

// buildVarDecl lowers a variable declaration. At global scope, the
// variable may already have been registered by preDeclareGlobalVar
// (builder/program.go) so a function built earlier could resolve it by
// name — in that case only the initializer still needs to run, against
// the home already allocated.
func (b *Builder) buildVarDecl(d *ast.VarDecl) error {
	if b.Block.IsGlobal {
		if v, ok := b.Block.vars[d.Name]; ok {
			if d.Init == nil {
				return nil
			}
			if _, err := b.BuildExprTyped(d.Init); err != nil {
				return err
			}
			b.StoreAtoHome(v.Home, 0, "initialize "+d.Name)
			return nil
		}
	}

	var declType *types.Type
	var err error
	if !d.Inferred {
		declType, err = b.ResolveTypeRef(d.Type)
		if err != nil {
			return err
		}
	} else if d.Init == nil {
		return fmt.Errorf("%s: %q needs either a type or an initializer", d.Pos, d.Name)
	}

	var constInit *int
	if d.Init != nil {
		if c, ok := b.foldConst(d.Init); ok {
			constInit = &c
		}
	}

	if d.Init != nil {
		initType, err := b.BuildExprTyped(d.Init)
		if err != nil {
			return err
		}
		if declType == nil {
			declType = initType
		}
	}

	var home *asmbuf.Pointer
	if b.Block.IsGlobal {
		home = b.Globals.GetNext(d.Name, declType)
	} else {
		home = b.Stack.GetNext(d.Name, declType)
	}

	v := &Variable{Name: d.Name, Home: home, Type: declType, ConstInit: constInit, Constant: constInit != nil}
	if err := b.Block.Declare(v); err != nil {
		return fmt.Errorf("%s: %w", d.Pos, err)
	}

	if d.Init != nil {
		b.StoreAtoHome(home, 0, "initialize "+d.Name)
	}
	return nil
}

func (b *Builder) buildAssignment(a *ast.Assignment) error {
	p, err := b.resolvePlace(a.Target)
	if err != nil {
		return err
	}

	if a.Operator == "=" {
		if err := b.BuildExpr(a.Value); err != nil {
			return err
		}
	} else {
		if err := b.LoadToA(p); err != nil {
			return err
		}
		tmp := b.NewTemp(types.TInteger)
		b.StoreAtoHome(tmp.Home, 0, "stash lhs for compound assign")
		if err := b.BuildExpr(a.Value); err != nil {
			b.Release(tmp)
			return err
		}
		b.Body.Emit(asmbuf.SWAPAB, asmbuf.Operand{}, "rhs -> B")
		b.Body.Emit(asmbuf.AIN, asmbuf.Addr(tmp.Home), "lhs -> A")
		b.Release(tmp)

		op := strings.TrimSuffix(a.Operator, "=")
		if _, err := b.emitALU(op, p.Type, p.Type); err != nil {
			return fmt.Errorf("%s: %w", a.Pos, err)
		}
	}

	if v, ok := b.Block.Lookup(a.Target.Name); ok && len(a.Target.Steps) == 0 {
		v.MarkAssigned()
	}

	return b.StoreFromA(p)
}

func (b *Builder) buildReturn(r *ast.ReturnStmt) error {
	switch {
	case r.Expr != nil:
		if err := b.BuildExpr(r.Expr); err != nil {
			return err
		}
	case r.Asm != nil:
		if err := b.buildInlineAsm(*r.Asm); err != nil {
			return err
		}
	}
	b.Body.Emit(asmbuf.JMP, asmbuf.Addr(b.ReturnLabel()), "return")
	return nil
}

// buildIncDec lowers a bare `x++`/`x--` statement as `x = x +/- 1`.
func (b *Builder) buildIncDec(s *ast.IncDecStmt) error {
	p, err := b.resolvePlace(s.Target)
	if err != nil {
		return err
	}
	if err := b.LoadToA(p); err != nil {
		return err
	}
	b.Body.Emit(asmbuf.LDIB, asmbuf.Imm(1), "")

	op := "+"
	if s.Operator == "--" {
		op = "-"
	}
	if _, err := b.emitALU(op, p.Type, p.Type); err != nil {
		return fmt.Errorf("%s: %w", s.Pos, err)
	}

	if v, ok := b.Block.Lookup(s.Target.Name); ok && len(s.Target.Steps) == 0 {
		v.MarkAssigned()
	}
	return b.StoreFromA(p)
}

func (b *Builder) buildIf(s *ast.IfStmt) error {
	elseLabel := b.Symbols().CreateLabel("")
	endLabel := b.Symbols().CreateLabel("")

	if err := b.BuildExpr(s.Condition); err != nil {
		return err
	}
	b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(elseLabel), "condition false")

	prev := b.PushBlock()
	if err := b.BuildStatements(s.Then); err != nil {
		b.PopBlock(prev)
		return err
	}
	b.PopBlock(prev)

	hasElse := len(s.ElseIf) > 0 || len(s.Else) > 0
	if hasElse {
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(endLabel), "")
	}
	b.Body.Mark(elseLabel)

	if len(s.ElseIf) > 0 {
		if err := b.buildIf(s.ElseIf[0]); err != nil {
			return err
		}
	} else if len(s.Else) > 0 {
		prev := b.PushBlock()
		if err := b.BuildStatements(s.Else); err != nil {
			b.PopBlock(prev)
			return err
		}
		b.PopBlock(prev)
	}

	if hasElse {
		b.Body.Mark(endLabel)
	}
	return nil
}

func (b *Builder) buildWhile(s *ast.WhileStmt) error {
	top := b.Symbols().CreateLabel("")
	end := b.Symbols().CreateLabel("")

	b.Body.Mark(top)
	if err := b.BuildExpr(s.Condition); err != nil {
		return err
	}
	b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(end), "loop condition false")

	prev := b.PushBlock()
	if err := b.BuildStatements(s.Body); err != nil {
		b.PopBlock(prev)
		return err
	}
	b.PopBlock(prev)

	b.Body.Emit(asmbuf.JMP, asmbuf.Addr(top), "")
	b.Body.Mark(end)
	return nil
}

func (b *Builder) buildFor(s *ast.ForStmt) error {
	prev := b.PushBlock()
	defer b.PopBlock(prev)

	if s.Init != nil {
		if err := b.BuildStatement(s.Init); err != nil {
			return err
		}
	}

	top := b.Symbols().CreateLabel("")
	end := b.Symbols().CreateLabel("")
	b.Body.Mark(top)

	if s.Condition != nil {
		if err := b.BuildExpr(s.Condition); err != nil {
			return err
		}
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(end), "loop condition false")
	}

	inner := b.PushBlock()
	if err := b.BuildStatements(s.Body); err != nil {
		b.PopBlock(inner)
		return err
	}
	b.PopBlock(inner)

	if s.Post != nil {
		if err := b.BuildStatement(s.Post); err != nil {
			return err
		}
	}

	b.Body.Emit(asmbuf.JMP, asmbuf.Addr(top), "")
	b.Body.Mark(end)
	return nil
}
