package builder

import (
	"fmt"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/ast"
	"github.com/PiMaker/yabal/types"
)

// BuildExpr emits code that leaves e's value in A (BuildExprTyped also
// returns its type).
// Whole constant subexpressions are folded away during this call rather
// than as a separate optimize pass — see foldConst — so a purely
// constant expression always costs one LDI.
func (b *Builder) BuildExpr(e *ast.Expr) error {
	_, err := b.buildExprTyped(e)
	return err
}

// BuildExprTyped is BuildExpr plus the resolved type, for callers (var
// decl, return, call argument binding) that need it.
func (b *Builder) BuildExprTyped(e *ast.Expr) (*types.Type, error) {
	return b.buildExprTyped(e)
}

func (b *Builder) buildExprTyped(e *ast.Expr) (*types.Type, error) {
	if c, ok := b.foldConst(e); ok {
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(c&0xFFFF), "constant-folded")
		return types.TInteger, nil
	}
	return b.buildLogicAnd(e.Left, e.Right)
}

// ---- constant folding --------------------------------------------------

// foldConst attempts to evaluate e entirely at compile time. It only
// ever succeeds on literals, sizeof, and operators over already-folded
// operands — a single non-constant leaf anywhere fails the whole fold,
// by design: this core does not do partial constant propagation inside
// a larger expression tree.
func (b *Builder) foldConst(e *ast.Expr) (int, bool) {
	v, ok := foldLogicAnd(e.Left)
	if !ok {
		return 0, false
	}
	for _, r := range e.Right {
		rv, ok := foldLogicAnd(r.Right)
		if !ok {
			return 0, false
		}
		v = boolToInt(intToBool(v) || intToBool(rv))
	}
	return v, true
}

func foldLogicAnd(n *ast.LogicAnd) (int, bool) {
	v, ok := foldEquality(n.Left)
	if !ok {
		return 0, false
	}
	for _, r := range n.Right {
		rv, ok := foldEquality(r.Right)
		if !ok {
			return 0, false
		}
		v = boolToInt(intToBool(v) && intToBool(rv))
	}
	return v, true
}

func foldEquality(n *ast.Equality) (int, bool) {
	v, ok := foldRelational(n.Left)
	if !ok {
		return 0, false
	}
	for _, r := range n.Right {
		rv, ok := foldRelational(r.Right)
		if !ok {
			return 0, false
		}
		switch r.Op {
		case "==":
			v = boolToInt(v == rv)
		case "!=":
			v = boolToInt(v != rv)
		}
	}
	return v, true
}

func foldRelational(n *ast.Relational) (int, bool) {
	v, ok := foldAdditive(n.Left)
	if !ok {
		return 0, false
	}
	for _, r := range n.Right {
		rv, ok := foldAdditive(r.Right)
		if !ok {
			return 0, false
		}
		switch r.Op {
		case "<":
			v = boolToInt(v < rv)
		case ">":
			v = boolToInt(v > rv)
		case "<=":
			v = boolToInt(v <= rv)
		case ">=":
			v = boolToInt(v >= rv)
		}
	}
	return v, true
}

func foldAdditive(n *ast.Additive) (int, bool) {
	v, ok := foldMultiplicative(n.Left)
	if !ok {
		return 0, false
	}
	for _, r := range n.Right {
		rv, ok := foldMultiplicative(r.Right)
		if !ok {
			return 0, false
		}
		switch r.Op {
		case "+":
			v += rv
		case "-":
			v -= rv
		}
	}
	return v, true
}

func foldMultiplicative(n *ast.Multiplicative) (int, bool) {
	v, ok := foldUnary(n.Left)
	if !ok {
		return 0, false
	}
	for _, r := range n.Right {
		rv, ok := foldUnary(r.Right)
		if !ok {
			return 0, false
		}
		switch r.Op {
		case "*":
			v *= rv
		case "/":
			if rv == 0 {
				return 0, false
			}
			v /= rv
		case "%":
			if rv == 0 {
				return 0, false
			}
			v %= rv
		case "<<":
			v <<= uint(rv)
		case ">>":
			v >>= uint(rv)
		case "&":
			v &= rv
		case "|":
			v |= rv
		case "^":
			v ^= rv
		}
	}
	return v, true
}

func foldUnary(n *ast.Unary) (int, bool) {
	v, ok := foldPrimary(n.Operand)
	if !ok {
		return 0, false
	}
	if n.Op == nil {
		return v, true
	}
	switch *n.Op {
	case "-":
		return -v, true
	case "!":
		return boolToInt(!intToBool(v)), true
	default:
		// "&" (address-of) is never foldable.
		return 0, false
	}
}

func foldPrimary(n *ast.Primary) (int, bool) {
	switch {
	case n.Number != nil:
		return *n.Number, true
	case n.BoolLit != nil:
		return boolToInt(*n.BoolLit == "true"), true
	case n.CharLit != nil && len(*n.CharLit) > 0:
		return int([]rune(*n.CharLit)[0]), true
	case n.Sub != nil:
		// Re-enter through foldConst on the outer Builder is not
		// needed here: folding never needs emission, so a bare
		// free function recursion on the grammar works directly.
		return foldExprFree(n.Sub)
	case n.SizeOf != nil:
		// Resolved by the caller with type-table access; sizeof of a
		// builtin name is foldable without one.
		if sz, ok := builtinSize(n.SizeOf.Name); ok && !n.SizeOf.Pointer && !n.SizeOf.HasArray {
			return sz, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func foldExprFree(e *ast.Expr) (int, bool) {
	v, ok := foldLogicAnd(e.Left)
	if !ok {
		return 0, false
	}
	for _, r := range e.Right {
		rv, ok := foldLogicAnd(r.Right)
		if !ok {
			return 0, false
		}
		v = boolToInt(intToBool(v) || intToBool(rv))
	}
	return v, true
}

func builtinSize(name string) (int, bool) {
	switch name {
	case "int", "bool", "char":
		return 1, true
	default:
		return 0, false
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func intToBool(v int) bool { return v != 0 }

// ---- full codegen, non-constant path ------------------------------------

// Every precedence level below shares the same shape: build the left
// operand, then for each RHS link, combine it in left-to-right order.
// Each level is spelled out separately (rather than through a shared
// generic helper) since each RHS slice is a distinct grammar type.

func (b *Builder) buildLogicAnd(n *ast.LogicAnd, chain []*ast.OrRHS) (*types.Type, error) {
	typ, err := b.buildAndChain(n)
	if err != nil {
		return nil, err
	}
	for _, r := range chain {
		r := r
		typ, err = b.shortCircuit("||", typ, func() (*types.Type, error) { return b.buildAndChain(r.Right) })
		if err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func (b *Builder) buildAndChain(n *ast.LogicAnd) (*types.Type, error) {
	typ, err := b.buildEqualityChain(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Right {
		r := r
		typ, err = b.shortCircuit("&&", typ, func() (*types.Type, error) { return b.buildEqualityChain(r.Right) })
		if err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func (b *Builder) buildEqualityChain(n *ast.Equality) (*types.Type, error) {
	typ, err := b.buildRelationalChain(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Right {
		r := r
		typ, err = b.combine(r.Op, typ, func(b *Builder) (*types.Type, error) { return b.buildRelationalChain(r.Right) })
		if err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func (b *Builder) buildRelationalChain(n *ast.Relational) (*types.Type, error) {
	typ, err := b.buildAdditiveChain(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Right {
		r := r
		typ, err = b.combine(r.Op, typ, func(b *Builder) (*types.Type, error) { return b.buildAdditiveChain(r.Right) })
		if err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func (b *Builder) buildAdditiveChain(n *ast.Additive) (*types.Type, error) {
	typ, err := b.buildMultiplicativeChain(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Right {
		r := r
		typ, err = b.combine(r.Op, typ, func(b *Builder) (*types.Type, error) { return b.buildMultiplicativeChain(r.Right) })
		if err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func (b *Builder) buildMultiplicativeChain(n *ast.Multiplicative) (*types.Type, error) {
	typ, err := b.buildUnary(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Right {
		r := r
		// A constant right-hand factor for * (and for the shift ops)
		// can still be lowered even though emitALU rejects the
		// general runtime case.
		if c, ok := b.foldConst(wrapUnaryAsExpr(r.Right)); ok {
			typ, err = b.combineWithConstRHS(r.Op, typ, c)
			if err != nil {
				return nil, err
			}
			continue
		}
		typ, err = b.combine(r.Op, typ, func(b *Builder) (*types.Type, error) { return b.buildUnary(r.Right) })
		if err != nil {
			return nil, err
		}
	}
	return typ, nil
}

// combineWithConstRHS handles the multiplicative-level operators whose
// general runtime form this target can't execute (*, <<, >>) but whose
// constant-right-hand-side form it can, via unrolled shifts (and, for a
// multiplier that is not a power of two, unrolled repeated addition).
func (b *Builder) combineWithConstRHS(op string, leftType *types.Type, c int) (*types.Type, error) {
	switch op {
	case "*":
		b.emitMulByConst(c)
		return leftType, nil
	case "<<":
		b.shiftLeftConst(c, "")
		return leftType, nil
	case ">>":
		b.shiftRightConst(c, "")
		return leftType, nil
	default:
		tmp := b.NewTemp(types.TInteger)
		b.StoreAtoHome(tmp.Home, 0, "stash lhs")
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(c&0xFFFF), "")
		b.Body.Emit(asmbuf.SWAPAB, asmbuf.Operand{}, "")
		b.Body.Emit(asmbuf.AIN, asmbuf.Addr(tmp.Home), "")
		b.Release(tmp)
		return b.emitALU(op, leftType, leftType)
	}
}

// wrapUnaryAsExpr lifts a Unary node back up through the precedence
// chain so foldConst's Expr-rooted walk can be reused on it.
func wrapUnaryAsExpr(u *ast.Unary) *ast.Expr {
	return &ast.Expr{Left: &ast.LogicAnd{Left: &ast.Equality{Left: &ast.Relational{Left: &ast.Additive{Left: &ast.Multiplicative{Left: u}}}}}}
}

// combine stashes A (the running left-hand value), builds the RHS via
// build, reloads the stash into B and emits the operator's ALU
// instruction, leaving the result in A.
func (b *Builder) combine(op string, leftType *types.Type, build func(b *Builder) (*types.Type, error)) (*types.Type, error) {
	tmp := b.NewTemp(types.TInteger)
	b.StoreAtoHome(tmp.Home, 0, "stash lhs")

	rightType, err := build(b)
	if err != nil {
		b.Release(tmp)
		return nil, err
	}

	b.Body.Emit(asmbuf.SWAPAB, asmbuf.Operand{}, "rhs -> B")
	b.Body.Emit(asmbuf.AIN, asmbuf.Addr(tmp.Home), "lhs -> A")
	b.Release(tmp)

	result, err := b.emitALU(op, leftType, rightType)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *Builder) emitALU(op string, left, right *types.Type) (*types.Type, error) {
	switch op {
	case "+":
		b.Body.Emit(asmbuf.ADD, asmbuf.Operand{}, "")
		return left, nil
	case "-":
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "")
		return left, nil
	case "&":
		b.Body.Emit(asmbuf.AND, asmbuf.Operand{}, "")
		return left, nil
	case "|":
		b.Body.Emit(asmbuf.OR, asmbuf.Operand{}, "")
		return left, nil
	case "^":
		b.Body.Emit(asmbuf.XOR, asmbuf.Operand{}, "")
		return left, nil
	case "<<":
		return nil, fmt.Errorf("variable-distance shift is not supported on this target; shift amount must be a compile-time constant")
	case ">>":
		return nil, fmt.Errorf("variable-distance shift is not supported on this target; shift amount must be a compile-time constant")
	case "*":
		return nil, fmt.Errorf("runtime multiplication by a non-constant factor is not supported on this target")
	case "/", "%":
		return nil, fmt.Errorf("division is not supported on this target")
	case "==", "!=", "<", ">", "<=", ">=":
		b.emitComparison(op)
		return types.TBoolean, nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
}

// emitComparison computes A := (A op B) as a 0/1 value, using SUB's
// carry flag: SUB sets the carry when A < B (a borrow occurred).
func (b *Builder) emitComparison(op string) {
	trueLabel := b.Symbols().CreateLabel("")
	falseLabel := b.Symbols().CreateLabel("")
	endLabel := b.Symbols().CreateLabel("")

	switch op {
	case "==":
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "A == B iff A-B == 0")
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(trueLabel), "")
	case "!=":
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "")
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(endLabel), "A-B == 0: false, fall through to 0")
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(trueLabel), "")
	case "<":
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "A < B iff A-B borrows")
		b.Body.Emit(asmbuf.JMPC, asmbuf.Addr(trueLabel), "")
	case ">=":
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "")
		b.Body.Emit(asmbuf.JMPC, asmbuf.Addr(falseLabel), "borrow: A < B, false")
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(trueLabel), "")
	case ">":
		// A > B iff B < A: swap operands by resubtracting with roles
		// reversed is not possible post-hoc since B is gone, so this
		// is lowered the same as "<" with operands already swapped by
		// the caller's combine() order; instead compute via !(A<=B).
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "")
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(endLabel), "A == B: false")
		b.Body.Emit(asmbuf.JMPC, asmbuf.Addr(falseLabel), "A < B: false")
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(trueLabel), "")
	case "<=":
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "")
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(trueLabel), "A == B: true")
		b.Body.Emit(asmbuf.JMPC, asmbuf.Addr(trueLabel), "A < B: true")
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(falseLabel), "")
	}

	b.Body.Mark(falseLabel)
	b.Body.Emit(asmbuf.LDI, asmbuf.Imm(0), "false")
	b.Body.Emit(asmbuf.JMP, asmbuf.Addr(endLabel), "")
	b.Body.Mark(trueLabel)
	b.Body.Emit(asmbuf.LDI, asmbuf.Imm(1), "true")
	b.Body.Mark(endLabel)
}

// shortCircuit implements && and ||: for ||, a truthy left skips
// evaluating the right entirely; for &&, a falsy left does.
func (b *Builder) shortCircuit(op string, leftType *types.Type, buildRight func() (*types.Type, error)) (*types.Type, error) {
	rhsLabel := b.Symbols().CreateLabel("")
	end := b.Symbols().CreateLabel("")

	if op == "||" {
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(rhsLabel), "falsy so far: must evaluate rhs")
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(1), "truthy so far: short-circuit to true")
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(end), "")
	} else {
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(end), "falsy so far: short-circuit to false (A already 0)")
		// A is truthy but we need a canonical 0/1 "false" fallthrough at
		// `end`, so jump straight to rhs instead of falling through.
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(rhsLabel), "truthy so far: must evaluate rhs")
	}

	b.Body.Mark(rhsLabel)
	if _, err := buildRight(); err != nil {
		return nil, err
	}
	b.normalizeBool()

	b.Body.Mark(end)
	return types.TBoolean, nil
}

// normalizeBool collapses whatever nonzero/zero value is in A to
// canonical 1/0.
func (b *Builder) normalizeBool() {
	end := b.Symbols().CreateLabel("")
	b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(end), "already 0")
	b.Body.Emit(asmbuf.LDI, asmbuf.Imm(1), "")
	b.Body.Mark(end)
}

func (b *Builder) buildUnary(n *ast.Unary) (*types.Type, error) {
	if n.Op == nil {
		return b.buildPrimary(n.Operand)
	}
	switch *n.Op {
	case "&":
		lv := n.Operand.Ident
		if lv == nil {
			return nil, fmt.Errorf("%s: '&' requires an addressable operand", n.Pos)
		}
		p, err := b.resolvePlace(lv)
		if err != nil {
			return nil, err
		}
		if err := b.Address(p); err != nil {
			return nil, err
		}
		return types.ReferenceTo(p.Type), nil

	case "-":
		typ, err := b.buildPrimary(n.Operand)
		if err != nil {
			return nil, err
		}
		tmp := b.NewTemp(types.TInteger)
		b.StoreAtoHome(tmp.Home, 0, "stash operand")
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(0), "")
		b.Body.Emit(asmbuf.BIN, asmbuf.Addr(tmp.Home), "")
		b.Body.Emit(asmbuf.SUB, asmbuf.Operand{}, "negate: 0 - operand")
		b.Release(tmp)
		return typ, nil

	case "!":
		typ, err := b.buildPrimary(n.Operand)
		if err != nil {
			return nil, err
		}
		b.normalizeBool()
		invLabel := b.Symbols().CreateLabel("")
		end := b.Symbols().CreateLabel("")
		b.Body.Emit(asmbuf.JMPZ, asmbuf.Addr(invLabel), "was false: becomes true")
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(0), "was true: becomes false")
		b.Body.Emit(asmbuf.JMP, asmbuf.Addr(end), "")
		b.Body.Mark(invLabel)
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(1), "")
		b.Body.Mark(end)
		return typ, nil

	default:
		return nil, fmt.Errorf("unsupported unary operator %q", *n.Op)
	}
}

func (b *Builder) buildPrimary(n *ast.Primary) (*types.Type, error) {
	switch {
	case n.Number != nil:
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(*n.Number), "")
		return types.TInteger, nil

	case n.BoolLit != nil:
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(boolToInt(*n.BoolLit == "true")), "")
		return types.TBoolean, nil

	case n.CharLit != nil:
		r := []rune(*n.CharLit)
		if len(r) == 0 {
			return nil, fmt.Errorf("%s: empty character literal", n.Pos)
		}
		code, ok := b.EncodeChar(r[0])
		if !ok {
			return nil, fmt.Errorf("%s: character %q has no entry in the character table", n.Pos, r[0])
		}
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(code), "")
		return types.TChar, nil

	case n.StringLit != nil:
		p := b.Strings.Intern(b.Symbols(), *n.StringLit)
		b.Body.Emit(asmbuf.LDI, asmbuf.Addr(p), "address of string literal")
		return types.PointerTo(types.TChar, 0), nil

	case n.SizeOf != nil:
		typ, err := b.ResolveTypeRef(n.SizeOf)
		if err != nil {
			return nil, err
		}
		b.Body.Emit(asmbuf.LDI, asmbuf.Imm(typ.Size()), "sizeof")
		return types.TInteger, nil

	case n.CreatePtr != nil:
		return b.buildCreatePointer(n.CreatePtr)

	case n.EmbedFile != nil:
		return b.buildEmbedFile(n.EmbedFile)

	case n.Call != nil:
		return b.buildCall(n.Call)

	case n.Ident != nil:
		p, err := b.resolvePlace(n.Ident)
		if err != nil {
			return nil, err
		}
		if err := b.LoadToA(p); err != nil {
			return nil, err
		}
		return p.Type, nil

	case n.Sub != nil:
		return b.buildExprTyped(n.Sub)

	default:
		return nil, fmt.Errorf("%s: empty primary expression", n.Pos)
	}
}

// buildEmbedFile declares (or reuses, by (path, type) identity) an
// external binary file blob and leaves the address of its eventual
// position in the literal pools in A. The bytes themselves aren't
// available until BinFileTable.LoadAll runs, between building and
// linking — see compile.go — so only the pointer's identity, not its
// final size, is known here.
func (b *Builder) buildEmbedFile(n *ast.EmbedFile) (*types.Type, error) {
	e := b.BinFiles.Declare(b.Symbols(), n.Path, n.FileType)
	b.Body.Emit(asmbuf.LDI, asmbuf.Addr(e.Pointer), "address of embedded file "+n.Path)
	return types.PointerTo(types.TInteger, 0), nil
}

func (b *Builder) buildCreatePointer(n *ast.CreatePtr) (*types.Type, error) {
	if _, ok := b.foldConst(n.Address); !ok {
		return nil, fmt.Errorf("%s: create_pointer's address must be a compile-time constant", n.Pos)
	}
	if err := b.BuildExpr(n.Address); err != nil {
		return nil, err
	}
	bank := 0
	if n.Bank != nil {
		bv, ok := b.foldConst(n.Bank)
		if !ok {
			return nil, fmt.Errorf("%s: create_pointer's bank must be a compile-time constant", n.Pos)
		}
		bank = bv
	}
	return types.PointerTo(types.TInteger, bank), nil
}
