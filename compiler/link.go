package compiler

import (
	"fmt"
	"sort"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/builder"
	"github.com/PiMaker/yabal/chartable"
	"github.com/PiMaker/yabal/errs"
)

// link assembles the root builder's pieces into one buffer, in the
// order spec.md §4.7 lays out: a jump past the header, the header
// itself (data region, then each referenced function body, then the
// call trampoline and its three fixed cells if any call was ever
// emitted), the user code, and finally the literal pools behind a
// jump-over. The caller resolves the returned buffer at whatever base
// offset it needs (see compile.go) — link only decides layout order.
func link(root *builder.Builder) (*asmbuf.Buffer, error) {
	final := asmbuf.NewBuffer()
	start := root.Symbols().CreateLabel("")

	final.Emit(asmbuf.JMP, asmbuf.Addr(start), "jump past header to user code")
	final.Append(buildHeader(root))
	final.Mark(start)
	final.Append(root.Body)

	poolEnd := root.Symbols().CreateLabel("")
	final.Emit(asmbuf.JMP, asmbuf.Addr(poolEnd), "jump over literal pools")
	final.Append(buildLiteralPools(root))
	final.Mark(poolEnd)

	if root.Errors.HasErrors() {
		return nil, fmt.Errorf("link failed with errors")
	}
	return final, nil
}

// reserveDataRegion marks every pointer a collection has handed out and
// reserves its full word footprint with zero-initialized raw words —
// the data region spec.md §4.7 step 2 requires ahead of user code.
func reserveDataRegion(buf *asmbuf.Buffer, pointers []*asmbuf.Pointer) {
	for _, p := range pointers {
		buf.Mark(p)
		for i := 0; i < p.Size(); i++ {
			buf.EmitRaw(0, "")
		}
	}
}

func buildHeader(root *builder.Builder) *asmbuf.Buffer {
	header := asmbuf.NewBuffer()

	reserveDataRegion(header, root.Globals.All())
	reserveDataRegion(header, root.Temporaries.All())
	reserveDataRegion(header, root.Stack.All())

	for _, fn := range orderedFunctions(root) {
		if fn.RefCount == 0 {
			root.Errors.Debugf(errs.Single(fn.Decl.Pos), "function %q is never called, omitted", fn.Name)
			continue
		}
		// fn.Body already marks fn.Entry as its first instruction (see
		// builder.buildFunctionBody); appending it here is enough to
		// bind the entry label to wherever this splice lands.
		header.Append(fn.Body)
	}

	if root.CallUsed {
		reserveDataRegion(header, []*asmbuf.Pointer{root.SPCell(), root.RetvalCell(), root.TempCell()})
		header.Append(root.BuildTrampoline())
	}

	return header
}

// orderedFunctions returns every declared function in source order, so
// the header's layout (and any diagnostics about omitted functions) is
// deterministic across runs.
func orderedFunctions(root *builder.Builder) []*builder.Function {
	out := make([]*builder.Function, 0, len(root.Functions))
	for _, fn := range root.Functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Decl.Pos, out[j].Decl.Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
	return out
}

// buildLiteralPools emits the string pool (each literal as character
// codes terminated by a zero word) followed by the binary-file pool.
// A character outside the table records an Error and contributes a
// zero word in its place, per spec.md §4.5/§8.
func buildLiteralPools(root *builder.Builder) *asmbuf.Buffer {
	pools := asmbuf.NewBuffer()

	for _, s := range root.Strings.Values() {
		p, _ := root.Strings.Pointer(s)
		pools.Mark(p)
		for _, r := range []rune(s) {
			code, ok := chartable.Encode(r)
			if !ok {
				root.Errors.Errorf(errs.SourceRange{}, "character %q in string literal has no entry in the character table", r)
				code = 0
			}
			pools.EmitRaw(code, "")
		}
		pools.EmitRaw(0, "string terminator")
	}

	for _, e := range root.BinFiles.Entries() {
		pools.Mark(e.Pointer)
		for _, w := range e.Data {
			pools.EmitRaw(int(w), "")
		}
	}

	return pools
}
