// Package compiler ties the frontend, builder and linker together into
// the toolchain's public entry point: Compile reads a root source file,
// resolves its imports, parses and builds it, then links and renders
// the final image in the caller's requested output format.
package compiler

import (
	"github.com/alecthomas/participle"

	"github.com/PiMaker/yabal/ast"
)

// parser is built once, the same way the teacher builds its single
// package-level parser in compiler_main.go: a participle.Parser bound to
// ast.Program and the shared regex lexer, with Unquote so string literal
// tokens arrive already unescaped and UseLookahead so the parser can
// tell an LValue apart from a CallExpr (both start "Ident") without
// backtracking.
var parser = participle.MustBuild(
	&ast.Program{},
	participle.Lexer(ast.Lexer()),
	participle.Unquote("String"),
	participle.UseLookahead(5),
)

// parseSource parses already-preprocessed source text (comments
// already stripped by ast.StripComments) into a Program.
func parseSource(src string) (*ast.Program, error) {
	prog := &ast.Program{}
	if err := parser.ParseString(src, prog); err != nil {
		return nil, err
	}
	return prog, nil
}
