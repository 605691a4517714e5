package compiler

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"

	"github.com/PiMaker/yabal/ast"
)

// loader resolves imports recursively and eagerly, exactly as
// ast.Program's doc comment promises: each imported file is re-parsed
// in full and its declarations spliced in ahead of the importing file's
// own, before the builder ever sees a single combined Program. visited
// tracks absolute paths already spliced in, so a diamond import graph
// contributes each file's declarations once.
type loader struct {
	visited map[string]bool
}

func newLoader() *loader {
	return &loader{visited: make(map[string]bool)}
}

// load reads path, strips its comments, parses it, then recursively
// loads and splices in every file it imports (in source order) before
// its own declarations.
func (l *loader) load(path string) (*ast.Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}
	if l.visited[abs] {
		return &ast.Program{}, nil
	}
	l.visited[abs] = true

	raw, err := ioutil.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	log.Printf("Parsing %s into AST...\n", path)
	prog, err := parseSource(ast.StripComments(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.CommentHeaders = ast.ParseHeaderComments(string(raw))

	merged := &ast.Program{Pos: prog.Pos, CommentHeaders: prog.CommentHeaders}
	dir := filepath.Dir(abs)
	for _, imp := range prog.Imports {
		importPath := imp.Path
		if !filepath.IsAbs(importPath) {
			importPath = filepath.Join(dir, importPath)
		}
		sub, err := l.load(importPath)
		if err != nil {
			return nil, fmt.Errorf("%s: import %q: %w", path, imp.Path, err)
		}
		merged.Declarations = append(merged.Declarations, sub.Declarations...)
	}
	merged.Declarations = append(merged.Declarations, prog.Declarations...)
	return merged, nil
}

// LoadProgram parses rootPath and every file it imports (transitively),
// returning one Program whose Declarations are in import-then-source
// order.
func LoadProgram(rootPath string) (*ast.Program, error) {
	return newLoader().load(rootPath)
}
