// Package ast implements the Yabal frontend: lexing, a participle-driven
// grammar, and the typed AST that the builder walks through
// declare/initialize/optimize/build.
package ast

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/lexer"
)

// tokenRegex mirrors the teacher's single-regex lexer (compiler_main.go's
// LexerRegex), extended with the richer Yabal token set: compound
// assignment, the full C-family operator set, hex/decimal integers,
// string and character literals, and an Asm token that swallows an
// entire `asm { ... }` block as one lexeme so the parser can re-lex its
// body independently (see builder/inlineasm.go).
const tokenRegex = `(?s)` +
	`(\s+)|` +
	`(?P<Comment>//[^\n]*|/\*.*?\*/)|` +
	`(?P<Asm>asm\s*\{.*?\})|` +
	`(?P<Int>0[xX][0-9a-fA-F]+|\d+)|` +
	`(?P<String>"(?:[^"\\]|\\.)*")|` +
	`(?P<Char>'(?:[^'\\]|\\.)')|` +
	`(?P<Ident>[a-zA-Z_][a-zA-Z0-9_]*)|` +
	`(?P<AssignOp>\+=|-=|\*=|/=|&=|\|=|\^=|<<=|>>=)|` +
	`(?P<Op>==|!=|<=|>=|<<|>>|&&|\|\||\+\+|--|[-+*/%&|^<>!=])|` +
	`(?P<Punct>[(){}\[\].,;:@])`

var lex = lexer.Must(lexer.Regexp(tokenRegex))

// Lexer exposes the built lexer definition for the participle builder.
func Lexer() lexer.Definition { return lex }

// StripComments removes // and /* */ comments, taking care not to strip
// lookalikes inside string or character literals, following the
// teacher's approach in compiler_main.go.
var commentRegexp = regexp.MustCompile(`(?s)(?m)//.*?$|/\*.*?\*/|'(?:\\.|[^\\'])*'|"(?:\\.|[^\\"])*"`)

func StripComments(src string) string {
	return commentRegexp.ReplaceAllStringFunc(src, func(s string) string {
		if strings.HasPrefix(s, "\"") || strings.HasPrefix(s, "'") {
			return s
		}
		return " "
	})
}

// headerCommentRegexp matches a "//!" banner comment, the source file's
// equivalent of the teacher's ";autotest" header convention
// (compiler_main.go's regexpAutotestHeader) generalized from one
// specific tag to an arbitrary banner line carried through to emitted
// output.
var headerCommentRegexp = regexp.MustCompile(`(?m)^\s*//!\s?(.*?)\s*$`)

// ParseHeaderComments extracts every "//!" banner line (any line whose
// first non-blank text is "//!", wherever it appears in the file) from
// raw source text, in order, before comments are stripped.
func ParseHeaderComments(src string) []string {
	matches := headerCommentRegexp.FindAllStringSubmatch(src, -1)
	if matches == nil {
		return nil
	}
	headers := make([]string, len(matches))
	for i, m := range matches {
		headers[i] = m[1]
	}
	return headers
}

// parseIntLiteral accepts decimal and 0x-prefixed hex integer literals.
func parseIntLiteral(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return int(v), err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return int(v), err
}
