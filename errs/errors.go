// Package errs implements the compiler's accumulating diagnostics list.
// Unlike the teacher's panic/log.Fatalln style, Yabal collects every
// diagnostic against the SourceRange it was raised for so the driver can
// print as many problems as were found in one pass.
package errs

import (
	"fmt"
	"sort"

	"github.com/alecthomas/participle/lexer"
)

// Level classifies a diagnostic's severity.
type Level int

const (
	Debug Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// SourceRange locates a diagnostic in the original source text. Start is
// always populated; End equals Start when a diagnostic concerns a single
// token rather than a span (see Single).
type SourceRange struct {
	Start lexer.Position
	End   lexer.Position
}

// Single builds a SourceRange covering exactly one position.
func Single(pos lexer.Position) SourceRange {
	return SourceRange{Start: pos, End: pos}
}

func (r SourceRange) String() string {
	return r.Start.String()
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Level   Level
	Message string
}

// List accumulates diagnostics keyed by the SourceRange that produced
// them. Compilation keeps going after non-fatal diagnostics so that a
// single pass surfaces as many problems as possible; the final image is
// suppressed only if at least one Error-level diagnostic was recorded.
type List struct {
	byRange map[SourceRange][]Diagnostic
	order   []SourceRange
}

// NewList returns an empty diagnostics list.
func NewList() *List {
	return &List{byRange: make(map[SourceRange][]Diagnostic)}
}

func (l *List) add(r SourceRange, level Level, msg string) {
	if _, ok := l.byRange[r]; !ok {
		l.order = append(l.order, r)
	}
	l.byRange[r] = append(l.byRange[r], Diagnostic{Level: level, Message: msg})
}

// Debugf records a Debug-level diagnostic. Debug diagnostics never fail
// compilation, e.g. "function X never called, omitted".
func (l *List) Debugf(r SourceRange, format string, args ...interface{}) {
	l.add(r, Debug, fmt.Sprintf(format, args...))
}

// Warnf records a Warning-level diagnostic.
func (l *List) Warnf(r SourceRange, format string, args ...interface{}) {
	l.add(r, Warning, fmt.Sprintf(format, args...))
}

// Errorf records an Error-level diagnostic. Any Error recorded anywhere
// suppresses the final image.
func (l *List) Errorf(r SourceRange, format string, args ...interface{}) {
	l.add(r, Error, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any Error-level diagnostic was recorded.
func (l *List) HasErrors() bool {
	for _, diags := range l.byRange {
		for _, d := range diags {
			if d.Level == Error {
				return true
			}
		}
	}
	return false
}

// All returns every diagnostic in source order, each paired with the
// range it was raised against.
func (l *List) All() []struct {
	Range SourceRange
	Diagnostic
} {
	ranges := append([]SourceRange(nil), l.order...)
	sort.Slice(ranges, func(i, j int) bool {
		a, b := ranges[i].Start, ranges[j].Start
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	var out []struct {
		Range SourceRange
		Diagnostic
	}
	for _, r := range ranges {
		for _, d := range l.byRange[r] {
			out = append(out, struct {
				Range SourceRange
				Diagnostic
			}{Range: r, Diagnostic: d})
		}
	}
	return out
}
