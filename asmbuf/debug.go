package asmbuf

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/logrusorgru/aurora"
)

// Dump renders the buffer for --verbose diagnostics: mnemonics in blue,
// data/address operands in magenta, comments in green — following the
// teacher's asmCmd.StringWithIndent coloring scheme, generalized from
// its string-mnemonic params to this buffer's typed Operand. Symbols
// referenced by address need not be resolved yet; an unresolved one
// prints its bare name instead of an address.
func (b *Buffer) Dump(withComments bool) string {
	var sb strings.Builder
	for _, e := range b.entries {
		switch e.kind {
		case kindMark:
			sb.WriteString(aurora.Brown(e.mark.Name + ":").String())
			sb.WriteByte('\n')
			continue

		case kindRaw:
			sb.WriteString(aurora.Magenta(fmt.Sprintf("0x%x", e.rawValue&0xFFFF)).String())

		case kindInstr:
			sb.WriteString(aurora.Blue(e.op.String()).String())
			switch e.operand.Kind {
			case OperandData:
				sb.WriteString(" " + aurora.Magenta(fmt.Sprintf("0x%x", e.operand.Data&0xFFFF)).String())
			case OperandAddr:
				if addr, ok := e.operand.Sym.Resolved(); ok {
					sb.WriteString(" " + aurora.Magenta(fmt.Sprintf("0x%x", (addr+e.operand.Offset)&0xFFFF)).String())
				} else {
					sb.WriteString(" " + aurora.Magenta(e.operand.Sym.SymbolName()).String())
				}
			}
		}

		if withComments && e.comment != "" {
			sb.WriteString(aurora.Green("  ;" + e.comment).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DumpSymbols spew-dumps every symbol this buffer owns, for --verbose
// diagnostics that want the raw Pointer/Label bookkeeping rather than
// the rendered instruction stream.
func (b *Buffer) DumpSymbols() string {
	return spew.Sdump(b.symbols)
}
