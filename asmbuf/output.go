package asmbuf

import (
	"fmt"
	"strings"
)

// AssemblyLines renders the buffer's entries to human-readable assembly
// text. Symbols referenced by address operands must already be resolved
// (call Resolve first); withComments controls whether per-instruction
// comments are appended (the "asm" vs "asmc" output formats).
func (b *Buffer) AssemblyLines(withComments bool) ([]string, error) {
	lines := make([]string, 0, len(b.entries))

	for _, e := range b.entries {
		var line string

		switch e.kind {
		case kindMark:
			continue

		case kindRaw:
			line = fmt.Sprintf("0x%x", e.rawValue&0xFFFF)

		case kindInstr:
			text, err := instrText(e)
			if err != nil {
				return nil, err
			}
			line = text
		}

		if withComments && e.comment != "" {
			line += " ;" + e.comment
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func instrText(e *entry) (string, error) {
	switch e.operand.Kind {
	case OperandNone:
		return e.op.String(), nil

	case OperandData:
		return fmt.Sprintf("%s 0x%x", e.op, e.operand.Data&0xFFFF), nil

	case OperandAddr:
		addr, ok := e.operand.Sym.Resolved()
		if !ok {
			return "", fmt.Errorf("internal error: unresolved symbol %q in assembly render", e.operand.Sym.SymbolName())
		}
		return fmt.Sprintf("%s 0x%x ; %s", e.op, (addr+e.operand.Offset)&0xFFFF, e.operand.Sym.SymbolName()), nil

	default:
		return e.op.String(), nil
	}
}

// AssemblyText joins AssemblyLines with newlines ("asm"/"asmc" formats).
func (b *Buffer) AssemblyText(withComments bool) (string, error) {
	lines, err := b.AssemblyLines(withComments)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// HexDump renders a resolved word array as one "0x%04x" literal per line
// (the "aexe" flat-hex-words format).
func HexDump(words []int) string {
	var sb strings.Builder
	for _, w := range words {
		fmt.Fprintf(&sb, "0x%04x\n", w&0xFFFF)
	}
	return sb.String()
}

// wordsPerLine bounds how many (possibly run-length-collapsed) tokens
// LogisimImage packs onto one addressed line.
const wordsPerLine = 8

// LogisimImage renders a resolved word array as a Logisim v3.0 "hex
// words addressed" memory image: a header line, then one line per run
// of up to wordsPerLine tokens, each line starting with the hex address
// of its first word followed by the words themselves, with runs of
// identical consecutive words collapsed to "count*value". If minSize
// exceeds len(words), the image is padded with a trailing zero run so
// Logisim's RAM/ROM component sees the expected length.
func LogisimImage(words []int, minSize int) string {
	var sb strings.Builder
	sb.WriteString("v3.0 hex words addressed\n")

	padded := words
	if minSize > len(words) {
		padded = make([]int, minSize)
		copy(padded, words)
	}

	i := 0
	for i < len(padded) {
		fmt.Fprintf(&sb, "%x:", i)
		for col := 0; col < wordsPerLine && i < len(padded); col++ {
			run := 1
			for i+run < len(padded) && padded[i+run] == padded[i] {
				run++
			}
			if run > 1 {
				fmt.Fprintf(&sb, " %d*%x", run, padded[i]&0xFFFF)
			} else {
				fmt.Fprintf(&sb, " %x", padded[i]&0xFFFF)
			}
			i += run
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
