package builder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PiMaker/yabal/asmbuf"
)

// asmBlockRegexp strips the "asm { ... }" wrapper the lexer captured
// whole, leaving just the body text.
var asmBlockRegexp = regexp.MustCompile(`(?s)^asm\s*\{(.*)\}$`)

var mnemonicToOpcode = map[string]asmbuf.Opcode{
	"NOP": asmbuf.NOP, "AIN": asmbuf.AIN, "BIN": asmbuf.BIN, "CIN": asmbuf.CIN,
	"LDI": asmbuf.LDI, "LDIB": asmbuf.LDIB, "LDIC": asmbuf.LDIC,
	"ADD": asmbuf.ADD, "SUB": asmbuf.SUB, "AND": asmbuf.AND, "OR": asmbuf.OR, "XOR": asmbuf.XOR,
	"SHL": asmbuf.SHL, "SHR": asmbuf.SHR, "SWAPAB": asmbuf.SWAPAB, "SWAPAC": asmbuf.SWAPAC,
	"STA": asmbuf.STA, "LDIND": asmbuf.LDIND, "STIND": asmbuf.STIND,
	"JMP": asmbuf.JMP, "JMPZ": asmbuf.JMPZ, "JMPC": asmbuf.JMPC, "JMPR": asmbuf.JMPR,
	"SETBANK": asmbuf.SETBANK, "HALT": asmbuf.HALT,
}

// buildInlineAsm lowers one `asm { ... }` block. Each line is one
// instruction: a mnemonic, optionally followed by either a numeric
// immediate or an "@name" reference resolved against the enclosing
// scope's variables and the function/label table. Escaping to raw
// asm is meant as an occasional trapdoor, not a general assembler —
// there is no local-label support inside a block.
func (b *Builder) buildInlineAsm(raw string) error {
	m := asmBlockRegexp.FindStringSubmatch(raw)
	body := raw
	if m != nil {
		body = m[1]
	}

	lines := strings.FieldsFunc(body, func(r rune) bool { return r == '\n' || r == ';' })
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if err := b.buildInlineAsmLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildInlineAsmLine(line string) error {
	fields := strings.Fields(line)
	mnemonic := strings.ToUpper(fields[0])
	op, ok := mnemonicToOpcode[mnemonic]
	if !ok {
		return fmt.Errorf("asm block: unknown instruction %q", fields[0])
	}

	if !op.TakesOperand() {
		b.Body.Emit(op, asmbuf.Operand{}, "inline asm")
		return nil
	}
	if len(fields) < 2 {
		return fmt.Errorf("asm block: %q requires an operand", mnemonic)
	}

	operand, err := b.resolveAsmOperand(fields[1])
	if err != nil {
		return err
	}
	b.Body.Emit(op, operand, "inline asm")
	return nil
}

func (b *Builder) resolveAsmOperand(tok string) (asmbuf.Operand, error) {
	if strings.HasPrefix(tok, "@") {
		name := tok[1:]
		if v, ok := b.Block.Lookup(name); ok {
			return asmbuf.Addr(v.Home), nil
		}
		if fn, ok := b.Root.Functions[name]; ok {
			return asmbuf.Addr(fn.Entry), nil
		}
		return asmbuf.Operand{}, fmt.Errorf("asm block: unknown reference @%s", name)
	}

	v, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X"), asmRadix(tok), 32)
	if err != nil {
		return asmbuf.Operand{}, fmt.Errorf("asm block: invalid operand %q", tok)
	}
	return asmbuf.Imm(int(v)), nil
}

func asmRadix(tok string) int {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		return 16
	}
	return 10
}
