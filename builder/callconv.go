package builder

import "github.com/PiMaker/yabal/asmbuf"

// The target machine has no hardware call/return; every function call
// goes through a single shared trampoline. A call site writes its
// arguments into the callee's parameter home pointers (each a fixed
// address — see the "open question" note in DESIGN.md on why this core
// does not implement a relocatable/reentrant stack), sets C to the
// callee's entry, B to the label to resume at, and jumps to __call.
// After __return jumps back there, the resumed code reloads the return
// value from the fixed RetvalCell.

// EmitCallSite evaluates no expressions itself — args must already be
// stored into the callee's parameter homes by the caller — and emits
// the set-registers-and-jump sequence, then marks the resume label and
// reloads the return value into A there, so the caller can continue
// emitting after it.
func (b *Builder) EmitCallSite(entry *asmbuf.Pointer) {
	resume := b.Symbols().CreateLabel("")

	b.Body.Emit(asmbuf.LDIC, asmbuf.Addr(entry), "callee entry -> C")
	b.Body.Emit(asmbuf.LDIB, asmbuf.Addr(resume), "resume point -> B")
	b.Body.Emit(asmbuf.AIN, asmbuf.Addr(b.SPCell()), "A = current SP, as __call expects on entry")
	b.Body.Emit(asmbuf.JMP, asmbuf.Addr(b.CallLabel()), "jump to shared call trampoline")

	b.Body.Mark(resume)
	b.Body.Emit(asmbuf.AIN, asmbuf.Addr(b.RetvalCell()), "reload return value into A")

	b.CallUsed = true
	b.Root.CallUsed = true
}

// BuildTrampoline renders the shared __call/__return bodies into a
// fresh buffer, for the linker to splice into the header once every
// function has been generated and the stack-slot collection is final.
// It spills/reloads every slot the Stack collection has ever handed
// out, via the stack-pointer cell, exactly as spec'd — even though,
// given the fixed-address variable placement this core uses, the round
// trip is idempotent for the non-reentrant call patterns it's ever
// asked to compile.
func (b *Builder) BuildTrampoline() *asmbuf.Buffer {
	buf := asmbuf.NewBuffer()
	slots := b.Stack.All()
	count := len(slots)

	buf.Mark(b.CallLabel())
	// On entry: A = the caller's current SP value, B = the resume
	// label to return to, C = the callee's entry. Stash SP (A gets
	// clobbered by the loads below) before anything else.
	buf.Emit(asmbuf.STA, asmbuf.Addr(b.TempCell()), "stash incoming SP")

	// mem[SP] = return address. A is still SP and B is still the
	// resume label, so this is a direct store-indirect.
	buf.Emit(asmbuf.STIND, asmbuf.Operand{}, "mem[SP] = return address")

	for k, slot := range slots {
		buf.Emit(asmbuf.AIN, asmbuf.Addr(slot), "load slot's live value")
		buf.Emit(asmbuf.STA, asmbuf.Addr(b.RetvalCell()), "stash it (reusing retval cell as scratch)")
		buf.Emit(asmbuf.AIN, asmbuf.Addr(b.TempCell()), "A = SP")
		buf.Emit(asmbuf.LDIB, asmbuf.Imm(k+1), "")
		buf.Emit(asmbuf.ADD, asmbuf.Operand{}, "A = SP + (k+1)")
		buf.Emit(asmbuf.BIN, asmbuf.Addr(b.RetvalCell()), "B = slot's value")
		buf.Emit(asmbuf.STIND, asmbuf.Operand{}, "mem[SP+k+1] = slot's value")
	}

	buf.Emit(asmbuf.AIN, asmbuf.Addr(b.TempCell()), "A = old SP")
	buf.Emit(asmbuf.LDIB, asmbuf.Imm(count+1), "")
	buf.Emit(asmbuf.ADD, asmbuf.Operand{}, "A = old SP + count + 1")
	buf.Emit(asmbuf.STA, asmbuf.Addr(b.SPCell()), "commit new SP")
	buf.Emit(asmbuf.JMPR, asmbuf.Operand{}, "jump to callee (its entry is already in C)")

	buf.Mark(b.ReturnLabel())
	buf.Emit(asmbuf.STA, asmbuf.Addr(b.RetvalCell()), "store A into the return-value cell")

	buf.Emit(asmbuf.AIN, asmbuf.Addr(b.SPCell()), "A = current SP")
	buf.Emit(asmbuf.LDIB, asmbuf.Imm(count+1), "")
	buf.Emit(asmbuf.SUB, asmbuf.Operand{}, "A = SP - (count+1), the frame base")
	buf.Emit(asmbuf.STA, asmbuf.Addr(b.SPCell()), "commit restored SP")
	buf.Emit(asmbuf.STA, asmbuf.Addr(b.TempCell()), "stash frame base for slot reloads")

	for k, slot := range slots {
		buf.Emit(asmbuf.AIN, asmbuf.Addr(b.TempCell()), "A = frame base")
		buf.Emit(asmbuf.LDIB, asmbuf.Imm(k+1), "")
		buf.Emit(asmbuf.ADD, asmbuf.Operand{}, "A = frame base + (k+1)")
		buf.Emit(asmbuf.LDIND, asmbuf.Operand{}, "A = mem[frame base + k+1]")
		buf.Emit(asmbuf.STA, asmbuf.Addr(slot), "restore slot's live value")
	}

	buf.Emit(asmbuf.AIN, asmbuf.Addr(b.TempCell()), "A = frame base")
	buf.Emit(asmbuf.LDIND, asmbuf.Operand{}, "A = mem[frame base] (saved return address)")
	buf.Emit(asmbuf.SWAPAC, asmbuf.Operand{}, "address -> C")
	buf.Emit(asmbuf.JMPR, asmbuf.Operand{}, "jump to saved return address")

	return buf
}
