package builder

import "github.com/PiMaker/yabal/asmbuf"

// StringTable deduplicates string literals by value. Each distinct
// string is emitted, at link time, as a sequence of character codes
// terminated by a zero word.
type StringTable struct {
	byValue map[string]*asmbuf.Pointer
	order   []string
}

func newStringTable() *StringTable {
	return &StringTable{byValue: make(map[string]*asmbuf.Pointer)}
}

// Intern returns the pointer for value, allocating a fresh one (sized
// for its character codes plus a terminator) the first time value is
// seen.
func (t *StringTable) Intern(symbols *asmbuf.Buffer, value string) *asmbuf.Pointer {
	if p, ok := t.byValue[value]; ok {
		return p
	}
	size := len([]rune(value)) + 1 // + zero terminator
	p := symbols.CreatePointer("", 0, size, nil)
	t.byValue[value] = p
	t.order = append(t.order, value)
	return p
}

// Values returns every interned string in first-use order, ready for
// the linker to emit as the string pool.
func (t *StringTable) Values() []string { return t.order }

// Pointer returns the pointer for an already-interned string.
func (t *StringTable) Pointer(value string) (*asmbuf.Pointer, bool) {
	p, ok := t.byValue[value]
	return p, ok
}
