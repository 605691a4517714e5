package builder

import "fmt"

// BlockStack is one lexical scope frame: a link to its parent, the
// function it belongs to (nil at global scope), its own name->Variable
// map, and a reuse stack of temporaries acquired in this scope.
type BlockStack struct {
	Parent   *BlockStack
	Function *Function
	IsGlobal bool

	vars  map[string]*Variable
	temps []*Variable // acquired-and-released temporaries available for reuse
}

// NewGlobalBlock starts the root lexical scope.
func NewGlobalBlock() *BlockStack {
	return &BlockStack{IsGlobal: true, vars: make(map[string]*Variable)}
}

// Child opens a nested scope (an if/while/for body, or a function body
// when fn is non-nil).
func (b *BlockStack) Child(fn *Function) *BlockStack {
	owner := fn
	if owner == nil {
		owner = b.Function
	}
	return &BlockStack{Parent: b, Function: owner, vars: make(map[string]*Variable)}
}

// Declare adds a new variable to this scope. It is an error to
// redeclare a name already visible in this exact scope (shadowing an
// outer scope's variable is allowed).
func (b *BlockStack) Declare(v *Variable) error {
	if _, exists := b.vars[v.Name]; exists {
		return fmt.Errorf("redeclaration of %q in this scope", v.Name)
	}
	b.vars[v.Name] = v
	return nil
}

// Lookup walks the block chain outward looking for name.
func (b *BlockStack) Lookup(name string) (*Variable, bool) {
	for s := b; s != nil; s = s.Parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// PushTemp returns a temporary to the scope's reuse stack on scope exit.
func (b *BlockStack) PushTemp(v *Variable) {
	b.temps = append(b.temps, v)
}

// PopTemp reclaims a previously-released temporary, if one of a matching
// size is available.
func (b *BlockStack) PopTemp(wordSize int) (*Variable, bool) {
	for i := len(b.temps) - 1; i >= 0; i-- {
		if b.temps[i].Type.Size() == wordSize {
			v := b.temps[i]
			b.temps = append(b.temps[:i], b.temps[i+1:]...)
			return v, true
		}
	}
	return nil, false
}
