package builder

import "testing"

import (
	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/types"
	"github.com/stretchr/testify/assert"
)

func TestGetNextSizesFromType(t *testing.T) {
	buf := asmbuf.NewBuffer()
	pc := newCollection(Globals, buf)

	scalar := pc.GetNext("", types.TInteger)
	assert.Equal(t, 1, scalar.Size())

	ptr := pc.GetNext("", types.PointerTo(types.TInteger, 0))
	assert.Equal(t, 2, ptr.Size())
}

func TestGetNextAutoNamesWhenEmpty(t *testing.T) {
	buf := asmbuf.NewBuffer()
	pc := newCollection(Temporaries, buf)

	a := pc.GetNext("", types.TInteger)
	b := pc.GetNext("", types.TInteger)

	assert.NotEqual(t, a.Name, b.Name)
	assert.Contains(t, a.Name, "temp")
}

func TestCountAndWordCountTrackAllocations(t *testing.T) {
	buf := asmbuf.NewBuffer()
	pc := newCollection(Stack, buf)

	pc.GetNext("", types.TInteger)
	pc.GetNext("", types.PointerTo(types.TInteger, 0))

	assert.Equal(t, 2, pc.Count())
	assert.Equal(t, 3, pc.WordCount())
}

func TestAllReturnsAllocationOrder(t *testing.T) {
	buf := asmbuf.NewBuffer()
	pc := newCollection(Globals, buf)

	first := pc.GetNext("named", types.TInteger)
	second := pc.GetNext("", types.TInteger)

	all := pc.All()
	assert.Equal(t, []*asmbuf.Pointer{first, second}, all)
}

func TestCollectionKindString(t *testing.T) {
	assert.Equal(t, "global", Globals.String())
	assert.Equal(t, "temp", Temporaries.String())
	assert.Equal(t, "stack", Stack.String())
}
