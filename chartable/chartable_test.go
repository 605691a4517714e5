package chartable

import "testing"

import "github.com/stretchr/testify/assert"

func TestEncodeKnownRunes(t *testing.T) {
	code, ok := Encode(' ')
	assert.True(t, ok)
	assert.Equal(t, 0, code)

	lower, ok := Encode('a')
	assert.True(t, ok)
	upper, ok := Encode('A')
	assert.True(t, ok)
	assert.Equal(t, lower, upper, "case should share a code")

	d0, ok := Encode('0')
	assert.True(t, ok)
	assert.Equal(t, 39, d0)
}

func TestEncodeUnknownRune(t *testing.T) {
	_, ok := Encode('é')
	assert.False(t, ok)
}

func TestMustHave(t *testing.T) {
	assert.True(t, MustHave('z'))
	assert.False(t, MustHave('€'))
}

func TestTableIsDefensiveCopy(t *testing.T) {
	snapshot := Table()
	snapshot[' '] = 999

	code, ok := Encode(' ')
	assert.True(t, ok)
	assert.Equal(t, 0, code, "mutating the snapshot must not affect the live table")
}

func TestTableCodesAreUnique(t *testing.T) {
	seen := make(map[int]rune)
	for r, code := range Table() {
		if other, dup := seen[code]; dup {
			lower := r >= 'a' && r <= 'z' || other >= 'a' && other <= 'z'
			upper := r >= 'A' && r <= 'Z' || other >= 'A' && other <= 'Z'
			if !(lower && upper) {
				t.Fatalf("code %d assigned to both %q and %q", code, other, r)
			}
			continue
		}
		seen[code] = r
	}
}
