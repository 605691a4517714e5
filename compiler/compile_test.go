package compiler

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestCompileSimpleProgramToAssembly(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
//! generated for a unit test
var a = 2;
var b = 2;
a = a + b;
`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Yabal")
	assert.Contains(t, result.Text, "generated for a unit test")
	assert.Contains(t, result.Text, "HALT")
	assert.NotEmpty(t, result.Words)
}

func TestCompileAexeProducesOneLinePerWord(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
var a = 1;
`)

	result, err := Compile(path, Options{Format: FormatAexe})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(result.Text), "\n")
	assert.Equal(t, len(result.Words), len(lines))
}

func TestCompileHexProducesLogisimHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
var a = 1;
`)

	result, err := Compile(path, Options{Format: FormatHex})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Text, "v3.0 hex words addressed\n"))
}

func TestCompileWithFunctionCall(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
int add(int x, int y) {
	return x + y;
}

var sum = add(2, 3);
`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "__call")
}

// A function with no call site is perfectly valid on its own — there is
// no "main" convention to require, and an uncalled function is simply
// omitted from the final image (see the Debug diagnostic path).
func TestCompileWithoutTopLevelStatementsStillHalts(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
int add(int x, int y) {
	return x + y;
}
`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "HALT")
	assert.NotContains(t, result.Text, "__call")
}

func TestCompileResolvesRecursiveImports(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "helper.yabal", `
int double(int x) {
	return x + x;
}
`)
	path := writeSource(t, dir, "main.yabal", `
import "helper.yabal";

var result = double(4);
`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Words)
}

func TestCompileEmbedsBinaryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "font.rom"), []byte{1, 2, 3, 4}, 0644))
	path := writeSource(t, dir, "main.yabal", `
var font = embed_file("font.rom", "rom");
`)

	result, err := Compile(path, Options{Format: FormatAexe})
	require.NoError(t, err)
	// the four embedded bytes must show up as words somewhere in the pool
	assert.Contains(t, result.Text, "0x0001")
	assert.Contains(t, result.Text, "0x0004")
}

func TestCompileStructBitFieldAssignment(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
struct Flags {
	int a[4]
	int b[4]
}

Flags f;
f.a = 5;
f.b = 3;
`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "AND")
	assert.Contains(t, result.Text, "OR")
}

func TestCompileStructBitFieldAssignmentAtNonzeroOffset(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
struct Flags {
	int prefix
	int a[4]
	int b[4]
}

Flags f;
f.prefix = 9;
f.a = 5;
f.b = 3;
`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "AND")
	assert.Contains(t, result.Text, "OR")
}

func TestCompileUndefinedSymbolReportsError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `
var a = doesNotExist();
`)

	_, err := Compile(path, Options{Format: FormatAsm})
	assert.Error(t, err)
}

// The following tests feed the exact scenario inputs listed as the
// testable properties' "Scenarios" — each one is the literal source
// given there, unmodified. The emulator itself is out of scope, so each
// test asserts the program compiles without error and that its output
// contains an instruction or symbol the scenario requires, rather than
// actually executing it.

func TestScenario1SimpleAddition(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `var a=2; var b=2; a = a + b;`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "HALT")
}

func TestScenario2CompoundSubtractAssign(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `var a=2; a -= 2;`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "SUB")
}

func TestScenario3GlobalMutatedAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `var a = 0; void f(int x){ a += x; g(); } void g(){ var v=1; a += v; } f(2);`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "__call")
}

func TestScenario4InlineAsmReadsAndWritesGlobal(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `var r = 0; void inc(int amount){ asm { AIN @r; BIN @amount; ADD; STA @r } } inc(1);`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "__call")
}

func TestScenario5UnsizedArrayReturnAndIndexAssign(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `int[] mem(int a){ return asm { AIN @a } } var i=1; var v=2; var m=mem(4095); m[i]=v;`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "STIND")
}

func TestScenario6UnbracedWhileBody(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `var v=10; while(v>0) v += -1;`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "JMPZ")
}

func TestScenario7ForLoopWithIncrement(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.yabal", `var v=0; for(; v<10; v++){ v += 1 }`)

	result, err := Compile(path, Options{Format: FormatAsm})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "JMPZ")
}
