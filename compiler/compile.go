package compiler

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/PiMaker/yabal/asmbuf"
	"github.com/PiMaker/yabal/builder"
	"github.com/PiMaker/yabal/constants"
)

// Format names one of the four supported renderings of a linked image.
type Format string

const (
	FormatAsm  Format = "asm"
	FormatAsmC Format = "asmc"
	FormatAexe Format = "aexe"
	FormatHex  Format = "hex"
)

// Options controls a single compilation, overridable by the external
// CLI driver before calling Compile.
type Options struct {
	Format Format

	// Offset shifts every resolved address by this amount, for images
	// meant to run under a bootloader rather than at address 0.
	Offset int

	// Verbose gates the colorized instruction-buffer dump (see
	// asmbuf.Buffer.Dump) in addition to the ordinary progress log.
	Verbose bool
}

// Result is everything a caller might want back from a successful
// compilation: the rendered text ready to write to disk, and the
// underlying resolved word array for callers that want to feed an
// emulator directly instead of re-parsing the rendering.
type Result struct {
	Text  string
	Words []int
}

// Compile runs the full pipeline — load (with recursive import
// resolution), parse, build, link, render — over the program rooted at
// path, following the teacher's Preprocess -> GenerateAST -> GenerateASM
// staging (mscr/compiler/compiler_main.go) generalized to Yabal's own
// declare/build passes and four output encodings.
func Compile(path string, opts Options) (*Result, error) {
	log.Println("Starting compilation of " + path)

	prog, err := LoadProgram(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	log.Println("Generating code...")
	root, err := builder.BuildProgram(prog)
	if err != nil {
		logDiagnostics(root)
		return nil, fmt.Errorf("building %s: %w", path, err)
	}

	log.Println("Loading embedded binary files...")
	// Relative embed_file paths are resolved against the root source
	// file's directory, not the process's working directory.
	for _, e := range root.BinFiles.Entries() {
		if !filepath.IsAbs(e.Path) {
			e.Path = filepath.Join(filepath.Dir(path), e.Path)
		}
	}
	if err := root.BinFiles.LoadAll(); err != nil {
		return nil, fmt.Errorf("loading binary files for %s: %w", path, err)
	}

	log.Println("Resolving and linking...")
	final, err := link(root)
	if err != nil {
		logDiagnostics(root)
		return nil, fmt.Errorf("linking %s: %w", path, err)
	}

	if opts.Verbose {
		log.Println(final.Dump(true))
	}

	built, err := final.Resolve(opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	logDiagnostics(root)

	log.Printf("Compilation completed, %d words emitted\n", len(built.Words))
	return render(final, built.Words, prog.CommentHeaders, opts.Format)
}

// banner renders the compiler's version/license notice plus any
// source-carried "//!" headers as leading ";"-prefixed comment lines,
// the direct descendant of the teacher's astCommentHeader handling
// (mscr/compiler/compiler_main.go).
func banner(headers []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; Yabal %s\n", constants.CompilerVersion)
	for _, line := range strings.Split(strings.TrimSpace(constants.LicenseNotice), "\n") {
		fmt.Fprintf(&sb, "; %s\n", line)
	}
	for _, h := range headers {
		fmt.Fprintf(&sb, ";%s\n", h)
	}
	return sb.String()
}

func render(final *asmbuf.Buffer, words []int, headers []string, format Format) (*Result, error) {
	switch format {
	case FormatAsm:
		text, err := final.AssemblyText(false)
		if err != nil {
			return nil, err
		}
		return &Result{Text: banner(headers) + text, Words: words}, nil
	case FormatAsmC:
		text, err := final.AssemblyText(true)
		if err != nil {
			return nil, err
		}
		return &Result{Text: banner(headers) + text, Words: words}, nil
	case FormatAexe:
		return &Result{Text: asmbuf.HexDump(words), Words: words}, nil
	case FormatHex:
		return &Result{Text: asmbuf.LogisimImage(words, constants.DefaultProgramSize), Words: words}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func logDiagnostics(root *builder.Builder) {
	if root == nil {
		return
	}
	for _, d := range root.Errors.All() {
		log.Printf("[%s] %s: %s\n", d.Level, d.Range, d.Message)
	}
}
