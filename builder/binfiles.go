package builder

import (
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/PiMaker/yabal/asmbuf"
)

// BinFileEntry is one embedded external file: the bytes it was loaded
// with, and the pointer marking where it lands in the final image.
type BinFileEntry struct {
	Path     string
	FileType string
	Data     []int16
	Pointer  *asmbuf.Pointer
}

// BinFileTable loads external files asynchronously (spec §5: the only
// suspension point in an otherwise synchronous compile) ahead of
// emission, keyed by (path, file type), and embeds them in the final
// image at link time.
type BinFileTable struct {
	mu      sync.Mutex
	entries map[string]*BinFileEntry
	order   []string
}

func newBinFileTable() *BinFileTable {
	return &BinFileTable{entries: make(map[string]*BinFileEntry)}
}

func key(path, fileType string) string { return fileType + ":" + path }

// Declare registers a binary file reference during codegen, without
// blocking on its contents yet.
func (t *BinFileTable) Declare(symbols *asmbuf.Buffer, path, fileType string) *BinFileEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key(path, fileType)
	if e, ok := t.entries[k]; ok {
		return e
	}
	e := &BinFileEntry{Path: path, FileType: fileType, Pointer: symbols.CreatePointer("", 0, 1, nil)}
	t.entries[k] = e
	t.order = append(t.order, k)
	return e
}

// LoadAll reads every declared file's bytes in parallel and fixes up
// each entry's Pointer size to match, and its data to the loaded
// words. Runs after the program is built and must complete before
// linking begins (see compiler/compile.go); the core makes no attempt
// to stream files during emission.
func (t *BinFileTable) LoadAll() error {
	t.mu.Lock()
	entries := make([]*BinFileEntry, 0, len(t.order))
	for _, k := range t.order {
		entries = append(entries, t.entries[k])
	}
	t.mu.Unlock()

	errs := make([]error, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e *BinFileEntry) {
			defer wg.Done()
			raw, err := ioutil.ReadFile(e.Path)
			if err != nil {
				errs[i] = fmt.Errorf("loading binary file %q: %w", e.Path, err)
				return
			}
			words := make([]int16, len(raw))
			for j, b := range raw {
				words[j] = int16(b)
			}
			e.Data = words
			e.Pointer.SizeWords = len(words)
		}(i, e)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Entries returns every declared binary file in declaration order.
func (t *BinFileTable) Entries() []*BinFileEntry {
	out := make([]*BinFileEntry, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.entries[k])
	}
	return out
}
