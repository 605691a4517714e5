// Command yabalc is a thin CLI entry point, following the teacher's own
// mscr.go pattern of a minimal os.Args-driven driver with no flag
// library: read an input path, an output path, and an optional output
// format, run the pipeline, write the result.
package main

import (
	"io/ioutil"
	"log"
	"os"

	"github.com/PiMaker/yabal/compiler"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatalln("Command line usage: yabalc <input.yabal> <output> [asm|asmc|aexe|hex]")
	}

	inputFile := os.Args[1]
	outputFile := os.Args[2]

	format := compiler.FormatAsm
	if len(os.Args) >= 4 {
		format = compiler.Format(os.Args[3])
	}

	result, err := compiler.Compile(inputFile, compiler.Options{Format: format})
	if err != nil {
		log.Fatalln(err.Error())
	}

	if err := ioutil.WriteFile(outputFile, []byte(result.Text), 0644); err != nil {
		log.Fatalln(err.Error())
	}

	log.Printf("Wrote %d bytes to %s\n", len(result.Text), outputFile)
}
