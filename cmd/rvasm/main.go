// rvasm assembles RV32I source into a flat binary image.
package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/tsots-online/rv32asm/assembler"
	"github.com/tsots-online/rv32asm/rv32"
)

func main() {
	output := getopt.StringLong("output", 'o', "", "write the image to this file")
	hex := getopt.BoolLong("hex", 0, "print hex words instead of writing a file")
	verbose := getopt.BoolLong("verbose", 'v', "enable debug logging")
	getopt.SetParameters("<source.s>")
	getopt.Parse()

	args := getopt.Args()
	if len(args) != 1 {
		getopt.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	src, err := os.ReadFile(args[0])
	if err != nil {
		slog.Error("reading source", "error", err)
		os.Exit(1)
	}

	asm, err := assembler.New(rv32.ISA())
	if err != nil {
		slog.Error("building assembler", "error", err)
		os.Exit(1)
	}

	res := asm.Assemble(string(src))
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "%s:%d: %s\n", args[0], e.Line+1, e.Message)
		}
		os.Exit(1)
	}
	slog.Debug("assembled", "file", args[0], "bytes", len(res.Program))

	if *output != "" && !*hex {
		if err := os.WriteFile(*output, res.Program, 0644); err != nil {
			slog.Error("writing output", "error", err)
			os.Exit(1)
		}
		return
	}

	// --hex, or no output file: print the image as hex words.
	for i := 0; i+4 <= len(res.Program); i += 4 {
		fmt.Printf("%02x%02x%02x%02x\n",
			res.Program[i+3], res.Program[i+2], res.Program[i+1], res.Program[i])
	}
	for i := len(res.Program) &^ 3; i < len(res.Program); i++ {
		fmt.Printf("%02x\n", res.Program[i])
	}
}
