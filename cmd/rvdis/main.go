// rvdis disassembles a flat RV32I binary image.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/tsots-online/rv32asm/assembler"
	"github.com/tsots-online/rv32asm/rv32"
)

func main() {
	output := getopt.StringLong("output", 'o', "", "write the listing to this file")
	base := getopt.Uint32Long("base", 'b', 0, "base address of the image")
	verbose := getopt.BoolLong("verbose", 'v', "enable debug logging")
	getopt.SetParameters("<image.bin>")
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

	code, err := os.ReadFile(args[0])
	if err != nil {
		slog.Error("reading image", "error", err)
		os.Exit(1)
	}

	asm, err := assembler.New(rv32.ISA())
	if err != nil {
		slog.Error("building assembler", "error", err)
		os.Exit(1)
	}

	res, err := asm.Disassemble(code, *base)
	if err != nil {
		slog.Error("disassembling", "error", err)
		os.Exit(1)
	}
	slog.Debug("disassembled", "file", args[0], "instructions", len(res.Program))

	listing := strings.Join(res.Program, "\n")
	if len(res.Program) > 0 {
		listing += "\n"
	}
	if *output != "" {
		if err := os.WriteFile(*output, []byte(listing), 0644); err != nil {
			slog.Error("writing output", "error", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(listing)
	}

	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "offset %d: %s\n", e.Line, e.Message)
		}
		os.Exit(1)
	}
}
