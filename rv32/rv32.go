// Package rv32 provides the RV32I base integer instruction set as an
// assembler ISA descriptor: registers, instructions, the usual
// pseudo-instructions, and the default assembler directives.
package rv32

import (
	"encoding/binary"

	asm "github.com/tsots-online/rv32asm/assembler"
)

// abiNames lists the canonical ABI register names in numeric order.
// These are the names the disassembler prints.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// ISA builds the RV32I descriptor. The result is shareable between any
// number of assemblers; callers must treat it as read-only.
func ISA() *asm.ISA {
	registers := make(map[string]int, 66)
	names := make(map[int]string, 32)
	for i, name := range abiNames {
		registers[name] = i
		names[i] = name
	}
	for i := 0; i < 32; i++ {
		registers["x"+itoa(int64(i))] = i
	}
	registers["fp"] = 8

	return &asm.ISA{
		Name:             "RV32I",
		Instructions:     instructions(),
		Pseudos:          pseudos(),
		Directives:       directives(),
		CommentDelimiter: '#',
		ByteOrder:        binary.LittleEndian,
		Registers:        registers,
		RegisterNames:    names,
	}
}
