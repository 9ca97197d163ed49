package assembler

import "encoding/binary"

// ISA describes a concrete instruction set: its instruction, pseudo
// instruction and directive tables plus the lexical conventions the
// assembler needs. A descriptor is never mutated by the core, so one
// value can back any number of assemblers concurrently.
type ISA struct {
	Name             string
	Instructions     []*Instruction
	Pseudos          []*Pseudo
	Directives       []*Directive
	CommentDelimiter rune
	ByteOrder        binary.ByteOrder

	// Registers maps every accepted register spelling to its number;
	// RegisterNames holds the canonical spelling per number, used when
	// disassembling.
	Registers     map[string]int
	RegisterNames map[int]string
}

// RegisterNumber resolves a register spelling.
func (isa *ISA) RegisterNumber(name string) (int, bool) {
	n, ok := isa.Registers[name]
	return n, ok
}

// RegisterName returns the canonical spelling of register n.
func (isa *ISA) RegisterName(n int) (string, bool) {
	name, ok := isa.RegisterNames[n]
	return name, ok
}

// IsRegister reports whether name is a known register spelling.
func (isa *ISA) IsRegister(name string) bool {
	_, ok := isa.Registers[name]
	return ok
}
