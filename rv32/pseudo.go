package rv32

import (
	"fmt"
	"strconv"

	asm "github.com/tsots-online/rv32asm/assembler"
)

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

// pseudo wraps an expansion callback with the shared arity check.
func pseudo(name string, arity int, expand func(ops []string) ([][]string, error)) *asm.Pseudo {
	return &asm.Pseudo{
		Name: name,
		Expand: func(line asm.SourceLine) ([][]string, error) {
			ops := asm.SplitOperands(line.Tokens[1:])
			if len(ops) != arity {
				return nil, fmt.Errorf("'%s' expects %d operands, got %d", name, arity, len(ops))
			}
			return expand(ops)
		},
	}
}

// alias defines a pseudo that rewrites to a single instruction line
// built from a template: "\0", "\1", ... substitute the pseudo's
// operands by position, any other string passes through.
func alias(name string, arity int, template ...string) *asm.Pseudo {
	return pseudo(name, arity, func(ops []string) ([][]string, error) {
		out := make([]string, len(template))
		for i, t := range template {
			if len(t) == 2 && t[0] == '\\' {
				out[i] = ops[t[1]-'0']
			} else {
				out[i] = t
			}
		}
		return [][]string{out}, nil
	})
}

// li expands to addi when the value fits 12 signed bits, and to
// lui (plus a correcting addi when the low bits are non-zero)
// otherwise.
func li() *asm.Pseudo {
	return pseudo("li", 2, func(ops []string) ([][]string, error) {
		v, err := asm.ParseImmediate(ops[1])
		if err != nil {
			return nil, fmt.Errorf("invalid immediate '%s'", ops[1])
		}
		if v >= -2048 && v < 2048 {
			return [][]string{{"addi", ops[0], "zero", itoa(v)}}, nil
		}
		if v < -(1<<31) || v > 1<<32-1 {
			return nil, fmt.Errorf("immediate %d does not fit in 32 bits", v)
		}
		// Split into an upper 20-bit and a sign-extended lower 12-bit
		// part; the addi's sign extension is compensated in the lui.
		lo := int64(int32(uint32(v)<<20) >> 20)
		hi := (v - lo) >> 12 & 0xFFFFF
		lines := [][]string{{"lui", ops[0], itoa(hi)}}
		if lo != 0 {
			lines = append(lines, []string{"addi", ops[0], ops[0], itoa(lo)})
		}
		return lines, nil
	})
}

// pseudos returns the standard RV32I pseudo-instruction set.
func pseudos() []*asm.Pseudo {
	return []*asm.Pseudo{
		li(),
		alias("nop", 0, "addi", "zero", "zero", "0"),
		alias("mv", 2, "addi", `\0`, `\1`, "0"),
		alias("not", 2, "xori", `\0`, `\1`, "-1"),
		alias("neg", 2, "sub", `\0`, "zero", `\1`),
		alias("seqz", 2, "sltiu", `\0`, `\1`, "1"),
		alias("snez", 2, "sltu", `\0`, "zero", `\1`),
		alias("sltz", 2, "slt", `\0`, `\1`, "zero"),
		alias("sgtz", 2, "slt", `\0`, "zero", `\1`),

		alias("j", 1, "jal", "zero", `\0`),
		alias("jr", 1, "jalr", "zero", `\0`, "0"),
		alias("ret", 0, "jalr", "zero", "ra", "0"),
		alias("call", 1, "jal", "ra", `\0`),

		alias("beqz", 2, "beq", `\0`, "zero", `\1`),
		alias("bnez", 2, "bne", `\0`, "zero", `\1`),
		alias("blez", 2, "bge", "zero", `\0`, `\1`),
		alias("bgez", 2, "bge", `\0`, "zero", `\1`),
		alias("bltz", 2, "blt", `\0`, "zero", `\1`),
		alias("bgtz", 2, "blt", "zero", `\0`, `\1`),
		alias("bgt", 3, "blt", `\1`, `\0`, `\2`),
		alias("ble", 3, "bge", `\1`, `\0`, `\2`),
		alias("bgtu", 3, "bltu", `\1`, `\0`, `\2`),
		alias("bleu", 3, "bgeu", `\1`, `\0`, `\2`),
	}
}
