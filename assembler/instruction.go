package assembler

import (
	"fmt"
	"strings"
)

// Instruction is one ISA table entry: the fixed bits identifying it and
// the operand fields that fill in the rest. The same entry drives both
// encoding and decoding.
type Instruction struct {
	Name   string
	Opcode []OpPart
	Fields []Field

	mask, bits uint32
	operands   int
}

// FieldLinkRequest marks an immediate field of an instruction that
// referenced a symbol and awaits its value.
type FieldLinkRequest struct {
	Instruction *Instruction
	Field       int
	Symbol      string
}

// finalize derives the match mask/bits and operand count, and validates
// the field layout.
func (in *Instruction) finalize() error {
	in.mask, in.bits = 0, 0
	for _, p := range in.Opcode {
		if p.Range.Lo < 0 || p.Range.Hi > 31 || p.Range.Lo > p.Range.Hi {
			return fmt.Errorf("bad opcode bit range [%d, %d]", p.Range.Lo, p.Range.Hi)
		}
		if in.mask&p.Range.mask() != 0 {
			return fmt.Errorf("overlapping opcode parts")
		}
		in.mask |= p.Range.mask()
		in.bits |= p.Range.place(p.Value)
	}
	in.operands = 0
	seen := map[int]bool{}
	for _, f := range in.Fields {
		if seen[f.TokenIndex()] {
			return fmt.Errorf("two fields consume operand %d", f.TokenIndex())
		}
		seen[f.TokenIndex()] = true
		if f.TokenIndex()+1 > in.operands {
			in.operands = f.TokenIndex() + 1
		}
	}
	for i := 0; i < in.operands; i++ {
		if !seen[i] {
			return fmt.Errorf("no field consumes operand %d", i)
		}
	}
	return nil
}

// Assemble encodes one tokenized line against this entry. When an
// immediate operand named a symbol, the returned link request must be
// resolved once the symbol's offset is known.
func (in *Instruction) Assemble(isa *ISA, line SourceLine) (uint32, *FieldLinkRequest, error) {
	ops := SplitOperands(line.Tokens[1:])
	if len(ops) != in.operands {
		return 0, nil, fmt.Errorf("'%s' expects %d operands, got %d", in.Name, in.operands, len(ops))
	}
	word := in.bits
	var link *FieldLinkRequest
	for i, f := range in.Fields {
		symbol, err := f.Assemble(isa, ops[f.TokenIndex()], &word)
		if err != nil {
			return 0, nil, err
		}
		if symbol != "" {
			link = &FieldLinkRequest{Instruction: in, Field: i, Symbol: symbol}
		}
	}
	return word, link, nil
}

// Disassemble renders word back into source tokens, mnemonic first.
// pc is the address of the word; symbols may translate PC-relative
// targets back into labels and can be nil.
func (in *Instruction) Disassemble(isa *ISA, word, pc uint32, symbols ReverseSymbolMap) ([]string, error) {
	tokens := make([]string, in.operands+1)
	tokens[0] = in.Name
	for _, f := range in.Fields {
		s, err := f.Disassemble(isa, word, pc, symbols)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Name, err)
		}
		tokens[f.TokenIndex()+1] = s
	}
	return tokens, nil
}

func (in *Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Name)
	for i := 0; i < in.operands; i++ {
		fmt.Fprintf(&b, " op%d", i)
	}
	return b.String()
}
