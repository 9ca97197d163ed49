package assembler

import (
	"fmt"
	"strconv"
)

// BitRange is an inclusive slice [Lo, Hi] of bit positions inside a
// 32-bit instruction word.
type BitRange struct {
	Hi, Lo int
}

func (r BitRange) width() int {
	return r.Hi - r.Lo + 1
}

func (r BitRange) mask() uint32 {
	return uint32((uint64(1)<<uint(r.width()) - 1) << uint(r.Lo))
}

func (r BitRange) extract(word uint32) uint32 {
	return uint32(uint64(word) >> uint(r.Lo) & (uint64(1)<<uint(r.width()) - 1))
}

func (r BitRange) place(value uint32) uint32 {
	return value << uint(r.Lo) & r.mask()
}

// OpPart pins fixed instruction bits: the opcode proper plus any
// function sub-fields that select the operation.
type OpPart struct {
	Value uint32
	Range BitRange
}

// Field is a typed operand slice of an instruction word with parse and
// render behaviour. TokenIndex addresses the operand the field
// consumes, counted from zero after the mnemonic.
type Field interface {
	TokenIndex() int

	// Assemble parses the operand and ORs its bits into word. A
	// non-empty symbol means the operand referenced a label; the bits
	// stay zero and the caller must emit a link request.
	Assemble(isa *ISA, operand string, word *uint32) (symbol string, err error)

	// Disassemble renders the field's bits from word as a source token.
	Disassemble(isa *ISA, word, pc uint32, symbols ReverseSymbolMap) (string, error)
}

// RegField is a register operand occupying a single bit range.
type RegField struct {
	Token int
	Range BitRange
}

func (f RegField) TokenIndex() int { return f.Token }

func (f RegField) Assemble(isa *ISA, operand string, word *uint32) (string, error) {
	n, ok := isa.RegisterNumber(operand)
	if !ok {
		return "", fmt.Errorf("unknown register '%s'", operand)
	}
	*word |= f.Range.place(uint32(n))
	return "", nil
}

func (f RegField) Disassemble(isa *ISA, word, _ uint32, _ ReverseSymbolMap) (string, error) {
	n := int(f.Range.extract(word))
	name, ok := isa.RegisterName(n)
	if !ok {
		return "", fmt.Errorf("no register numbered %d", n)
	}
	return name, nil
}

// ImmPart maps immediate bits [Off, Off+width) onto the instruction
// bits in Range.
type ImmPart struct {
	Off   int
	Range BitRange
}

// ImmField is an integer operand. Parts describe how the value's bits
// scatter across the instruction word; low value bits not covered by
// any part are implicitly zero, which gives branch and jump offsets
// their alignment requirement. PCRel fields resolve symbols relative to
// the instruction's own offset.
type ImmField struct {
	Token  int
	Width  int
	Signed bool
	PCRel  bool
	Parts  []ImmPart
}

func (f ImmField) TokenIndex() int { return f.Token }

func (f ImmField) Assemble(isa *ISA, operand string, word *uint32) (string, error) {
	value, err := ParseImmediate(operand)
	if err != nil {
		if isSymbolName(operand) {
			return operand, nil
		}
		return "", fmt.Errorf("invalid immediate '%s'", operand)
	}
	return "", f.pack(value, word)
}

func (f ImmField) Disassemble(_ *ISA, word, pc uint32, symbols ReverseSymbolMap) (string, error) {
	v := f.decode(word)
	if f.PCRel {
		if name, ok := symbols[uint32(int64(pc)+v)]; ok {
			return name, nil
		}
	}
	return strconv.FormatInt(v, 10), nil
}

// Resolve packs a now-known symbol value into an already-emitted word.
func (f ImmField) Resolve(symbolValue uint32, word *uint32, instrOffset uint32) error {
	value := int64(symbolValue)
	if f.PCRel {
		value -= int64(instrOffset)
	}
	return f.pack(value, word)
}

func (f ImmField) pack(value int64, word *uint32) error {
	lo, hi := f.limits()
	if value < lo || value > hi {
		return fmt.Errorf("immediate %d out of range [%d, %d]", value, lo, hi)
	}
	if a := f.alignment(); a > 1 && value%int64(a) != 0 {
		return fmt.Errorf("immediate %d is not a multiple of %d", value, a)
	}
	v := uint32(value)
	for _, p := range f.Parts {
		*word |= p.Range.place(v >> uint(p.Off))
	}
	return nil
}

func (f ImmField) decode(word uint32) int64 {
	var v uint32
	for _, p := range f.Parts {
		v |= p.Range.extract(word) << uint(p.Off)
	}
	if f.Signed {
		shift := uint(32 - f.Width)
		return int64(int32(v<<shift) >> shift)
	}
	return int64(v)
}

func (f ImmField) limits() (int64, int64) {
	if f.Signed {
		return -(int64(1) << uint(f.Width-1)), int64(1)<<uint(f.Width-1) - 1
	}
	return 0, int64(1)<<uint(f.Width) - 1
}

// alignment is the implied multiple when the low immediate bits are not
// encoded anywhere in the word.
func (f ImmField) alignment() int {
	low := f.Width
	for _, p := range f.Parts {
		if p.Off < low {
			low = p.Off
		}
	}
	return 1 << uint(low)
}

// ParseImmediate converts an integer literal to its value. Decimal,
// 0x/0b/0o-prefixed and character forms are accepted.
func ParseImmediate(s string) (int64, error) {
	if len(s) >= 3 && s[0] == '\'' && s[len(s)-1] == '\'' {
		r := []rune(s[1 : len(s)-1])
		if len(r) != 1 {
			return 0, fmt.Errorf("invalid character literal %s", s)
		}
		return int64(r[0]), nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number format: %s", s)
	}
	return v, nil
}
