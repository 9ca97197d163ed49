package rv32_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/tsots-online/rv32asm/assembler"
	"github.com/tsots-online/rv32asm/rv32"
)

func newAssembler(t *testing.T) *assembler.Assembler {
	t.Helper()
	a, err := assembler.New(rv32.ISA())
	if err != nil {
		t.Fatalf("building RV32I assembler: %v", err)
	}
	return a
}

// Assembles source and checks the image against the expected words.
func assembleAndMatch(t *testing.T, a *assembler.Assembler, src string, want []uint32) assembler.Result {
	t.Helper()
	res := a.Assemble(src)
	if len(res.Errors) > 0 {
		t.Fatalf("failed to assemble:\n%s\nerrors: %v", src, res.Errors)
	}
	if len(res.Program) != 4*len(want) {
		t.Fatalf("image size = %d bytes, want %d\nsource:\n%s", len(res.Program), 4*len(want), src)
	}
	for i, w := range want {
		got := binary.LittleEndian.Uint32(res.Program[4*i:])
		if got != w {
			t.Errorf("word %d = %#08x, want %#08x\nsource:\n%s", i, got, w, src)
		}
	}
	return res
}

func TestBasicEncodings(t *testing.T) {
	a := newAssembler(t)
	tests := []struct {
		name, src string
		want      uint32
	}{
		{"ADDI", "addi x1, x0, 5", 0x00500093},
		{"ADDI_Negative", "addi x1, x0, -1", 0xFFF00093},
		{"ADDI_ABINames", "addi ra, zero, 5", 0x00500093},
		{"LUI", "lui x5, 0x12345", 0x123452B7},
		{"AUIPC", "auipc x5, 1", 0x00001297},
		{"ADD", "add x3, x1, x2", 0x002081B3},
		{"SUB", "sub x3, x1, x2", 0x402081B3},
		{"AND", "and x3, x1, x2", 0x0020F1B3},
		{"OR", "or x3, x1, x2", 0x0020E1B3},
		{"XOR", "xor x3, x1, x2", 0x0020C1B3},
		{"SLLI", "slli x1, x2, 3", 0x00311093},
		{"SRAI", "srai x1, x2, 3", 0x40315093},
		{"LW", "lw x5, 0(x6)", 0x00032283},
		{"LW_Offset", "lw x5, 8(x6)", 0x00832283},
		{"SW", "sw x5, 8(x6)", 0x00532423},
		{"JALR", "jalr x1, x2, 4", 0x004100E7},
		{"ECALL", "ecall", 0x00000073},
		{"EBREAK", "ebreak", 0x00100073},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assembleAndMatch(t, a, tc.src, []uint32{tc.want})
		})
	}
}

func TestJalSymbolResolution(t *testing.T) {
	a := newAssembler(t)
	src := `start:
  jal ra, end
  nop
end:
  jal ra, start
`
	res := assembleAndMatch(t, a, src, []uint32{
		0x008000EF, // jal ra, +8
		0x00000013, // nop -> addi x0, x0, 0
		0xFF9FF0EF, // jal ra, -8
	})
	if res.Symbols["start"] != 0 || res.Symbols["end"] != 8 {
		t.Errorf("symbols = %v, want start:0 end:8", res.Symbols)
	}
}

func TestBranchEncodings(t *testing.T) {
	a := newAssembler(t)
	assembleAndMatch(t, a, "loop: beq x1, x2, loop\n", []uint32{0x00208063})
	assembleAndMatch(t, a, "bne x1, x2, next\nnop\nnext: nop\n", []uint32{
		0x00209463, 0x00000013, 0x00000013,
	})
}

func TestLiExpansion(t *testing.T) {
	a := newAssembler(t)
	tests := []struct {
		name, src string
		want      []uint32
	}{
		{"Small", "li x5, 5", []uint32{0x00500293}},
		{"NegativeSmall", "li x5, -2048", []uint32{0x80000293}},
		{"Large", "li x5, 0x12345678", []uint32{0x123452B7, 0x67828293}},
		{"LowBitsClear", "li x5, 0x12345000", []uint32{0x123452B7}},
		{"MinusOne", "li x5, -1", []uint32{0xFFF00293}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assembleAndMatch(t, a, tc.src, tc.want)
		})
	}
}

func TestPseudoExpansions(t *testing.T) {
	a := newAssembler(t)
	tests := []struct {
		name, src string
		want      uint32
	}{
		{"NOP", "nop", 0x00000013},
		{"MV", "mv x1, x2", 0x00010093},
		{"NOT", "not x1, x2", 0xFFF14093},
		{"NEG", "neg x1, x2", 0x402000B3},
		{"SEQZ", "seqz x1, x2", 0x00113093},
		{"SNEZ", "snez x1, x2", 0x002030B3},
		{"J", "here: j here", 0x0000006F},
		{"RET", "ret", 0x00008067},
		{"JR", "jr x5", 0x00028067},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assembleAndMatch(t, a, tc.src, []uint32{tc.want})
		})
	}
}

// A label on a pseudo that expands to several instructions binds to the
// offset of the first expanded word only.
func TestPseudoLabelAttribution(t *testing.T) {
	a := newAssembler(t)
	src := "big: li x5, 0x12345678\nafter: nop\n"
	res := assembleAndMatch(t, a, src, []uint32{0x123452B7, 0x67828293, 0x00000013})
	if res.Symbols["big"] != 0 {
		t.Errorf("big = %d, want 0", res.Symbols["big"])
	}
	if res.Symbols["after"] != 8 {
		t.Errorf("after = %d, want 8", res.Symbols["after"])
	}
}

func TestLabelCarriedAcrossBlankLines(t *testing.T) {
	a := newAssembler(t)
	src := "\n\nfoo:\n\naddi x1, x0, 1\n"
	res := assembleAndMatch(t, a, src, []uint32{0x00100093})
	if got := res.Symbols["foo"]; got != 0 {
		t.Errorf("foo = %d, want 0", got)
	}
}

func TestDuplicateLabel(t *testing.T) {
	a := newAssembler(t)
	res := a.Assemble("a: addi x1,x0,0\na: addi x2,x0,0\n")
	if len(res.Program) != 0 {
		t.Fatal("no program must be produced")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want one", res.Errors)
	}
	e := res.Errors[0]
	if e.Line != 1 || e.Message != "Multiple definitions of symbol 'a'" {
		t.Errorf("error = %+v", e)
	}
}

func TestUnknownSymbol(t *testing.T) {
	a := newAssembler(t)
	res := a.Assemble("jal ra, nowhere\n")
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want one", res.Errors)
	}
	if res.Errors[0].Message != "Unknown symbol 'nowhere'" {
		t.Errorf("message = %q", res.Errors[0].Message)
	}
}

func TestUnknownOpcode(t *testing.T) {
	a := newAssembler(t)
	res := a.Assemble("frobnicate x1, x2\n")
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want one", res.Errors)
	}
	if res.Errors[0].Message != "Unknown opcode 'frobnicate'" {
		t.Errorf("message = %q", res.Errors[0].Message)
	}
}

func TestImmediateRangeEndpoints(t *testing.T) {
	a := newAssembler(t)
	// Exactly at the endpoints encodes.
	assembleAndMatch(t, a, "addi x1, x0, 2047", []uint32{0x7FF00093})
	assembleAndMatch(t, a, "addi x1, x0, -2048", []uint32{0x80000093})
	// One past either endpoint is an operand error.
	for _, src := range []string{"addi x1, x0, 2048", "addi x1, x0, -2049", "lui x1, 0x100000"} {
		res := a.Assemble(src)
		if len(res.Errors) != 1 || !strings.Contains(res.Errors[0].Message, "out of range") {
			t.Errorf("Assemble(%q) errors = %v, want one range error", src, res.Errors)
		}
	}
}

func TestBranchOffsetAlignment(t *testing.T) {
	a := newAssembler(t)
	res := a.Assemble("beq x1, x2, 3\n")
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0].Message, "multiple of 2") {
		t.Errorf("errors = %v, want one alignment error", res.Errors)
	}
}

func TestDirectives(t *testing.T) {
	a := newAssembler(t)
	tests := []struct {
		name, src string
		want      []byte
	}{
		{"Byte", ".byte 1, 2, 0xFF", []byte{1, 2, 0xFF}},
		{"Half", ".half 0x1234", []byte{0x34, 0x12}},
		{"Word", ".word 0x11223344", []byte{0x44, 0x33, 0x22, 0x11}},
		{"WordNegative", ".word -1", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"String", `.string "AB"`, []byte{'A', 'B', 0}},
		{"StringSpaces", `.string "A B"`, []byte{'A', ' ', 'B', 0}},
		{"Ascii", `.ascii "AB"`, []byte{'A', 'B'}},
		{"Zero", ".zero 3", []byte{0, 0, 0}},
		{"Segments", ".text\n.data\n", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := a.Assemble(tc.src)
			if len(res.Errors) > 0 {
				t.Fatalf("errors: %v", res.Errors)
			}
			if len(res.Program) != len(tc.want) {
				t.Fatalf("image = % x, want % x", res.Program, tc.want)
			}
			for i := range tc.want {
				if res.Program[i] != tc.want[i] {
					t.Fatalf("image = % x, want % x", res.Program, tc.want)

				}
			}
		})
	}
}

func TestDirectiveErrors(t *testing.T) {
	a := newAssembler(t)
	for _, src := range []string{
		".byte",
		".byte 256",
		".word bogus",
		".zero -1",
		`.string unquoted`,
		".text extra",
	} {
		res := a.Assemble(src)
		if len(res.Errors) != 1 {
			t.Errorf("Assemble(%q) errors = %v, want one", src, res.Errors)
		}
	}
}

// Labels bound in the data segment resolve for loads just like text
// labels; the image stays one flat byte vector.
func TestDataLabels(t *testing.T) {
	a := newAssembler(t)
	src := "nop\n.data\nvalue:\n.word 42\n"
	res := a.Assemble(src)
	if len(res.Errors) > 0 {
		t.Fatalf("errors: %v", res.Errors)
	}
	if got := res.Symbols["value"]; got != 4 {
		t.Errorf("value = %d, want 4", got)
	}
	if len(res.Program) != 8 {
		t.Errorf("image size = %d, want 8", len(res.Program))
	}
}

func TestTextAlignmentInvariant(t *testing.T) {
	a := newAssembler(t)
	srcs := []string{
		"nop\n",
		"nop\nnop\nnop\n",
		"start: jal ra, start\nli x1, 0x12345678\n",
	}
	for _, src := range srcs {
		res := a.Assemble(src)
		if len(res.Errors) > 0 {
			t.Fatalf("errors: %v", res.Errors)
		}
		if len(res.Program)%4 != 0 {
			t.Errorf("Assemble(%q) image size %d is not a multiple of 4", src, len(res.Program))
		}
	}
}

func TestDisassembleBasic(t *testing.T) {
	a := newAssembler(t)
	res := assembleAndMatch(t, a, "addi x1, x0, 5", []uint32{0x00500093})
	dis, err := a.Disassemble(res.Program, 0)
	if err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	if len(dis.Errors) > 0 {
		t.Fatalf("errors: %v", dis.Errors)
	}
	if dis.Program[0] != "addi ra zero 5" {
		t.Errorf("line = %q, want %q", dis.Program[0], "addi ra zero 5")
	}
}

// Any single instruction assembled from integer operands must
// disassemble to a line that re-assembles to the same word.
func TestRoundTrip(t *testing.T) {
	a := newAssembler(t)
	srcs := []string{
		"addi x1, x0, 5",
		"addi x1, x0, -2048",
		"lui x5, 0x12345",
		"auipc x31, 0xFFFFF",
		"add x3, x1, x2",
		"sub x3, x1, x2",
		"sra x3, x1, x2",
		"srai x1, x2, 31",
		"lw x5, -4(x6)",
		"sw x5, 2047(x6)",
		"jal ra, 2048",
		"jal x0, -4",
		"jalr x1, x2, -1",
		"beq x1, x2, -8",
		"bgeu x1, x2, 4094",
		"ecall",
		"ebreak",
	}
	for _, src := range srcs {
		res := a.Assemble(src)
		if len(res.Errors) > 0 {
			t.Fatalf("assemble %q: %v", src, res.Errors)
		}
		word := binary.LittleEndian.Uint32(res.Program)

		dis, err := a.Disassemble(res.Program, 0)
		if err != nil || len(dis.Errors) > 0 {
			t.Fatalf("disassemble %q: %v %v", src, err, dis.Errors)
		}
		again := a.Assemble(dis.Program[0])
		if len(again.Errors) > 0 {
			t.Fatalf("re-assemble %q (from %q): %v", dis.Program[0], src, again.Errors)
		}
		if got := binary.LittleEndian.Uint32(again.Program); got != word {
			t.Errorf("round trip of %q: %#08x -> %q -> %#08x", src, word, dis.Program[0], got)
		}
	}
}

func TestDisassembleWithSymbols(t *testing.T) {
	a := newAssembler(t)
	src := "start:\n  jal ra, end\n  nop\nend:\n  jal ra, start\n"
	res := a.Assemble(src)
	if len(res.Errors) > 0 {
		t.Fatalf("errors: %v", res.Errors)
	}
	dis, err := a.DisassembleSymbols(res.Program, 0, res.Symbols.Reverse())
	if err != nil || len(dis.Errors) > 0 {
		t.Fatalf("disassemble: %v %v", err, dis.Errors)
	}
	if dis.Program[0] != "jal ra end" {
		t.Errorf("line 0 = %q, want %q", dis.Program[0], "jal ra end")
	}
	if dis.Program[2] != "jal ra start" {
		t.Errorf("line 2 = %q, want %q", dis.Program[2], "jal ra start")
	}
}

func TestCommentHandling(t *testing.T) {
	a := newAssembler(t)
	src := "# leading comment\naddi x1, x0, 5 # trailing\n"
	assembleAndMatch(t, a, src, []uint32{0x00500093})
	// Punctuation inside a comment is inert.
	assembleAndMatch(t, a, "nop # switch to .data: later\n", []uint32{0x00000013})
}

func TestMemoryOperandSyntax(t *testing.T) {
	a := newAssembler(t)
	// Both the parenthesized and the flattened operand forms assemble.
	assembleAndMatch(t, a, "lw x5, 0(x6)", []uint32{0x00032283})
	assembleAndMatch(t, a, "lw x5 0 x6", []uint32{0x00032283})
	assembleAndMatch(t, a, "lw x5, 0(t1)", []uint32{0x00032283})
}
