package assembler

import (
	"fmt"
	"strings"
)

// DisassembleResult pairs rendered instruction lines with the per-word
// errors met while decoding. Error lines carry the byte offset of the
// offending word.
type DisassembleResult struct {
	Program []string
	Errors  Errors
}

// Disassemble decodes a flat code image, one text line per 32-bit
// word, joining tokens with single spaces. The base address only
// affects how PC-relative immediates translate into printed targets
// when a symbol map is supplied via DisassembleSymbols. The returned
// error is non-nil only when the image size is not a multiple of the
// word size; per-word problems accumulate in the result instead.
func (a *Assembler) Disassemble(code []byte, base uint32) (DisassembleResult, error) {
	return a.DisassembleSymbols(code, base, nil)
}

// DisassembleSymbols is Disassemble with a reverse symbol map used to
// print branch and jump targets by name.
func (a *Assembler) DisassembleSymbols(code []byte, base uint32, symbols ReverseSymbolMap) (DisassembleResult, error) {
	var res DisassembleResult
	if len(code)%4 != 0 {
		return res, fmt.Errorf("program size %d is not a multiple of the instruction size", len(code))
	}
	for i := 0; i < len(code); i += 4 {
		word := a.isa.ByteOrder.Uint32(code[i:])
		in, ok := a.matcher.Match(word)
		if !ok {
			res.Errors = append(res.Errors, errorf(i, "Unknown instruction at offset %d", i))
			continue
		}
		tokens, err := in.Disassemble(a.isa, word, base+uint32(i), symbols)
		if err != nil {
			res.Errors = append(res.Errors, Error{Line: i, Message: err.Error()})
			continue
		}
		res.Program = append(res.Program, strings.Join(tokens, " "))
	}
	return res, nil
}
