// Package assembler implements a multi-pass assembler and disassembler
// core for fixed-width 32-bit instruction sets. The core is
// parameterized over an ISA descriptor supplying the instruction,
// pseudo-instruction and directive tables; the same table entries drive
// both assembly and disassembly, so encodings round-trip by
// construction.
package assembler

import (
	"fmt"
	"strings"
)

// Assembler drives the assembly passes over one ISA descriptor. A
// value is safe for concurrent use: the tables are read-only after New
// and all per-run state lives inside a single Assemble call.
type Assembler struct {
	isa        *ISA
	instrs     map[string]*Instruction
	pseudos    map[string]*Pseudo
	directives map[string]*Directive
	matcher    *Matcher
}

// Result is the outcome of assembling one program: a flat code image
// plus its symbol table, or the collected diagnostics, never both.
type Result struct {
	Program []byte
	Symbols SymbolMap
	Errors  Errors
}

// linkRequest is a deferred write of a symbol's value into the
// immediate field of an already-emitted instruction word.
type linkRequest struct {
	line   int
	offset uint32
	field  FieldLinkRequest
}

// New builds an assembler for the given descriptor. Table conflicts --
// duplicate names, a mnemonic shadowed by a directive, or two entries
// whose fixed bits collide -- are reported here, not during assembly.
func New(isa *ISA) (*Assembler, error) {
	if isa == nil {
		return nil, fmt.Errorf("nil ISA descriptor")
	}
	a := &Assembler{
		isa:        isa,
		instrs:     make(map[string]*Instruction, len(isa.Instructions)),
		pseudos:    make(map[string]*Pseudo, len(isa.Pseudos)),
		directives: make(map[string]*Directive, len(isa.Directives)),
	}
	for _, d := range isa.Directives {
		if _, ok := a.directives[d.Name]; ok {
			return nil, fmt.Errorf("directive '%s' registered twice", d.Name)
		}
		a.directives[d.Name] = d
	}
	// Derived match data goes into private copies of the entries so the
	// descriptor itself is never written.
	table := make([]*Instruction, 0, len(isa.Instructions))
	for _, orig := range isa.Instructions {
		in := new(Instruction)
		*in = *orig
		if err := in.finalize(); err != nil {
			return nil, fmt.Errorf("instruction '%s': %w", in.Name, err)
		}
		if _, ok := a.instrs[in.Name]; ok {
			return nil, fmt.Errorf("instruction '%s' registered twice", in.Name)
		}
		if _, ok := a.directives[in.Name]; ok {
			return nil, fmt.Errorf("mnemonic '%s' is shadowed by a directive", in.Name)
		}
		a.instrs[in.Name] = in
		table = append(table, in)
	}
	for _, p := range isa.Pseudos {
		if _, ok := a.pseudos[p.Name]; ok {
			return nil, fmt.Errorf("pseudo-instruction '%s' registered twice", p.Name)
		}
		if _, ok := a.directives[p.Name]; ok {
			return nil, fmt.Errorf("pseudo-instruction '%s' is shadowed by a directive", p.Name)
		}
		a.pseudos[p.Name] = p
	}
	m, err := newMatcher(table)
	if err != nil {
		return nil, err
	}
	a.matcher = m
	return a, nil
}

// ISA returns the descriptor the assembler was built from.
func (a *Assembler) ISA() *ISA { return a.isa }

// Matcher exposes the word-to-instruction matcher, for embedders that
// decode single words.
func (a *Assembler) Matcher() *Matcher { return a.matcher }

// Assemble translates a whole source program into a flat code image.
// Line numbers in diagnostics are zero-based.
func (a *Assembler) Assemble(src string) Result {
	src = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(src)
	return a.AssembleLines(strings.Split(src, "\n"))
}

// AssembleLines is Assemble for source already split into lines. The
// passes run in order and the first pass that produces any error
// aborts the pipeline; no partial image is ever returned.
func (a *Assembler) AssembleLines(lines []string) Result {
	var res Result

	program, errs := a.pass0(lines)
	if len(errs) > 0 {
		res.Errors = errs
		return res
	}

	expanded, errs := a.pass1(program)
	if len(errs) > 0 {
		res.Errors = errs
		return res
	}

	image, symbols, links, errs := a.pass2(expanded)
	if len(errs) > 0 {
		res.Errors = errs
		return res
	}

	if errs := a.pass3(image, symbols, links); len(errs) > 0 {
		res.Errors = errs
		return res
	}

	res.Program = image
	res.Symbols = symbols
	return res
}

// pass0 tokenizes and classifies each source line. Labels on lines
// that produce no tokens are carried onto the next line that does, so
// a label above blank or comment-only lines still binds to the next
// emitted offset.
func (a *Assembler) pass0(lines []string) ([]SourceLine, Errors) {
	var errs Errors
	program := make([]SourceLine, 0, len(lines))
	var carry []string

	for i, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		tokens, lerr := a.tokenize(raw, i)
		if lerr != nil {
			errs = append(errs, *lerr)
			continue
		}

		// Comments go first so that a ':' or '.' inside one cannot be
		// mistaken for a stray label or directive.
		tokens = splitCommentFromLine(tokens, a.isa.CommentDelimiter)

		symbols, rest, serr := splitSymbolsFromLine(tokens, i)
		if serr != nil {
			errs = append(errs, *serr)
			continue
		}
		directives, derr := splitDirectivesFromLine(rest, i)
		if derr != nil {
			errs = append(errs, *derr)
			continue
		}

		line := SourceLine{
			Index:      i,
			Symbols:    symbols,
			Directives: directives,
			Tokens:     rest,
		}
		if len(line.Tokens) == 0 {
			carry = append(carry, line.Symbols...)
			continue
		}
		if len(carry) > 0 {
			line.Symbols = append(carry, line.Symbols...)
			carry = nil
		}
		program = append(program, line)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return program, nil
}

// pass1 expands pseudo-instructions. The first expanded line inherits
// the source line's symbols and directives; all expanded lines keep the
// original line index for diagnostics.
func (a *Assembler) pass1(program []SourceLine) ([]SourceLine, Errors) {
	var errs Errors
	expanded := make([]SourceLine, 0, len(program))

	for _, line := range program {
		produced, err := a.expandPseudo(line)
		if err != nil {
			errs = append(errs, Error{Line: line.Index, Message: err.Error()})
			continue
		}
		if produced == nil {
			expanded = append(expanded, line)
			continue
		}
		for j, tokens := range produced {
			out := SourceLine{Index: line.Index, Tokens: tokens}
			if j == 0 {
				out.Symbols = line.Symbols
				out.Directives = line.Directives
			}
			expanded = append(expanded, out)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return expanded, nil
}

// pass2 encodes each line into the growing code image, binding symbols
// to the offset at which their line starts and recording link requests
// for immediates that referenced symbols.
func (a *Assembler) pass2(program []SourceLine) ([]byte, SymbolMap, []linkRequest, Errors) {
	var errs Errors
	var image []byte
	var links []linkRequest
	symbols := SymbolMap{}
	state := &SegmentState{Current: ".text", Pointers: map[string]uint32{}}

	for _, line := range program {
		offset := uint32(len(image))
		for _, s := range line.Symbols {
			if _, ok := symbols[s]; ok {
				errs = append(errs, errorf(line.Index, "Multiple definitions of symbol '%s'", s))
				continue
			}
			symbols[s] = offset
		}

		if d, ok := a.directives[line.Tokens[0]]; ok {
			emitted, err := d.Handle(state, line)
			if err != nil {
				errs = append(errs, Error{Line: line.Index, Message: err.Error()})
				continue
			}
			image = append(image, emitted...)
			state.Pointers[state.Current] += uint32(len(emitted))
			continue
		}

		word, link, err := a.assembleInstruction(line)
		if err != nil {
			errs = append(errs, Error{Line: line.Index, Message: err.Error()})
			continue
		}
		if link != nil {
			links = append(links, linkRequest{line: line.Index, offset: offset, field: *link})
		}
		var buf [4]byte
		a.isa.ByteOrder.PutUint32(buf[:], word)
		image = append(image, buf[:]...)
		state.Pointers[state.Current] += 4
	}

	if len(errs) > 0 {
		return nil, nil, nil, errs
	}
	return image, symbols, links, nil
}

// pass3 back-patches every link request with its symbol's value.
func (a *Assembler) pass3(image []byte, symbols SymbolMap, links []linkRequest) Errors {
	var errs Errors
	for _, req := range links {
		value, ok := symbols[req.field.Symbol]
		if !ok {
			errs = append(errs, errorf(req.line, "Unknown symbol '%s'", req.field.Symbol))
			continue
		}
		if int(req.offset)+4 > len(image) {
			errs = append(errs, errorf(req.line, "internal error: link request at offset %d is outside the program", req.offset))
			continue
		}
		imm, ok := req.field.Instruction.Fields[req.field.Field].(ImmField)
		if !ok {
			errs = append(errs, errorf(req.line, "internal error: linkage requested by a non-immediate field"))
			continue
		}
		word := a.isa.ByteOrder.Uint32(image[req.offset:])
		if err := imm.Resolve(value, &word, req.offset); err != nil {
			errs = append(errs, Error{Line: req.line, Message: err.Error()})
			continue
		}
		a.isa.ByteOrder.PutUint32(image[req.offset:], word)
	}
	return errs
}

// assembleInstruction encodes one line against the instruction table.
func (a *Assembler) assembleInstruction(line SourceLine) (uint32, *FieldLinkRequest, error) {
	if len(line.Tokens) == 0 {
		return 0, nil, fmt.Errorf("empty source lines should be impossible at this point")
	}
	in, ok := a.instrs[line.Tokens[0]]
	if !ok {
		return 0, nil, fmt.Errorf("Unknown opcode '%s'", line.Tokens[0])
	}
	return in.Assemble(a.isa, line)
}
