package assembler

import (
	"fmt"
	"strings"
)

// SourceLine is one logical line after tokenization and classification.
// Symbols holds the labels defined on (or carried onto) the line with
// their ':' stripped. Directive tokens are recorded in Directives but
// stay in Tokens as well, so the directive handler can dispatch on
// Tokens[0].
type SourceLine struct {
	Index      int
	Symbols    []string
	Directives []string
	Tokens     []string
}

// SymbolMap binds each label to its byte offset in the code image.
type SymbolMap map[string]uint32

// ReverseSymbolMap maps byte offsets back to labels. It is only used to
// pretty-print branch and jump targets during disassembly.
type ReverseSymbolMap map[uint32]string

// Reverse inverts a symbol map. When several labels share an offset one
// of them wins.
func (m SymbolMap) Reverse() ReverseSymbolMap {
	r := make(ReverseSymbolMap, len(m))
	for name, offset := range m {
		r[offset] = name
	}
	return r
}

// splitSymbolsFromLine extracts label definitions from the front of a
// token list. A symbol token is an identifier with a single trailing
// ':'; a colon anywhere after the first non-symbol token is an error.
func splitSymbolsFromLine(tokens []string, line int) (symbols, rest []string, err *Error) {
	allowed := true
	for _, tok := range tokens {
		i := strings.IndexByte(tok, ':')
		if i < 0 {
			rest = append(rest, tok)
			allowed = false
			continue
		}
		if !allowed || i != len(tok)-1 {
			return nil, nil, &Error{Line: line, Message: "Stray ':' in line"}
		}
		name := tok[:i]
		if !isSymbolName(name) {
			return nil, nil, &Error{Line: line, Message: fmt.Sprintf("invalid symbol name '%s'", name)}
		}
		for _, s := range symbols {
			if s == name {
				return nil, nil, &Error{Line: line, Message: fmt.Sprintf("Multiple definitions of symbol '%s'", name)}
			}
		}
		symbols = append(symbols, name)
	}
	return symbols, rest, nil
}

// splitDirectivesFromLine records the '.'-prefixed tokens leading a
// line. The tokens themselves are left in place; a directive token
// after the first plain token is an error.
func splitDirectivesFromLine(tokens []string, line int) ([]string, *Error) {
	var directives []string
	allowed := true
	for _, tok := range tokens {
		if strings.HasPrefix(tok, ".") {
			if !allowed {
				return nil, &Error{Line: line, Message: "Stray '.' in line"}
			}
			directives = append(directives, tok)
		} else {
			allowed = false
		}
	}
	return directives, nil
}

// splitCommentFromLine truncates the token list at the first token
// containing the comment delimiter.
func splitCommentFromLine(tokens []string, delimiter rune) []string {
	for i, tok := range tokens {
		if strings.ContainsRune(tok, delimiter) {
			return tokens[:i]
		}
	}
	return tokens
}

// SplitOperands joins the operand tokens of a line and re-splits them
// on commas, so "x1,x0,5" and "x1, x0, 5" parse alike.
func SplitOperands(tokens []string) []string {
	var ops []string
	for _, tok := range tokens {
		for _, p := range strings.Split(tok, ",") {
			if p != "" {
				ops = append(ops, p)
			}
		}
	}
	return ops
}
