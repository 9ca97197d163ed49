package assembler

import "strings"

// tokenize splits one source line into tokens. Whitespace separates
// tokens, except inside a quoted literal, which is kept verbatim
// (quotes included). A '(' directly followed by a register name and a
// ')' directly preceded by one are dropped and act as separators, so
// memory operands like 0(x6) come apart into their displacement and
// base register.
func (a *Assembler) tokenize(line string, index int) ([]string, *Error) {
	var tokens []string
	var cur strings.Builder
	var quote rune

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if quote != 0 {
			cur.WriteRune(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			cur.WriteRune(c)
		case c == ' ' || c == '\t':
			flush()
		case c == '(' && a.isa.IsRegister(identAfter(runes[i+1:])):
			flush()
		case c == ')' && a.isa.IsRegister(cur.String()):
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	if quote != 0 {
		return nil, &Error{Line: index, Message: "unterminated quote"}
	}
	flush()
	return tokens, nil
}

// identAfter returns the identifier prefix of rest, if any.
func identAfter(rest []rune) string {
	for i, c := range rest {
		if !isIdentRune(c) {
			return string(rest[:i])
		}
	}
	return string(rest)
}

func isIdentRune(c rune) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// isSymbolName reports whether s is a valid label identifier.
func isSymbolName(s string) bool {
	if s == "" {
		return false
	}
	if c := rune(s[0]); c >= '0' && c <= '9' {
		return false
	}
	for _, c := range s {
		if !isIdentRune(c) {
			return false
		}
	}
	return true
}
