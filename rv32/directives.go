package rv32

import (
	"fmt"
	"strconv"
	"strings"

	asm "github.com/tsots-online/rv32asm/assembler"
)

// directives returns the default directive set: segment selectors plus
// the data emitters.
func directives() []*asm.Directive {
	return []*asm.Directive{
		segment(".text"),
		segment(".data"),
		data(".byte", 1),
		data(".half", 2),
		data(".word", 4),
		str(".string", true),
		str(".asciz", true),
		str(".ascii", false),
		zero(".zero"),
	}
}

// segment switches the driver's current segment and emits nothing.
func segment(name string) *asm.Directive {
	return &asm.Directive{
		Name: name,
		Handle: func(state *asm.SegmentState, line asm.SourceLine) ([]byte, error) {
			if len(line.Tokens) != 1 {
				return nil, fmt.Errorf("'%s' takes no arguments", name)
			}
			state.Current = name
			return nil, nil
		},
	}
}

// data emits one little-endian value of the given width per operand.
func data(name string, size int) *asm.Directive {
	bits := size * 8
	min := -(int64(1) << uint(bits-1))
	max := int64(1)<<uint(bits) - 1
	return &asm.Directive{
		Name: name,
		Handle: func(_ *asm.SegmentState, line asm.SourceLine) ([]byte, error) {
			ops := asm.SplitOperands(line.Tokens[1:])
			if len(ops) == 0 {
				return nil, fmt.Errorf("'%s' requires at least one value", name)
			}
			out := make([]byte, 0, len(ops)*size)
			for _, op := range ops {
				v, err := asm.ParseImmediate(op)
				if err != nil {
					return nil, fmt.Errorf("invalid value '%s' for '%s'", op, name)
				}
				if v < min || v > max {
					return nil, fmt.Errorf("value %d does not fit in %d bits", v, bits)
				}
				for i := 0; i < size; i++ {
					out = append(out, byte(v>>uint(8*i)))
				}
			}
			return out, nil
		},
	}
}

// str emits the bytes of a quoted string literal, NUL-terminated when
// terminate is set.
func str(name string, terminate bool) *asm.Directive {
	return &asm.Directive{
		Name: name,
		Handle: func(_ *asm.SegmentState, line asm.SourceLine) ([]byte, error) {
			if len(line.Tokens) != 2 {
				return nil, fmt.Errorf("'%s' requires a single string literal", name)
			}
			text, err := unquote(line.Tokens[1])
			if err != nil {
				return nil, fmt.Errorf("'%s': %v", name, err)
			}
			out := []byte(text)
			if terminate {
				out = append(out, 0)
			}
			return out, nil
		},
	}
}

// zero emits the requested number of zero bytes.
func zero(name string) *asm.Directive {
	return &asm.Directive{
		Name: name,
		Handle: func(_ *asm.SegmentState, line asm.SourceLine) ([]byte, error) {
			if len(line.Tokens) != 2 {
				return nil, fmt.Errorf("'%s' requires a single count argument", name)
			}
			n, err := asm.ParseImmediate(line.Tokens[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid count '%s' for '%s'", line.Tokens[1], name)
			}
			return make([]byte, n), nil
		},
	}
}

// unquote strips the surrounding quotes of a string token, applying
// the usual escape sequences for double-quoted literals.
func unquote(tok string) (string, error) {
	if len(tok) < 2 {
		return "", fmt.Errorf("malformed string literal %s", tok)
	}
	switch {
	case strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`):
		if text, err := strconv.Unquote(tok); err == nil {
			return text, nil
		}
		return tok[1 : len(tok)-1], nil
	case strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'"):
		return tok[1 : len(tok)-1], nil
	}
	return "", fmt.Errorf("malformed string literal %s", tok)
}
