package assembler

import "fmt"

// Matcher maps a 32-bit word to the unique instruction whose fixed
// bits it carries. It is built once per assembler and is read-only
// afterwards.
type Matcher struct {
	instructions []*Instruction
}

// newMatcher verifies that no two table entries can match the same
// word. Two entries collide when their fixed bits agree on the
// intersection of their masks.
func newMatcher(instructions []*Instruction) (*Matcher, error) {
	for i, a := range instructions {
		for _, b := range instructions[i+1:] {
			common := a.mask & b.mask
			if a.bits&common == b.bits&common {
				return nil, fmt.Errorf("instructions '%s' and '%s' can match the same word", a.Name, b.Name)
			}
		}
	}
	return &Matcher{instructions: instructions}, nil
}

// Match returns the instruction encoded by word.
func (m *Matcher) Match(word uint32) (*Instruction, bool) {
	for _, in := range m.instructions {
		if word&in.mask == in.bits {
			return in, true
		}
	}
	return nil, false
}
