// Package align performs global pairwise alignment of segment sequences.
package align

import "strings"

// Gap marks a position with no corresponding segment.
const Gap = "-"

// Pair is one aligned position. Either side may be Gap, never both.
type Pair struct {
	A, B string
}

// IsGap reports whether either side is a gap.
func (p Pair) IsGap() bool { return p.A == Gap || p.B == Gap }

// Alignment is an ordered sequence of aligned pairs and its DP score.
type Alignment struct {
	Pairs []Pair
	Score float64
}

// Left returns the non-gap segments of the first word, in order.
func (a Alignment) Left() []string {
	out := make([]string, 0, len(a.Pairs))
	for _, p := range a.Pairs {
		if p.A != Gap {
			out = append(out, p.A)
		}
	}
	return out
}

// Right returns the non-gap segments of the second word, in order.
func (a Alignment) Right() []string {
	out := make([]string, 0, len(a.Pairs))
	for _, p := range a.Pairs {
		if p.B != Gap {
			out = append(out, p.B)
		}
	}
	return out
}

// Swap returns the alignment with its two sides exchanged.
func (a Alignment) Swap() Alignment {
	out := Alignment{Pairs: make([]Pair, len(a.Pairs)), Score: a.Score}
	for i, p := range a.Pairs {
		out.Pairs[i] = Pair{A: p.B, B: p.A}
	}
	return out
}

// Gaps counts the gapped positions.
func (a Alignment) Gaps() int {
	n := 0
	for _, p := range a.Pairs {
		if p.IsGap() {
			n++
		}
	}
	return n
}

// String renders the alignment as "a:b a:- ...".
func (a Alignment) String() string {
	parts := make([]string, len(a.Pairs))
	for i, p := range a.Pairs {
		parts[i] = p.A + ":" + p.B
	}
	return strings.Join(parts, " ")
}
