package segment

import (
	"fmt"

	"github.com/ieee0824/phonalign/inventory"
)

// Kind classifies a segment by its kernel.
type Kind int

const (
	Consonant Kind = iota
	Vowel
	Toneme
	Affricate
	ComplexConsonant
	Diphthong
)

var kindNames = [...]string{"consonant", "vowel", "toneme", "affricate", "complex-consonant", "diphthong"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Part is one base symbol with the diacritics bound to it, in text order.
type Part struct {
	Base       string
	Diacritics []string
}

// Segment is the structural view of a segment string.
type Segment struct {
	Text  string
	Kind  Kind
	Parts []Part
	Tones []Part // tone letters carried by a vowel segment
}

// Bases returns the kernel base symbols.
func (s Segment) Bases() []string {
	out := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		out[i] = p.Base
	}
	return out
}

// HasDiacritic reports whether any part or tone carries a diacritic
// satisfying match.
func (s Segment) HasDiacritic(match func(string) bool) bool {
	for _, ps := range [][]Part{s.Parts, s.Tones} {
		for _, p := range ps {
			for _, d := range p.Diacritics {
				if match(d) {
					return true
				}
			}
		}
	}
	return false
}

// Parse builds the structural view of one segment string as produced by a
// Segmenter.
func Parse(inv *inventory.Inventory, text string) (Segment, error) {
	seg := Segment{Text: text}
	var pending []string
	fail := func(char, reason string) error {
		return &UnrecognizedCharacterError{Word: text, Char: char, Reason: reason}
	}
	last := func() *Part {
		if len(seg.Tones) > 0 {
			return &seg.Tones[len(seg.Tones)-1]
		}
		if len(seg.Parts) > 0 {
			return &seg.Parts[len(seg.Parts)-1]
		}
		return nil
	}

	for _, r := range text {
		sym := string(r)
		if inv.IsBase(sym) {
			p := Part{Base: sym, Diacritics: pending}
			pending = nil
			if inv.IsTone(sym) && len(seg.Parts) > 0 && !inv.IsTone(seg.Parts[0].Base) {
				seg.Tones = append(seg.Tones, p)
			} else {
				seg.Parts = append(seg.Parts, p)
			}
			continue
		}
		d, ok := inv.Diacritic(sym)
		if !ok {
			return Segment{}, fail(sym, reasonUnknown)
		}
		switch d.Position {
		case inventory.Inter:
			if len(seg.Parts) == 0 {
				return Segment{}, fail(sym, reasonTieNoKernel)
			}
		case inventory.Pre:
			pending = append(pending, sym)
		case inventory.PrePost:
			if p := last(); p != nil && len(pending) == 0 {
				p.Diacritics = append(p.Diacritics, sym)
			} else {
				pending = append(pending, sym)
			}
		default:
			p := last()
			if p == nil || len(pending) > 0 {
				return Segment{}, fail(sym, reasonNoHost)
			}
			p.Diacritics = append(p.Diacritics, sym)
		}
	}
	if len(pending) > 0 {
		return Segment{}, fail(pending[len(pending)-1], reasonDanglingPre)
	}
	if len(seg.Parts) == 0 {
		return Segment{}, fmt.Errorf("parse %q: no base symbol", text)
	}
	seg.Kind = classify(inv, seg.Parts)
	return seg, nil
}

func classify(inv *inventory.Inventory, parts []Part) Kind {
	if inv.IsTone(parts[0].Base) {
		return Toneme
	}
	if len(parts) == 1 {
		if inv.IsVowel(parts[0].Base) {
			return Vowel
		}
		return Consonant
	}

	vowels, vocalic := 0, 0
	for _, p := range parts {
		switch {
		case inv.IsVowel(p.Base):
			vowels++
			vocalic++
		case inv.InGroup("glides", p.Base):
			vocalic++
		}
	}
	if vowels > 0 && vocalic == len(parts) {
		return Diphthong
	}
	if len(parts) == 2 && isStop(inv, parts[0].Base) && inv.InGroup("fricatives", parts[1].Base) {
		return Affricate
	}
	return ComplexConsonant
}

func isStop(inv *inventory.Inventory, base string) bool {
	return inv.InGroup("plosives", base) || inv.InGroup("implosives", base)
}
