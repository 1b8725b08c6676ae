// Package segment splits IPA transcriptions into phoneme segments: one base
// symbol (or several joined by a tie bar) plus the diacritics bound to it.
package segment

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ieee0824/phonalign/inventory"
)

// Segmenter splits transcriptions using an inventory's bases and diacritics.
type Segmenter struct {
	inv         *inventory.Inventory
	ignorable   map[rune]bool
	attachTones bool
	logger      *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithIgnorable adds characters that are dropped before segmentation.
// Whitespace is always ignorable.
func WithIgnorable(chars string) Option {
	return func(s *Segmenter) {
		for _, r := range chars {
			s.ignorable[r] = true
		}
	}
}

// WithAttachTones controls whether tone letters directly following a vowel
// join that vowel's segment (the default) or always form their own segment.
func WithAttachTones(attach bool) Option {
	return func(s *Segmenter) { s.attachTones = attach }
}

// WithLogger sets the logger used by SegmentAll.
func WithLogger(l *slog.Logger) Option {
	return func(s *Segmenter) { s.logger = l }
}

// New creates a Segmenter.
func New(inv *inventory.Inventory, opts ...Option) *Segmenter {
	s := &Segmenter{
		inv:         inv,
		ignorable:   make(map[rune]bool),
		attachTones: true,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// building is the segment currently being assembled.
type building struct {
	text      strings.Builder
	hasKernel bool
	pre       bool // holds pre-diacritics waiting for a base
	tied      bool // a tie bar is waiting for the next base
	toneme    bool // kernel is made of tone letters
	vowel     bool // kernel contains a vowel
	lastPre   string
	lastTie   string
}

func (b *building) empty() bool { return b.text.Len() == 0 }

// Normalize decomposes precomposed letters that are not themselves table
// symbols (ã, é) into base plus combining diacritic. Table symbols such as ç
// are kept whole.
func (s *Segmenter) Normalize(word string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(word) {
		if s.known(r) || s.isIgnorable(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(norm.NFD.String(string(r)))
	}
	return b.String()
}

func (s *Segmenter) known(r rune) bool {
	sym := string(r)
	if s.inv.IsBase(sym) {
		return true
	}
	_, ok := s.inv.Diacritic(sym)
	return ok
}

func (s *Segmenter) isIgnorable(r rune) bool {
	return unicode.IsSpace(r) || s.ignorable[r]
}

// Segment splits word into segment strings. Concatenating the result gives
// the normalised word without its ignorable characters.
func (s *Segmenter) Segment(word string) ([]string, error) {
	var (
		out []string
		cur = &building{}
	)
	fail := func(char, reason string) error {
		return &UnrecognizedCharacterError{Word: word, Char: char, Reason: reason}
	}
	flush := func() {
		if !cur.empty() {
			out = append(out, cur.text.String())
		}
		cur = &building{}
	}

	for _, r := range s.Normalize(word) {
		if s.isIgnorable(r) {
			continue
		}
		sym := string(r)

		if s.inv.IsBase(sym) {
			if s.inv.IsTone(sym) {
				switch {
				case cur.tied || (cur.hasKernel && cur.toneme):
					cur.tied = false
				case s.attachTones && cur.hasKernel && cur.vowel:
				case cur.pre:
					return nil, fail(cur.lastPre, reasonToneAfterPre)
				default:
					flush()
					cur.toneme = true
				}
				cur.text.WriteString(sym)
				cur.hasKernel = true
				continue
			}

			switch {
			case cur.tied:
				cur.tied = false
			case cur.pre && !cur.hasKernel:
				cur.pre = false
			default:
				flush()
			}
			cur.text.WriteString(sym)
			cur.hasKernel = true
			if s.inv.IsVowel(sym) {
				cur.vowel = true
			}
			continue
		}

		d, ok := s.inv.Diacritic(sym)
		if !ok {
			return nil, fail(sym, reasonUnknown)
		}
		switch d.Position {
		case inventory.Inter:
			if !cur.hasKernel || cur.tied {
				return nil, fail(sym, reasonTieNoKernel)
			}
			cur.tied = true
			cur.lastTie = sym
		case inventory.Pre:
			if cur.hasKernel && !cur.tied {
				flush()
			}
			if !cur.hasKernel {
				cur.pre = true
			}
			cur.lastPre = sym
		case inventory.PrePost:
			if !cur.hasKernel {
				cur.pre = true
				cur.lastPre = sym
			}
		default:
			if !cur.hasKernel || cur.tied {
				return nil, fail(sym, reasonNoHost)
			}
		}
		cur.text.WriteString(sym)
	}

	if cur.tied {
		return nil, fail(cur.lastTie, reasonDanglingTie)
	}
	if cur.pre && !cur.hasKernel {
		return nil, fail(cur.lastPre, reasonDanglingPre)
	}
	flush()
	return out, nil
}

// SegmentAll segments every word, skipping words that fail. Skipped words
// are logged and returned with their errors.
func (s *Segmenter) SegmentAll(words []string) (map[string][]string, []*UnrecognizedCharacterError) {
	out := make(map[string][]string, len(words))
	var skipped []*UnrecognizedCharacterError
	for _, w := range words {
		if _, done := out[w]; done {
			continue
		}
		segs, err := s.Segment(w)
		if err != nil {
			var uerr *UnrecognizedCharacterError
			if !errors.As(err, &uerr) {
				uerr = &UnrecognizedCharacterError{Word: w, Reason: err.Error()}
			}
			s.logger.Warn("skipping word", "word", w, "char", uerr.Char, "reason", uerr.Reason)
			skipped = append(skipped, uerr)
			continue
		}
		out[w] = segs
	}
	return out, skipped
}
