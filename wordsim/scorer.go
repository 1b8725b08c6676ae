// Package wordsim turns an alignment into a single word similarity in (0, 1].
package wordsim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/internal/cache"
	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/segment"
	"github.com/ieee0824/phonalign/similarity"
	"github.com/ieee0824/phonalign/sonority"
)

// DefaultCacheSize bounds the word-pair score cache.
const DefaultCacheSize = 16384

// Prosodic weights of a segment by position in its word.
const (
	InitialConsonant = 7
	InitialVowel     = 6
	MedialPeak       = 5
	MedialTrough     = 4
	Medial           = 3
	FinalVowel       = 2
	FinalConsonant   = 1
	FinalToneme      = 0
	NonFinalToneme   = 1
)

// ErrGapPair is returned for an alignment position with no segment on
// either side.
var ErrGapPair = errors.New("gap aligned with gap")

// Scorer computes word similarity as exp(-penalty per segment): the summed
// position penalties divided by the length of the longer word.
type Scorer struct {
	inv   *inventory.Inventory
	phon  *similarity.PhoneScorer
	son   *sonority.Classifier
	rules []Rule
	cache *cache.Cache[string, float64]
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithRules replaces the deletion discounts.
func WithRules(rules ...Rule) Option {
	return func(s *Scorer) { s.rules = rules }
}

// WithCacheSize bounds the score cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(s *Scorer) { s.cache = cache.New[string, float64](n) }
}

// New creates a Scorer with the default rules.
func New(phon *similarity.PhoneScorer, son *sonority.Classifier, opts ...Option) *Scorer {
	s := &Scorer{
		inv:   phon.Resolver().Inventory(),
		phon:  phon,
		son:   son,
		rules: DefaultRules(),
		cache: cache.New[string, float64](DefaultCacheSize),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Verify checks that the class groups named by the rules exist in the
// inventory. A rule with a missing group would never match.
func (s *Scorer) Verify() error {
	var errs []error
	for _, r := range s.rules {
		if r.Name == Gemination {
			continue
		}
		for _, g := range []string{r.Deleted, r.Diacritics} {
			if !s.inv.HasGroup(g) {
				errs = append(errs, fmt.Errorf("scoring rule %s: unknown class group %q", r.Name, g))
			}
		}
	}
	return errors.Join(errs...)
}

// Score returns the similarity of an alignment's two words.
func (s *Scorer) Score(al align.Alignment) (float64, error) {
	return s.cache.GetOrCompute(al.String(), func() (float64, error) {
		return s.ScoreWithInfo(al, nil, nil)
	})
}

// ScoreWithInfo scores like Score, additionally multiplying the penalty of a
// deleted segment by its information content. icA and icB hold one value per
// segment of the first and second word; nil disables scaling for that side.
func (s *Scorer) ScoreWithInfo(al align.Alignment, icA, icB []float64) (float64, error) {
	p, err := s.Penalties(al, icA, icB)
	if err != nil {
		return 0, err
	}
	n := max(len(al.Left()), len(al.Right()))
	if n == 0 {
		return 1, nil
	}
	return math.Exp(-floats.Sum(p) / float64(n)), nil
}

// Penalties returns the per-position penalties of an alignment.
func (s *Scorer) Penalties(al align.Alignment, icA, icB []float64) ([]float64, error) {
	for k, p := range al.Pairs {
		if p.A == align.Gap && p.B == align.Gap {
			return nil, fmt.Errorf("alignment position %d: %w", k, ErrGapPair)
		}
	}
	left, right := al.Left(), al.Right()
	if icA != nil && len(icA) != len(left) {
		return nil, fmt.Errorf("information content: %d values for %d segments", len(icA), len(left))
	}
	if icB != nil && len(icB) != len(right) {
		return nil, fmt.Errorf("information content: %d values for %d segments", len(icB), len(right))
	}

	out := make([]float64, len(al.Pairs))
	ia, ib := 0, 0
	for k, p := range al.Pairs {
		switch {
		case p.A != align.Gap && p.B != align.Gap:
			sim, err := s.phon.Similarity(p.A, p.B)
			if err != nil {
				return nil, err
			}
			out[k] = 1 - sim
			ia++
			ib++
		case p.B == align.Gap:
			pen, err := s.indel(al, k, sideA, left, ia, icA)
			if err != nil {
				return nil, err
			}
			out[k] = pen
			ia++
		default:
			pen, err := s.indel(al, k, sideB, right, ib, icB)
			if err != nil {
				return nil, err
			}
			out[k] = pen
			ib++
		}
	}
	return out, nil
}

type side int

const (
	sideA side = iota
	sideB
)

func pick(p align.Pair, sd side) string {
	if sd == sideA {
		return p.A
	}
	return p.B
}

// indel scores deleting the segment at alignment position k from side sd,
// which is segment idx of word.
func (s *Scorer) indel(al align.Alignment, k int, sd side, word []string, idx int, ic []float64) (float64, error) {
	if idx >= len(word) {
		return 0, fmt.Errorf("alignment position %d: segment %d of a %d-segment word", k, idx, len(word))
	}
	deleted := word[idx]
	son, err := s.son.Sonority(deleted)
	if err != nil {
		return 0, err
	}
	pen := 1 - float64(son)/float64(s.son.Max()+1)

	factor, err := s.discount(al, k, sd, deleted)
	if err != nil {
		return 0, err
	}
	pen *= factor

	w, err := s.ProsodicWeight(word, idx)
	if err != nil {
		return 0, err
	}
	pen /= math.Sqrt(math.Abs(float64(w-InitialConsonant)) + 1)

	if ic != nil {
		pen *= ic[idx]
	}
	return pen, nil
}

// discount returns the lowest factor among the rules matching a deletion,
// or 1 when none match.
func (s *Scorer) discount(al align.Alignment, k int, sd side, deleted string) (float64, error) {
	seg, err := segment.Parse(s.inv, deleted)
	if err != nil {
		return 0, err
	}
	other := sideB
	if sd == sideB {
		other = sideA
	}

	factor := 1.0
	for _, r := range s.rules {
		if r.Factor >= factor {
			continue
		}
		var ok bool
		if r.Name == Gemination {
			ok = s.geminate(al, k, sd, deleted)
		} else {
			ok, err = s.absorbed(al, k, other, seg, r)
			if err != nil {
				return 0, err
			}
		}
		if ok {
			factor = r.Factor
		}
	}
	return factor, nil
}

// absorbed reports whether the deleted segment belongs to r.Deleted and the
// segment next to the gap on the other side, preceding first and then
// following, carries a diacritic from r.Diacritics.
func (s *Scorer) absorbed(al align.Alignment, k int, other side, deleted segment.Segment, r Rule) (bool, error) {
	if !s.inv.InGroup(r.Deleted, deleted.Parts[0].Base) {
		return false, nil
	}
	for _, n := range []int{k - 1, k + 1} {
		if n < 0 || n >= len(al.Pairs) {
			continue
		}
		neighbour := pick(al.Pairs[n], other)
		if neighbour == align.Gap {
			continue
		}
		ns, err := segment.Parse(s.inv, neighbour)
		if err != nil {
			return false, err
		}
		if ns.HasDiacritic(func(d string) bool { return s.inv.InGroup(r.Diacritics, d) }) {
			return true, nil
		}
	}
	return false, nil
}

// geminate reports whether the deleted segment recurs in an ungapped pair
// right before or after it on its own side.
func (s *Scorer) geminate(al align.Alignment, k int, sd side, deleted string) bool {
	for _, n := range []int{k - 1, k + 1} {
		if n < 0 || n >= len(al.Pairs) {
			continue
		}
		p := al.Pairs[n]
		if !p.IsGap() && pick(p, sd) == deleted {
			return true
		}
	}
	return false
}

// ProsodicWeight returns the positional weight of word[idx]: 7 for an
// initial consonant down to 0 for a final toneme.
func (s *Scorer) ProsodicWeight(word []string, idx int) (int, error) {
	son, err := s.son.Sonority(word[idx])
	if err != nil {
		return 0, err
	}
	last := len(word) - 1
	vowel := son >= sonority.InteriorHighVowel

	switch {
	case son == sonority.Toneme:
		if idx == last {
			return FinalToneme, nil
		}
		return NonFinalToneme, nil
	case idx == 0:
		if vowel {
			return InitialVowel, nil
		}
		return InitialConsonant, nil
	case idx == last:
		if vowel {
			return FinalVowel, nil
		}
		return FinalConsonant, nil
	}

	prev, err := s.neighbourSonority(word, idx, -1)
	if err != nil {
		return 0, err
	}
	next, err := s.neighbourSonority(word, idx, 1)
	if err != nil {
		return 0, err
	}
	switch {
	case prev >= 0 && next >= 0 && son > prev && son > next:
		return MedialPeak, nil
	case prev >= 0 && next >= 0 && son < prev && son < next:
		return MedialTrough, nil
	}
	return Medial, nil
}

// neighbourSonority finds the nearest non-toneme segment in direction dir,
// or -1 when there is none.
func (s *Scorer) neighbourSonority(word []string, idx, dir int) (int, error) {
	for i := idx + dir; i >= 0 && i < len(word); i += dir {
		son, err := s.son.Sonority(word[i])
		if err != nil {
			return 0, err
		}
		if son != sonority.Toneme {
			return son, nil
		}
	}
	return -1, nil
}
