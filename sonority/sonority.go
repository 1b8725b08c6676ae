// Package sonority ranks segments on Parker's (2002) sonority hierarchy,
// extended with rank 0 for tonemes.
package sonority

import (
	"errors"
	"fmt"

	"github.com/ieee0824/phonalign/feature"
	"github.com/ieee0824/phonalign/internal/cache"
	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/segment"
)

// Sonority ranks.
const (
	Toneme             = 0
	VoicelessStop      = 1
	VoicelessAffricate = 2
	VoicelessFricative = 3
	VoicedStop         = 4
	VoicedAffricate    = 5
	VoicedFricative    = 6
	Nasal              = 7
	Trill              = 8
	Lateral            = 9
	Flap               = 10
	RhoticApproximant  = 11
	Glide              = 12
	InteriorHighVowel  = 13
	InteriorMidVowel   = 14
	HighVowel          = 15
	MidVowel           = 16
	LowVowel           = 17

	Max = LowVowel
)

// ErrUndeterminedSonority is the errors.Is target for a base symbol that
// belongs to no class group. It signals a reference-table gap.
var ErrUndeterminedSonority = errors.New("undetermined sonority")

// UndeterminedSonorityError names the segment and the unclassified base.
type UndeterminedSonorityError struct {
	Segment string
	Base    string
}

func (e *UndeterminedSonorityError) Error() string {
	return fmt.Sprintf("sonority of %q: base %q is in no phoneme class group", e.Segment, e.Base)
}

// Is makes errors.Is(err, ErrUndeterminedSonority) match.
func (e *UndeterminedSonorityError) Is(target error) bool {
	return target == ErrUndeterminedSonority
}

// Class groups in lookup order, with the ranks they map to. Stop and
// fricative groups are split by voicing.
var fixedGroups = []struct {
	group string
	rank  int
}{
	{"tonemes", Toneme},
	{"nasals", Nasal},
	{"trills", Trill},
	{"taps", Flap},
	{"laterals", Lateral},
	{"rhotic_approximants", RhoticApproximant},
	{"glides", Glide},
}

var vowelGroups = []struct {
	group string
	rank  int
}{
	{"interior_high_vowels", InteriorHighVowel},
	{"interior_mid_vowels", InteriorMidVowel},
	{"high_vowels", HighVowel},
	{"mid_vowels", MidVowel},
	{"low_vowels", LowVowel},
}

var stopGroups = []string{"plosives", "implosives", "clicks"}

// Classifier assigns sonority ranks to segment strings.
type Classifier struct {
	inv   *inventory.Inventory
	res   *feature.Resolver
	cache *cache.Cache[string, int]
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCacheSize bounds the rank cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(c *Classifier) { c.cache = cache.New[string, int](n) }
}

// NewClassifier creates a Classifier using res for voicing and syllabicity.
func NewClassifier(res *feature.Resolver, opts ...Option) *Classifier {
	c := &Classifier{
		inv:   res.Inventory(),
		res:   res,
		cache: cache.New[string, int](feature.DefaultCacheSize),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Max returns the highest rank.
func (c *Classifier) Max() int { return Max }

// Sonority returns the rank of a segment string.
func (c *Classifier) Sonority(seg string) (int, error) {
	return c.cache.GetOrCompute(seg, func() (int, error) {
		s, err := segment.Parse(c.inv, seg)
		if err != nil {
			return 0, fmt.Errorf("sonority of %q: %w", seg, err)
		}
		return c.SegmentSonority(s)
	})
}

// SegmentSonority ranks a parsed segment. Affricates take the affricate
// rank; other compounds take the maximum of their parts.
func (c *Classifier) SegmentSonority(s segment.Segment) (int, error) {
	switch s.Kind {
	case segment.Toneme:
		return Toneme, nil
	case segment.Affricate:
		v := c.res.ResolveSegment(s)
		if c.inv.Value(v, "voice") > 0 {
			return VoicedAffricate, nil
		}
		return VoicelessAffricate, nil
	}

	best := -1
	for _, p := range s.Parts {
		r, err := c.partSonority(s.Text, p)
		if err != nil {
			return 0, err
		}
		best = max(best, r)
	}
	return best, nil
}

func (c *Classifier) partSonority(text string, p segment.Part) (int, error) {
	single := segment.Segment{Text: text, Parts: []segment.Part{p}, Kind: segment.Consonant}
	if c.inv.IsVowel(p.Base) {
		single.Kind = segment.Vowel
	}
	v := c.res.ResolveSegment(single)
	voiced := c.inv.Value(v, "voice") > 0

	for _, g := range stopGroups {
		if c.inv.InGroup(g, p.Base) {
			if voiced {
				return VoicedStop, nil
			}
			return VoicelessStop, nil
		}
	}
	if c.inv.InGroup("fricatives", p.Base) {
		if voiced {
			return VoicedFricative, nil
		}
		return VoicelessFricative, nil
	}
	for _, g := range fixedGroups {
		if c.inv.InGroup(g.group, p.Base) {
			return g.rank, nil
		}
	}
	for _, g := range vowelGroups {
		if c.inv.InGroup(g.group, p.Base) {
			if c.inv.Value(v, "syllabic") == 0 {
				return Glide, nil
			}
			return g.rank, nil
		}
	}
	return 0, &UndeterminedSonorityError{Segment: text, Base: p.Base}
}

// Verify checks every base symbol against the class groups and the feature
// table's declared sonority column. A non-nil result means the reference
// tables disagree and the run must stop.
func (c *Classifier) Verify() error {
	var errs []error
	for _, sym := range c.inv.Symbols() {
		got, err := c.Sonority(sym)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if want, ok := c.inv.DeclaredSonority(sym); ok && want != got {
			errs = append(errs, fmt.Errorf("symbol %q: table declares sonority %d, class groups give %d", sym, want, got))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("sonority table integrity: %w", errors.Join(errs...))
	}
	return nil
}
