// Package feature resolves segment strings into feature vectors.
package feature

import (
	"fmt"

	"github.com/ieee0824/phonalign/internal/cache"
	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/segment"
)

// Rule names a conditional adjustment applied on top of diacritic overrides.
type Rule string

const (
	// RuleLoweredFricative turns a fricative carrying a lowering diacritic
	// into an approximant.
	RuleLoweredFricative Rule = "lowered-fricative"
	// RuleRaisedApproximant gives a non-syllabic approximant carrying a
	// raising diacritic a delayed release.
	RuleRaisedApproximant Rule = "raised-approximant"
)

// DefaultRules returns every known rule.
func DefaultRules() []Rule {
	return []Rule{RuleLoweredFricative, RuleRaisedApproximant}
}

// ParseRules converts configured rule names.
func ParseRules(names []string) ([]Rule, error) {
	out := make([]Rule, 0, len(names))
	for _, n := range names {
		switch r := Rule(n); r {
		case RuleLoweredFricative, RuleRaisedApproximant:
			out = append(out, r)
		default:
			return nil, fmt.Errorf("unknown feature rule %q", n)
		}
	}
	return out, nil
}

// Features describing tone, overlaid from attached tone letters.
var toneFeatures = []string{"tone", "highTone", "lowTone", "rising", "falling", "convex", "contour"}

// Resolver maps segment strings to feature vectors. It is safe for
// concurrent use.
type Resolver struct {
	inv   *inventory.Inventory
	rules map[Rule]bool
	cache *cache.Cache[string, inventory.Vector]
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRules replaces the enabled conditional rules.
func WithRules(rules ...Rule) Option {
	return func(r *Resolver) {
		r.rules = make(map[Rule]bool, len(rules))
		for _, rule := range rules {
			r.rules[rule] = true
		}
	}
}

// WithCacheSize bounds the vector memo cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(r *Resolver) { r.cache = cache.New[string, inventory.Vector](n) }
}

// DefaultCacheSize is the vector cache bound used by NewResolver.
const DefaultCacheSize = 4096

// NewResolver creates a Resolver with every rule enabled.
func NewResolver(inv *inventory.Inventory, opts ...Option) *Resolver {
	r := &Resolver{inv: inv}
	WithRules(DefaultRules()...)(r)
	WithCacheSize(DefaultCacheSize)(r)
	for _, o := range opts {
		o(r)
	}
	return r
}

// Inventory returns the resolver's inventory.
func (r *Resolver) Inventory() *inventory.Inventory { return r.inv }

// Resolve returns the feature vector of a segment string. Each call returns a
// fresh copy the caller may modify.
func (r *Resolver) Resolve(seg string) (inventory.Vector, error) {
	v, err := r.cache.GetOrCompute(seg, func() (inventory.Vector, error) {
		s, err := segment.Parse(r.inv, seg)
		if err != nil {
			return nil, err
		}
		return r.resolve(s), nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", seg, err)
	}
	return v.Clone(), nil
}

// ResolveSegment resolves an already parsed segment without caching.
func (r *Resolver) ResolveSegment(s segment.Segment) inventory.Vector {
	return r.resolve(s)
}

func (r *Resolver) resolve(s segment.Segment) inventory.Vector {
	var v inventory.Vector
	switch s.Kind {
	case segment.Consonant, segment.Vowel:
		v = r.resolvePart(s.Parts[0])
	case segment.Affricate, segment.ComplexConsonant:
		v = r.combineMax(s.Parts)
		if s.Kind == segment.Affricate {
			r.inv.Set(v, "continuant", 0)
			r.inv.Set(v, "delayedRelease", 1)
		}
	case segment.Diphthong:
		v = r.combineDiphthong(s.Parts)
	case segment.Toneme:
		v = r.resolveTones(s.Parts)
	}
	if len(s.Tones) > 0 {
		tv := r.resolveTones(s.Tones)
		for _, f := range toneFeatures {
			r.inv.Set(v, f, r.inv.Value(tv, f))
		}
	}
	return v
}

// resolvePart applies a part's diacritics to its base vector in order.
func (r *Resolver) resolvePart(p segment.Part) inventory.Vector {
	v, _ := r.inv.Base(p.Base)
	for _, sym := range p.Diacritics {
		d, ok := r.inv.Diacritic(sym)
		if !ok {
			continue
		}
		for _, o := range d.Overrides {
			v[o.Feature] = o.Value
		}
		switch d.Type {
		case inventory.TypeLowered:
			if r.rules[RuleLoweredFricative] && r.isFricative(v) {
				r.inv.Set(v, "sonorant", 1)
				r.inv.Set(v, "approximant", 1)
				r.inv.Set(v, "delayedRelease", 0)
			}
		case inventory.TypeRaised:
			if r.rules[RuleRaisedApproximant] && r.inv.Value(v, "approximant") > 0 && r.inv.Value(v, "syllabic") == 0 {
				r.inv.Set(v, "delayedRelease", 1)
			}
		}
	}
	return v
}

func (r *Resolver) isFricative(v inventory.Vector) bool {
	return r.inv.Value(v, "continuant") > 0 && r.inv.Value(v, "delayedRelease") > 0 && r.inv.Value(v, "sonorant") == 0
}

func (r *Resolver) combineMax(parts []segment.Part) inventory.Vector {
	out := r.inv.NewVector()
	for _, p := range parts {
		for i, x := range r.resolvePart(p) {
			out[i] = max(out[i], x)
		}
	}
	return out
}

// combineDiphthong averages the parts, weighting syllabic parts 1 and
// non-syllabic parts 0.5, then binarises length.
func (r *Resolver) combineDiphthong(parts []segment.Part) inventory.Vector {
	out := r.inv.NewVector()
	total := 0.0
	for _, p := range parts {
		pv := r.resolvePart(p)
		w := 0.5
		if r.inv.Value(pv, "syllabic") > 0 {
			w = 1
		}
		total += w
		for i, x := range pv {
			out[i] += w * x
		}
	}
	for i := range out {
		out[i] /= total
	}
	if r.inv.Value(out, "long") > 0 {
		r.inv.Set(out, "long", 1)
	}
	return out
}

// resolveTones combines tone letters by maximum, then derives contour
// features from consecutive Chao levels.
func (r *Resolver) resolveTones(parts []segment.Part) inventory.Vector {
	v := r.combineMax(parts)

	levels := make([]int, 0, len(parts))
	for _, p := range parts {
		if l, ok := inventory.ToneLevel(p.Base); ok {
			levels = append(levels, l)
		}
	}
	if len(levels) < 2 {
		return v
	}

	var rising, falling bool
	sum := levels[0]
	for i := 1; i < len(levels); i++ {
		switch {
		case levels[i] > levels[i-1]:
			rising = true
		case levels[i] < levels[i-1]:
			falling = true
		}
		sum += levels[i]
	}
	if !rising && !falling {
		return v
	}
	mean := float64(sum) / float64(len(levels))
	r.inv.Set(v, "rising", b2f(rising))
	r.inv.Set(v, "falling", b2f(falling))
	r.inv.Set(v, "convex", b2f(rising && falling))
	r.inv.Set(v, "contour", 1)
	r.inv.Set(v, "highTone", b2f(mean > 3))
	r.inv.Set(v, "lowTone", b2f(mean < 3))
	return v
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
