package similarity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ieee0824/phonalign/feature"
	"github.com/ieee0824/phonalign/internal/cache"
)

// DefaultCacheSize bounds the phone-pair cache.
const DefaultCacheSize = 65536

type pairKey struct {
	a, b     string
	method   Method
	excluded string
}

// PhoneScorer compares segment strings by their resolved feature vectors,
// memoising results per (segment pair, method, excluded features).
type PhoneScorer struct {
	res      *feature.Resolver
	method   Method
	weights  Weights
	excluded []int
	exclKey  string
	cache    *cache.Cache[pairKey, float64]

	excludedNames []string
}

// ScorerOption configures a PhoneScorer.
type ScorerOption func(*PhoneScorer)

// WithMethod sets the comparison method. The default is WeightedDice.
func WithMethod(m Method) ScorerOption {
	return func(p *PhoneScorer) { p.method = m }
}

// WithWeights replaces the hierarchy-derived weights.
func WithWeights(w Weights) ScorerOption {
	return func(p *PhoneScorer) { p.weights = w }
}

// WithExcluded drops the named features from every comparison.
func WithExcluded(features ...string) ScorerOption {
	return func(p *PhoneScorer) { p.excludedNames = append(p.excludedNames, features...) }
}

// WithCacheSize bounds the pair cache. Zero disables it.
func WithCacheSize(n int) ScorerOption {
	return func(p *PhoneScorer) { p.cache = cache.New[pairKey, float64](n) }
}

// NewPhoneScorer creates a PhoneScorer.
func NewPhoneScorer(res *feature.Resolver, opts ...ScorerOption) (*PhoneScorer, error) {
	inv := res.Inventory()
	p := &PhoneScorer{
		res:    res,
		method: WeightedDice,
		cache:  cache.New[pairKey, float64](DefaultCacheSize),
	}
	for _, o := range opts {
		o(p)
	}
	if _, err := ParseMethod(string(p.method)); err != nil {
		return nil, err
	}
	if p.weights == nil {
		p.weights = HierarchyWeights(inv)
	}
	if len(p.weights) != inv.NumFeatures() {
		return nil, fmt.Errorf("similarity: %d weights for %d features", len(p.weights), inv.NumFeatures())
	}

	names := append([]string(nil), p.excludedNames...)
	sort.Strings(names)
	for _, n := range names {
		i, ok := inv.FeatureIndex(n)
		if !ok {
			return nil, fmt.Errorf("similarity: unknown excluded feature %q", n)
		}
		p.excluded = append(p.excluded, i)
	}
	p.exclKey = strings.Join(names, ",")
	return p, nil
}

// Method returns the configured method.
func (p *PhoneScorer) Method() Method { return p.method }

// Resolver returns the feature resolver.
func (p *PhoneScorer) Resolver() *feature.Resolver { return p.res }

// Similarity compares two segment strings.
func (p *PhoneScorer) Similarity(a, b string) (float64, error) {
	if b < a {
		a, b = b, a
	}
	key := pairKey{a: a, b: b, method: p.method, excluded: p.exclKey}
	return p.cache.GetOrCompute(key, func() (float64, error) {
		v1, err := p.res.Resolve(a)
		if err != nil {
			return 0, err
		}
		v2, err := p.res.Resolve(b)
		if err != nil {
			return 0, err
		}
		sim, err := Compare(v1, v2, p.method, p.weights, p.excluded)
		if err != nil {
			return 0, fmt.Errorf("compare %q and %q: %w", a, b, err)
		}
		return sim, nil
	})
}
