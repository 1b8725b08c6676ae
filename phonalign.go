// Package phonalign aligns and compares IPA transcriptions and detects
// cognates between languages.
package phonalign

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/config"
	"github.com/ieee0824/phonalign/correspondence"
	"github.com/ieee0824/phonalign/feature"
	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/language"
	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/segment"
	"github.com/ieee0824/phonalign/similarity"
	"github.com/ieee0824/phonalign/sonority"
	"github.com/ieee0824/phonalign/wordsim"
)

// Engine wires the segmenter, feature resolver, sonority classifier,
// similarity, alignment, scoring and correspondence components over one
// inventory. It is safe for concurrent use.
type Engine struct {
	Inventory *inventory.Inventory
	Config    *config.Config

	segmenter *segment.Segmenter
	resolver  *feature.Resolver
	sonority  *sonority.Classifier
	phon      *similarity.PhoneScorer
	aligner   *align.Aligner
	scorer    *wordsim.Scorer
	store     *correspondence.Store
	logger    *slog.Logger

	mu           sync.Mutex
	phonByMethod map[similarity.Method]*similarity.PhoneScorer
	dataset      *lexicon.Dataset
	phonotactics map[string]*language.NGramModel
	models       map[[2]string]*correspondence.Model
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the configuration. The default is config.DefaultConfig.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.Config = cfg }
}

// WithInventory uses inv instead of loading one from the configuration.
func WithInventory(inv *inventory.Inventory) Option {
	return func(e *Engine) { e.Inventory = inv }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New builds an Engine. It fails when the configuration is invalid or the
// inventory's sonority column disagrees with its class groups.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		Config:       config.DefaultConfig(),
		logger:       slog.Default(),
		phonByMethod: make(map[similarity.Method]*similarity.PhoneScorer),
		phonotactics: make(map[string]*language.NGramModel),
		models:       make(map[[2]string]*correspondence.Model),
	}
	for _, opt := range opts {
		opt(e)
	}
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if e.Inventory == nil {
		var err error
		if cfg.Inventory.Dir != "" {
			e.Inventory, err = inventory.LoadDir(cfg.Inventory.Dir)
		} else {
			e.Inventory, err = inventory.Default()
		}
		if err != nil {
			return nil, fmt.Errorf("load inventory: %w", err)
		}
	}

	segOpts := []segment.Option{
		segment.WithAttachTones(cfg.Segment.AttachTones),
		segment.WithLogger(e.logger),
	}
	if cfg.Segment.Ignorable != "" {
		segOpts = append(segOpts, segment.WithIgnorable(cfg.Segment.Ignorable))
	}
	e.segmenter = segment.New(e.Inventory, segOpts...)

	featureRules, err := feature.ParseRules(cfg.Features.Rules)
	if err != nil {
		return nil, err
	}
	e.resolver = feature.NewResolver(e.Inventory,
		feature.WithRules(featureRules...),
		feature.WithCacheSize(cfg.Cache.Features))

	e.sonority = sonority.NewClassifier(e.resolver, sonority.WithCacheSize(cfg.Cache.Features))
	if err := e.sonority.Verify(); err != nil {
		return nil, err
	}

	method, err := similarity.ParseMethod(cfg.Similarity.Method)
	if err != nil {
		return nil, err
	}
	e.phon, err = e.newPhoneScorer(method)
	if err != nil {
		return nil, err
	}
	e.phonByMethod[method] = e.phon

	e.aligner = align.New(e.segmenter, e.phon, e.sonority,
		align.WithConfig(align.Config{GapScore: cfg.Align.GapScore}))

	rules, err := cfg.ScoringRules()
	if err != nil {
		return nil, err
	}
	e.scorer = wordsim.New(e.phon, e.sonority,
		wordsim.WithRules(rules...),
		wordsim.WithCacheSize(cfg.Cache.Words))
	if err := e.scorer.Verify(); err != nil {
		return nil, err
	}

	e.store = correspondence.NewStore(cfg.Cache.Tables)
	return e, nil
}

func (e *Engine) newPhoneScorer(m similarity.Method) (*similarity.PhoneScorer, error) {
	w, err := similarity.ParseWeighting(e.Config.Similarity.Weights)
	if err != nil {
		return nil, err
	}
	return similarity.NewPhoneScorer(e.resolver,
		similarity.WithMethod(m),
		similarity.WithWeights(w.Weights(e.Inventory)),
		similarity.WithExcluded(e.Config.Similarity.Excluded...),
		similarity.WithCacheSize(e.Config.Cache.Similarity))
}

// Aligner returns the unweighted aligner.
func (e *Engine) Aligner() *align.Aligner { return e.aligner }

// Scorer returns the word similarity scorer.
func (e *Engine) Scorer() *wordsim.Scorer { return e.scorer }

// Store returns the correspondence table cache.
func (e *Engine) Store() *correspondence.Store { return e.store }

// SegmentWord splits a transcription into segments.
func (e *Engine) SegmentWord(text string) ([]string, error) {
	return e.segmenter.Segment(text)
}

// PhoneSimilarity compares two segments. An empty method uses the
// configured one.
func (e *Engine) PhoneSimilarity(a, b string, method similarity.Method) (float64, error) {
	if method == "" {
		return e.phon.Similarity(a, b)
	}
	e.mu.Lock()
	p, ok := e.phonByMethod[method]
	if !ok {
		var err error
		if p, err = e.newPhoneScorer(method); err != nil {
			e.mu.Unlock()
			return 0, err
		}
		e.phonByMethod[method] = p
	}
	e.mu.Unlock()
	return p.Similarity(a, b)
}

// Sonority ranks a segment.
func (e *Engine) Sonority(seg string) (int, error) {
	return e.sonority.Sonority(seg)
}

// Align aligns two transcriptions.
func (e *Engine) Align(w1, w2 string) (align.Alignment, error) {
	return e.aligner.Align(w1, w2)
}

// AlignWith aligns two transcriptions with pair weights added to the scores.
func (e *Engine) AlignWith(w1, w2 string, pw align.PairWeights) (align.Alignment, error) {
	return e.aligner.Weighted(pw).Align(w1, w2)
}

// WordSimilarity aligns two transcriptions and scores the alignment.
func (e *Engine) WordSimilarity(w1, w2 string) (float64, error) {
	al, err := e.aligner.Align(w1, w2)
	if err != nil {
		return 0, err
	}
	return e.scorer.Score(al)
}

// ScoreAlignment scores an existing alignment.
func (e *Engine) ScoreAlignment(al align.Alignment) (float64, error) {
	return e.scorer.Score(al)
}

// EditDistance returns the segment-level Levenshtein distance normalised by
// the longer word, a baseline for WordSimilarity.
func (e *Engine) EditDistance(w1, w2 string) (float64, error) {
	s1, err := e.segmenter.Segment(w1)
	if err != nil {
		return 0, err
	}
	s2, err := e.segmenter.Segment(w2)
	if err != nil {
		return 0, err
	}
	return lexicon.NormalizedEditDistance(s1, s2), nil
}
