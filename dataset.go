package phonalign

import (
	"errors"
	"fmt"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/cognate"
	"github.com/ieee0824/phonalign/correspondence"
	"github.com/ieee0824/phonalign/language"
	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/segment"
)

// ErrUnknownLanguage is returned for a language missing from the dataset.
var ErrUnknownLanguage = errors.New("unknown language")

// Distance metrics between two languages.
const (
	DistanceCognate  = "cognate"
	DistancePhonetic = "phonetic"
)

// UseDataset sets the vocabularies that language-level operations draw on,
// dropping models derived from a previous dataset.
func (e *Engine) UseDataset(ds *lexicon.Dataset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Purge()
	e.dataset = ds
	e.phonotactics = make(map[string]*language.NGramModel)
	e.models = make(map[[2]string]*correspondence.Model)
}

// Vocabulary returns a language's vocabulary from the dataset.
func (e *Engine) Vocabulary(lang string) (*lexicon.Vocabulary, error) {
	e.mu.Lock()
	ds := e.dataset
	e.mu.Unlock()
	if ds == nil {
		return nil, fmt.Errorf("%s: %w: no dataset loaded", lang, ErrUnknownLanguage)
	}
	v, ok := ds.Vocabulary(lang)
	if !ok {
		return nil, fmt.Errorf("%s: %w", lang, ErrUnknownLanguage)
	}
	return v, nil
}

// Languages lists the dataset's languages in sorted order.
func (e *Engine) Languages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dataset == nil {
		return nil
	}
	return e.dataset.Languages()
}

// Phonotactics returns the segment n-gram model of a language, training it
// from the dataset on first use. Forms that fail to segment are skipped.
func (e *Engine) Phonotactics(lang string) (*language.NGramModel, error) {
	e.mu.Lock()
	m, ok := e.phonotactics[lang]
	e.mu.Unlock()
	if ok {
		return m, nil
	}

	v, err := e.Vocabulary(lang)
	if err != nil {
		return nil, err
	}
	segs, failed := e.segmenter.SegmentAll(v.Forms())
	b := language.NewBuilder(e.Config.Scoring.NGramOrder)
	for _, form := range v.Forms() {
		if s, ok := segs[form]; ok {
			b.AddWord(s)
		}
	}
	m = b.Build()
	e.logger.Debug("phonotactic model trained", "language", lang, "forms", v.Len(), "skipped", len(failed))

	e.mu.Lock()
	e.phonotactics[lang] = m
	e.mu.Unlock()
	return m, nil
}

// InformationContent returns the per-segment self-information of a word in
// bits under a language's phonotactic model.
func (e *Engine) InformationContent(lang, word string) ([]float64, error) {
	m, err := e.Phonotactics(lang)
	if err != nil {
		return nil, err
	}
	segs, err := e.segmenter.Segment(word)
	if err != nil {
		return nil, err
	}
	return m.InformationContent(segs), nil
}

// LanguageWordSimilarity scores two words of known languages. When
// information content scoring is enabled, deletion penalties are scaled by
// each segment's relative information content in its language.
func (e *Engine) LanguageWordSimilarity(lang1, lang2, w1, w2 string) (float64, error) {
	if !e.Config.Scoring.InfoContent {
		return e.WordSimilarity(w1, w2)
	}
	m1, err := e.Phonotactics(lang1)
	if err != nil {
		return 0, err
	}
	m2, err := e.Phonotactics(lang2)
	if err != nil {
		return 0, err
	}
	s1, err := e.segmenter.Segment(w1)
	if err != nil {
		return 0, err
	}
	s2, err := e.segmenter.Segment(w2)
	if err != nil {
		return 0, err
	}
	al, err := e.aligner.AlignSegments(s1, s2)
	if err != nil {
		return 0, err
	}
	return e.scorer.ScoreWithInfo(al, m1.RelativeInformationContent(s1), m2.RelativeInformationContent(s2))
}

// DetectCognates classifies the same-meaning pairs of two vocabularies. An
// empty method or a non-positive threshold falls back to the configuration.
// The estimated correspondence tables are cached for CorrespondenceTable.
func (e *Engine) DetectCognates(v1, v2 *lexicon.Vocabulary, method cognate.Method, p float64) (*cognate.Result, error) {
	cfg, err := e.Config.CognateConfig()
	if err != nil {
		return nil, err
	}
	if method != "" {
		cfg.Method = method
	}
	if p > 0 {
		cfg.PThreshold = p
	}
	d := cognate.New(e.aligner, e.scorer,
		cognate.WithConfig(cfg),
		cognate.WithStore(e.store),
		cognate.WithLogger(e.logger))
	res, err := d.Detect(v1, v2)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.models[[2]string{v1.Language, v2.Language}] = res.Model
	e.mu.Unlock()
	return res, nil
}

// DetectLanguageCognates runs DetectCognates on two dataset languages.
func (e *Engine) DetectLanguageCognates(lang1, lang2 string, method cognate.Method, p float64) (*cognate.Result, error) {
	v1, err := e.Vocabulary(lang1)
	if err != nil {
		return nil, err
	}
	v2, err := e.Vocabulary(lang2)
	if err != nil {
		return nil, err
	}
	return e.DetectCognates(v1, v2, method, p)
}

// Correspondences returns the correspondence model last estimated for a
// language pair, running detection when there is none.
func (e *Engine) Correspondences(lang1, lang2 string) (*correspondence.Model, error) {
	e.mu.Lock()
	m, ok := e.models[[2]string{lang1, lang2}]
	e.mu.Unlock()
	if ok {
		return m, nil
	}
	res, err := e.DetectLanguageCognates(lang1, lang2, "", 0)
	if err != nil {
		return nil, err
	}
	return res.Model, nil
}

// CorrespondenceTable returns a correspondence statistic for a language
// pair, from the cache when available.
func (e *Engine) CorrespondenceTable(lang1, lang2 string, kind correspondence.Kind) (*correspondence.Table, error) {
	if _, err := correspondence.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if t, ok := e.store.Get(lang1, lang2, kind); ok {
		return t, nil
	}
	m, err := e.Correspondences(lang1, lang2)
	if err != nil {
		return nil, err
	}
	return m.Table(kind)
}

// AlignLanguages aligns two words with the PMI weights of their languages'
// correspondence model.
func (e *Engine) AlignLanguages(lang1, lang2, w1, w2 string) (align.Alignment, error) {
	m, err := e.Correspondences(lang1, lang2)
	if err != nil {
		return align.Alignment{}, err
	}
	return e.AlignWith(w1, w2, m)
}

// Distance measures how far apart two dataset languages are: the share of
// concepts without cognates, or one minus mean best word similarity.
func (e *Engine) Distance(lang1, lang2, metric string) (float64, error) {
	v1, err := e.Vocabulary(lang1)
	if err != nil {
		return 0, err
	}
	v2, err := e.Vocabulary(lang2)
	if err != nil {
		return 0, err
	}
	switch metric {
	case DistanceCognate:
		res, err := e.DetectCognates(v1, v2, "", 0)
		if err != nil {
			return 0, err
		}
		return cognate.CognateDistance(res), nil
	case DistancePhonetic:
		return cognate.PhoneticDistance(e.aligner, e.scorer, v1, v2, e.logger)
	}
	return 0, fmt.Errorf("unknown distance metric %q", metric)
}

// ClusterConcept groups every dataset form of a concept into cognate sets by
// word similarity. Forms that fail to segment are skipped.
func (e *Engine) ClusterConcept(concept string, threshold float64) ([][]lexicon.Entry, error) {
	e.mu.Lock()
	ds := e.dataset
	e.mu.Unlock()
	if ds == nil {
		return nil, errors.New("no dataset loaded")
	}

	var entries []lexicon.Entry
	for _, lang := range ds.Languages() {
		v, _ := ds.Vocabulary(lang)
		for _, en := range v.Lookup(concept) {
			if _, err := e.segmenter.Segment(en.Form); err != nil {
				if errors.Is(err, segment.ErrUnrecognizedCharacter) {
					e.logger.Warn("skipping word", "language", lang, "concept", concept, "word", en.Form, "error", err)
					continue
				}
				return nil, err
			}
			entries = append(entries, en)
		}
	}
	return cognate.Cluster(entries, func(a, b lexicon.Entry) (float64, error) {
		return e.LanguageWordSimilarity(a.Language, b.Language, a.Form, b.Form)
	}, threshold)
}
