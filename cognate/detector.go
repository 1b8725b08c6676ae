package cognate

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/correspondence"
	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/wordsim"
)

// Pair is a classified same-meaning word pair.
type Pair struct {
	Concept      string
	Form1, Form2 string
	Loan         bool
	Alignment    align.Alignment
	Score        float64 // higher is more cognate-like
	PValue       float64
}

// Result is the final classification of a language pair.
type Result struct {
	RunID        string
	Lang1, Lang2 string
	Method       Method
	State        State
	Iterations   int
	Concepts     int // shared concepts with at least one pair
	Cognates     []Pair
	NonCognates  []Pair
	NullSize     int
	Model        *correspondence.Model // estimated from the final cognates
}

// Detector runs the iterative cognate classification.
type Detector struct {
	aligner *align.Aligner
	scorer  *wordsim.Scorer
	store   *correspondence.Store
	cfg     Config
	logger  *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithConfig replaces the default parameters.
func WithConfig(cfg Config) Option {
	return func(d *Detector) { d.cfg = cfg }
}

// WithStore publishes each round's correspondence tables to s.
func WithStore(s *correspondence.Store) Option {
	return func(d *Detector) { d.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// New creates a Detector. The aligner must be unweighted; PMI weights are
// attached per round.
func New(aligner *align.Aligner, scorer *wordsim.Scorer, opts ...Option) *Detector {
	d := &Detector{
		aligner: aligner,
		scorer:  scorer,
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Config returns the detector parameters.
func (d *Detector) Config() Config { return d.cfg }

// candidate is a word pair with its unweighted alignment.
type candidate struct {
	a, b  word
	loan  bool
	base  align.Alignment
	phon  float64 // word similarity of base
	al    align.Alignment
	score float64
}

type run struct {
	log        *slog.Logger
	lang1      string
	lang2      string
	same, null []*candidate
}

// Detect classifies the same-meaning pairs of v1 and v2.
func (d *Detector) Detect(v1, v2 *lexicon.Vocabulary) (*Result, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cognate config: %w", err)
	}
	id := uuid.NewString()
	r := &run{
		log:   d.logger.With("run_id", id, "lang1", v1.Language, "lang2", v2.Language, "method", string(d.cfg.Method)),
		lang1: v1.Language,
		lang2: v2.Language,
	}

	if err := d.initialize(r, v1, v2); err != nil {
		return nil, err
	}

	// Seed partition: phonetic test, with loans forced in.
	nullPhon := make([]float64, len(r.null))
	for i, c := range r.null {
		nullPhon[i] = c.phon
	}
	sort.Float64s(nullPhon)
	cognate := make([]bool, len(r.same))
	for i, c := range r.same {
		cognate[i] = c.loan || pValue(c.phon, nullPhon) <= d.cfg.PThreshold
	}
	r.log.Info("cognate detection initialized",
		"state", Initialized.String(), "pairs", len(r.same), "null", len(r.null), "seed_cognates", count(cognate))

	state := Iterating
	iter := 0
	var pvals []float64
	var model *correspondence.Model
	for iter < d.cfg.MaxIterations {
		iter++
		var err error
		model, err = d.round(r, cognate)
		if err != nil {
			return nil, err
		}

		nullScores := make([]float64, len(r.null))
		for i, c := range r.null {
			nullScores[i] = c.score
		}
		sort.Float64s(nullScores)

		next := make([]bool, len(r.same))
		pvals = make([]float64, len(r.same))
		for i, c := range r.same {
			pvals[i] = pValue(c.score, nullScores)
			next[i] = pvals[i] <= d.cfg.PThreshold
			r.log.Debug("pair scored", "round", iter, "concept", c.a.Concept,
				"form1", c.a.Form, "form2", c.b.Form, "score", c.score, "p", pvals[i], "cognate", next[i])
		}
		changed := !slices.Equal(cognate, next)
		cognate = next
		r.log.Info("round finished", "state", state.String(), "round", iter, "cognates", count(cognate), "changed", changed)

		if !changed {
			state = Converged
			break
		}
	}
	if state != Converged {
		state = MaxIterationsReached
	}

	if d.cfg.Method == Phonetic {
		model = d.estimate(r, cognate)
	}
	if d.store != nil {
		d.store.Invalidate(r.lang1, r.lang2)
		d.store.PutModel(r.lang1, r.lang2, model)
	}

	res := &Result{
		RunID:      id,
		Lang1:      r.lang1,
		Lang2:      r.lang2,
		Method:     d.cfg.Method,
		State:      state,
		Iterations: iter,
		Concepts:   countConcepts(r.same),
		NullSize:   len(r.null),
		Model:      model,
	}
	for i, c := range r.same {
		p := Pair{
			Concept:   c.a.Concept,
			Form1:     c.a.Form,
			Form2:     c.b.Form,
			Loan:      c.loan,
			Alignment: c.al,
			Score:     c.score,
			PValue:    pvals[i],
		}
		if cognate[i] {
			res.Cognates = append(res.Cognates, p)
		} else {
			res.NonCognates = append(res.NonCognates, p)
		}
	}
	r.log.Info("cognate detection finished", "state", state.String(), "iterations", iter,
		"cognates", len(res.Cognates), "non_cognates", len(res.NonCognates))
	return res, nil
}

// initialize segments both vocabularies, builds both samples and scores
// them phonetically.
func (d *Detector) initialize(r *run, v1, v2 *lexicon.Vocabulary) error {
	seg := d.aligner.Segmenter()
	w1, err := segmentVocabulary(seg, v1, r.log)
	if err != nil {
		return fmt.Errorf("segment %s: %w", v1.Language, err)
	}
	w2, err := segmentVocabulary(seg, v2, r.log)
	if err != nil {
		return fmt.Errorf("segment %s: %w", v2.Language, err)
	}

	nullPairs := differentMeaning(w1, w2, d.cfg.NullSize, d.cfg.Seed)
	if len(nullPairs) == 0 {
		return fmt.Errorf("%s/%s: %w", v1.Language, v2.Language, ErrNoNullSample)
	}
	for _, p := range sameMeaning(w1, w2) {
		c, err := d.candidate(p)
		if err != nil {
			return err
		}
		r.same = append(r.same, c)
	}
	for _, p := range nullPairs {
		c, err := d.candidate(p)
		if err != nil {
			return err
		}
		r.null = append(r.null, c)
	}
	return nil
}

func (d *Detector) candidate(p [2]word) (*candidate, error) {
	al, err := d.aligner.AlignSegments(p[0].segs, p[1].segs)
	if err != nil {
		return nil, fmt.Errorf("align %q/%q: %w", p[0].Form, p[1].Form, err)
	}
	phon, err := d.scorer.Score(al)
	if err != nil {
		return nil, fmt.Errorf("score %q/%q: %w", p[0].Form, p[1].Form, err)
	}
	return &candidate{
		a:     p[0],
		b:     p[1],
		loan:  p[0].Loan || p[1].Loan,
		base:  al,
		phon:  phon,
		al:    al,
		score: phon,
	}, nil
}

// round rescores every candidate under the configured method given the
// current cognate classification, returning the model it used.
func (d *Detector) round(r *run, cognate []bool) (*correspondence.Model, error) {
	switch d.cfg.Method {
	case Phonetic:
		return nil, nil

	case PMI:
		model := d.estimate(r, cognate)
		weighted := d.aligner.Weighted(model)
		for _, c := range append(slices.Clone(r.same), r.null...) {
			al, err := weighted.AlignSegments(c.a.segs, c.b.segs)
			if err != nil {
				return nil, fmt.Errorf("align %q/%q: %w", c.a.Form, c.b.Form, err)
			}
			c.al = al
			c.score = perPosition(al)
		}
		return model, nil

	case Surprisal:
		fwd := d.estimate(r, cognate)
		var cog, null []align.Alignment
		for i, c := range r.same {
			if cognate[i] {
				cog = append(cog, c.base.Swap())
			}
		}
		for _, c := range r.null {
			null = append(null, c.base.Swap())
		}
		bwd := correspondence.NewModel(cog, null, d.cfg.Alpha, d.cfg.ExcludeGaps)
		for _, c := range append(slices.Clone(r.same), r.null...) {
			c.score = -correspondence.SymmetricSurprisal(fwd, bwd, c.base, d.cfg.Reduce)
		}
		return fwd, nil
	}
	return nil, fmt.Errorf("unknown cognate method %q", d.cfg.Method)
}

// estimate builds a correspondence model from the current cognates' latest
// alignments against the null sample's unweighted ones.
func (d *Detector) estimate(r *run, cognate []bool) *correspondence.Model {
	var cog, null []align.Alignment
	for i, c := range r.same {
		if cognate[i] {
			cog = append(cog, c.al)
		}
	}
	for _, c := range r.null {
		null = append(null, c.base)
	}
	return correspondence.NewModel(cog, null, d.cfg.Alpha, d.cfg.ExcludeGaps)
}

// perPosition normalises an alignment score by its length so long words are
// not favoured.
func perPosition(al align.Alignment) float64 {
	if len(al.Pairs) == 0 {
		return 0
	}
	return al.Score / float64(len(al.Pairs))
}

func count(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func countConcepts(cs []*candidate) int {
	seen := make(map[string]bool)
	for _, c := range cs {
		seen[c.a.Concept] = true
	}
	return len(seen)
}
