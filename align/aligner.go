package align

import (
	"fmt"
	"math"

	"github.com/ieee0824/phonalign/internal/mathutil"
	"github.com/ieee0824/phonalign/segment"
	"github.com/ieee0824/phonalign/similarity"
	"github.com/ieee0824/phonalign/sonority"
)

// PairWeights supplies an additive score for an ordered segment pair. Either
// side may be Gap. ok is false when the source knows nothing about the pair.
type PairWeights interface {
	PairWeight(a, b string) (w float64, ok bool)
}

// ScoreFunc scores aligning a with b; higher is better.
type ScoreFunc func(a, b string) (float64, error)

// Config holds alignment parameters.
type Config struct {
	GapScore float64 // score added for each gap; negative
}

// DefaultConfig returns the default alignment configuration.
func DefaultConfig() Config {
	return Config{GapScore: -1}
}

// Aligner aligns words with Needleman-Wunsch. Its substitution score is
// log(phonetic similarity) + log(sonority similarity).
type Aligner struct {
	seg     *segment.Segmenter
	phon    *similarity.PhoneScorer
	son     *sonority.Classifier
	cfg     Config
	weights PairWeights
	scoreFn ScoreFunc
}

// Option configures an Aligner.
type Option func(*Aligner)

// WithConfig sets the alignment parameters.
func WithConfig(cfg Config) Option {
	return func(a *Aligner) { a.cfg = cfg }
}

// WithPairWeights adds pair weights (for example PMI) to every score.
func WithPairWeights(pw PairWeights) Option {
	return func(a *Aligner) { a.weights = pw }
}

// WithScoreFunc replaces the substitution score entirely.
func WithScoreFunc(fn ScoreFunc) Option {
	return func(a *Aligner) { a.scoreFn = fn }
}

// New creates an Aligner.
func New(seg *segment.Segmenter, phon *similarity.PhoneScorer, son *sonority.Classifier, opts ...Option) *Aligner {
	a := &Aligner{seg: seg, phon: phon, son: son, cfg: DefaultConfig()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Weighted returns a copy of a that adds pw to its scores.
func (a *Aligner) Weighted(pw PairWeights) *Aligner {
	cp := *a
	cp.weights = pw
	return &cp
}

// Config returns the alignment parameters.
func (a *Aligner) Config() Config { return a.cfg }

// Segmenter returns the segmenter used by Align.
func (a *Aligner) Segmenter() *segment.Segmenter { return a.seg }

// Align segments both words and aligns them.
func (a *Aligner) Align(w1, w2 string) (Alignment, error) {
	s1, err := a.seg.Segment(w1)
	if err != nil {
		return Alignment{}, err
	}
	s2, err := a.seg.Segment(w2)
	if err != nil {
		return Alignment{}, err
	}
	return a.AlignSegments(s1, s2)
}

// Substitution scores aligning x with y. Zero similarity gives -Inf unless
// pair weights are attached, in which case the base is phon·son - 1.
func (a *Aligner) Substitution(x, y string) (float64, error) {
	if a.scoreFn != nil {
		return a.scoreFn(x, y)
	}
	sim, err := a.phon.Similarity(x, y)
	if err != nil {
		return 0, err
	}
	sx, err := a.son.Sonority(x)
	if err != nil {
		return 0, err
	}
	sy, err := a.son.Sonority(y)
	if err != nil {
		return 0, err
	}
	sonSim := 1 - math.Abs(float64(sx-sy))/float64(a.son.Max()+1)

	if a.weights == nil {
		return mathutil.SafeLog(sim) + mathutil.SafeLog(sonSim), nil
	}
	score := sim*sonSim - 1
	if w, ok := a.weights.PairWeight(x, y); ok {
		score += w
	}
	return score, nil
}

func (a *Aligner) gap(x, y string) float64 {
	score := a.cfg.GapScore
	if a.weights != nil {
		if w, ok := a.weights.PairWeight(x, y); ok {
			score += w
		}
	}
	return score
}

// Traceback moves.
const (
	moveDiag byte = iota
	moveUp        // consume a segment of the first word against a gap
	moveLeft      // consume a segment of the second word against a gap
)

// AlignSegments aligns two segment sequences. Ties in traceback prefer the
// diagonal, then up, then left.
func (a *Aligner) AlignSegments(s1, s2 []string) (Alignment, error) {
	n, m := len(s1), len(s2)
	score := mathutil.NewMat(n+1, m+1)
	move := mathutil.NewGrid[byte](n+1, m+1)

	for i := 1; i <= n; i++ {
		score[i][0] = score[i-1][0] + a.gap(s1[i-1], Gap)
		move[i][0] = moveUp
	}
	for j := 1; j <= m; j++ {
		score[0][j] = score[0][j-1] + a.gap(Gap, s2[j-1])
		move[0][j] = moveLeft
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub, err := a.Substitution(s1[i-1], s2[j-1])
			if err != nil {
				return Alignment{}, fmt.Errorf("align %q with %q: %w", s1[i-1], s2[j-1], err)
			}
			diag := score[i-1][j-1] + sub
			up := score[i-1][j] + a.gap(s1[i-1], Gap)
			left := score[i][j-1] + a.gap(Gap, s2[j-1])

			switch {
			case diag >= up && diag >= left:
				score[i][j], move[i][j] = diag, moveDiag
			case up >= left:
				score[i][j], move[i][j] = up, moveUp
			default:
				score[i][j], move[i][j] = left, moveLeft
			}
		}
	}

	// Backtrace
	pairs := make([]Pair, 0, n+m)
	for i, j := n, m; i > 0 || j > 0; {
		switch move[i][j] {
		case moveDiag:
			pairs = append(pairs, Pair{A: s1[i-1], B: s2[j-1]})
			i--
			j--
		case moveUp:
			pairs = append(pairs, Pair{A: s1[i-1], B: Gap})
			i--
		default:
			pairs = append(pairs, Pair{A: Gap, B: s2[j-1]})
			j--
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return Alignment{Pairs: pairs, Score: score[n][m]}, nil
}
