package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/phonalign/feature"
	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/segment"
	"github.com/ieee0824/phonalign/similarity"
	"github.com/ieee0824/phonalign/sonority"
)

func newTestAligner(t *testing.T, opts ...Option) *Aligner {
	t.Helper()
	inv, err := inventory.Default()
	require.NoError(t, err)
	res := feature.NewResolver(inv)
	phon, err := similarity.NewPhoneScorer(res)
	require.NoError(t, err)
	return New(segment.New(inv), phon, sonority.NewClassifier(res), opts...)
}

type mapWeights map[Pair]float64

func (m mapWeights) PairWeight(a, b string) (float64, bool) {
	w, ok := m[Pair{A: a, B: b}]
	return w, ok
}

func TestAlignIdentical(t *testing.T) {
	a := newTestAligner(t)

	al, err := a.Align("sɪt", "sɪt")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"s", "s"}, {"ɪ", "ɪ"}, {"t", "t"}}, al.Pairs)
	assert.InDelta(t, 0.0, al.Score, 1e-9)

	for _, w := range []string{"kʷʰa˥", "t͡ʃa͡i̯", "ŋa˧˥ma", "aː"} {
		al, err := a.Align(w, w)
		require.NoError(t, err)
		assert.Zero(t, al.Gaps(), w)
		for _, p := range al.Pairs {
			assert.Equal(t, p.A, p.B)
		}
		assert.InDelta(t, 0.0, al.Score, 1e-9, w)
	}
}

func TestAlignEmpty(t *testing.T) {
	a := newTestAligner(t)

	al, err := a.Align("", "pa")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Gap, "p"}, {Gap, "a"}}, al.Pairs)
	assert.InDelta(t, -2.0, al.Score, 1e-9)

	al, err = a.Align("pa", "")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"p", Gap}, {"a", Gap}}, al.Pairs)

	al, err = a.Align("", "")
	require.NoError(t, err)
	assert.Empty(t, al.Pairs)
}

func TestAlignInvariants(t *testing.T) {
	a := newTestAligner(t)
	seg := a.Segmenter()

	words := []string{"sɪt", "kat", "at", "strɛŋθ", "mama", "ŋa˧˥", "t͡ʃiːz", "pʰa", "o"}
	for _, w1 := range words {
		for _, w2 := range words {
			al, err := a.Align(w1, w2)
			require.NoError(t, err)

			s1, _ := seg.Segment(w1)
			s2, _ := seg.Segment(w2)
			assert.GreaterOrEqual(t, len(al.Pairs), max(len(s1), len(s2)))
			assert.Equal(t, s1, nilIfEmpty(al.Left()), "%s/%s left", w1, w2)
			assert.Equal(t, s2, nilIfEmpty(al.Right()), "%s/%s right", w1, w2)
			for _, p := range al.Pairs {
				assert.False(t, p.A == Gap && p.B == Gap)
			}
		}
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestAlignDeletion(t *testing.T) {
	a := newTestAligner(t)
	al, err := a.Align("kat", "at")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"k", Gap}, {"a", "a"}, {"t", "t"}}, al.Pairs)
	assert.InDelta(t, -1.0, al.Score, 1e-9)
}

func TestAlignTieBreaking(t *testing.T) {
	exact := func(x, y string) (float64, error) {
		if x == y {
			return 0, nil
		}
		return -5, nil
	}
	a := newTestAligner(t, WithScoreFunc(exact))

	// Diagonal beats left on an equal score.
	al, err := a.AlignSegments([]string{"a"}, []string{"a", "a"})
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Gap, "a"}, {"a", "a"}}, al.Pairs)

	// Up beats left on an equal score.
	al, err = a.AlignSegments([]string{"x"}, []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Gap, "y"}, {"x", Gap}}, al.Pairs)
	assert.InDelta(t, -2.0, al.Score, 1e-9)

	again, err := a.AlignSegments([]string{"x"}, []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, al, again)
}

func TestZeroSimilarityIsNegativeInfinity(t *testing.T) {
	a := newTestAligner(t)

	sub, err := a.Substitution("p", "˧")
	require.NoError(t, err)
	assert.True(t, math.IsInf(sub, -1))

	al, err := a.Align("p", "˧")
	require.NoError(t, err)
	assert.Equal(t, 2, al.Gaps())
	assert.InDelta(t, -2.0, al.Score, 1e-9)
}

func TestPairWeights(t *testing.T) {
	base := newTestAligner(t)
	w := mapWeights{
		{"s", "s"}: 0.5,
		{"s", Gap}: -0.25,
	}
	a := base.Weighted(w)

	sub, err := a.Substitution("s", "s")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, sub, 1e-9)

	sub, err = a.Substitution("t", "t")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sub, 1e-9, "unknown pair adds nothing to the bounded base")

	sub, err = a.Substitution("p", "˧")
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sub, 1e-9, "bounded base replaces -Inf")

	assert.InDelta(t, -1.25, a.gap("s", Gap), 1e-9)
	assert.InDelta(t, -1.0, a.gap(Gap, "s"), 1e-9)

	// The unweighted aligner is untouched.
	sub, err = base.Substitution("s", "s")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sub, 1e-9)
}

func TestPairWeightsChangeAlignment(t *testing.T) {
	a := newTestAligner(t, WithConfig(Config{GapScore: -0.5}))
	plain, err := a.Align("pa", "ap")
	require.NoError(t, err)

	favour := a.Weighted(mapWeights{{"p", "a"}: 5, {"a", "p"}: 5})
	weighted, err := favour.Align("pa", "ap")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"p", "a"}, {"a", "p"}}, weighted.Pairs)
	assert.NotEqual(t, plain.Pairs, weighted.Pairs)
}

func TestAlignUnrecognized(t *testing.T) {
	a := newTestAligner(t)
	_, err := a.Align("pa7", "pa")
	assert.ErrorIs(t, err, segment.ErrUnrecognizedCharacter)
}

func TestAlignmentHelpers(t *testing.T) {
	al := Alignment{Pairs: []Pair{{"k", Gap}, {"a", "a"}}, Score: -1}
	assert.Equal(t, "k:- a:a", al.String())
	sw := al.Swap()
	assert.Equal(t, []Pair{{Gap, "k"}, {"a", "a"}}, sw.Pairs)
	assert.Equal(t, al.Score, sw.Score)
	assert.Equal(t, []string{"k", "a"}, al.Left())
	assert.Equal(t, []string{"a"}, al.Right())
}
