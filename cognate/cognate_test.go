package cognate

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/correspondence"
	"github.com/ieee0824/phonalign/feature"
	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/segment"
	"github.com/ieee0824/phonalign/similarity"
	"github.com/ieee0824/phonalign/sonority"
	"github.com/ieee0824/phonalign/wordsim"
)

var quiet = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

func newStack(t *testing.T) (*align.Aligner, *wordsim.Scorer) {
	t.Helper()
	inv, err := inventory.Default()
	require.NoError(t, err)
	res := feature.NewResolver(inv)
	phon, err := similarity.NewPhoneScorer(res)
	require.NoError(t, err)
	son := sonority.NewClassifier(res)
	return align.New(segment.New(inv), phon, son), wordsim.New(phon, son)
}

func vocab(lang string, rows ...string) *lexicon.Vocabulary {
	v := lexicon.NewVocabulary(lang)
	for i := 0; i+1 < len(rows); i += 2 {
		v.Add(rows[i], rows[i+1], false)
	}
	return v
}

func germanic() (*lexicon.Vocabulary, *lexicon.Vocabulary) {
	de := vocab("de",
		"water", "vasər", "night", "naxt", "hand", "hant", "fish", "fɪʃ",
		"house", "haus", "mouse", "maus", "name", "naːmə", "milk", "mɪlç")
	en := vocab("en",
		"water", "wɔtər", "night", "naɪt", "hand", "hænd", "fish", "fɪʃ",
		"house", "haus", "mouse", "maus", "name", "neɪm", "milk", "mɪlk")
	return de, en
}

func concepts(ps []Pair) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Concept)
	}
	return out
}

func TestDetectPhonetic(t *testing.T) {
	aligner, scorer := newStack(t)
	cfg := DefaultConfig()
	cfg.Method = Phonetic
	d := New(aligner, scorer, WithConfig(cfg), WithLogger(quiet))

	de, en := germanic()
	res, err := d.Detect(de, en)
	require.NoError(t, err)

	assert.Equal(t, Converged, res.State)
	assert.Equal(t, 8, res.Concepts)
	assert.Equal(t, 56, res.NullSize)
	assert.Len(t, append(res.Cognates, res.NonCognates...), 8)
	cog := concepts(res.Cognates)
	for _, c := range []string{"fish", "house", "mouse"} {
		assert.Contains(t, cog, c)
	}
	for _, p := range res.Cognates {
		assert.LessOrEqual(t, p.PValue, cfg.PThreshold)
	}
	for _, p := range res.NonCognates {
		assert.Greater(t, p.PValue, cfg.PThreshold)
	}
	require.NotNil(t, res.Model)
	assert.NotEmpty(t, res.RunID)
}

func TestDetectDeterministic(t *testing.T) {
	aligner, scorer := newStack(t)
	de, en := germanic()

	for _, m := range []Method{Phonetic, PMI, Surprisal} {
		t.Run(string(m), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Method = m
			cfg.NullSize = 20
			d := New(aligner, scorer, WithConfig(cfg), WithLogger(quiet))

			r1, err := d.Detect(de, en)
			require.NoError(t, err)
			r2, err := d.Detect(de, en)
			require.NoError(t, err)

			assert.Equal(t, concepts(r1.Cognates), concepts(r2.Cognates))
			assert.Equal(t, r1.State, r2.State)
			assert.Equal(t, r1.Iterations, r2.Iterations)
			assert.Equal(t, 20, r1.NullSize)
			assert.LessOrEqual(t, r1.Iterations, cfg.MaxIterations)
			assert.Contains(t, []State{Converged, MaxIterationsReached}, r1.State)
			assert.NotEqual(t, r1.RunID, r2.RunID)
		})
	}
}

func TestLoansStartAsCognate(t *testing.T) {
	aligner, scorer := newStack(t)
	cfg := DefaultConfig()
	cfg.Method = Phonetic
	cfg.MaxIterations = 1

	de, en := germanic()
	de.Add("beef", "rɪnt", false)

	en.Add("beef", "biːf", false)
	res, err := New(aligner, scorer, WithConfig(cfg), WithLogger(quiet)).Detect(de, en)
	require.NoError(t, err)
	assert.Equal(t, Converged, res.State)

	// The loan is seeded as cognate, then dropped by the first round.
	_, en = germanic()
	en.Add("beef", "biːf", true)
	res, err = New(aligner, scorer, WithConfig(cfg), WithLogger(quiet)).Detect(de, en)
	require.NoError(t, err)
	assert.Equal(t, MaxIterationsReached, res.State)
	assert.Equal(t, 1, res.Iterations)
	assert.NotContains(t, concepts(res.Cognates), "beef")
}

func TestDetectPublishesTables(t *testing.T) {
	aligner, scorer := newStack(t)
	store := correspondence.NewStore(correspondence.DefaultStoreSize)
	store.Put("de", "en", correspondence.PMI, correspondence.NewTable())

	de, en := germanic()
	res, err := New(aligner, scorer, WithStore(store), WithLogger(quiet)).Detect(de, en)
	require.NoError(t, err)

	tbl, ok := store.Get("de", "en", correspondence.PMI)
	require.True(t, ok)
	assert.Positive(t, tbl.Len())
	assert.Same(t, res.Model.Counts(), mustGet(t, store, correspondence.Counts))
}

func mustGet(t *testing.T, s *correspondence.Store, k correspondence.Kind) *correspondence.Table {
	t.Helper()
	tbl, ok := s.Get("de", "en", k)
	require.True(t, ok)
	return tbl
}

func TestDetectLogsRunID(t *testing.T) {
	aligner, scorer := newStack(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	de, en := germanic()
	res, err := New(aligner, scorer, WithLogger(logger)).Detect(de, en)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run_id="+res.RunID)
	assert.Contains(t, out, "round finished")
	assert.Contains(t, out, "cognate detection finished")
}

func TestDetectSkipsUnrecognized(t *testing.T) {
	aligner, scorer := newStack(t)
	de, en := germanic()
	de.Add("star", "ʃtern9", false)
	en.Add("star", "stɑr", false)

	var buf bytes.Buffer
	res, err := New(aligner, scorer, WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))).Detect(de, en)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Concepts)
	assert.Contains(t, buf.String(), "skipping word")
}

func TestDetectNoNullSample(t *testing.T) {
	aligner, scorer := newStack(t)
	_, err := New(aligner, scorer, WithLogger(quiet)).Detect(vocab("de", "fish", "fɪʃ"), vocab("en", "fish", "fɪʃ"))
	assert.True(t, errors.Is(err, ErrNoNullSample))
}

func TestDetectInvalidConfig(t *testing.T) {
	aligner, scorer := newStack(t)
	cfg := DefaultConfig()
	cfg.PThreshold = 0
	de, en := germanic()
	_, err := New(aligner, scorer, WithConfig(cfg)).Detect(de, en)
	assert.ErrorContains(t, err, "p threshold")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Method = "vibes"
	cfg.MaxIterations = 0
	cfg.NullSize = 0
	cfg.Alpha = 0
	err := cfg.Validate()
	for _, want := range []string{"vibes", "max iterations", "null sample", "alpha"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"phonetic", "pmi", "surprisal"} {
		m, err := ParseMethod(s)
		require.NoError(t, err)
		assert.Equal(t, Method(s), m)
	}
	_, err := ParseMethod("lexical")
	assert.Error(t, err)
	assert.Equal(t, "max_iterations_reached", MaxIterationsReached.String())
}

func TestPValue(t *testing.T) {
	null := []float64{0.1, 0.2, 0.3, 0.4}
	tests := []struct {
		obs, want float64
	}{
		{0.5, 1.0 / 5},
		{0.35, 2.0 / 5},
		{0.3, 3.0 / 5},
		{0.0, 5.0 / 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, pValue(tt.obs, null), 1e-12, "obs %v", tt.obs)
	}
}

func TestDifferentMeaningSample(t *testing.T) {
	aligner, _ := newStack(t)
	de, en := germanic()
	w1, err := segmentVocabulary(aligner.Segmenter(), de, quiet)
	require.NoError(t, err)
	w2, err := segmentVocabulary(aligner.Segmenter(), en, quiet)
	require.NoError(t, err)

	all := differentMeaning(w1, w2, 1000, 1)
	assert.Len(t, all, 56)

	s1 := differentMeaning(w1, w2, 10, 7)
	s2 := differentMeaning(w1, w2, 10, 7)
	require.Len(t, s1, 10)
	assert.Equal(t, s1, s2)
	seen := make(map[[2]string]bool)
	for _, p := range s1 {
		assert.NotEqual(t, p[0].Concept, p[1].Concept)
		key := [2]string{p[0].Form, p[1].Form}
		assert.False(t, seen[key], "duplicate %v", key)
		seen[key] = true
	}
}

func TestDistances(t *testing.T) {
	aligner, scorer := newStack(t)
	de, en := germanic()

	d, err := PhoneticDistance(aligner, scorer, de, de, quiet)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-12)

	d, err = PhoneticDistance(aligner, scorer, de, en, quiet)
	require.NoError(t, err)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 1.0)

	_, err = PhoneticDistance(aligner, scorer, vocab("de", "fish", "fɪʃ"), vocab("en", "milk", "mɪlk"), quiet)
	assert.ErrorIs(t, err, ErrNoSharedConcepts)

	r := &Result{Concepts: 4, Cognates: []Pair{{Concept: "fish"}, {Concept: "fish"}, {Concept: "house"}}}
	assert.InDelta(t, 0.5, CognateDistance(r), 1e-12)
	assert.Equal(t, 1.0, CognateDistance(&Result{}))
}

func TestCluster(t *testing.T) {
	near := func(a, b int) (float64, error) {
		if a-b <= 1 && b-a <= 1 {
			return 1, nil
		}
		return 0, nil
	}
	got, err := Cluster([]int{1, 20, 2, 10, 3, 11}, near, 0.5)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}, {20}, {10, 11}}, got)

	got, err = Cluster([]int{}, near, 0.5)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Cluster([]int{1, 2}, func(int, int) (float64, error) { return 0, errors.New("boom") }, 0.5)
	assert.EqualError(t, err, "boom")
}
