package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/phonalign/inventory"
	"github.com/ieee0824/phonalign/segment"
)

func newTestResolver(t *testing.T, opts ...Option) (*Resolver, *inventory.Inventory) {
	t.Helper()
	inv, err := inventory.Default()
	require.NoError(t, err)
	return NewResolver(inv, opts...), inv
}

func TestResolveSimple(t *testing.T) {
	r, inv := newTestResolver(t)

	tests := []struct {
		name string
		seg  string
		want map[string]float64
	}{
		{"plain stop", "p", map[string]float64{"voice": 0, "labial": 1, "consonantal": 1}},
		{"aspirated", "kʰ", map[string]float64{"spreadGlottis": 1, "dorsal": 1}},
		{"labialised aspirated", "kʷʰ", map[string]float64{"spreadGlottis": 1, "round": 1, "labial": 1}},
		{"devoiced", "b̥", map[string]float64{"voice": 0, "labial": 1}},
		{"later diacritic wins", "b̥̬", map[string]float64{"voice": 1}},
		{"earlier diacritic overridden", "b̬̥", map[string]float64{"voice": 0}},
		{"nasalised vowel", "a\u0303", map[string]float64{"nasal": 1, "syllabic": 1}},
		{"non-syllabic vowel", "i̯", map[string]float64{"syllabic": 0, "high": 1}},
		{"long vowel", "aː", map[string]float64{"long": 1}},
		{"vowel with tone letter", "a˥", map[string]float64{"syllabic": 1, "tone": 1, "highTone": 1}},
		{"vowel with contour", "a˥˩", map[string]float64{"tone": 1, "falling": 1, "contour": 1, "highTone": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := r.Resolve(tt.seg)
			require.NoError(t, err)
			require.Len(t, v, inv.NumFeatures())
			for f, want := range tt.want {
				assert.Equal(t, want, inv.Value(v, f), "feature %s", f)
			}
		})
	}
}

func TestResolveConditionalRules(t *testing.T) {
	r, inv := newTestResolver(t)

	v, err := r.Resolve("β̞")
	require.NoError(t, err)
	assert.Equal(t, 1.0, inv.Value(v, "sonorant"))
	assert.Equal(t, 1.0, inv.Value(v, "approximant"))
	assert.Equal(t, 0.0, inv.Value(v, "delayedRelease"))

	v, err = r.Resolve("ɹ̝")
	require.NoError(t, err)
	assert.Equal(t, 1.0, inv.Value(v, "delayedRelease"))

	plain, _ := newTestResolver(t, WithRules())
	v, err = plain.Resolve("β̞")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.Value(v, "sonorant"))
	assert.Equal(t, 1.0, inv.Value(v, "delayedRelease"))
}

func TestResolveAffricate(t *testing.T) {
	r, inv := newTestResolver(t)

	v, err := r.Resolve("t͡ʃ")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.Value(v, "continuant"))
	assert.Equal(t, 1.0, inv.Value(v, "delayedRelease"))
	assert.Equal(t, 1.0, inv.Value(v, "strident"), "fricative cue carried over")
	assert.Equal(t, 1.0, inv.Value(v, "anterior"), "stop cue carried over")

	v, err = r.Resolve("t͡sʰ")
	require.NoError(t, err)
	assert.Equal(t, 1.0, inv.Value(v, "spreadGlottis"))

	v, err = r.Resolve("k͡p")
	require.NoError(t, err)
	assert.Equal(t, 1.0, inv.Value(v, "labial"))
	assert.Equal(t, 1.0, inv.Value(v, "dorsal"))
	assert.Equal(t, 0.0, inv.Value(v, "delayedRelease"))
}

func TestResolveDiphthong(t *testing.T) {
	r, inv := newTestResolver(t)

	v, err := r.Resolve("a͡i̯")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, inv.Value(v, "high"), 1e-9)
	assert.InDelta(t, 2.0/3.0, inv.Value(v, "low"), 1e-9)
	assert.InDelta(t, 1.0, inv.Value(v, "front"), 1e-9)

	v, err = r.Resolve("a͡i")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, inv.Value(v, "high"), 1e-9)

	v, err = r.Resolve("aː͡ɪ")
	require.NoError(t, err)
	assert.Equal(t, 1.0, inv.Value(v, "long"), "length is binarised")
}

func TestResolveTonemes(t *testing.T) {
	r, inv := newTestResolver(t)

	tests := []struct {
		name string
		seg  string
		want map[string]float64
	}{
		{"level high", "˥", map[string]float64{"tone": 1, "highTone": 1, "contour": 0, "rising": 0}},
		{"repeated level", "˧˧", map[string]float64{"contour": 0, "rising": 0, "falling": 0}},
		{"falling", "˥˩", map[string]float64{"falling": 1, "rising": 0, "convex": 0, "contour": 1, "highTone": 0, "lowTone": 0}},
		{"high rising", "˧˥", map[string]float64{"rising": 1, "falling": 0, "highTone": 1, "lowTone": 0}},
		{"low rising", "˩˧", map[string]float64{"rising": 1, "lowTone": 1, "highTone": 0}},
		{"convex", "˩˥˩", map[string]float64{"rising": 1, "falling": 1, "convex": 1, "contour": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := r.Resolve(tt.seg)
			require.NoError(t, err)
			for f, want := range tt.want {
				assert.Equal(t, want, inv.Value(v, f), "feature %s", f)
			}
		})
	}
}

func TestResolveReturnsFreshCopy(t *testing.T) {
	r, inv := newTestResolver(t)

	v1, err := r.Resolve("a")
	require.NoError(t, err)
	inv.Set(v1, "nasal", 1)

	v2, err := r.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.Value(v2, "nasal"))

	v3, err := r.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, v2, v3)
}

func TestResolveUncached(t *testing.T) {
	cached, _ := newTestResolver(t)
	uncached, _ := newTestResolver(t, WithCacheSize(0))
	for _, seg := range []string{"p", "t͡s", "a͡i̯", "˥˩", "ŋ̊"} {
		a, err := cached.Resolve(seg)
		require.NoError(t, err)
		b, err := uncached.Resolve(seg)
		require.NoError(t, err)
		assert.Equal(t, a, b, seg)
	}
}

func TestResolveErrors(t *testing.T) {
	r, _ := newTestResolver(t)
	_, err := r.Resolve("7")
	assert.ErrorIs(t, err, segment.ErrUnrecognizedCharacter)
	assert.Contains(t, err.Error(), "7")
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]string{"lowered-fricative"})
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleLoweredFricative}, rules)

	_, err = ParseRules([]string{"bogus"})
	assert.ErrorContains(t, err, "bogus")
}
