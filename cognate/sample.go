package cognate

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sort"

	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/segment"
)

// ErrNoNullSample is returned when two vocabularies yield no
// different-meaning pairs to compare against.
var ErrNoNullSample = errors.New("no different-meaning pairs")

// word is a vocabulary entry with its segmentation.
type word struct {
	lexicon.Entry
	segs []string
}

// segmentVocabulary segments every form, skipping and logging forms with
// unrecognized characters.
func segmentVocabulary(seg *segment.Segmenter, v *lexicon.Vocabulary, logger *slog.Logger) ([]word, error) {
	var out []word
	for _, c := range v.Concepts() {
		for _, e := range v.Lookup(c) {
			segs, err := seg.Segment(e.Form)
			if err != nil {
				var uerr *segment.UnrecognizedCharacterError
				if errors.As(err, &uerr) {
					logger.Warn("skipping word", "language", e.Language, "concept", e.Concept, "word", e.Form, "char", uerr.Char)
					continue
				}
				return nil, err
			}
			out = append(out, word{Entry: e, segs: segs})
		}
	}
	return out, nil
}

// sameMeaning pairs every form of one language with every form of the other
// sharing its concept.
func sameMeaning(w1, w2 []word) [][2]word {
	byConcept := make(map[string][]word)
	for _, w := range w2 {
		byConcept[w.Concept] = append(byConcept[w.Concept], w)
	}
	var out [][2]word
	for _, a := range w1 {
		for _, b := range byConcept[a.Concept] {
			out = append(out, [2]word{a, b})
		}
	}
	return out
}

// differentMeaning draws up to size different-meaning pairs. When fewer than
// size exist all of them are returned; otherwise the draw is seeded and
// without replacement.
func differentMeaning(w1, w2 []word, size int, seed uint64) [][2]word {
	total := 0
	for _, a := range w1 {
		for _, b := range w2 {
			if a.Concept != b.Concept {
				total++
			}
		}
	}

	if total <= size {
		out := make([][2]word, 0, total)
		for _, a := range w1 {
			for _, b := range w2 {
				if a.Concept != b.Concept {
					out = append(out, [2]word{a, b})
				}
			}
		}
		return out
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	seen := make(map[[2]int]bool, size)
	picked := make([][2]int, 0, size)
	for len(picked) < size {
		i, j := rng.IntN(len(w1)), rng.IntN(len(w2))
		if w1[i].Concept == w2[j].Concept || seen[[2]int{i, j}] {
			continue
		}
		seen[[2]int{i, j}] = true
		picked = append(picked, [2]int{i, j})
	}
	sort.Slice(picked, func(a, b int) bool {
		if picked[a][0] != picked[b][0] {
			return picked[a][0] < picked[b][0]
		}
		return picked[a][1] < picked[b][1]
	})

	out := make([][2]word, len(picked))
	for k, p := range picked {
		out[k] = [2]word{w1[p[0]], w2[p[1]]}
	}
	return out
}

// pValue returns (#null >= obs + 1) / (N + 1). null must be sorted ascending.
func pValue(obs float64, null []float64) float64 {
	idx := sort.SearchFloat64s(null, obs)
	atLeast := len(null) - idx
	return float64(atLeast+1) / float64(len(null)+1)
}
