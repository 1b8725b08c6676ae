package cognate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/lexicon"
	"github.com/ieee0824/phonalign/wordsim"
)

// ErrNoSharedConcepts is returned when two vocabularies have no concept in
// common.
var ErrNoSharedConcepts = errors.New("no shared concepts")

// CognateDistance is the share of shared concepts without any cognate pair.
func CognateDistance(r *Result) float64 {
	if r.Concepts == 0 {
		return 1
	}
	withCognate := make(map[string]bool)
	for _, p := range r.Cognates {
		withCognate[p.Concept] = true
	}
	return 1 - float64(len(withCognate))/float64(r.Concepts)
}

// PhoneticDistance is 1 minus the mean, over shared concepts, of the best
// word similarity among that concept's synonym pairs. Forms with
// unrecognized characters are skipped.
func PhoneticDistance(aligner *align.Aligner, scorer *wordsim.Scorer, v1, v2 *lexicon.Vocabulary, logger *slog.Logger) (float64, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w1, err := segmentVocabulary(aligner.Segmenter(), v1, logger)
	if err != nil {
		return 0, err
	}
	w2, err := segmentVocabulary(aligner.Segmenter(), v2, logger)
	if err != nil {
		return 0, err
	}

	best := make(map[string]float64)
	for _, p := range sameMeaning(w1, w2) {
		al, err := aligner.AlignSegments(p[0].segs, p[1].segs)
		if err != nil {
			return 0, err
		}
		s, err := scorer.Score(al)
		if err != nil {
			return 0, err
		}
		best[p[0].Concept] = max(best[p[0].Concept], s)
	}
	if len(best) == 0 {
		return 0, fmt.Errorf("%s/%s: %w", v1.Language, v2.Language, ErrNoSharedConcepts)
	}

	concepts := make([]string, 0, len(best))
	for c := range best {
		concepts = append(concepts, c)
	}
	sort.Strings(concepts)
	sims := make([]float64, len(concepts))
	for i, c := range concepts {
		sims[i] = best[c]
	}
	return 1 - stat.Mean(sims, nil), nil
}

// Cluster groups items into cognate sets: items whose similarity reaches
// threshold are linked, and each set is a connected component. Sets are
// ordered by their first item, items within a set by input order.
func Cluster[T any](items []T, sim func(a, b T) (float64, error), threshold float64) ([][]T, error) {
	g := simple.NewUndirectedGraph()
	for i := range items {
		g.AddNode(simple.Node(i))
	}
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			s, err := sim(items[i], items[j])
			if err != nil {
				return nil, err
			}
			if s >= threshold {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}

	comps := topo.ConnectedComponents(g)
	idx := make([][]int, len(comps))
	for k, comp := range comps {
		idx[k] = nodeIDs(comp)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a][0] < idx[b][0] })

	out := make([][]T, len(idx))
	for k, ids := range idx {
		for _, i := range ids {
			out[k] = append(out[k], items[i])
		}
	}
	return out, nil
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	sort.Ints(ids)
	return ids
}
