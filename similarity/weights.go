package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ieee0824/phonalign/inventory"
)

// Weights holds one weight per feature, in inventory feature order.
type Weights []float64

// HierarchyWeights derives feature informativeness from the inventory's
// feature hierarchy: ln(1 + siblings + descendants) / depth², normalised to
// sum to 1. Grouping nodes that are not features shape the tree but carry no
// weight.
func HierarchyWeights(inv *inventory.Inventory) Weights {
	w := make(Weights, inv.NumFeatures())
	h := inv.Hierarchy()
	h.Walk(func(n *inventory.HierarchyNode) {
		i, ok := inv.FeatureIndex(n.Name)
		if !ok {
			return
		}
		d := float64(n.Depth)
		w[i] = math.Log(float64(1+n.Siblings(h)+n.Descendants())) / (d * d)
	})
	if total := floats.Sum(w); total > 0 {
		floats.Scale(1/total, w)
	}
	return w
}

// Uniform returns equal weights summing to 1.
func Uniform(n int) Weights {
	w := make(Weights, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// Weighting names how feature weights are derived.
type Weighting string

// Feature weightings.
const (
	HierarchyWeighting Weighting = "hierarchy"
	UniformWeighting   Weighting = "uniform"
)

// ParseWeighting converts a configured weighting name.
func ParseWeighting(s string) (Weighting, error) {
	switch w := Weighting(s); w {
	case HierarchyWeighting, UniformWeighting:
		return w, nil
	}
	return "", fmt.Errorf("unknown feature weighting %q", s)
}

// Weights derives the weighting's feature weights for inv.
func (w Weighting) Weights(inv *inventory.Inventory) Weights {
	if w == UniformWeighting {
		return Uniform(inv.NumFeatures())
	}
	return HierarchyWeights(inv)
}
