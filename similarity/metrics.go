// Package similarity compares feature vectors.
package similarity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ieee0824/phonalign/internal/mathutil"
	"github.com/ieee0824/phonalign/inventory"
)

// Method selects a similarity measure.
type Method string

const (
	Dice            Method = "dice"
	WeightedDice    Method = "weighted_dice"
	Jaccard         Method = "jaccard"
	WeightedJaccard Method = "weighted_jaccard"
	Hamming         Method = "hamming"
	WeightedHamming Method = "weighted_hamming"
	Cosine          Method = "cosine"
	WeightedCosine  Method = "weighted_cosine"
)

// Methods lists every supported method.
var Methods = []Method{Dice, WeightedDice, Jaccard, WeightedJaccard, Hamming, WeightedHamming, Cosine, WeightedCosine}

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown similarity method %q", s)
}

// Weighted reports whether m uses feature weights.
func (m Method) Weighted() bool {
	switch m {
	case WeightedDice, WeightedJaccard, WeightedHamming, WeightedCosine:
		return true
	}
	return false
}

// ErrEmptyVector is returned by the cosine family when a vector has zero
// magnitude over the compared features.
var ErrEmptyVector = errors.New("similarity: zero vector")

// Compare returns the similarity of v1 and v2 in [0, 1]. Hamming is returned
// as 1 - distance. Features whose index is in excluded are dropped from both
// vectors. weights is required for weighted methods and ignored otherwise.
//
// With no "on" features left, unweighted Dice and Jaccard return 1; a
// weighted method whose weighted denominator is 0 returns 0.
func Compare(v1, v2 inventory.Vector, method Method, weights Weights, excluded []int) (float64, error) {
	if len(v1) != len(v2) {
		return 0, fmt.Errorf("similarity: vector lengths %d and %d differ", len(v1), len(v2))
	}
	if method.Weighted() && len(weights) != len(v1) {
		return 0, fmt.Errorf("similarity: %s needs %d weights, got %d", method, len(v1), len(weights))
	}
	a, b, w := project(v1, v2, weights, excluded, method.Weighted())

	var sim float64
	switch method {
	case Dice, WeightedDice:
		num, den := 0.0, 0.0
		for i := range a {
			num += 2 * w[i] * math.Min(a[i], b[i])
			den += w[i] * (a[i] + b[i])
		}
		sim = ratio(num, den, method.Weighted())
	case Jaccard, WeightedJaccard:
		num, den := 0.0, 0.0
		for i := range a {
			num += w[i] * math.Min(a[i], b[i])
			den += w[i] * math.Max(a[i], b[i])
		}
		sim = ratio(num, den, method.Weighted())
	case Hamming, WeightedHamming:
		diff, total := 0.0, floats.Sum(w)
		for i := range a {
			diff += w[i] * math.Abs(a[i]-b[i])
		}
		switch {
		case total > 0:
			sim = 1 - diff/total
		case method.Weighted():
			sim = 0
		default:
			sim = 1
		}
	case Cosine, WeightedCosine:
		for i := range w {
			sw := math.Sqrt(w[i])
			a[i] *= sw
			b[i] *= sw
		}
		na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
		if na == 0 || nb == 0 {
			return 0, ErrEmptyVector
		}
		sim = floats.Dot(a, b) / (na * nb)
	default:
		return 0, fmt.Errorf("unknown similarity method %q", method)
	}
	return mathutil.Clamp(sim, 0, 1), nil
}

// ratio divides num by den. An empty denominator counts as identical for
// unweighted measures and as no evidence for weighted ones.
func ratio(num, den float64, weighted bool) float64 {
	if den == 0 {
		if weighted {
			return 0
		}
		return 1
	}
	return num / den
}

// project copies the non-excluded features. Unweighted methods get unit weights.
func project(v1, v2 inventory.Vector, weights Weights, excluded []int, weighted bool) (a, b, w []float64) {
	skip := make(map[int]bool, len(excluded))
	for _, i := range excluded {
		skip[i] = true
	}
	a = make([]float64, 0, len(v1))
	b = make([]float64, 0, len(v1))
	w = make([]float64, 0, len(v1))
	for i := range v1 {
		if skip[i] {
			continue
		}
		a = append(a, v1[i])
		b = append(b, v2[i])
		if weighted {
			w = append(w, weights[i])
		} else {
			w = append(w, 1)
		}
	}
	return a, b, w
}
