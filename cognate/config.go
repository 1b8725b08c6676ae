// Package cognate classifies same-meaning word pairs of two languages as
// cognate or not, re-estimating segment correspondences until the
// classification stabilises.
package cognate

import (
	"errors"
	"fmt"

	"github.com/ieee0824/phonalign/correspondence"
)

// Method selects how a word pair is scored.
type Method string

const (
	// Phonetic scores pairs by word similarity of their unweighted alignment.
	Phonetic Method = "phonetic"
	// PMI realigns pairs with correspondence PMI weights and scores them by
	// their mean alignment score per position.
	PMI Method = "pmi"
	// Surprisal scores pairs by negative symmetric adaptation surprisal.
	Surprisal Method = "surprisal"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Phonetic, PMI, Surprisal:
		return m, nil
	}
	return "", fmt.Errorf("unknown cognate method %q", s)
}

// State is the detector's position in its classification loop.
type State int

const (
	Initialized State = iota
	Iterating
	Converged
	MaxIterationsReached
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config holds detector parameters.
type Config struct {
	Method        Method
	PThreshold    float64 // classify as cognate when p <= PThreshold
	MaxIterations int
	NullSize      int    // different-meaning pairs in the null sample
	Seed          uint64 // null sample seed
	Alpha         float64
	ExcludeGaps   bool
	Reduce        correspondence.Reduce
}

// DefaultConfig returns the default detector parameters.
func DefaultConfig() Config {
	return Config{
		Method:        PMI,
		PThreshold:    0.05,
		MaxIterations: 10,
		NullSize:      1000,
		Seed:          1,
		Alpha:         correspondence.DefaultAlpha,
		ExcludeGaps:   false,
		Reduce:        correspondence.Mean,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseMethod(string(c.Method)); err != nil {
		errs = append(errs, err)
	}
	if c.PThreshold <= 0 || c.PThreshold > 1 {
		errs = append(errs, fmt.Errorf("p threshold %g outside (0, 1]", c.PThreshold))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max iterations %d < 1", c.MaxIterations))
	}
	if c.NullSize < 1 {
		errs = append(errs, fmt.Errorf("null sample size %d < 1", c.NullSize))
	}
	if c.Alpha <= 0 {
		errs = append(errs, fmt.Errorf("alpha %g <= 0", c.Alpha))
	}
	return errors.Join(errs...)
}
