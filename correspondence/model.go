package correspondence

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ieee0824/phonalign/align"
	"github.com/ieee0824/phonalign/internal/mathutil"
)

// Kind names a correspondence statistic.
type Kind string

const (
	Counts      Kind = "counts"
	Conditional Kind = "conditional"
	PMI         Kind = "pmi"
	Surprisal   Kind = "surprisal"
)

// ParseKind validates a statistic name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Counts, Conditional, PMI, Surprisal:
		return k, nil
	}
	return "", fmt.Errorf("unknown correspondence kind %q", s)
}

// Reduce combines per-position surprisal values.
type Reduce int

const (
	Mean Reduce = iota
	Sum
)

// DefaultAlpha is the default Lidstone smoothing parameter.
const DefaultAlpha = 0.1

// Model holds Lidstone-smoothed correspondence probabilities estimated from
// a cognate sample, optionally contrasted with a null (non-cognate) sample.
// It is directional: it predicts second-language segments from first-language
// ones. A Model is read-only after construction.
type Model struct {
	cognate     *Table
	null        *Table // nil without a null sample
	alpha       float64
	excludeGaps bool
	alphabet    int // distinct second-language outcomes

	cogRow, nullRow     map[string]float64
	cogTotal, nullTotal float64
	cogCol, nullCol     map[string]float64
}

// NewModel estimates a model. null may be empty, in which case PMI is the
// classic log2 P(a,b) / (P(a) P(b)) over the cognate sample.
func NewModel(cognate, null []align.Alignment, alpha float64, excludeGaps bool) *Model {
	m := &Model{
		cognate:     Build(cognate, excludeGaps),
		alpha:       alpha,
		excludeGaps: excludeGaps,
	}
	if len(null) > 0 {
		m.null = Build(null, excludeGaps)
	}

	targets := make(map[string]bool)
	m.cogRow, m.cogCol, m.cogTotal = margins(m.cognate, targets)
	if m.null != nil {
		m.nullRow, m.nullCol, m.nullTotal = margins(m.null, targets)
	}
	m.alphabet = max(len(targets), 1)
	return m
}

func margins(t *Table, targets map[string]bool) (rows, cols map[string]float64, total float64) {
	rows = make(map[string]float64)
	cols = make(map[string]float64)
	for _, a := range t.Sources() {
		for _, b := range t.Targets(a) {
			c := t.Get(a, b)
			rows[a] += c
			cols[b] += c
			total += c
			targets[b] = true
		}
	}
	return rows, cols, total
}

// Counts returns the raw cognate-sample joint counts.
func (m *Model) Counts() *Table { return m.cognate }

// Conditional returns the smoothed P(b | a) in the cognate sample.
func (m *Model) Conditional(a, b string) float64 {
	return m.lidstone(m.cognate.Get(a, b), m.cogRow[a])
}

// NullConditional returns the smoothed P(b | a) in the null sample. When a
// never occurs there, it falls back to the null marginal P(b).
func (m *Model) NullConditional(a, b string) float64 {
	if m.null == nil {
		return m.lidstone(m.cogCol[b], m.cogTotal)
	}
	if m.nullRow[a] == 0 {
		return m.lidstone(m.nullCol[b], m.nullTotal)
	}
	return m.lidstone(m.null.Get(a, b), m.nullRow[a])
}

func (m *Model) lidstone(count, total float64) float64 {
	return (count + m.alpha) / (total + m.alpha*float64(m.alphabet))
}

// PMI returns log2 Pc(b|a) / Pn(b|a).
func (m *Model) PMI(a, b string) float64 {
	return mathutil.SafeLog2(m.Conditional(a, b)) - mathutil.SafeLog2(m.NullConditional(a, b))
}

// PairWeight implements align.PairWeights with PMI. Pairs where neither
// segment was seen in the cognate sample, and gap pairs when gaps are
// excluded, are unknown.
func (m *Model) PairWeight(a, b string) (float64, bool) {
	if m.excludeGaps && (a == align.Gap || b == align.Gap) {
		return 0, false
	}
	if m.cogRow[a] == 0 && m.cogCol[b] == 0 {
		return 0, false
	}
	return m.PMI(a, b), true
}

// PMITable evaluates PMI over every pair seen in either sample.
func (m *Model) PMITable() *Table {
	return m.tabulate(m.PMI)
}

// ConditionalTable evaluates the cognate conditional over every pair seen
// in either sample.
func (m *Model) ConditionalTable() *Table {
	return m.tabulate(m.Conditional)
}

// SurprisalTable evaluates -log2 Pc(b|a) over every pair seen in either sample.
func (m *Model) SurprisalTable() *Table {
	return m.tabulate(func(a, b string) float64 { return -mathutil.SafeLog2(m.Conditional(a, b)) })
}

func (m *Model) tabulate(fn func(a, b string) float64) *Table {
	out := NewTable()
	for _, t := range []*Table{m.cognate, m.null} {
		if t == nil {
			continue
		}
		for _, a := range t.Sources() {
			for _, b := range t.Targets(a) {
				if _, done := out.Lookup(a, b); !done {
					out.Set(a, b, fn(a, b))
				}
			}
		}
	}
	return out
}

// Table returns the statistic of the given kind.
func (m *Model) Table(kind Kind) (*Table, error) {
	switch kind {
	case Counts:
		return m.cognate, nil
	case Conditional:
		return m.ConditionalTable(), nil
	case PMI:
		return m.PMITable(), nil
	case Surprisal:
		return m.SurprisalTable(), nil
	}
	return nil, fmt.Errorf("unknown correspondence kind %q", kind)
}

// Surprisal returns the adaptation surprisal of an alignment: -log2 Pc(b|a)
// over its positions, reduced by mean or sum.
func (m *Model) Surprisal(al align.Alignment, reduce Reduce) float64 {
	vals := make([]float64, 0, len(al.Pairs))
	for _, p := range al.Pairs {
		if m.excludeGaps && p.IsGap() {
			continue
		}
		vals = append(vals, -mathutil.SafeLog2(m.Conditional(p.A, p.B)))
	}
	if len(vals) == 0 {
		return 0
	}
	if reduce == Sum {
		return floats.Sum(vals)
	}
	return stat.Mean(vals, nil)
}

// SymmetricSurprisal averages forward surprisal of al under fwd and backward
// surprisal of the swapped alignment under bwd.
func SymmetricSurprisal(fwd, bwd *Model, al align.Alignment, reduce Reduce) float64 {
	return (fwd.Surprisal(al, reduce) + bwd.Surprisal(al.Swap(), reduce)) / 2
}
