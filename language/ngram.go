// Package language models the phonotactics of one language as a segment
// n-gram model and derives per-segment information content from it.
package language

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ieee0824/phonalign/internal/mathutil"
)

// Boundary and out-of-vocabulary symbols.
const (
	WordStart = "<w>"
	WordEnd   = "</w>"
	Unknown   = "<unk>"
)

// NGramModel is a backoff segment n-gram model with natural-log probabilities.
type NGramModel struct {
	Order    int // 2 for bigram, 3 for trigram
	Unigrams map[string]ngramEntry
	Bigrams  map[[2]string]ngramEntry
	Trigrams map[[3]string]ngramEntry
}

type ngramEntry struct {
	LogProb    float64
	LogBackoff float64
}

// NewNGramModel creates an empty n-gram model.
func NewNGramModel(order int) *NGramModel {
	return &NGramModel{
		Order:    order,
		Unigrams: make(map[string]ngramEntry),
		Bigrams:  make(map[[2]string]ngramEntry),
		Trigrams: make(map[[3]string]ngramEntry),
	}
}

// LogProb returns the log probability of a segment given its history.
// Uses backoff when the exact n-gram is not found.
func (m *NGramModel) LogProb(history []string, seg string) float64 {
	if m.Order >= 3 && len(history) >= 2 {
		key := [3]string{history[len(history)-2], history[len(history)-1], seg}
		if e, ok := m.Trigrams[key]; ok {
			return e.LogProb
		}
		biKey := [2]string{history[len(history)-2], history[len(history)-1]}
		if e, ok := m.Bigrams[biKey]; ok {
			return e.LogBackoff + m.logProbBigram(history[len(history)-1], seg)
		}
	}

	if m.Order >= 2 && len(history) >= 1 {
		return m.logProbBigram(history[len(history)-1], seg)
	}

	return m.logProbUnigram(seg)
}

func (m *NGramModel) logProbBigram(prev, seg string) float64 {
	key := [2]string{prev, seg}
	if e, ok := m.Bigrams[key]; ok {
		return e.LogProb
	}
	if e, ok := m.Unigrams[prev]; ok {
		return e.LogBackoff + m.logProbUnigram(seg)
	}
	return m.logProbUnigram(seg)
}

func (m *NGramModel) logProbUnigram(seg string) float64 {
	if e, ok := m.Unigrams[seg]; ok {
		return e.LogProb
	}
	if e, ok := m.Unigrams[Unknown]; ok {
		return e.LogProb
	}
	return mathutil.LogZero
}

// WordLogProb returns the total log probability of a segmented word,
// including the transition into the word end.
func (m *NGramModel) WordLogProb(segs []string) float64 {
	total := 0.0
	history := []string{WordStart}
	for _, s := range segs {
		total += m.LogProb(history, s)
		history = append(history, s)
	}
	total += m.LogProb(history, WordEnd)
	return total
}

// InformationContent returns the self-information in bits of each segment
// given its left context within the word.
func (m *NGramModel) InformationContent(segs []string) []float64 {
	ic := make([]float64, len(segs))
	history := make([]string, 0, len(segs)+1)
	history = append(history, WordStart)
	for i, s := range segs {
		ic[i] = -m.LogProb(history, s) / math.Ln2
		history = append(history, s)
	}
	return ic
}

// RelativeInformationContent divides each value of InformationContent by
// their mean, so a word's values average 1.
func (m *NGramModel) RelativeInformationContent(segs []string) []float64 {
	ic := m.InformationContent(segs)
	if len(ic) == 0 {
		return ic
	}
	mean := stat.Mean(ic, nil)
	for i := range ic {
		if mean > 0 {
			ic[i] /= mean
		} else {
			ic[i] = 1
		}
	}
	return ic
}

// Vocab returns all segments in the unigram vocabulary, sorted.
func (m *NGramModel) Vocab() []string {
	segs := make([]string, 0, len(m.Unigrams))
	for s := range m.Unigrams {
		segs = append(segs, s)
	}
	sort.Strings(segs)
	return segs
}
