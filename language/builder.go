package language

import (
	"math"

	"github.com/ieee0824/phonalign/internal/mathutil"
)

// Builder accumulates segmented words and builds an n-gram model.
type Builder struct {
	order    int
	unigrams map[string]int
	bigrams  map[[2]string]int
	trigrams map[[3]string]int
}

// NewBuilder creates a new n-gram builder.
// order must be 2 (bigram) or 3 (trigram).
func NewBuilder(order int) *Builder {
	if order < 2 {
		order = 2
	}
	if order > 3 {
		order = 3
	}
	return &Builder{
		order:    order,
		unigrams: make(map[string]int),
		bigrams:  make(map[[2]string]int),
		trigrams: make(map[[3]string]int),
	}
}

// AddWord adds a segmented word. Word boundaries are added automatically.
func (b *Builder) AddWord(segs []string) {
	if len(segs) == 0 {
		return
	}
	seq := make([]string, 0, len(segs)+2)
	seq = append(seq, WordStart)
	seq = append(seq, segs...)
	seq = append(seq, WordEnd)

	for i := 0; i < len(seq); i++ {
		b.unigrams[seq[i]]++

		if i >= 1 {
			b.bigrams[[2]string{seq[i-1], seq[i]}]++
		}
		if b.order >= 3 && i >= 2 {
			b.trigrams[[3]string{seq[i-2], seq[i-1], seq[i]}]++
		}
	}
}

// Train builds a model from a list of segmented words.
func Train(order int, words [][]string) *NGramModel {
	b := NewBuilder(order)
	for _, w := range words {
		b.AddWord(w)
	}
	return b.Build()
}

// history tracks N(h), the tokens seen after a context, and the distinct
// segments following it, T(h) = len(next).
type history struct {
	total int
	next  []string
}

// Build estimates the model. Unigrams are add-one smoothed with a reserved
// Unknown mass; higher orders use Witten-Bell discounting
// P(w|h) = C(h,w) / (N(h) + T(h)) with the leftover mass backed off.
func (b *Builder) Build() *NGramModel {
	m := NewNGramModel(b.order)

	total, types := 0, 0
	for s, c := range b.unigrams {
		if s == WordStart {
			continue
		}
		total += c
		types++
	}
	denom := float64(total + types + 1)
	for s, c := range b.unigrams {
		lp := mathutil.LogZero
		if s != WordStart {
			lp = math.Log(float64(c+1) / denom)
		}
		m.Unigrams[s] = ngramEntry{LogProb: lp}
	}
	m.Unigrams[Unknown] = ngramEntry{LogProb: math.Log(1 / denom)}

	// Bigram contexts
	biContexts := make(map[string]*history)
	for key, c := range b.bigrams {
		h, ok := biContexts[key[0]]
		if !ok {
			h = &history{}
			biContexts[key[0]] = h
		}
		h.total += c
		h.next = append(h.next, key[1])
	}
	for key, c := range b.bigrams {
		h := biContexts[key[0]]
		m.Bigrams[key] = ngramEntry{LogProb: math.Log(float64(c) / float64(h.total+len(h.next)))}
	}
	for ctx, h := range biContexts {
		seenLower := 0.0
		for _, s := range h.next {
			seenLower += math.Exp(m.logProbUnigram(s))
		}
		e := m.Unigrams[ctx]
		e.LogBackoff = backoffWeight(h, seenLower)
		m.Unigrams[ctx] = e
	}

	if b.order < 3 {
		return m
	}

	// Trigram contexts
	triContexts := make(map[[2]string]*history)
	for key, c := range b.trigrams {
		ctx := [2]string{key[0], key[1]}
		h, ok := triContexts[ctx]
		if !ok {
			h = &history{}
			triContexts[ctx] = h
		}
		h.total += c
		h.next = append(h.next, key[2])
	}
	for key, c := range b.trigrams {
		h := triContexts[[2]string{key[0], key[1]}]
		m.Trigrams[key] = ngramEntry{LogProb: math.Log(float64(c) / float64(h.total+len(h.next)))}
	}
	for ctx, h := range triContexts {
		seenLower := 0.0
		for _, s := range h.next {
			seenLower += math.Exp(m.logProbBigram(ctx[1], s))
		}
		e := m.Bigrams[ctx]
		e.LogBackoff = backoffWeight(h, seenLower)
		m.Bigrams[ctx] = e
	}
	return m
}

// backoffWeight spreads the Witten-Bell leftover T/(N+T) over the lower-order
// mass not already covered by seen continuations.
func backoffWeight(h *history, seenLower float64) float64 {
	leftover := float64(len(h.next)) / float64(h.total+len(h.next))
	if seenLower >= 1 {
		return mathutil.LogZero
	}
	return math.Log(leftover / (1 - seenLower))
}
