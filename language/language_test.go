package language

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

var words = [][]string{
	{"k", "a", "t"},
	{"k", "a", "p"},
	{"t", "a", "k"},
	{"k", "i", "t"},
}

func sumOver(m *NGramModel, history []string) float64 {
	total := 0.0
	for _, s := range m.Vocab() {
		total += math.Exp(m.LogProb(history, s))
	}
	return total
}

func TestUnigramDistribution(t *testing.T) {
	m := Train(2, words)
	if got := sumOver(m, nil); math.Abs(got-1) > 1e-9 {
		t.Errorf("unigram mass = %f, want 1", got)
	}
	if _, ok := m.Unigrams[Unknown]; !ok {
		t.Error("missing unknown entry")
	}
}

func TestBackoffDistributions(t *testing.T) {
	tests := []struct {
		name    string
		order   int
		history []string
	}{
		{"bigram seen context", 2, []string{"k"}},
		{"bigram word start", 2, []string{WordStart}},
		{"bigram unseen context", 2, []string{"z"}},
		{"trigram seen context", 3, []string{WordStart, "k"}},
		{"trigram unseen context", 3, []string{"t", "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Train(tt.order, words)
			if got := sumOver(m, tt.history); math.Abs(got-1) > 1e-9 {
				t.Errorf("mass after %v = %f, want 1", tt.history, got)
			}
		})
	}
}

func TestWittenBell(t *testing.T) {
	m := Train(2, words)
	// "k" is followed by a twice, i once and the word end once: N=4, T=3.
	want := math.Log(2.0 / 7.0)
	if got := m.LogProb([]string{"k"}, "a"); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogProb(k, a) = %f, want %f", got, want)
	}
	if seen, unseen := m.LogProb([]string{"k"}, "a"), m.LogProb([]string{"k"}, "p"); seen <= unseen {
		t.Errorf("seen continuation should score higher: %f <= %f", seen, unseen)
	}
}

func TestBuilderOrderClamp(t *testing.T) {
	if b := NewBuilder(1); b.order != 2 {
		t.Errorf("order = %d, want 2", b.order)
	}
	if b := NewBuilder(5); b.order != 3 {
		t.Errorf("order = %d, want 3", b.order)
	}
	m := Train(2, words)
	if len(m.Trigrams) != 0 {
		t.Errorf("bigram model has %d trigrams", len(m.Trigrams))
	}
}

func TestInformationContent(t *testing.T) {
	m := Train(3, words)
	segs := []string{"k", "a", "t"}
	ic := m.InformationContent(segs)
	if len(ic) != len(segs) {
		t.Fatalf("len = %d, want %d", len(ic), len(segs))
	}
	want := -m.LogProb([]string{WordStart}, "k") / math.Ln2
	if math.Abs(ic[0]-want) > 1e-12 {
		t.Errorf("ic[0] = %f, want %f", ic[0], want)
	}
	for i, v := range ic {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("ic[%d] = %f, want finite positive", i, v)
		}
	}

	odd := m.InformationContent([]string{"k", "ʒ", "t"})
	if odd[1] <= ic[1] {
		t.Errorf("unseen segment should carry more information: %f <= %f", odd[1], ic[1])
	}
}

func TestRelativeInformationContent(t *testing.T) {
	m := Train(3, words)
	rel := m.RelativeInformationContent([]string{"t", "a", "k"})
	sum := 0.0
	for _, v := range rel {
		sum += v
	}
	if math.Abs(sum/float64(len(rel))-1) > 1e-12 {
		t.Errorf("mean = %f, want 1", sum/float64(len(rel)))
	}
	if got := m.RelativeInformationContent(nil); len(got) != 0 {
		t.Errorf("empty word gave %v", got)
	}
}

func TestWordLogProb(t *testing.T) {
	m := Train(3, words)
	seen := m.WordLogProb([]string{"k", "a", "t"})
	unseen := m.WordLogProb([]string{"t", "i", "p"})
	if math.IsInf(unseen, 0) || math.IsNaN(unseen) {
		t.Fatalf("WordLogProb = %f (not finite)", unseen)
	}
	if seen <= unseen {
		t.Errorf("seen word should score higher: %f <= %f", seen, unseen)
	}
}

func TestTSVRoundTrip(t *testing.T) {
	m := Train(3, words)
	var buf bytes.Buffer
	if err := m.WriteTSV(&buf); err != nil {
		t.Fatalf("WriteTSV error: %v", err)
	}

	loaded, err := ReadTSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadTSV error: %v", err)
	}
	if loaded.Order != 3 {
		t.Errorf("Order = %d, want 3", loaded.Order)
	}
	for _, w := range [][]string{{"k", "a", "t"}, {"p", "ʒ"}} {
		if a, b := m.WordLogProb(w), loaded.WordLogProb(w); math.Abs(a-b) > 1e-12 {
			t.Errorf("WordLogProb(%v) = %f after reload, want %f", w, b, a)
		}
	}
}

func TestReadTSVErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"field count", "-1.0\tk\n"},
		{"bad prob", "x\tk\t0\n"},
		{"bad backoff", "-1\tk\tx\n"},
		{"four-gram", "-1\ta b c d\t0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
