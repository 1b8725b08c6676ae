// Package lexicon loads per-language vocabularies of concept-indexed word
// forms.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry is one word form expressing a concept in a language.
type Entry struct {
	Language string
	Concept  string
	Form     string // IPA transcription
	Loan     bool   // known loanword
}

// Vocabulary holds the forms of one language, indexed by concept.
type Vocabulary struct {
	Language string
	Entries  map[string][]Entry // concept -> list of synonyms
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary(language string) *Vocabulary {
	return &Vocabulary{
		Language: language,
		Entries:  make(map[string][]Entry),
	}
}

// Add adds a form for a concept.
func (v *Vocabulary) Add(concept, form string, loan bool) {
	v.Entries[concept] = append(v.Entries[concept], Entry{
		Language: v.Language,
		Concept:  concept,
		Form:     form,
		Loan:     loan,
	})
}

// Lookup returns all forms for a concept.
func (v *Vocabulary) Lookup(concept string) []Entry {
	return v.Entries[concept]
}

// Concepts returns the concepts with at least one form, sorted.
func (v *Vocabulary) Concepts() []string {
	out := make([]string, 0, len(v.Entries))
	for c := range v.Entries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Forms returns every form in concept order.
func (v *Vocabulary) Forms() []string {
	var out []string
	for _, c := range v.Concepts() {
		for _, e := range v.Entries[c] {
			out = append(out, e.Form)
		}
	}
	return out
}

// Len counts the forms.
func (v *Vocabulary) Len() int {
	n := 0
	for _, es := range v.Entries {
		n += len(es)
	}
	return n
}

// Dataset groups vocabularies by language.
type Dataset struct {
	Vocabularies map[string]*Vocabulary
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Vocabularies: make(map[string]*Vocabulary)}
}

// Add adds a form, creating the language's vocabulary on first use.
func (d *Dataset) Add(language, concept, form string, loan bool) {
	v, ok := d.Vocabularies[language]
	if !ok {
		v = NewVocabulary(language)
		d.Vocabularies[language] = v
	}
	v.Add(concept, form, loan)
}

// Vocabulary returns the vocabulary of a language.
func (d *Dataset) Vocabulary(language string) (*Vocabulary, bool) {
	v, ok := d.Vocabularies[language]
	return v, ok
}

// Languages returns the languages in the dataset, sorted.
func (d *Dataset) Languages() []string {
	out := make([]string, 0, len(d.Vocabularies))
	for l := range d.Vocabularies {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Load reads a vocabulary dataset from a tab-separated file.
// Format: language<TAB>concept<TAB>form[<TAB>loan]
// An optional header row starting with "language" is skipped. The loan column
// accepts 1/0, true/false, yes/no and loan; empty means not a loan.
func Load(r io.Reader) (*Dataset, error) {
	d := NewDataset()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("line %d: expected 3 or 4 tab-separated fields, got %d", lineNum, len(parts))
		}
		if lineNum == 1 && strings.EqualFold(parts[0], "language") {
			continue
		}

		lang := strings.TrimSpace(parts[0])
		concept := strings.TrimSpace(parts[1])
		form := strings.TrimSpace(parts[2])
		if lang == "" || concept == "" || form == "" {
			return nil, fmt.Errorf("line %d: empty language, concept or form", lineNum)
		}

		loan := false
		if len(parts) == 4 {
			var err error
			if loan, err = parseLoan(parts[3]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}

		d.Add(lang, concept, form, loan)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return d, nil
}

func parseLoan(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes", "loan":
		return true, nil
	}
	return false, fmt.Errorf("invalid loan flag %q", s)
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
