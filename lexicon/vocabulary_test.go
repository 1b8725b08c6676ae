package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testData = `language	concept	form	loan
# Germanic sample
de	water	vasɐ
de	night	naxt
de	hand	hant
en	water	wɔːtə
en	night	naɪt
en	hand	hænd
en	hand	hand	yes
en	beef	biːf	1
`

func TestLoad(t *testing.T) {
	d, err := Load(strings.NewReader(testData))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	langs := d.Languages()
	if len(langs) != 2 || langs[0] != "de" || langs[1] != "en" {
		t.Fatalf("Languages() = %v, want [de en]", langs)
	}

	en, ok := d.Vocabulary("en")
	if !ok {
		t.Fatal("en not found")
	}
	if en.Len() != 5 {
		t.Errorf("en.Len() = %d, want 5", en.Len())
	}

	// hand has two synonyms, the second flagged as a loan
	entries := en.Lookup("hand")
	if len(entries) != 2 {
		t.Fatalf("hand entries = %d, want 2", len(entries))
	}
	if entries[0].Loan || !entries[1].Loan {
		t.Errorf("loan flags = %v, %v, want false, true", entries[0].Loan, entries[1].Loan)
	}
	if entries[0].Language != "en" || entries[0].Concept != "hand" {
		t.Errorf("entry = %+v", entries[0])
	}

	if _, ok := d.Vocabulary("fr"); ok {
		t.Error("should not find missing language")
	}
}

func TestConceptsAndForms(t *testing.T) {
	d, err := Load(strings.NewReader(testData))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	de, _ := d.Vocabulary("de")

	concepts := de.Concepts()
	want := []string{"hand", "night", "water"}
	if strings.Join(concepts, ",") != strings.Join(want, ",") {
		t.Errorf("Concepts() = %v, want %v", concepts, want)
	}
	forms := de.Forms()
	if strings.Join(forms, ",") != "hant,naxt,vasɐ" {
		t.Errorf("Forms() = %v", forms)
	}
	if got := de.Lookup("beef"); len(got) != 0 {
		t.Errorf("Lookup(beef) = %v, want none", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"too few fields", "en\twater\n"},
		{"too many fields", "en\twater\twɔːtə\t0\textra\n"},
		{"empty form", "en\twater\t \n"},
		{"bad loan flag", "en\twater\twɔːtə\tmaybe\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.tsv")
	if err := os.WriteFile(path, []byte(testData), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(d.Vocabularies) != 2 {
		t.Errorf("vocabularies = %d, want 2", len(d.Vocabularies))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.tsv")); err == nil {
		t.Error("expected error for missing file")
	}
}
