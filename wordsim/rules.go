package wordsim

import "fmt"

// RuleName identifies a deletion discount.
type RuleName string

const (
	NasalNasalization          RuleName = "nasal-nasalization"
	PalatalGlidePalatalization RuleName = "palatal-glide-palatalization"
	LabialGlideLabialization   RuleName = "labial-glide-labialization"
	HAspiration                RuleName = "h-aspiration"
	RhoticRhoticization        RuleName = "rhotic-rhoticization"
	GlottalStopGlottalization  RuleName = "glottal-stop-glottalization"
	Gemination                 RuleName = "gemination"
)

// Rule discounts the penalty of deleting a segment from class group Deleted
// when the segment next to the gap on the other side carries a diacritic
// from class group Diacritics. Gemination ignores both groups and matches
// when the deleted segment is repeated next to it in its own word.
type Rule struct {
	Name       RuleName
	Deleted    string
	Diacritics string
	Factor     float64
}

// DefaultFactor is the discount applied by every default rule.
const DefaultFactor = 0.5

// DefaultRules returns the built-in deletion discounts.
func DefaultRules() []Rule {
	return []Rule{
		{NasalNasalization, "nasals", "nasalization", DefaultFactor},
		{PalatalGlidePalatalization, "palatal_glides", "palatalization", DefaultFactor},
		{LabialGlideLabialization, "labial_glides", "labialization", DefaultFactor},
		{HAspiration, "h_sounds", "aspiration", DefaultFactor},
		{RhoticRhoticization, "rhotics", "rhoticization", DefaultFactor},
		{GlottalStopGlottalization, "glottal_stops", "glottalization", DefaultFactor},
		{Gemination, "", "", DefaultFactor},
	}
}

// SelectRules picks default rules by name, overriding their factor when
// factors has an entry for the name.
func SelectRules(names []string, factors map[string]float64) ([]Rule, error) {
	byName := make(map[RuleName]Rule)
	for _, r := range DefaultRules() {
		byName[r.Name] = r
	}
	out := make([]Rule, 0, len(names))
	for _, n := range names {
		r, ok := byName[RuleName(n)]
		if !ok {
			return nil, fmt.Errorf("unknown scoring rule %q", n)
		}
		if f, ok := factors[n]; ok {
			if f <= 0 || f > 1 {
				return nil, fmt.Errorf("scoring rule %q: factor %v outside (0, 1]", n, f)
			}
			r.Factor = f
		}
		out = append(out, r)
	}
	return out, nil
}
