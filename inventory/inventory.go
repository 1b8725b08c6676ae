// Package inventory holds the phonetic reference data shared by every other
// package: the distinctive-feature table, the diacritic table, the phoneme
// class groups and the feature hierarchy. An Inventory is built once and is
// read-only afterwards, so it may be shared between goroutines.
package inventory

import (
	"fmt"
	"sort"
)

// Vector is a dense feature vector indexed by the inventory's feature order.
// Every vector spans every feature; an absent feature is an explicit zero.
type Vector []float64

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Position describes where a diacritic binds relative to its base.
type Position int

const (
	Post    Position = iota // binds to the preceding segment
	Pre                     // binds to the following base
	PrePost                 // binds backwards when possible, otherwise forwards
	Inter                   // joins two bases into one compound kernel
)

// ParsePosition converts a table value (pre, post, prepost, inter).
func ParsePosition(s string) (Position, error) {
	switch s {
	case "post":
		return Post, nil
	case "pre":
		return Pre, nil
	case "prepost":
		return PrePost, nil
	case "inter":
		return Inter, nil
	}
	return 0, fmt.Errorf("unknown diacritic position %q", s)
}

func (p Position) String() string {
	switch p {
	case Post:
		return "post"
	case Pre:
		return "pre"
	case PrePost:
		return "prepost"
	case Inter:
		return "inter"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Override sets one feature to a value.
type Override struct {
	Feature int
	Value   float64
}

// Diacritic is a modifier character with its feature overrides.
type Diacritic struct {
	Symbol    string
	Position  Position
	Type      string
	Overrides []Override
}

// Diacritic types with special handling in the segmenter and resolver.
const (
	TypeTie     = "tie"
	TypeTone    = "tone"
	TypeRaised  = "raised"
	TypeLowered = "lowered"
)

// Inventory is the immutable phonetic reference data.
type Inventory struct {
	features   []string
	index      map[string]int
	bases      map[string]Vector
	sonority   map[string]int
	diacritics map[string]*Diacritic
	groups     map[string]map[string]struct{}
	hierarchy  *Hierarchy
}

// Features returns the feature names in vector order.
func (inv *Inventory) Features() []string {
	out := make([]string, len(inv.features))
	copy(out, inv.features)
	return out
}

// NumFeatures returns the vector length.
func (inv *Inventory) NumFeatures() int { return len(inv.features) }

// FeatureIndex returns the vector position of a named feature.
func (inv *Inventory) FeatureIndex(name string) (int, bool) {
	i, ok := inv.index[name]
	return i, ok
}

// NewVector returns an all-zero vector.
func (inv *Inventory) NewVector() Vector {
	return make(Vector, len(inv.features))
}

// Value returns the value of a named feature in v, or 0 when the feature is
// unknown or v is shorter than the feature set.
func (inv *Inventory) Value(v Vector, name string) float64 {
	i, ok := inv.index[name]
	if !ok || i >= len(v) {
		return 0
	}
	return v[i]
}

// Set assigns a named feature in v. Unknown names are ignored.
func (inv *Inventory) Set(v Vector, name string, value float64) {
	if i, ok := inv.index[name]; ok && i < len(v) {
		v[i] = value
	}
}

// Base returns a copy of the vector for a base symbol.
func (inv *Inventory) Base(symbol string) (Vector, bool) {
	v, ok := inv.bases[symbol]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// IsBase reports whether symbol is a row of the feature table.
func (inv *Inventory) IsBase(symbol string) bool {
	_, ok := inv.bases[symbol]
	return ok
}

// IsTone reports whether symbol is a tone letter.
func (inv *Inventory) IsTone(symbol string) bool {
	v, ok := inv.bases[symbol]
	return ok && inv.Value(v, "tone") > 0
}

// IsVowel reports whether symbol is a syllabic non-consonantal base.
func (inv *Inventory) IsVowel(symbol string) bool {
	v, ok := inv.bases[symbol]
	return ok && inv.Value(v, "syllabic") > 0 && inv.Value(v, "consonantal") == 0
}

// DeclaredSonority returns the table's sonority column for symbol.
func (inv *Inventory) DeclaredSonority(symbol string) (int, bool) {
	s, ok := inv.sonority[symbol]
	return s, ok
}

// Symbols returns all base symbols, sorted.
func (inv *Inventory) Symbols() []string {
	out := make([]string, 0, len(inv.bases))
	for s := range inv.bases {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Diacritic looks up a diacritic character.
func (inv *Inventory) Diacritic(symbol string) (*Diacritic, bool) {
	d, ok := inv.diacritics[symbol]
	return d, ok
}

// InGroup reports whether symbol belongs to the named class group.
func (inv *Inventory) InGroup(group, symbol string) bool {
	_, ok := inv.groups[group][symbol]
	return ok
}

// HasGroup reports whether the named class group exists.
func (inv *Inventory) HasGroup(group string) bool {
	_, ok := inv.groups[group]
	return ok
}

// Group returns the members of a class group, sorted.
func (inv *Inventory) Group(group string) []string {
	members := inv.groups[group]
	out := make([]string, 0, len(members))
	for s := range members {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Hierarchy returns the feature hierarchy.
func (inv *Inventory) Hierarchy() *Hierarchy { return inv.hierarchy }

// Chao tone letters: the stem letters and their left-stem variants.
var toneLevels = map[string]int{
	"˥": 5, "˦": 4, "˧": 3, "˨": 2, "˩": 1,
	"꜒": 5, "꜓": 4, "꜔": 3, "꜕": 2, "꜖": 1,
}

// ToneLevel returns the Chao level (1 low to 5 high) of a tone letter.
func ToneLevel(symbol string) (int, bool) {
	l, ok := toneLevels[symbol]
	return l, ok
}
