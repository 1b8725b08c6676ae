package correspondence

import "github.com/ieee0824/phonalign/internal/cache"

// DefaultStoreSize bounds the number of cached tables.
const DefaultStoreSize = 256

// StoreKey identifies a cached table.
type StoreKey struct {
	Lang1, Lang2 string
	Kind         Kind
}

// Store caches correspondence tables per language pair and statistic.
// Stored tables are shared and must not be modified.
type Store struct {
	tables *cache.Cache[StoreKey, *Table]
}

// NewStore creates a Store holding at most size tables. size 0 disables it.
func NewStore(size int) *Store {
	return &Store{tables: cache.New[StoreKey, *Table](size)}
}

// Get returns a cached table.
func (s *Store) Get(lang1, lang2 string, kind Kind) (*Table, bool) {
	return s.tables.Get(StoreKey{lang1, lang2, kind})
}

// Put caches a table.
func (s *Store) Put(lang1, lang2 string, kind Kind, t *Table) {
	s.tables.Add(StoreKey{lang1, lang2, kind}, t)
}

// PutModel caches every statistic of a model for the language pair.
func (s *Store) PutModel(lang1, lang2 string, m *Model) {
	s.Put(lang1, lang2, Counts, m.Counts())
	s.Put(lang1, lang2, Conditional, m.ConditionalTable())
	s.Put(lang1, lang2, PMI, m.PMITable())
	s.Put(lang1, lang2, Surprisal, m.SurprisalTable())
}

// Invalidate drops every table of the language pair, in both directions,
// and returns how many were removed.
func (s *Store) Invalidate(lang1, lang2 string) int {
	return s.tables.RemoveIf(func(k StoreKey) bool {
		return (k.Lang1 == lang1 && k.Lang2 == lang2) || (k.Lang1 == lang2 && k.Lang2 == lang1)
	})
}

// Purge drops every cached table.
func (s *Store) Purge() {
	s.tables.Purge()
}
