package corpus

import (
	"sync"
	"sync/atomic"
)

// Store holds the live corpus. Readers take a snapshot with Current and keep
// using it for the whole ranking pass; writers replace it wholesale.
//
// A biome tint is always derived from the untinted corpus last installed by
// Swap, so tints never stack.
type Store struct {
	current atomic.Pointer[Corpus]

	mu    sync.Mutex
	base  *Corpus
	biome string
}

func NewStore(initial *Corpus) *Store {
	store := &Store{base: initial}
	if initial != nil {
		store.current.Store(initial)
	}
	return store
}

// Current returns the live corpus, or an empty one if nothing was loaded yet.
func (s *Store) Current() *Corpus {
	if c := s.current.Load(); c != nil {
		return c
	}
	return NewBuilder().Build()
}

func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Swap installs next as the untinted corpus and returns the corpus it
// replaced. Any applied biome is cleared.
func (s *Store) Swap(next *Corpus) *Corpus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = next
	s.biome = ""
	return s.current.Swap(next)
}

// Biome returns the biome currently applied, or "" for the untinted corpus.
func (s *Store) Biome() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.biome
}

// ApplyBiome makes the live corpus the untinted corpus tinted for biome.
// An empty biome restores the untinted corpus. It reports whether the live
// corpus changed; re-applying the current biome is a no-op.
func (s *Store) ApplyBiome(biome string, targets TintTargets) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if biome == s.biome {
		return false, nil
	}
	base := s.base
	if base == nil {
		base = NewBuilder().Build()
	}
	if biome == "" {
		s.current.Store(base)
		s.biome = ""
		return true, nil
	}

	tinted, err := base.WithBiome(biome, targets)
	if err != nil {
		return false, err
	}
	s.current.Store(tinted)
	s.biome = biome
	return true, nil
}
