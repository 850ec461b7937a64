// Package stopwords implements the engine's fixed stop-word set. The set
// is built once at engine construction and only ever queried afterwards.
package stopwords

import (
	"fmt"
	"sort"

	"github.com/mkraev/ranked-search-platform/internal/engine/tokenizer"
	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
)

// Set is an ordered collection of stop words with binary-search lookup.
type Set struct {
	words []string
}

// FromString builds a Set from a space-separated list of words.
func FromString(text string) (*Set, error) {
	return FromSlice(tokenizer.Split(text))
}

// FromSlice builds a Set from an arbitrary word sequence. Empty strings
// are discarded; duplicates collapse. A word containing a control
// character fails the whole construction.
func FromSlice(words []string) (*Set, error) {
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if !tokenizer.IsValid(w) {
			return nil, fmt.Errorf("%w: stop word %q contains a control character", apperrors.ErrInvalidInput, w)
		}
		unique[w] = struct{}{}
	}
	s := &Set{words: make([]string, 0, len(unique))}
	for w := range unique {
		s.words = append(s.words, w)
	}
	sort.Strings(s.words)
	return s, nil
}

// Contains reports whether word is a stop word.
func (s *Set) Contains(word string) bool {
	i := sort.SearchStrings(s.words, word)
	return i < len(s.words) && s.words[i] == word
}

// Len returns the number of stop words in the set.
func (s *Set) Len() int {
	return len(s.words)
}

// Words returns the stop words in ascending order. The returned slice is
// a copy.
func (s *Set) Words() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}
