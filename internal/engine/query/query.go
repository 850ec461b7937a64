// Package query parses raw query strings into plus- and minus-word sets.
//
// A token starting with '-' is a minus word; the '-' is stripped before
// classification. Stop words are dropped from both sides. Parsing fails
// on control characters and on malformed minus words (a lone '-' or a
// '--' prefix).
package query

import (
	"fmt"
	"sort"

	"github.com/mkraev/ranked-search-platform/internal/engine/stopwords"
	"github.com/mkraev/ranked-search-platform/internal/engine/tokenizer"
	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
)

// Query holds the classified words of one parsed query. With
// deduplication enabled both slices are sorted and unique; otherwise
// they keep insertion order, duplicates included.
type Query struct {
	PlusWords  []string
	MinusWords []string
}

// Parse classifies the tokens of text against the given stop-word set.
// When deduplicate is true the resulting word lists are sorted and
// de-duplicated, which downstream scoring and matching rely on for
// deterministic output.
func Parse(text string, stop *stopwords.Set, deduplicate bool) (Query, error) {
	var q Query
	for _, word := range tokenizer.Split(text) {
		if !tokenizer.IsValid(word) {
			return Query{}, fmt.Errorf("%w: query word %q contains a control character", apperrors.ErrInvalidInput, word)
		}
		minus := false
		if word[0] == '-' {
			minus = true
			word = word[1:]
			if word == "" {
				return Query{}, fmt.Errorf("%w: lone '-'", apperrors.ErrInvalidMinusWord)
			}
			if word[0] == '-' {
				return Query{}, fmt.Errorf("%w: %q starts with a second '-'", apperrors.ErrInvalidMinusWord, word)
			}
		}
		if stop != nil && stop.Contains(word) {
			continue
		}
		if minus {
			q.MinusWords = append(q.MinusWords, word)
		} else {
			q.PlusWords = append(q.PlusWords, word)
		}
	}
	if deduplicate {
		q.PlusWords = sortUnique(q.PlusWords)
		q.MinusWords = sortUnique(q.MinusWords)
	}
	return q, nil
}

// IsEmpty reports whether the query has no plus words.
func (q Query) IsEmpty() bool {
	return len(q.PlusWords) == 0
}

func sortUnique(words []string) []string {
	if len(words) < 2 {
		return words
	}
	sort.Strings(words)
	out := words[:1]
	for _, w := range words[1:] {
		if w != out[len(out)-1] {
			out = append(out, w)
		}
	}
	return out
}
