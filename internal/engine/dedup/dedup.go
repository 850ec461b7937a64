// Package dedup implements the duplicate-document sweep. Two documents
// are duplicates when they contain exactly the same set of terms,
// frequencies ignored; only the smallest id of each group survives.
package dedup

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mkraev/ranked-search-platform/internal/engine"
)

// RemoveDuplicates removes every duplicate document from the engine,
// keeping the smallest id of each term-set group. Removals happen in
// ascending id order and each one is reported to out as
// "Found duplicate document id N". Returns the removed ids.
func RemoveDuplicates(e *engine.Engine, out io.Writer) []int {
	groups := make(map[string][]int)
	for _, id := range e.IDs() {
		key := termSetKey(e.WordFrequencies(id))
		groups[key] = append(groups[key], id)
	}

	var duplicates []int
	for _, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		sort.Ints(ids)
		duplicates = append(duplicates, ids[1:]...)
	}
	sort.Ints(duplicates)

	for _, id := range duplicates {
		if out != nil {
			fmt.Fprintf(out, "Found duplicate document id %d\n", id)
		}
		e.RemoveDocument(id)
	}
	return duplicates
}

// termSetKey builds a canonical key for a document's term set. Terms
// cannot contain control characters, so '\x00' is a safe separator.
func termSetKey(freqs map[string]float64) string {
	terms := make([]string, 0, len(freqs))
	for t := range freqs {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return strings.Join(terms, "\x00")
}
