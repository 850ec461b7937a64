// Package index implements the in-memory inverted index and document
// store backing the search engine.
//
// Two mirrored maps hold the term-frequency data: term→id→tf for
// scoring and id→term→tf for O(terms-in-doc) removal and duplicate
// detection. They are always updated together. The id directory is kept
// as a sorted slice so iteration and positional lookup are cheap.
package index

import "sort"

// Status is the lifecycle state of an indexed document.
type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusActual:
		return "ACTUAL"
	case StatusIrrelevant:
		return "IRRELEVANT"
	case StatusBanned:
		return "BANNED"
	case StatusRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// Record holds the per-document metadata stored alongside the postings.
type Record struct {
	Rating int
	Status Status
}

// Index is the inverted index. It is not safe for concurrent mutation;
// callers serialise writes against each other and against reads.
type Index struct {
	termDocs map[string]map[int]float64
	docTerms map[int]map[string]float64
	docs     map[int]Record
	ids      []int
}

// New creates an empty index.
func New() *Index {
	return &Index{
		termDocs: make(map[string]map[int]float64),
		docTerms: make(map[int]map[string]float64),
		docs:     make(map[int]Record),
	}
}

// Has reports whether id is currently indexed.
func (x *Index) Has(id int) bool {
	_, ok := x.docs[id]
	return ok
}

// Add indexes a document given its non-stop words in document order.
// Each occurrence of a word contributes 1/len(words) to its term
// frequency. The caller has already validated the id and the words;
// words must be non-empty.
func (x *Index) Add(id int, words []string, rec Record) {
	inv := 1.0 / float64(len(words))
	for _, w := range words {
		docs, ok := x.termDocs[w]
		if !ok {
			docs = make(map[int]float64)
			x.termDocs[w] = docs
		}
		docs[id] += inv

		terms, ok := x.docTerms[id]
		if !ok {
			terms = make(map[string]float64)
			x.docTerms[id] = terms
		}
		terms[w] += inv
	}
	x.docs[id] = rec
	pos := sort.SearchInts(x.ids, id)
	x.ids = append(x.ids, 0)
	copy(x.ids[pos+1:], x.ids[pos:])
	x.ids[pos] = id
}

// Remove deletes a document from all four structures. Posting lists
// that become empty are pruned so every term present in the index keeps
// a positive document frequency. Returns false if id was not indexed.
func (x *Index) Remove(id int) bool {
	terms, ok := x.docTerms[id]
	if !ok {
		return false
	}
	for w := range terms {
		docs := x.termDocs[w]
		delete(docs, id)
		if len(docs) == 0 {
			delete(x.termDocs, w)
		}
	}
	delete(x.docTerms, id)
	delete(x.docs, id)
	pos := sort.SearchInts(x.ids, id)
	x.ids = append(x.ids[:pos], x.ids[pos+1:]...)
	return true
}

// Posting returns the id→tf posting for term, or nil when the term is
// absent. The returned map is the index's own; callers must not mutate
// it and must not hold it across a mutation.
func (x *Index) Posting(term string) map[int]float64 {
	return x.termDocs[term]
}

// WordFrequencies returns an owned copy of the term→tf mapping of one
// document. Unknown ids yield an empty map rather than an error, which
// lets maintenance passes iterate without existence checks.
func (x *Index) WordFrequencies(id int) map[string]float64 {
	terms, ok := x.docTerms[id]
	if !ok {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(terms))
	for w, tf := range terms {
		out[w] = tf
	}
	return out
}

// Record returns the stored metadata for id.
func (x *Index) Record(id int) (Record, bool) {
	rec, ok := x.docs[id]
	return rec, ok
}

// Count returns the number of indexed documents.
func (x *Index) Count() int {
	return len(x.ids)
}

// NthID returns the id at the given ascending position.
func (x *Index) NthID(i int) (int, bool) {
	if i < 0 || i >= len(x.ids) {
		return 0, false
	}
	return x.ids[i], true
}

// IDs returns a copy of the id directory in ascending order.
func (x *Index) IDs() []int {
	out := make([]int, len(x.ids))
	copy(out, x.ids)
	return out
}
