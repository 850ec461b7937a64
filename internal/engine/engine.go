// Package engine implements the in-memory TF-IDF document search engine:
// document ingestion into an inverted index, ranked top-K queries with
// minus-word exclusion and user predicates, sequential and parallel
// scoring policies, document matching, and removal.
//
// The engine is single-owner at the data-structure level: callers must
// serialise mutations (AddDocument, RemoveDocument, duplicate sweeps)
// against each other and against any query. Within one query the
// parallel policy is free to scatter work across goroutines; the sharded
// accumulator is the only synchronisation it uses.
package engine

import (
	"context"
	"fmt"

	"github.com/mkraev/ranked-search-platform/internal/engine/concurrent"
	"github.com/mkraev/ranked-search-platform/internal/engine/index"
	"github.com/mkraev/ranked-search-platform/internal/engine/query"
	"github.com/mkraev/ranked-search-platform/internal/engine/stopwords"
	"github.com/mkraev/ranked-search-platform/internal/engine/tokenizer"
	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
)

const (
	// MaxResultDocumentCount caps every ranked result set.
	MaxResultDocumentCount = 5

	// relevanceEpsilon is the absolute tolerance under which two
	// relevance values compare equal.
	relevanceEpsilon = 1e-6
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithShardCount sets the shard count of the parallel accumulator.
func WithShardCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.shardCount = n
		}
	}
}

// Engine is the search engine façade over the inverted index.
type Engine struct {
	stop       *stopwords.Set
	idx        *index.Index
	shardCount int
}

// New creates an engine with a prebuilt stop-word set.
func New(stop *stopwords.Set, opts ...Option) *Engine {
	e := &Engine{
		stop:       stop,
		idx:        index.New(),
		shardCount: concurrent.DefaultShardCount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromString creates an engine from a space-separated stop-word
// list. Construction fails with ErrInvalidInput if any stop word
// contains a control character.
func NewFromString(stopWords string, opts ...Option) (*Engine, error) {
	stop, err := stopwords.FromString(stopWords)
	if err != nil {
		return nil, err
	}
	return New(stop, opts...), nil
}

// NewFromSlice is NewFromString for an arbitrary word sequence.
func NewFromSlice(stopWords []string, opts ...Option) (*Engine, error) {
	stop, err := stopwords.FromSlice(stopWords)
	if err != nil {
		return nil, err
	}
	return New(stop, opts...), nil
}

// AddDocument tokenises and indexes one document. The id must be
// non-negative and not yet indexed, the text must be free of control
// characters, and at least one non-stop word must survive tokenisation
// (1/W is undefined otherwise).
func (e *Engine) AddDocument(id int, text string, status Status, ratings []int) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrNegativeID, id)
	}
	if e.idx.Has(id) {
		return fmt.Errorf("%w: %d", apperrors.ErrDuplicateID, id)
	}
	if !tokenizer.IsValid(text) {
		return fmt.Errorf("%w: document %d contains a control character", apperrors.ErrInvalidInput, id)
	}
	words := e.splitNoStop(text)
	if len(words) == 0 {
		return fmt.Errorf("%w: document %d has no non-stop words", apperrors.ErrInvalidInput, id)
	}
	e.idx.Add(id, words, index.Record{
		Rating: averageRating(ratings),
		Status: status,
	})
	return nil
}

// RemoveDocument deletes a document and all its postings. Removing an
// unknown id is a deliberate no-op so that cleanup stays idempotent.
func (e *Engine) RemoveDocument(id int) {
	e.idx.Remove(id)
}

// RemoveDocumentParallel behaves exactly like RemoveDocument. The
// mirrored id→term map already makes removal proportional to the
// document's own term count, so the parallel policy shares the
// sequential implementation; the signature exists for policy symmetry
// with the query path.
func (e *Engine) RemoveDocumentParallel(ctx context.Context, id int) {
	_ = ctx
	e.idx.Remove(id)
}

// DocumentCount returns the number of indexed documents.
func (e *Engine) DocumentCount() int {
	return e.idx.Count()
}

// NthID returns the document id at the given ascending position.
func (e *Engine) NthID(i int) (int, error) {
	id, ok := e.idx.NthID(i)
	if !ok {
		return 0, fmt.Errorf("%w: index %d out of range [0, %d)", apperrors.ErrUnknownDocument, i, e.idx.Count())
	}
	return id, nil
}

// IDs returns the id directory in ascending order.
func (e *Engine) IDs() []int {
	return e.idx.IDs()
}

// WordFrequencies returns the term→frequency mapping of one document,
// or an empty map for an unknown id.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	return e.idx.WordFrequencies(id)
}

// StatusOf returns the stored status of a document.
func (e *Engine) StatusOf(id int) (Status, error) {
	rec, ok := e.idx.Record(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", apperrors.ErrUnknownDocument, id)
	}
	return rec.Status, nil
}

func (e *Engine) splitNoStop(text string) []string {
	words := tokenizer.Split(text)
	out := words[:0:0]
	for _, w := range words {
		if !e.stop.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}

func (e *Engine) parseQuery(text string, deduplicate bool) (query.Query, error) {
	return query.Parse(text, e.stop, deduplicate)
}
