package engine

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mkraev/ranked-search-platform/internal/engine/concurrent"
	"github.com/mkraev/ranked-search-platform/internal/engine/query"
)

// Predicate decides per document whether it may enter a result set.
type Predicate func(id int, status Status, rating int) bool

func statusPredicate(status Status) Predicate {
	return func(_ int, s Status, _ int) bool {
		return s == status
	}
}

// FindTop runs a ranked query over documents with status ACTUAL.
func (e *Engine) FindTop(rawQuery string) ([]Document, error) {
	return e.FindTopByStatus(rawQuery, StatusActual)
}

// FindTopByStatus runs a ranked query filtered to one document status.
func (e *Engine) FindTopByStatus(rawQuery string, status Status) ([]Document, error) {
	return e.FindTopFunc(rawQuery, statusPredicate(status))
}

// FindTopFunc runs a ranked query with a caller-supplied predicate. It
// returns at most MaxResultDocumentCount documents sorted by descending
// relevance, with rating and ascending id breaking ties within the
// relevance epsilon.
func (e *Engine) FindTopFunc(rawQuery string, pred Predicate) ([]Document, error) {
	q, err := e.parseQuery(rawQuery, true)
	if err != nil {
		return nil, err
	}
	scores := e.scoreSequential(q, pred)
	return e.rank(scores), nil
}

// FindTopParallel is FindTop on the parallel scoring policy.
func (e *Engine) FindTopParallel(ctx context.Context, rawQuery string) ([]Document, error) {
	return e.FindTopParallelByStatus(ctx, rawQuery, StatusActual)
}

// FindTopParallelByStatus is FindTopByStatus on the parallel policy.
func (e *Engine) FindTopParallelByStatus(ctx context.Context, rawQuery string, status Status) ([]Document, error) {
	return e.FindTopParallelFunc(ctx, rawQuery, statusPredicate(status))
}

// FindTopParallelFunc scores plus-words on worker goroutines against
// the sharded accumulator, then erases minus-word postings. The two
// phases are separated by a join so an erase can never race an insert.
// The returned set and ordering match the sequential policy under the
// relevance epsilon.
func (e *Engine) FindTopParallelFunc(ctx context.Context, rawQuery string, pred Predicate) ([]Document, error) {
	q, err := e.parseQuery(rawQuery, true)
	if err != nil {
		return nil, err
	}
	scores, err := e.scoreParallel(ctx, q, pred)
	if err != nil {
		return nil, err
	}
	return e.rank(scores), nil
}

func (e *Engine) scoreSequential(q query.Query, pred Predicate) map[int]float64 {
	scores := make(map[int]float64)
	for _, word := range q.PlusWords {
		posting := e.idx.Posting(word)
		if len(posting) == 0 {
			continue
		}
		idf := e.inverseDocumentFreq(len(posting))
		for id, tf := range posting {
			rec, ok := e.idx.Record(id)
			if !ok {
				continue
			}
			if pred(id, rec.Status, rec.Rating) {
				scores[id] += tf * idf
			}
		}
	}
	for _, word := range q.MinusWords {
		for id := range e.idx.Posting(word) {
			delete(scores, id)
		}
	}
	return scores
}

func (e *Engine) scoreParallel(ctx context.Context, q query.Query, pred Predicate) (map[int]float64, error) {
	acc := concurrent.NewMap(e.shardCount)

	g, _ := errgroup.WithContext(ctx)
	for _, word := range q.PlusWords {
		g.Go(func() error {
			posting := e.idx.Posting(word)
			if len(posting) == 0 {
				return nil
			}
			idf := e.inverseDocumentFreq(len(posting))
			for id, tf := range posting {
				rec, ok := e.idx.Record(id)
				if !ok || !pred(id, rec.Status, rec.Rating) {
					continue
				}
				a := acc.At(id)
				*a.Value += tf * idf
				a.Release()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, _ = errgroup.WithContext(ctx)
	for _, word := range q.MinusWords {
		g.Go(func() error {
			for id := range e.idx.Posting(word) {
				acc.Erase(id)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return acc.BuildOrdinary(), nil
}

// rank materialises scored documents in ascending id order, then
// stable-sorts with the epsilon comparator so full ties keep ascending
// id, and truncates to the top K.
func (e *Engine) rank(scores map[int]float64) []Document {
	ids := concurrent.OrderedKeys(scores)
	found := make([]Document, 0, len(ids))
	for _, id := range ids {
		rec, ok := e.idx.Record(id)
		if !ok {
			continue
		}
		found = append(found, Document{
			ID:        id,
			Relevance: scores[id],
			Rating:    rec.Rating,
		})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if math.Abs(found[i].Relevance-found[j].Relevance) < relevanceEpsilon {
			return found[i].Rating > found[j].Rating
		}
		return found[i].Relevance > found[j].Relevance
	})
	if len(found) > MaxResultDocumentCount {
		found = found[:MaxResultDocumentCount]
	}
	return found
}

// inverseDocumentFreq is ln(N/df) for a term present in df documents.
func (e *Engine) inverseDocumentFreq(df int) float64 {
	return math.Log(float64(e.idx.Count()) / float64(df))
}
