package engine

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
)

// MatchDocument returns the query's plus words that occur in the given
// document, sorted and unique, together with the document's status. If
// any minus word occurs in the document the word list is empty.
func (e *Engine) MatchDocument(rawQuery string, id int) ([]string, Status, error) {
	rec, ok := e.idx.Record(id)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", apperrors.ErrUnknownDocument, id)
	}
	q, err := e.parseQuery(rawQuery, true)
	if err != nil {
		return nil, 0, err
	}
	for _, word := range q.MinusWords {
		if _, hit := e.idx.Posting(word)[id]; hit {
			return []string{}, rec.Status, nil
		}
	}
	matched := make([]string, 0, len(q.PlusWords))
	for _, word := range q.PlusWords {
		if _, hit := e.idx.Posting(word)[id]; hit {
			matched = append(matched, word)
		}
	}
	return matched, rec.Status, nil
}

// MatchDocumentParallel checks plus words on worker goroutines. Minus
// words are checked first and short-circuit the scatter entirely. The
// parsed query is already sorted and unique, so the gathered subset is
// re-sorted once and the observable result is identical to the
// sequential policy.
func (e *Engine) MatchDocumentParallel(ctx context.Context, rawQuery string, id int) ([]string, Status, error) {
	rec, ok := e.idx.Record(id)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", apperrors.ErrUnknownDocument, id)
	}
	q, err := e.parseQuery(rawQuery, true)
	if err != nil {
		return nil, 0, err
	}
	for _, word := range q.MinusWords {
		if _, hit := e.idx.Posting(word)[id]; hit {
			return []string{}, rec.Status, nil
		}
	}

	hits := make([]bool, len(q.PlusWords))
	g, _ := errgroup.WithContext(ctx)
	for i, word := range q.PlusWords {
		g.Go(func() error {
			if _, hit := e.idx.Posting(word)[id]; hit {
				hits[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	matched := make([]string, 0, len(q.PlusWords))
	for i, hit := range hits {
		if hit {
			matched = append(matched, q.PlusWords[i])
		}
	}
	sort.Strings(matched)
	return matched, rec.Status, nil
}
