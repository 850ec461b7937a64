// Package batch runs many queries against one engine concurrently.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mkraev/ranked-search-platform/internal/engine"
)

// ProcessQueries executes every query with the parallel ranking policy
// and returns the per-query result sets in input order. The first query
// error aborts the batch.
func ProcessQueries(ctx context.Context, e *engine.Engine, queries []string) ([][]engine.Document, error) {
	results := make([][]engine.Document, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			docs, err := e.FindTopParallel(gctx, q)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries into a single document
// list, preserving query order.
func ProcessQueriesJoined(ctx context.Context, e *engine.Engine, queries []string) ([]engine.Document, error) {
	perQuery, err := ProcessQueries(ctx, e, queries)
	if err != nil {
		return nil, err
	}
	var joined []engine.Document
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
