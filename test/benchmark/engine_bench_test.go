// Package benchmark contains Go benchmarks for the search engine core:
// indexing throughput, sequential and parallel query latency, and the
// duplicate sweep.
package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/mkraev/ranked-search-platform/internal/engine"
	"github.com/mkraev/ranked-search-platform/internal/engine/dedup"
)

func seededEngine(b *testing.B, docs int) *engine.Engine {
	b.Helper()
	e, err := engine.NewFromString("a an and in of on the")
	if err != nil {
		b.Fatalf("engine: %v", err)
	}
	for i := 0; i < docs; i++ {
		text := fmt.Sprintf("document %d about ranked retrieval of terms term%d and term%d", i, i%50, i%13)
		if err := e.AddDocument(i, text, engine.StatusActual, []int{i % 10}); err != nil {
			b.Fatalf("AddDocument(%d): %v", i, err)
		}
	}
	return e
}

// BenchmarkAddDocument measures per-document insert throughput into the
// inverted index.
func BenchmarkAddDocument(b *testing.B) {
	e, err := engine.NewFromString("a an and in of on the")
	if err != nil {
		b.Fatalf("engine: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		text := fmt.Sprintf("benchmark document %d with several indexable terms for throughput term%d", i, i%100)
		if err := e.AddDocument(i, text, engine.StatusActual, []int{1, 2, 3}); err != nil {
			b.Fatalf("AddDocument: %v", err)
		}
	}
}

// BenchmarkFindTopSequential measures single-query latency over a
// 10 000 document corpus on the sequential policy.
func BenchmarkFindTopSequential(b *testing.B) {
	e := seededEngine(b, 10000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.FindTop("ranked retrieval term7 -term12"); err != nil {
			b.Fatalf("FindTop: %v", err)
		}
	}
}

// BenchmarkFindTopParallel measures the same query on the parallel
// policy with the sharded accumulator.
func BenchmarkFindTopParallel(b *testing.B) {
	e := seededEngine(b, 10000)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.FindTopParallel(ctx, "ranked retrieval term7 -term12"); err != nil {
			b.Fatalf("FindTopParallel: %v", err)
		}
	}
}

// BenchmarkMatchDocument measures match latency for one document.
func BenchmarkMatchDocument(b *testing.B) {
	e := seededEngine(b, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := e.MatchDocument("ranked retrieval term7", i%1000); err != nil {
			b.Fatalf("MatchDocument: %v", err)
		}
	}
}

// BenchmarkRemoveDuplicates measures a full duplicate sweep over a
// corpus that is half duplicates.
func BenchmarkRemoveDuplicates(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e, err := engine.NewFromString("")
		if err != nil {
			b.Fatalf("engine: %v", err)
		}
		for id := 0; id < 2000; id++ {
			text := fmt.Sprintf("group %d shared words", id/2)
			if err := e.AddDocument(id, text, engine.StatusActual, nil); err != nil {
				b.Fatalf("AddDocument: %v", err)
			}
		}
		b.StartTimer()
		dedup.RemoveDuplicates(e, nil)
	}
}
