// Package indexer owns the live search engine instance of a service
// process. The engine itself is single-owner; Service serialises
// mutations against queries with a read-write lock so a Kafka consumer
// can apply document events while HTTP handlers search.
package indexer

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mkraev/ranked-search-platform/internal/engine"
	"github.com/mkraev/ranked-search-platform/internal/engine/dedup"
	"github.com/mkraev/ranked-search-platform/pkg/config"
	"github.com/mkraev/ranked-search-platform/pkg/metrics"
)

// Service guards an engine for shared use.
type Service struct {
	mu      sync.RWMutex
	engine  *engine.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService builds the engine from configuration. The stop-word list
// and accumulator shard count are fixed for the process lifetime.
func NewService(cfg config.EngineConfig, m *metrics.Metrics) (*Service, error) {
	e, err := engine.NewFromString(cfg.StopWords, engine.WithShardCount(cfg.ShardCount))
	if err != nil {
		return nil, err
	}
	return &Service{
		engine:  e,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}, nil
}

// AddDocument indexes one document under the write lock.
func (s *Service) AddDocument(id int, text string, status engine.Status, ratings []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.AddDocument(id, text, status, ratings); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.IndexedDocumentsGauge.Set(float64(s.engine.DocumentCount()))
	}
	s.logger.Debug("document indexed", "doc_id", id, "status", status.String())
	return nil
}

// RemoveDocument removes a document under the write lock. Unknown ids
// are a no-op, mirroring the engine.
func (s *Service) RemoveDocument(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.engine.DocumentCount()
	s.engine.RemoveDocument(id)
	if s.metrics != nil && s.engine.DocumentCount() != before {
		s.metrics.DocsRemovedTotal.Inc()
		s.metrics.IndexedDocumentsGauge.Set(float64(s.engine.DocumentCount()))
	}
}

// RemoveDuplicates runs the duplicate sweep under the write lock and
// returns the removed ids. The report lines land in the service log.
func (s *Service) RemoveDuplicates() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var report strings.Builder
	removed := dedup.RemoveDuplicates(s.engine, &report)
	for _, line := range strings.Split(strings.TrimRight(report.String(), "\n"), "\n") {
		if line != "" {
			s.logger.Info(line)
		}
	}
	if s.metrics != nil && len(removed) > 0 {
		s.metrics.DuplicatesFoundTotal.Add(float64(len(removed)))
		s.metrics.IndexedDocumentsGauge.Set(float64(s.engine.DocumentCount()))
	}
	return removed
}

// FindTop runs a ranked query with the chosen execution policy under
// the read lock.
func (s *Service) FindTop(ctx context.Context, rawQuery string, status engine.Status, parallel bool) ([]engine.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if parallel {
		return s.engine.FindTopParallelByStatus(ctx, rawQuery, status)
	}
	return s.engine.FindTopByStatus(rawQuery, status)
}

// MatchDocument reports the query words occurring in one document.
func (s *Service) MatchDocument(ctx context.Context, rawQuery string, id int, parallel bool) ([]string, engine.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if parallel {
		return s.engine.MatchDocumentParallel(ctx, rawQuery, id)
	}
	return s.engine.MatchDocument(rawQuery, id)
}

// DocumentCount returns the current index size.
func (s *Service) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DocumentCount()
}

// IDs returns the indexed ids in ascending order.
func (s *Service) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.IDs()
}

// WordFrequencies returns the term frequencies of one document.
func (s *Service) WordFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.WordFrequencies(id)
}
