package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mkraev/ranked-search-platform/internal/indexer"
	"github.com/mkraev/ranked-search-platform/internal/ingestion"
	"github.com/mkraev/ranked-search-platform/pkg/config"
)

func newService(t *testing.T) *indexer.Service {
	t.Helper()
	svc, err := indexer.NewService(config.EngineConfig{ShardCount: 4}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func apply(t *testing.T, svc *indexer.Service, event ingestion.DocumentEvent) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := Handler(svc)(context.Background(), nil, data); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestHandlerAppliesAddAndRemove(t *testing.T) {
	svc := newService(t)
	apply(t, svc, ingestion.DocumentEvent{Op: ingestion.OpAdd, DocumentID: 7, Text: "cat city", Status: "ACTUAL", Ratings: []int{3}})
	if got := svc.DocumentCount(); got != 1 {
		t.Fatalf("DocumentCount() = %d, want 1", got)
	}
	apply(t, svc, ingestion.DocumentEvent{Op: ingestion.OpRemove, DocumentID: 7})
	if got := svc.DocumentCount(); got != 0 {
		t.Errorf("DocumentCount() = %d, want 0", got)
	}
}

func TestHandlerToleratesReplayAndGarbage(t *testing.T) {
	svc := newService(t)
	event := ingestion.DocumentEvent{Op: ingestion.OpAdd, DocumentID: 1, Text: "cat", Status: "ACTUAL"}
	apply(t, svc, event)
	apply(t, svc, event) // replayed partition: duplicate must not error
	if got := svc.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount() = %d, want 1", got)
	}

	if err := Handler(svc)(context.Background(), nil, []byte("not json")); err != nil {
		t.Errorf("garbage message should be dropped, got %v", err)
	}
	apply(t, svc, ingestion.DocumentEvent{Op: "upsert", DocumentID: 2, Text: "dog"})
	apply(t, svc, ingestion.DocumentEvent{Op: ingestion.OpAdd, DocumentID: -5, Text: "dog"})
	apply(t, svc, ingestion.DocumentEvent{Op: ingestion.OpAdd, DocumentID: 3, Text: "dog", Status: "NOPE"})
	if got := svc.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount() = %d after invalid events, want 1", got)
	}
}
