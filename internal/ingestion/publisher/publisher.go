// Package publisher archives documents to PostgreSQL and publishes
// document events to Kafka for downstream indexing. The archive stores
// the raw submission; the index itself stays in memory downstream.
package publisher

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/mkraev/ranked-search-platform/internal/ingestion"
	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
	"github.com/mkraev/ranked-search-platform/pkg/kafka"
	"github.com/mkraev/ranked-search-platform/pkg/postgres"
)

// Publisher coordinates document archiving and Kafka event production.
//
// It requires a `documents` table:
//
//	CREATE TABLE documents (
//	    id          BIGINT PRIMARY KEY,
//	    text        TEXT NOT NULL,
//	    status      TEXT NOT NULL,
//	    ratings     INTEGER[] NOT NULL DEFAULT '{}',
//	    ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    removed_at  TIMESTAMPTZ
//	);
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher with the given database and Kafka producer.
func New(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Ingest archives the document and publishes an add event. A document
// id that is already archived and not removed fails with
// ErrDuplicateID, matching the engine's add semantics.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	now := time.Now().UTC()
	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1 AND removed_at IS NULL)`,
			req.DocumentID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking document %d: %w", req.DocumentID, err)
		}
		if exists {
			return apperrors.Newf(apperrors.ErrDuplicateID, 409, "document %d already ingested", req.DocumentID)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, text, status, ratings, ingested_at, removed_at)
			 VALUES ($1, $2, $3, $4, $5, NULL)
			 ON CONFLICT (id) DO UPDATE
			 SET text = EXCLUDED.text, status = EXCLUDED.status,
			     ratings = EXCLUDED.ratings, ingested_at = EXCLUDED.ingested_at,
			     removed_at = NULL`,
			req.DocumentID, req.Text, req.Status, pq.Array(req.Ratings), now,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("archiving document: %w", err)
	}

	event := kafka.Event{
		Key: strconv.Itoa(req.DocumentID),
		Value: ingestion.DocumentEvent{
			Op:         ingestion.OpAdd,
			DocumentID: req.DocumentID,
			Text:       req.Text,
			Status:     req.Status,
			Ratings:    req.Ratings,
			IngestedAt: now,
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("publishing add event: %w", err)
	}
	p.logger.Info("document ingested", "doc_id", req.DocumentID)
	return &ingestion.IngestResponse{
		DocumentID: req.DocumentID,
		AcceptedAt: now,
	}, nil
}

// Remove marks the archived document removed and publishes a remove
// event. Removing an unknown id still publishes the event; downstream
// removal is a no-op there too.
func (p *Publisher) Remove(ctx context.Context, documentID int) error {
	now := time.Now().UTC()
	if _, err := p.db.DB.ExecContext(ctx,
		`UPDATE documents SET removed_at = $2 WHERE id = $1 AND removed_at IS NULL`,
		documentID, now,
	); err != nil {
		return fmt.Errorf("marking document %d removed: %w", documentID, err)
	}
	event := kafka.Event{
		Key: strconv.Itoa(documentID),
		Value: ingestion.DocumentEvent{
			Op:         ingestion.OpRemove,
			DocumentID: documentID,
			IngestedAt: now,
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		return fmt.Errorf("publishing remove event: %w", err)
	}
	p.logger.Info("document removal published", "doc_id", documentID)
	return nil
}
