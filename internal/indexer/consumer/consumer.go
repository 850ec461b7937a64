// Package consumer applies document events from Kafka to the index
// service.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkraev/ranked-search-platform/internal/engine"
	"github.com/mkraev/ranked-search-platform/internal/indexer"
	"github.com/mkraev/ranked-search-platform/internal/ingestion"
	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
	"github.com/mkraev/ranked-search-platform/pkg/kafka"
)

// Handler returns a kafka.MessageHandler that applies document events
// to the service. Duplicate adds are logged and dropped rather than
// retried: replaying a partition must not wedge the consumer.
func Handler(svc *indexer.Service) kafka.MessageHandler {
	log := slog.Default().With("component", "document-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			log.Error("dropping undecodable event", "key", string(key), "error", err)
			return nil
		}
		switch event.Op {
		case ingestion.OpAdd:
			status, err := engine.ParseStatus(event.Status)
			if err != nil {
				log.Error("dropping event with unknown status", "doc_id", event.DocumentID, "status", event.Status)
				return nil
			}
			err = svc.AddDocument(event.DocumentID, event.Text, status, event.Ratings)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, apperrors.ErrDuplicateID):
				log.Warn("duplicate add event ignored", "doc_id", event.DocumentID)
				return nil
			case errors.Is(err, apperrors.ErrNegativeID), errors.Is(err, apperrors.ErrInvalidInput):
				log.Error("dropping invalid document", "doc_id", event.DocumentID, "error", err)
				return nil
			default:
				return fmt.Errorf("applying add event for %d: %w", event.DocumentID, err)
			}
		case ingestion.OpRemove:
			svc.RemoveDocument(event.DocumentID)
			return nil
		default:
			log.Error("dropping event with unknown op", "op", event.Op, "doc_id", event.DocumentID)
			return nil
		}
	}
}
