// Package validator provides input validation for ingestion requests.
// It enforces the engine's document rules at the service boundary so
// documents with a negative id, empty text, control characters or an
// unknown status never reach Kafka. Stop words are not known here: a
// text made only of stop words passes and is rejected by the engine.
package validator

import (
	"fmt"
	"strings"

	"github.com/mkraev/ranked-search-platform/internal/engine"
	"github.com/mkraev/ranked-search-platform/internal/engine/tokenizer"
	"github.com/mkraev/ranked-search-platform/internal/ingestion"
)

const maxTextLength = 1048576

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks the request against the engine's
// document rules and returns a ValidationError describing every failing
// field.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	if req.DocumentID < 0 {
		errs["document_id"] = "document id must not be negative"
	}
	switch {
	case len(tokenizer.Split(req.Text)) == 0:
		errs["text"] = "text is required and must contain at least one word"
	case len(req.Text) > maxTextLength:
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	case !tokenizer.IsValid(req.Text):
		errs["text"] = "text must not contain control characters"
	}
	if _, err := engine.ParseStatus(req.Status); err != nil {
		errs["status"] = err.Error()
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
