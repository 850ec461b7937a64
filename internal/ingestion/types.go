// Package ingestion defines the document intake API types and the
// events published for downstream indexing.
package ingestion

import "time"

// IngestRequest is the payload of POST /api/v1/documents.
type IngestRequest struct {
	DocumentID int    `json:"document_id"`
	Text       string `json:"text"`
	Status     string `json:"status"`
	Ratings    []int  `json:"ratings"`
}

// IngestResponse acknowledges an accepted document.
type IngestResponse struct {
	DocumentID int       `json:"document_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Event operations applied by index consumers.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// DocumentEvent is the Kafka message driving index mutations.
type DocumentEvent struct {
	Op         string    `json:"op"`
	DocumentID int       `json:"document_id"`
	Text       string    `json:"text,omitempty"`
	Status     string    `json:"status,omitempty"`
	Ratings    []int     `json:"ratings,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}
