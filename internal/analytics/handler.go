package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves the aggregated analytics over HTTP.
type Handler struct {
	agg    *Aggregator
	logger *slog.Logger
}

// NewHandler creates a Handler over an aggregator.
func NewHandler(agg *Aggregator) *Handler {
	return &Handler{
		agg:    agg,
		logger: slog.Default().With("component", "analytics-handler"),
	}
}

// Stats handles GET /api/v1/analytics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.agg.Stats()); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
