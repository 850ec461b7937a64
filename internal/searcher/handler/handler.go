// Package handler exposes the search service's HTTP API: ranked
// queries, document matching, index statistics, and cache controls.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mkraev/ranked-search-platform/internal/analytics"
	"github.com/mkraev/ranked-search-platform/internal/engine"
	"github.com/mkraev/ranked-search-platform/internal/engine/paginate"
	"github.com/mkraev/ranked-search-platform/internal/engine/stats"
	"github.com/mkraev/ranked-search-platform/internal/indexer"
	"github.com/mkraev/ranked-search-platform/internal/searcher/cache"
	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
	"github.com/mkraev/ranked-search-platform/pkg/logger"
	"github.com/mkraev/ranked-search-platform/pkg/metrics"
)

// Handler serves the search API over one index service.
type Handler struct {
	svc       *indexer.Service
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	parallel  bool
	pageSize  int
	logger    *slog.Logger

	windowMu sync.Mutex
	window   *stats.RequestWindow
}

// New creates a Handler. cache and collector may be nil when the
// backing services are unavailable.
func New(svc *indexer.Service, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, parallelByDefault bool, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Handler{
		svc:       svc,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		parallel:  parallelByDefault,
		pageSize:  pageSize,
		logger:    slog.Default().With("component", "search-handler"),
		window:    stats.NewRequestWindow(),
	}
}

// Search handles GET /api/v1/search?q=...&status=...&policy=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	rawQuery := r.URL.Query().Get("q")
	if rawQuery == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	status, err := engine.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	parallel := h.parallel
	if policy := r.URL.Query().Get("policy"); policy != "" {
		switch policy {
		case "par":
			parallel = true
		case "seq":
			parallel = false
		default:
			h.writeError(w, http.StatusBadRequest, "policy must be 'seq' or 'par'")
			return
		}
	}

	var docs []engine.Document
	cacheHit := false
	if h.cache != nil {
		docs, cacheHit, err = h.cache.GetOrCompute(ctx, rawQuery, status, func() ([]engine.Document, error) {
			return h.svc.FindTop(ctx, rawQuery, status, parallel)
		})
	} else {
		docs, err = h.svc.FindTop(ctx, rawQuery, status, parallel)
	}
	if err != nil {
		h.recordSearch(rawQuery, -1, cacheHit, start, parallel)
		statusCode := apperrors.HTTPStatusCode(err)
		if statusCode >= http.StatusInternalServerError {
			log.Error("search execution failed", "query", rawQuery, "error", err)
			h.writeError(w, statusCode, "search failed")
			return
		}
		h.writeError(w, statusCode, err.Error())
		return
	}
	h.recordSearch(rawQuery, len(docs), cacheHit, start, parallel)

	log.Info("search completed",
		"query", rawQuery,
		"results", len(docs),
		"cache_hit", cacheHit,
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"query":   rawQuery,
		"results": docs,
	})
}

// Match handles GET /api/v1/match?q=...&id=N
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawQuery := r.URL.Query().Get("q")
	if rawQuery == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "query parameter 'id' must be an integer")
		return
	}
	words, status, err := h.svc.MatchDocument(ctx, rawQuery, id, h.parallel)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownDocument) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("document %d not found", id))
			return
		}
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"document_id": id,
		"status":      status.String(),
		"words":       words,
	})
}

// Documents handles GET /api/v1/documents?page=N, listing indexed ids
// one fixed-size page at a time.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	page := 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = parsed
	}
	ids := h.svc.IDs()
	pages := paginate.Paginate(ids, h.pageSize)
	var items []int
	if page < len(pages) {
		items = pages[page].Items
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(ids),
		"page":      page,
		"page_size": h.pageSize,
		"pages":     len(pages),
		"ids":       items,
	})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.windowMu.Lock()
	noResult := h.window.NoResultRequests()
	h.windowMu.Unlock()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"document_count":     h.svc.DocumentCount(),
		"no_result_requests": noResult,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Dedup handles POST /api/v1/maintenance/dedup.
func (h *Handler) Dedup(w http.ResponseWriter, r *http.Request) {
	removed := h.svc.RemoveDuplicates()
	if h.cache != nil && len(removed) > 0 {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Error("cache invalidation after dedup failed", "error", err)
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"count":   len(removed),
	})
}

// recordSearch updates the request window, Prometheus collectors, and
// the analytics stream. resultCount < 0 marks an error.
func (h *Handler) recordSearch(rawQuery string, resultCount int, cacheHit bool, start time.Time, parallel bool) {
	if resultCount >= 0 {
		h.windowMu.Lock()
		h.window.AddFindRequest(resultCount)
		noResult := h.window.NoResultRequests()
		h.windowMu.Unlock()
		if h.metrics != nil {
			h.metrics.NoResultWindow.Set(float64(noResult))
		}
	}
	if h.metrics != nil {
		resultType := "hit"
		switch {
		case resultCount < 0:
			resultType = "error"
		case resultCount == 0:
			resultType = "zero_result"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		policy := "seq"
		if parallel {
			policy = "par"
		}
		h.metrics.SearchLatency.WithLabelValues(policy).Observe(time.Since(start).Seconds())
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	}
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     rawQuery,
			Results:   resultCount,
			CacheHit:  cacheHit,
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
		})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
