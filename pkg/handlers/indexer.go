package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/indexer"
)

// StatsSource reports background indexer run counters.
type StatsSource interface {
	Stats() indexer.Stats
}

// IndexerHandler exposes the background indexer's run statistics. The
// indexer may be disabled, in which case stats are zeroed.
type IndexerHandler struct {
	source  StatsSource
	enabled bool
	logger  *zap.Logger
}

// NewIndexerHandler creates a new indexer handler. source may be nil when
// the indexer is disabled.
func NewIndexerHandler(source StatsSource, enabled bool, logger *zap.Logger) *IndexerHandler {
	return &IndexerHandler{source: source, enabled: enabled, logger: logger}
}

// RegisterRoutes registers the indexer handler's routes on the given mux.
func (h *IndexerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/indexer/v0/stats", h.GetStats)
}

// GetStats handles GET /api/indexer/v0/stats
func (h *IndexerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Enabled bool          `json:"enabled"`
		Stats   indexer.Stats `json:"stats"`
	}{Enabled: h.enabled}
	if h.source != nil {
		response.Stats = h.source.Stats()
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode indexer stats response", zap.Error(err))
	}
}
