package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/services"
)

// SearchHandler exposes the search endpoints. Table search runs a live
// discovery sweep per request; user and dashboard search query the backend
// directly.
type SearchHandler struct {
	search services.SearchService
	logger *zap.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search services.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// RegisterRoutes registers the search handler's routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search/v0", h.Search)
	mux.HandleFunc("GET /api/search/v0/table", h.SearchTables)
	mux.HandleFunc("GET /api/search/v0/user", h.SearchUsers)
	mux.HandleFunc("GET /api/search/v0/dashboard", h.SearchDashboards)
	mux.HandleFunc("GET /api/search/v0/suggest", h.Suggest)
}

// Search handles GET /api/search/v0?resource=...&query_term=...&page_index=...
// Omitting resource (or passing "all") searches every resource type.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	pageIndex, ok := ParsePageIndex(w, r, h.logger)
	if !ok {
		return
	}

	resource := r.URL.Query().Get("resource")
	switch resource {
	case "", models.ResourceAll, models.ResourceTable, models.ResourceUser, models.ResourceDashboard:
	default:
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_resource", "resource must be table, user, dashboard, or all"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := h.search.Search(r.Context(), models.SearchRequest{
		Resource:  resource,
		QueryTerm: r.URL.Query().Get("query_term"),
		PageIndex: pageIndex,
	})
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode search response", zap.Error(err))
	}
}

// SearchTables handles GET /api/search/v0/table?query_term=...&page_index=...
func (h *SearchHandler) SearchTables(w http.ResponseWriter, r *http.Request) {
	pageIndex, ok := ParsePageIndex(w, r, h.logger)
	if !ok {
		return
	}

	response := h.search.SearchTables(r.Context(), r.URL.Query().Get("query_term"), pageIndex)
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode table search response", zap.Error(err))
	}
}

// SearchUsers handles GET /api/search/v0/user?query_term=...&page_index=...
func (h *SearchHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	pageIndex, ok := ParsePageIndex(w, r, h.logger)
	if !ok {
		return
	}

	response := h.search.SearchUsers(r.Context(), r.URL.Query().Get("query_term"), pageIndex)
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode user search response", zap.Error(err))
	}
}

// SearchDashboards handles GET /api/search/v0/dashboard?query_term=...&page_index=...
func (h *SearchHandler) SearchDashboards(w http.ResponseWriter, r *http.Request) {
	pageIndex, ok := ParsePageIndex(w, r, h.logger)
	if !ok {
		return
	}

	response := h.search.SearchDashboards(r.Context(), r.URL.Query().Get("query_term"), pageIndex)
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode dashboard search response", zap.Error(err))
	}
}

// Suggest handles GET /api/search/v0/suggest?prefix=...
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions := h.search.Suggest(r.Context(), r.URL.Query().Get("prefix"))
	if err := WriteJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions}); err != nil {
		h.logger.Error("Failed to encode suggest response", zap.Error(err))
	}
}
