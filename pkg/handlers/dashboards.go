package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/services"
)

// DashboardsHandler exposes the thin dashboard surface: lookup and
// description editing.
type DashboardsHandler struct {
	dashboards services.DashboardService
	logger     *zap.Logger
}

// NewDashboardsHandler creates a new dashboards handler.
func NewDashboardsHandler(dashboards services.DashboardService, logger *zap.Logger) *DashboardsHandler {
	return &DashboardsHandler{dashboards: dashboards, logger: logger}
}

// RegisterRoutes registers the dashboards handler's routes on the given mux.
func (h *DashboardsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/metadata/v0/dashboard", h.GetDashboard)
	mux.HandleFunc("GET /api/metadata/v0/dashboard/description", h.GetDescription)
	mux.HandleFunc("PUT /api/metadata/v0/dashboard/description", h.PutDescription)
	mux.HandleFunc("GET /api/metadata/v0/user/dashboards", h.ByUserRelation)
	mux.HandleFunc("GET /api/metadata/v0/table/dashboards", h.UsingTable)
}

func (h *DashboardsHandler) dashboardID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_id", "Query parameter 'id' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return id, true
}

// GetDashboard handles GET /api/metadata/v0/dashboard?id=...
func (h *DashboardsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dashboardID(w, r)
	if !ok {
		return
	}

	dashboard, found := h.dashboards.GetDashboard(r.Context(), id)
	if !found {
		if err := ErrorResponse(w, http.StatusNotFound, "dashboard_not_found", "No dashboard with id "+id); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, dashboard); err != nil {
		h.logger.Error("Failed to encode dashboard response", zap.Error(err))
	}
}

// GetDescription handles GET /api/metadata/v0/dashboard/description?id=...
func (h *DashboardsHandler) GetDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dashboardID(w, r)
	if !ok {
		return
	}

	description := h.dashboards.GetDashboardDescription(r.Context(), id)
	if err := WriteJSON(w, http.StatusOK, DescriptionPayload{Description: description}); err != nil {
		h.logger.Error("Failed to encode description response", zap.Error(err))
	}
}

// PutDescription handles PUT /api/metadata/v0/dashboard/description?id=...
func (h *DashboardsHandler) PutDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dashboardID(w, r)
	if !ok {
		return
	}
	var payload DescriptionPayload
	if !DecodeBody(w, r, &payload, h.logger) {
		return
	}

	if err := h.dashboards.PutDashboardDescription(r.Context(), id, payload.Description); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ByUserRelation handles GET /api/metadata/v0/user/dashboards?user_id=...&relation=...
func (h *DashboardsHandler) ByUserRelation(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_user_id", "Query parameter 'user_id' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	relation := r.URL.Query().Get("relation")
	if err := models.ValidateRelation(relation); err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_relation", err.Error()); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	}

	dashboards := h.dashboards.DashboardsByUserRelation(r.Context(), userID, relation)
	if err := WriteJSON(w, http.StatusOK, map[string]any{"dashboards": dashboards}); err != nil {
		h.logger.Error("Failed to encode dashboards response", zap.Error(err))
	}
}

// UsingTable handles GET /api/metadata/v0/table/dashboards?key=...
func (h *DashboardsHandler) UsingTable(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}

	dashboards := h.dashboards.DashboardsUsingTable(r.Context(), key)
	if err := WriteJSON(w, http.StatusOK, map[string]any{"dashboards": dashboards}); err != nil {
		h.logger.Error("Failed to encode dashboards response", zap.Error(err))
	}
}
