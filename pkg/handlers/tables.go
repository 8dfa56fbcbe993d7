package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/services"
)

// DescriptionPayload carries a free-text description in PUT bodies.
type DescriptionPayload struct {
	Description string `json:"description"`
}

// LineagePayload carries upstream and downstream table keys for lineage
// updates.
type LineagePayload struct {
	Upstream   []string `json:"upstream"`
	Downstream []string `json:"downstream"`
}

// TablesHandler exposes table metadata endpoints backed by the catalog
// service.
type TablesHandler struct {
	catalog services.CatalogService
	logger  *zap.Logger
}

// NewTablesHandler creates a new tables handler.
func NewTablesHandler(catalog services.CatalogService, logger *zap.Logger) *TablesHandler {
	return &TablesHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers the tables handler's routes on the given mux.
func (h *TablesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/metadata/v0/table", h.GetTable)
	mux.HandleFunc("GET /api/metadata/v0/table/description", h.GetDescription)
	mux.HandleFunc("PUT /api/metadata/v0/table/description", h.PutDescription)
	mux.HandleFunc("GET /api/metadata/v0/table/column/description", h.GetColumnDescription)
	mux.HandleFunc("PUT /api/metadata/v0/table/column/description", h.PutColumnDescription)

	mux.HandleFunc("GET /api/metadata/v0/tags", h.GetTags)
	mux.HandleFunc("PUT /api/metadata/v0/table/tag", h.AddTag)
	mux.HandleFunc("DELETE /api/metadata/v0/table/tag", h.DeleteTag)
	mux.HandleFunc("GET /api/metadata/v0/badges", h.GetBadges)
	mux.HandleFunc("PUT /api/metadata/v0/table/badge", h.AddBadge)
	mux.HandleFunc("DELETE /api/metadata/v0/table/badge", h.DeleteBadge)
	mux.HandleFunc("PUT /api/metadata/v0/table/owner", h.AddOwner)
	mux.HandleFunc("DELETE /api/metadata/v0/table/owner", h.DeleteOwner)

	mux.HandleFunc("GET /api/metadata/v0/table/lineage", h.GetLineage)
	mux.HandleFunc("PUT /api/metadata/v0/table/lineage", h.PutLineage)
	mux.HandleFunc("GET /api/metadata/v0/table/statistics", h.GetStatistics)
	mux.HandleFunc("GET /api/metadata/v0/table/generation_code", h.GetGenerationCode)

	mux.HandleFunc("GET /api/metadata/v0/catalog/statistics", h.GetCatalogStatistics)
	mux.HandleFunc("GET /api/metadata/v0/popular_tables", h.PopularTables)
	mux.HandleFunc("GET /api/metadata/v0/latest_updated_ts", h.LatestUpdatedTimestamp)
}

// GetTable handles GET /api/metadata/v0/table?key=...
// An unknown table still returns a placeholder entry rather than 404; the
// backend cannot distinguish missing tables from empty ones.
func (h *TablesHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}

	table, err := h.catalog.GetTable(r.Context(), key)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, table); err != nil {
		h.logger.Error("Failed to encode table response", zap.Error(err))
	}
}

// GetDescription handles GET /api/metadata/v0/table/description?key=...
func (h *TablesHandler) GetDescription(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}

	description, err := h.catalog.GetTableDescription(r.Context(), key)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, DescriptionPayload{Description: description}); err != nil {
		h.logger.Error("Failed to encode description response", zap.Error(err))
	}
}

// PutDescription handles PUT /api/metadata/v0/table/description?key=...
func (h *TablesHandler) PutDescription(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}
	var payload DescriptionPayload
	if !DecodeBody(w, r, &payload, h.logger) {
		return
	}

	if err := h.catalog.PutTableDescription(r.Context(), key, payload.Description); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetColumnDescription handles
// GET /api/metadata/v0/table/column/description?key=...&column_name=...
func (h *TablesHandler) GetColumnDescription(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}
	columnName := r.URL.Query().Get("column_name")
	if columnName == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_column_name", "Query parameter 'column_name' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	description, err := h.catalog.GetColumnDescription(r.Context(), key, columnName)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, DescriptionPayload{Description: description}); err != nil {
		h.logger.Error("Failed to encode description response", zap.Error(err))
	}
}

// PutColumnDescription handles
// PUT /api/metadata/v0/table/column/description?key=...&column_name=...
func (h *TablesHandler) PutColumnDescription(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}
	columnName := r.URL.Query().Get("column_name")
	if columnName == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_column_name", "Query parameter 'column_name' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	var payload DescriptionPayload
	if !DecodeBody(w, r, &payload, h.logger) {
		return
	}

	if err := h.catalog.PutColumnDescription(r.Context(), key, columnName, payload.Description); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTags handles GET /api/metadata/v0/tags
func (h *TablesHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	tags := h.catalog.GetTags(r.Context())
	if err := WriteJSON(w, http.StatusOK, map[string]any{"tag_usages": tags}); err != nil {
		h.logger.Error("Failed to encode tags response", zap.Error(err))
	}
}

// AddTag handles PUT /api/metadata/v0/table/tag?key=...&tag=...
func (h *TablesHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	h.mutateListField(w, r, "tag", h.catalog.AddTag)
}

// DeleteTag handles DELETE /api/metadata/v0/table/tag?key=...&tag=...
func (h *TablesHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	h.mutateListField(w, r, "tag", h.catalog.DeleteTag)
}

// GetBadges handles GET /api/metadata/v0/badges
func (h *TablesHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	badges := h.catalog.GetBadges(r.Context())
	if err := WriteJSON(w, http.StatusOK, map[string]any{"badges": badges}); err != nil {
		h.logger.Error("Failed to encode badges response", zap.Error(err))
	}
}

// AddBadge handles PUT /api/metadata/v0/table/badge?key=...&badge=...
func (h *TablesHandler) AddBadge(w http.ResponseWriter, r *http.Request) {
	h.mutateListField(w, r, "badge", h.catalog.AddBadge)
}

// DeleteBadge handles DELETE /api/metadata/v0/table/badge?key=...&badge=...
func (h *TablesHandler) DeleteBadge(w http.ResponseWriter, r *http.Request) {
	h.mutateListField(w, r, "badge", h.catalog.DeleteBadge)
}

// AddOwner handles PUT /api/metadata/v0/table/owner?key=...&owner=...
func (h *TablesHandler) AddOwner(w http.ResponseWriter, r *http.Request) {
	h.mutateListField(w, r, "owner", h.catalog.AddOwner)
}

// DeleteOwner handles DELETE /api/metadata/v0/table/owner?key=...&owner=...
func (h *TablesHandler) DeleteOwner(w http.ResponseWriter, r *http.Request) {
	h.mutateListField(w, r, "owner", h.catalog.DeleteOwner)
}

// mutateListField is the shared shape of tag, badge, and owner mutations:
// a table key plus one value parameter, applied through the catalog.
func (h *TablesHandler) mutateListField(w http.ResponseWriter, r *http.Request, param string, apply func(ctx context.Context, key, value string) error) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}
	value := r.URL.Query().Get(param)
	if value == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_"+param, "Query parameter '"+param+"' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := apply(r.Context(), key, value); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLineage handles GET /api/metadata/v0/table/lineage?key=...&direction=...&depth=...
func (h *TablesHandler) GetLineage(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}
	direction, ok := ParseDirection(w, r, h.logger)
	if !ok {
		return
	}
	depth, ok := ParseDepth(w, r, h.logger)
	if !ok {
		return
	}

	lineage := h.catalog.GetLineage(r.Context(), key, direction, depth)
	if err := WriteJSON(w, http.StatusOK, lineage); err != nil {
		h.logger.Error("Failed to encode lineage response", zap.Error(err))
	}
}

// PutLineage handles PUT /api/metadata/v0/table/lineage?key=...
func (h *TablesHandler) PutLineage(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}
	var payload LineagePayload
	if !DecodeBody(w, r, &payload, h.logger) {
		return
	}

	if err := h.catalog.SetLineage(r.Context(), key, payload.Upstream, payload.Downstream); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatistics handles GET /api/metadata/v0/table/statistics?key=...
func (h *TablesHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}

	stats := h.catalog.GetStatistics(r.Context(), key)
	if err := WriteJSON(w, http.StatusOK, map[string]any{"statistics": stats}); err != nil {
		h.logger.Error("Failed to encode statistics response", zap.Error(err))
	}
}

// GetGenerationCode handles GET /api/metadata/v0/table/generation_code?key=...
func (h *TablesHandler) GetGenerationCode(w http.ResponseWriter, r *http.Request) {
	key, ok := ParseTableKey(w, r, h.logger)
	if !ok {
		return
	}

	code := h.catalog.GetGenerationCode(r.Context(), key)
	if err := WriteJSON(w, http.StatusOK, map[string]string{"key": key, "text": code}); err != nil {
		h.logger.Error("Failed to encode generation code response", zap.Error(err))
	}
}

// GetCatalogStatistics handles GET /api/metadata/v0/catalog/statistics
func (h *TablesHandler) GetCatalogStatistics(w http.ResponseWriter, r *http.Request) {
	stats := h.catalog.GetCatalogStatistics(r.Context())
	if err := WriteJSON(w, http.StatusOK, stats); err != nil {
		h.logger.Error("Failed to encode catalog statistics response", zap.Error(err))
	}
}

// PopularTables handles GET /api/metadata/v0/popular_tables?limit=...
func (h *TablesHandler) PopularTables(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	tables := h.catalog.PopularTables(r.Context(), limit)
	if err := WriteJSON(w, http.StatusOK, map[string]any{"popular_tables": tables}); err != nil {
		h.logger.Error("Failed to encode popular tables response", zap.Error(err))
	}
}

// LatestUpdatedTimestamp handles GET /api/metadata/v0/latest_updated_ts
func (h *TablesHandler) LatestUpdatedTimestamp(w http.ResponseWriter, r *http.Request) {
	ts := h.catalog.LatestUpdatedTimestamp()
	if err := WriteJSON(w, http.StatusOK, map[string]int64{"timestamp": ts}); err != nil {
		h.logger.Error("Failed to encode timestamp response", zap.Error(err))
	}
}
