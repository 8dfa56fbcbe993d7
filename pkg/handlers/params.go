package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
)

// ParseTableKey extracts the table key from the "key" query parameter.
// Returns the key and true on success, or "" and false on error (after
// writing an error response).
func ParseTableKey(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	key := r.URL.Query().Get("key")
	if key == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_key", "Query parameter 'key' is required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return key, true
}

// ParsePageIndex reads the optional "page_index" query parameter, defaulting
// to 0. A negative or unparseable value is a caller error.
func ParsePageIndex(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("page_index")
	if raw == "" {
		return 0, true
	}
	pageIndex, err := strconv.Atoi(raw)
	if err != nil || pageIndex < 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_page_index", "page_index must be a non-negative integer"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return pageIndex, true
}

// ParseDirection reads the optional lineage "direction" query parameter,
// defaulting to both.
func ParseDirection(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		return models.LineageDirectionBoth, true
	}
	switch direction {
	case models.LineageDirectionUpstream, models.LineageDirectionDownstream, models.LineageDirectionBoth:
		return direction, true
	default:
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_direction", "direction must be upstream, downstream, or both"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
}

// ParseDepth reads the optional lineage "depth" query parameter, defaulting
// to 1.
func ParseDepth(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("depth")
	if raw == "" {
		return 1, true
	}
	depth, err := strconv.Atoi(raw)
	if err != nil || depth < 1 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_depth", "depth must be a positive integer"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return depth, true
}

// DecodeBody decodes a JSON request body into dst. Returns false after
// writing an error response when the body is not valid JSON for dst.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}
