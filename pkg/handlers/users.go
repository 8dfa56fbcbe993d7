package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/services"
)

// UsersHandler exposes catalog user profiles and user-to-table relations.
type UsersHandler struct {
	users  services.UserService
	logger *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users services.UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{users: users, logger: logger}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/metadata/v0/user", h.GetUser)
	mux.HandleFunc("GET /api/metadata/v0/users", h.GetUsers)
	mux.HandleFunc("PUT /api/metadata/v0/user", h.PutUser)

	mux.HandleFunc("PUT /api/metadata/v0/user/relation", h.AddRelation)
	mux.HandleFunc("DELETE /api/metadata/v0/user/relation", h.DeleteRelation)
	mux.HandleFunc("GET /api/metadata/v0/user/tables", h.TablesByRelation)
	mux.HandleFunc("GET /api/metadata/v0/user/frequently_used_tables", h.FrequentlyUsedTables)
}

func (h *UsersHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_user_id", "Query parameter 'user_id' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return userID, true
}

// GetUser handles GET /api/metadata/v0/user?user_id=...
// Unknown users get a synthesized default profile rather than 404.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	user := h.users.GetUser(r.Context(), userID)
	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}

// GetUsers handles GET /api/metadata/v0/users
func (h *UsersHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users := h.users.GetUsers(r.Context())
	if err := WriteJSON(w, http.StatusOK, map[string]any{"users": users}); err != nil {
		h.logger.Error("Failed to encode users response", zap.Error(err))
	}
}

// PutUser handles PUT /api/metadata/v0/user with a user profile body.
func (h *UsersHandler) PutUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if !DecodeBody(w, r, &user, h.logger) {
		return
	}
	if user.Email == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_email", "User email is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.users.CreateUpdateUser(r.Context(), user); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) relationParams(w http.ResponseWriter, r *http.Request) (key, userID, relation string, ok bool) {
	key, ok = ParseTableKey(w, r, h.logger)
	if !ok {
		return "", "", "", false
	}
	userID, ok = h.userID(w, r)
	if !ok {
		return "", "", "", false
	}
	relation = r.URL.Query().Get("relation")
	if err := models.ValidateRelation(relation); err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_relation", err.Error()); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return "", "", "", false
	}
	return key, userID, relation, true
}

// AddRelation handles PUT /api/metadata/v0/user/relation?key=...&user_id=...&relation=...
func (h *UsersHandler) AddRelation(w http.ResponseWriter, r *http.Request) {
	key, userID, relation, ok := h.relationParams(w, r)
	if !ok {
		return
	}

	if err := h.users.AddRelation(r.Context(), key, userID, relation); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRelation handles DELETE /api/metadata/v0/user/relation?key=...&user_id=...&relation=...
func (h *UsersHandler) DeleteRelation(w http.ResponseWriter, r *http.Request) {
	key, userID, relation, ok := h.relationParams(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteRelation(r.Context(), key, userID, relation); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TablesByRelation handles GET /api/metadata/v0/user/tables?user_id=...&relation=...
func (h *UsersHandler) TablesByRelation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	relation := r.URL.Query().Get("relation")
	if err := models.ValidateRelation(relation); err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_relation", err.Error()); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	}

	tables, err := h.users.TablesByRelation(r.Context(), userID, relation)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"table": tables}); err != nil {
		h.logger.Error("Failed to encode tables response", zap.Error(err))
	}
}

// FrequentlyUsedTables handles GET /api/metadata/v0/user/frequently_used_tables?user_id=...
func (h *UsersHandler) FrequentlyUsedTables(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	tables := h.users.FrequentlyUsedTables(r.Context(), userID)
	if err := WriteJSON(w, http.StatusOK, map[string]any{"table": tables}); err != nil {
		h.logger.Error("Failed to encode tables response", zap.Error(err))
	}
}
