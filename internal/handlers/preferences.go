package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/middleware"
)

// PreferenceHandler exposes the learned user profile
type PreferenceHandler struct {
	preferences database.PreferenceRepositoryInterface
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferences database.PreferenceRepositoryInterface) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// RegisterRoutes registers preference routes
func (h *PreferenceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
}

// GetPreferences returns everything the extractor has learned about the
// user, in first-seen order
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	prefs, err := h.preferences.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to fetch preferences")
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}
