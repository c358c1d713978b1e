package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/middleware"
)

// DefaultNotificationLimit is the notification page size
const DefaultNotificationLimit = 50

// NotificationHandler exposes notifications produced by background jobs
type NotificationHandler struct {
	notifications database.NotificationRepositoryInterface
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications database.NotificationRepositoryInterface) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes registers notification routes
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.GetNotifications).Methods("GET")
	r.HandleFunc("/notifications/{id}/read", h.MarkRead).Methods("POST")
}

// GetNotifications returns the user's notifications, newest first.
// ?unread=true filters to unread only.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid unread parameter")
			return
		}
		unreadOnly = parsed
	}

	notifications, err := h.notifications.GetByUserID(r.Context(), user.ID, unreadOnly, DefaultNotificationLimit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to fetch notifications")
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// MarkRead marks one of the user's notifications as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	idStr := mux.Vars(r)["id"]
	notificationID, err := uuid.Parse(idStr)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), user.ID, notificationID); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
