package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/arka-labs/strategist-api/internal/chat"
	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/middleware"
	"github.com/arka-labs/strategist-api/internal/validation"
)

const (
	// MaxChatMessageLength caps a single chat message
	MaxChatMessageLength = 8000

	// DefaultHistoryLimit is the history page size when none is given
	DefaultHistoryLimit = 50

	// MaxHistoryLimit caps the history page size
	MaxHistoryLimit = 200
)

// ChatHandler handles the chat turn and history endpoints
type ChatHandler struct {
	service  *chat.Service
	clearer  *chat.HistoryClearer
	messages database.MessageRepositoryInterface
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	service *chat.Service,
	clearer *chat.HistoryClearer,
	messages database.MessageRepositoryInterface,
	logger *zap.Logger,
) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		service:  service,
		clearer:  clearer,
		messages: messages,
		logger:   logger,
	}
}

// RegisterRoutes registers chat routes
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat/message", h.SendMessage).Methods("POST")
	r.HandleFunc("/chat/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/chat/history", h.ClearHistory).Methods("DELETE")
}

// ChatMessageRequest represents a chat message request
type ChatMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatMessageResponse represents a completed chat turn
type ChatMessageResponse struct {
	Reply     string   `json:"reply"`
	NodesUsed []string `json:"nodes_used"`
}

// SendMessage runs one chat turn. Model failures are absorbed inside
// the service as a fallback reply, so an error here means the pipeline
// itself could not run.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req ChatMessageRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		// Check if error is due to request size limit
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	// Validate request
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	// Sanitize text input
	req.Message = validation.SanitizeText(req.Message)
	if req.Message == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message is required and cannot be empty after sanitization")
		return
	}
	if len(req.Message) > MaxChatMessageLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Message exceeds maximum length of %d characters", MaxChatMessageLength))
		return
	}

	result, err := h.service.HandleTurn(r.Context(), user.ID, req.Message)
	if err != nil {
		h.logger.Error("chat_turn_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, ChatMessageResponse{
		Reply:     result.Reply,
		NodesUsed: result.NodesUsed,
	})
}

// GetHistory returns the user's recent messages, oldest first
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid limit parameter")
			return
		}
		limit = parsed
		if limit > MaxHistoryLimit {
			limit = MaxHistoryLimit
		}
	}

	messages, err := h.messages.GetRecent(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to fetch history")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// ClearHistory deletes the user's conversation and everything distilled
// from it
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	if err := h.clearer.Clear(r.Context(), user.ID); err != nil {
		h.logger.Error("history_clear_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
