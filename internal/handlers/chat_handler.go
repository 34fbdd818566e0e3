package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	engine   interfaces.AnswerEngine
	validate *validator.Validate
	logger   arbor.ILogger
}

// ChatRequest is the POST /api/chat request body
type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	UserID         string `json:"user_id" validate:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
	ResumeID       string `json:"resume_id,omitempty"`
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine interfaces.AnswerEngine, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
	}
}

// ChatHandler handles POST /api/chat requests. The engine resolves every
// failure to a structured bundle, so a decoded request always gets a 200
// with a bundle; only transport-level problems produce an error status.
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode chat request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "message and user_id are required")
		return
	}

	h.logger.Info().
		Int("message_length", len(req.Message)).
		Str("user_id", req.UserID).
		Str("conversation_id", req.ConversationID).
		Msg("Processing chat request")

	bundle := h.engine.Answer(r.Context(), models.Question{
		Text:           req.Message,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		ResumeID:       req.ResumeID,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(bundle)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
