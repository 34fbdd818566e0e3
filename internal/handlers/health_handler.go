package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// HealthHandler handles health probe requests
type HealthHandler struct {
	chatLLM interfaces.LLMService
	logger  arbor.ILogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(chatLLM interfaces.LLMService, logger arbor.ILogger) *HealthHandler {
	return &HealthHandler{
		chatLLM: chatLLM,
		logger:  logger,
	}
}

// HealthHandler handles GET /health requests
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := h.chatLLM.HealthCheck(r.Context())

	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		h.logger.Warn().Err(err).Msg("LLM health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"healthy": false,
			"version": common.GetVersion(),
			"error":   err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"healthy": true,
		"version": common.GetVersion(),
		"mode":    h.chatLLM.GetMode(),
	})
}
