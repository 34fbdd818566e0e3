package server

import (
	"net/http"

	"github.com/PrahladMehta/CareerMatch-AI/internal/handlers"
)

// setupRoutes registers the HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	chatHandler := handlers.NewChatHandler(s.app.Engine, s.app.Logger)
	healthHandler := handlers.NewHealthHandler(s.app.ChatLLM, s.app.Logger)

	mux.HandleFunc("/api/chat", chatHandler.ChatHandler)
	mux.HandleFunc("/health", healthHandler.HealthHandler)

	return mux
}
