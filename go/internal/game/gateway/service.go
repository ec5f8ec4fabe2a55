// Package gateway serves game clients over WebSocket and exposes the
// connection and game state endpoints.
package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service bundles the connection registry with its HTTP handlers
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// NewService wires the handlers around an existing connection manager. The
// manager is created first because the game broadcasts through it.
func NewService(cm *ConnectionManager, handler MessageHandler, provider StateProvider) *Service {
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, handler),
		stateHandler:      NewStateHandler(provider, cm),
	}
}

// RegisterRoutes registers the WebSocket and state HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("game gateway routes registered")
}

// Stop closes every client connection
func (s *Service) Stop() {
	s.connectionManager.Shutdown()
	log.Info().Msg("game gateway stopped")
}

// Stats returns statistics about the gateway
func (s *Service) Stats() ConnectionStats {
	return s.connectionManager.Stats()
}
