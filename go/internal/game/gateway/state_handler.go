package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mcdev12/guessword/go/internal/game/session"
	"github.com/rs/zerolog/log"
)

// StateProvider exposes a read-only view of the running game
type StateProvider interface {
	Snapshot() session.Snapshot
}

// GameStateResponse is the body of GET /api/game/state
type GameStateResponse struct {
	session.Snapshot
	Connections int `json:"connections"`
}

// StateHandler handles HTTP requests for game state
type StateHandler struct {
	stateProvider     StateProvider
	connectionManager *ConnectionManager
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider, cm *ConnectionManager) *StateHandler {
	return &StateHandler{
		stateProvider:     provider,
		connectionManager: cm,
	}
}

// HandleGetGameState handles GET /api/game/state
func (h *StateHandler) HandleGetGameState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := GameStateResponse{
		Snapshot:    h.stateProvider.Snapshot(),
		Connections: h.connectionManager.Stats().ActiveConnections,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode game state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/game/state", h.HandleGetGameState)
}
