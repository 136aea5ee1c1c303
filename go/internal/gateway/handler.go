package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/models"
)

// WebSocketHandler serves the change feed endpoints.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm}
}

// HandleGameConnection upgrades /ws/game?game_id=...&player_id=...&tables=games,votes.
// player_id is optional; spectators of the join screen connect without one.
func (h *WebSocketHandler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gameID := strings.TrimSpace(q.Get("game_id"))
	if gameID == "" {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}
	tables, ok := parseTables(q.Get("tables"))
	if !ok {
		http.Error(w, "unknown table in tables", http.StatusBadRequest)
		return
	}
	playerID := strings.TrimSpace(q.Get("player_id"))

	if err := h.connectionManager.UpgradeConnection(w, r, gameID, playerID, tables); err != nil {
		// the upgrader has already written the error response
		log.Error().Err(err).Str("game_id", gameID).Str("player_id", playerID).Msg("failed to upgrade websocket connection")
	}
}

func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.connectionManager.Stats())
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/game", h.HandleGameConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}

func parseTables(raw string) ([]models.Table, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	known := make(map[models.Table]bool, len(models.AllTables))
	for _, t := range models.AllTables {
		known[t] = true
	}
	var out []models.Table
	for _, part := range strings.Split(raw, ",") {
		t := models.Table(strings.TrimSpace(part))
		if !known[t] {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}
