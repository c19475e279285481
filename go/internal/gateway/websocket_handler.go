package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arenaclock/go/internal/clock"
)

// WebSocketHandler upgrades scoreboard viewer connections.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	clocks            ClockProvider
}

func NewWebSocketHandler(cm *ConnectionManager, clocks ClockProvider) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		clocks:            clocks,
	}
}

// HandleClockConnection handles GET /ws/clock?side=left|right. The viewer
// gets the current clock state first, then a TextureUpdated event per tick.
func (h *WebSocketHandler) HandleClockConnection(w http.ResponseWriter, r *http.Request) {
	side, err := clock.ParseSide(r.URL.Query().Get("side"))
	if err != nil {
		http.Error(w, "side must be left or right", http.StatusBadRequest)
		return
	}

	// The state is queued ahead of registration so it is always the first
	// message, even when a tick lands during the upgrade.
	data, err := h.clockState(side)
	if err != nil {
		log.Error().Err(err).Str("side", side.String()).Msg("failed to build clock state event")
		http.Error(w, "clock state unavailable", http.StatusInternalServerError)
		return
	}

	if _, err := h.connectionManager.UpgradeConnection(w, r, side.String(), data); err != nil {
		log.Error().Err(err).Str("side", side.String()).Msg("failed to upgrade WebSocket connection")
	}
}

func (h *WebSocketHandler) clockState(side clock.Side) ([]byte, error) {
	snap, err := h.clocks.Snapshot(side)
	if err != nil {
		return nil, fmt.Errorf("read clock state: %w", err)
	}
	event, err := newClockEvent(side.String(), EventTypeClockState, h.connectionManager.clock.Now().UTC(), snap)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal clock state event: %w", err)
	}
	return data, nil
}

// HandleConnectionStats handles GET /ws/stats.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/clock", h.HandleClockConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
