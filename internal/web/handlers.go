package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/pattr-maidachem/uplink-monitor/db"
	"github.com/pattr-maidachem/uplink-monitor/internal/gateway"
	"github.com/pattr-maidachem/uplink-monitor/internal/logger"
	"github.com/pattr-maidachem/uplink-monitor/internal/monitor"
	"github.com/pattr-maidachem/uplink-monitor/internal/swap"
)

// WebHandler exposes the read-only query surface over committed state
// and the WebSocket subscribe endpoint. Nothing here participates in
// the sampling hot path.
type WebHandler struct {
	swapService    *swap.SwapService
	gatewayService *gateway.GatewayService
	monitorService *monitor.MonitorService
	upgrader       websocket.Upgrader
}

func NewWebHandler(swapService *swap.SwapService, gatewayService *gateway.GatewayService, monitorService *monitor.MonitorService) *WebHandler {
	return &WebHandler{
		swapService:    swapService,
		gatewayService: gatewayService,
		monitorService: monitorService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from the same host; any origin is accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// APISwaps returns swap history, newest first.
func (h *WebHandler) APISwaps(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.swapService.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load swap history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// APIActiveSwaps returns the currently active swap entries.
func (h *WebHandler) APIActiveSwaps(w http.ResponseWriter, r *http.Request) {
	entries, err := h.swapService.ActiveEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load active ISPs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// APIGatewayStatus returns the latest persisted probe result.
func (h *WebHandler) APIGatewayStatus(w http.ResponseWriter, r *http.Request) {
	entry, err := h.gatewayService.Status(r.Context())
	if err != nil {
		if err == db.ErrNotFound {
			writeError(w, http.StatusNotFound, "no gateway probes recorded yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load gateway status")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// APIGatewayUptime returns up/down aggregates over the query window
// (default 7 days).
func (h *WebHandler) APIGatewayUptime(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	uptime, err := h.gatewayService.Uptime(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate gateway uptime")
		return
	}
	writeJSON(w, http.StatusOK, uptime)
}

// APICurrentMetrics returns the latest in-memory snapshot.
func (h *WebHandler) APICurrentMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := h.monitorService.Current()
	if snapshot == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot published yet")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// WS upgrades the connection and hands it to the broadcaster.
func (h *WebHandler) WS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		lg := logger.WithComponent("web")
		lg.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.monitorService.Subscribe(conn)
}

// NotFound handles unknown routes.
func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		lg := logger.WithComponent("web")
		lg.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
