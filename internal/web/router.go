package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/swaps", h.APISwaps).Methods("GET")
	api.HandleFunc("/swaps/active", h.APIActiveSwaps).Methods("GET")
	api.HandleFunc("/gateway/status", h.APIGatewayStatus).Methods("GET")
	api.HandleFunc("/gateway/uptime", h.APIGatewayUptime).Methods("GET")
	api.HandleFunc("/metrics/current", h.APICurrentMetrics).Methods("GET")

	r.HandleFunc("/ws", h.WS)

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}
