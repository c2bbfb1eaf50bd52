// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/daketi/internal/middleware"
	"github.com/sirupsen/logrus"
)

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ListRoomsHandler returns a summary of every live room.
func ListRoomsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gs.Rooms.Rooms())
	}
}

// NewRouter wires every HTTP and WebSocket route behind the request logger.
func NewRouter(logger *logrus.Logger, gs *GameServer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", HealthHandler)
	mux.Handle("/rooms", ListRoomsHandler(gs))
	mux.Handle("/ws", GameWSHandler(logger, gs))
	return middleware.LogMiddleware(logger)(mux)
}
