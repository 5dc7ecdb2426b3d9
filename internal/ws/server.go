package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mklatt/ontrack/internal/frontend"
)

// Server exposes the live session snapshot to dashboard clients: a
// WebSocket stream at /ws, a one-shot JSON endpoint at /api/snapshot, and
// the embedded web dashboard at /.
type Server struct {
	broadcaster *Broadcaster
}

func NewServer(broadcaster *Broadcaster) *Server {
	return &Server{broadcaster: broadcaster}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	if h := frontend.Handler(); h != nil {
		mux.Handle("/", h)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		// The server binds to loopback by default; dashboards served
		// from it connect with the same host.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	log.Printf("[ws] client connected: %s", r.RemoteAddr)
	c := s.broadcaster.AddClient(conn)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			log.Printf("[ws] client disconnected: %s", r.RemoteAddr)
		}()
		for {
			// Clients don't send anything meaningful; reading just
			// detects disconnects.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.broadcaster.Latest()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Printf("[ws] snapshot encode error: %v", err)
	}
}

// ListenAndServe starts the dashboard server. It blocks, so callers run it
// in its own goroutine.
func ListenAndServe(addr string, mux *http.ServeMux) error {
	log.Printf("[ws] dashboard listening on http://%s", addr)
	return http.ListenAndServe(addr, mux)
}
