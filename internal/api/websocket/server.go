package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fortuna/nbastats/internal/publisher"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server streams game updates to websocket clients
type Server struct {
	server *http.Server
	hub    *Hub
	relay  *Relay
	cancel context.CancelFunc
}

// NewServer creates a websocket server. reader may be nil, in which case
// updates only arrive through BroadcastGameUpdate.
func NewServer(reader StreamReader) *Server {
	hub := NewHub()
	s := &Server{hub: hub}
	if reader != nil {
		s.relay = NewRelay(reader, publisher.StreamGameUpdates, hub)
	}
	return s
}

// Handler returns the websocket routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/games", s.handleGames)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Start starts the hub, the stream relay and the listener
func (s *Server) Start(port string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.hub.Run()
	if s.relay != nil {
		go func() {
			if err := s.relay.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[ws] relay stopped: %v", err)
			}
		}()
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("✓ WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleGames upgrades the connection and subscribes it to game updates
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastGameUpdate sends a raw update to all connected clients
func (s *Server) BroadcastGameUpdate(data []byte) {
	s.hub.Broadcast(data)
}

// Shutdown stops the relay and hub and closes the listener
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
