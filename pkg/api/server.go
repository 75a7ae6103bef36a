// Package api serves the debug control API: playback state, navigation
// commands and a websocket stream of playback events.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/galplayer/pkg/api/handlers"
	"github.com/cbodonnell/galplayer/pkg/api/middleware"
	"github.com/cbodonnell/galplayer/pkg/clients"
	"github.com/cbodonnell/galplayer/pkg/game"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/messages"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server  *http.Server
	clients *clients.ClientManager
}

// Game is the part of *game.GameManager the server uses.
type Game interface {
	handlers.Game
	RegisterHandler(handler game.EventHandler)
}

type NewAPIServerOptions struct {
	Addr string
	Game Game
	// ClientManager defaults to a new one.
	ClientManager *clients.ClientManager
}

// NewAPIServer creates a new http.Server for handling API requests and
// forwards the game's events to connected event clients.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	clientManager := opts.ClientManager
	if clientManager == nil {
		clientManager = clients.NewClientManager()
	}

	s := &APIServer{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(opts.Game, clientManager),
			ReadHeaderTimeout: 5 * time.Second,
		},
		clients: clientManager,
	}
	opts.Game.RegisterHandler(s.broadcastEvent)
	return s
}

// NewRouter returns the API routes.
func NewRouter(g handlers.Game, clientManager *clients.ClientManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(), middleware.NewCORSMiddleware())

	r.HandleFunc("/state", handlers.HandleGetState(g)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/scenes/{sceneID}", handlers.HandleSwitchScene(g)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/advance", handlers.HandleCommand(g, game.CommandAdvance)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/interaction", handlers.HandleCommand(g, game.CommandInteract)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/restart", handlers.HandleCommand(g, game.CommandRestart)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/events", handlers.HandleEvents(g, clientManager)).Methods(http.MethodGet)
	return r
}

// broadcastEvent runs on the game loop; Broadcast never blocks.
func (s *APIServer) broadcastEvent(event game.Event) {
	if len(s.clients.GetClients()) == 0 {
		return
	}
	msg, err := messages.NewMessage(0, messages.MessageTypeServerEvent, event)
	if err != nil {
		log.Error("Failed to build event message: %v", err)
		return
	}
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		log.Error("Failed to serialize event message: %v", err)
		return
	}
	if dropped := s.clients.Broadcast(b); dropped > 0 {
		log.Warn("Dropped %s event for %d slow clients", event.Type, dropped)
	}
}

// Start starts the APIServer and blocks until it is stopped.
func (s *APIServer) Start() {
	log.Info("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
