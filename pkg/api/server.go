package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/cardtable/pkg/api/handlers"
	"github.com/cbodonnell/cardtable/pkg/game"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/network"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
}

type NewAPIServerOptions struct {
	Port        int
	CORSOrigins []string
	Manager     *game.GameManager
	Gateway     *network.WSGateway
}

// NewAPIServer creates a new http.Server serving the room API and the
// realtime websocket endpoint.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	router := mux.NewRouter()
	router.Use(corsMiddleware(opts.CORSOrigins))

	router.HandleFunc("/health", handlers.HandleHealth()).Methods(http.MethodGet)
	router.HandleFunc("/rooms", handlers.HandleCreateRoom(opts.Manager)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/rooms/{roomCode}/join", handlers.HandleJoinRoom(opts.Manager)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/rooms/{roomCode}/state", handlers.HandleGetState(opts.Manager)).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/ws/{roomCode}/{playerID}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		roomCode := vars["roomCode"]
		playerID := vars["playerID"]
		// resolve before upgrading so an unknown room is a plain 404
		if _, err := opts.Manager.ProjectedState(r.Context(), roomCode, playerID); err != nil {
			if errors.Is(err, game.ErrRoomNotFound) {
				http.Error(w, "Room not found", http.StatusNotFound)
				return
			}
			log.Error("failed to resolve room %s: %v", roomCode, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		opts.Gateway.Serve(w, r, roomCode, playerID)
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return &APIServer{
		server: server,
	}
}

// Start starts the APIServer
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

// corsMiddleware sets CORS headers for the configured origins. An allowed
// origin of "*" matches any origin.
func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowed := make(map[string]bool, len(origins))
	allowAny := false
	for _, origin := range origins {
		if origin == "*" {
			allowAny = true
		}
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAny {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
