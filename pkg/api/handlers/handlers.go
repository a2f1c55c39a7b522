package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cbodonnell/cardtable/pkg/game"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/gorilla/mux"
)

type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomResponse struct {
	PlayerID string `json:"playerId"`
}

func HandleCreateRoom(manager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := manager.CreateRoom(r.Context())
		if err != nil {
			log.Error("failed to create room: %v", err)
			http.Error(w, "Failed to create room", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, &CreateRoomResponse{RoomCode: code})
	}
}

func HandleJoinRoom(manager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := mux.Vars(r)["roomCode"]

		request := &JoinRoomRequest{}
		if err := json.NewDecoder(r.Body).Decode(request); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if request.PlayerName == "" {
			http.Error(w, "Player name is required", http.StatusBadRequest)
			return
		}

		playerID, err := manager.JoinRoom(r.Context(), roomCode, request.PlayerName)
		if err != nil {
			status, message := statusForError(err)
			if status == http.StatusInternalServerError {
				log.Error("failed to join room %s: %v", roomCode, err)
			}
			http.Error(w, message, status)
			return
		}

		writeJSON(w, http.StatusOK, &JoinRoomResponse{PlayerID: playerID})
	}
}

func HandleGetState(manager *game.GameManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := mux.Vars(r)["roomCode"]
		viewerID := r.URL.Query().Get("viewerId")

		state, err := manager.ProjectedState(r.Context(), roomCode, viewerID)
		if err != nil {
			status, message := statusForError(err)
			if status == http.StatusInternalServerError {
				log.Error("failed to get state for room %s: %v", roomCode, err)
			}
			http.Error(w, message, status)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

// statusForError maps domain errors onto HTTP statuses.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return http.StatusNotFound, "Room not found"
	case errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound, "Player not found"
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrPlayerExists),
		errors.Is(err, game.ErrGameStarted),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrPlayersNotReady),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrCardNotInHand):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
