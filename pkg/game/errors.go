package game

import "errors"

var (
	// ErrRoomNotFound is returned when no room with the given code exists.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPlayerNotFound is returned when the player is not in the room.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrRoomFull is returned when joining a room at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrPlayerExists is returned when a player id is already in the roster.
	ErrPlayerExists = errors.New("player already in room")
	// ErrGameStarted is returned for operations only valid before the game starts.
	ErrGameStarted = errors.New("game already started")
	// ErrGameNotStarted is returned for operations only valid after the game starts.
	ErrGameNotStarted = errors.New("game not started")
	// ErrNotEnoughPlayers is returned when starting a game with fewer than two players.
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrPlayersNotReady is returned when starting a game before every player is ready.
	ErrPlayersNotReady = errors.New("not all players are ready")
	// ErrNotYourTurn is returned when a player acts out of turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrCardNotInHand is returned when playing a card the player does not hold.
	ErrCardNotInHand = errors.New("card not in hand")
)
