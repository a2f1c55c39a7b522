package models

// RoomSnapshot holds the durable fields of a room: its lifecycle flags and
// roster. Hands are never persisted.
type RoomSnapshot struct {
	Code          string
	IsGameStarted bool
	CurrentTurn   string
	Players       []PlayerSnapshot
}

// PlayerSnapshot holds the durable fields of a room occupant.
type PlayerSnapshot struct {
	ID      string
	Name    string
	IsReady bool
}
