package repositories

import (
	"context"

	"github.com/cbodonnell/cardtable/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	// CreateRoom records a new room with the given code.
	CreateRoom(ctx context.Context, code string) error
	// UpsertPlayer records a player's membership in a room and their ready flag.
	UpsertPlayer(ctx context.Context, roomCode string, playerID string, name string, ready bool) error
	// DeletePlayer removes a player's record from a room.
	DeletePlayer(ctx context.Context, roomCode string, playerID string) error
	// SaveRoomState writes a room's authoritative fields and roster flags.
	SaveRoomState(ctx context.Context, snapshot *models.RoomSnapshot) error
	// LoadRoomSnapshot reads a room's durable fields and roster.
	// Returns ErrNotFound if no room with the given code exists.
	LoadRoomSnapshot(ctx context.Context, code string) (*models.RoomSnapshot, error)
}
