package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/cardtable/pkg/cards"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/messages"
	"github.com/cbodonnell/cardtable/pkg/repositories"
	"github.com/cbodonnell/cardtable/pkg/repositories/models"
	"github.com/google/uuid"
)

// Sink delivers payloads to viewer connections attached to a room.
// Implementations must isolate per-connection failures.
type Sink interface {
	// Viewers returns the ids of all viewers attached to a room.
	Viewers(roomCode string) []string
	// Send delivers a payload to one attached viewer.
	Send(roomCode string, viewerID string, payload []byte) error
}

// SaveRoomStateRequest asks the save worker to flush a room's durable fields.
// Seq orders requests for the same room; the worker never lets an older
// snapshot overwrite a newer one.
type SaveRoomStateRequest struct {
	Seq      uint64
	Snapshot *models.RoomSnapshot
}

// GameManager exposes the room command API and keeps the durable copy and
// attached viewers in sync with the in-memory rooms. The in-memory room is
// authoritative for live play; the durable copy is written one-way after
// each mutation and only read back on cold load.
type GameManager struct {
	registry     *Registry
	repository   repositories.Repository
	sink         Sink
	saveRoomChan chan<- SaveRoomStateRequest
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Registry     *Registry
	Repository   repositories.Repository
	Sink         Sink
	SaveRoomChan chan<- SaveRoomStateRequest
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	return &GameManager{
		registry:     opts.Registry,
		repository:   opts.Repository,
		sink:         opts.Sink,
		saveRoomChan: opts.SaveRoomChan,
	}
}

// CreateRoom creates and registers an empty room and returns its code.
func (gm *GameManager) CreateRoom(ctx context.Context) (string, error) {
	room, err := gm.registry.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	if err := gm.repository.CreateRoom(ctx, room.Code()); err != nil {
		gm.registry.Remove(room.Code())
		return "", fmt.Errorf("failed to persist room: %w", err)
	}
	log.Info("Room %s created", room.Code())
	return room.Code(), nil
}

// JoinRoom adds a new player to the room and returns the player's id.
func (gm *GameManager) JoinRoom(ctx context.Context, code string, name string) (string, error) {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return "", err
	}

	playerID := uuid.NewString()
	if err := room.AddPlayer(playerID, name); err != nil {
		return "", err
	}
	if err := gm.repository.UpsertPlayer(ctx, code, playerID, name, false); err != nil {
		// the join is reported as failed, so undo the roster change
		room.RemovePlayer(playerID)
		return "", fmt.Errorf("failed to persist player: %w", err)
	}

	log.Info("Player %s (%s) joined room %s", playerID, name, code)
	gm.afterMutation(room)
	return playerID, nil
}

// SetReady sets a player's ready flag and returns the player's updated view.
func (gm *GameManager) SetReady(ctx context.Context, code string, playerID string, ready bool) (*ProjectedState, error) {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := room.SetReady(playerID, ready); err != nil {
		return nil, err
	}
	snapshot := gm.afterMutation(room)
	return Project(snapshot, playerID), nil
}

// StartGame starts the game when every player is ready.
func (gm *GameManager) StartGame(ctx context.Context, code string) error {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return err
	}
	if err := room.StartGame(); err != nil {
		return err
	}
	log.Info("Game started in room %s", code)
	gm.afterMutation(room)
	return nil
}

// PlayCard plays a card from the player's hand if it is their turn.
func (gm *GameManager) PlayCard(ctx context.Context, code string, playerID string, card cards.Card) error {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return err
	}
	if err := room.PlayCard(playerID, card); err != nil {
		return err
	}
	log.Debug("Player %s played %s in room %s", playerID, card, code)
	gm.afterMutation(room)
	return nil
}

// LeaveRoom removes a player from the room and notifies the remaining
// occupants. Removing a player who is not present is a no-op.
func (gm *GameManager) LeaveRoom(ctx context.Context, code string, playerID string) error {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return err
	}
	if !room.RemovePlayer(playerID) {
		return nil
	}
	if err := gm.repository.DeletePlayer(ctx, code, playerID); err != nil {
		// the in-memory roster is authoritative; the durable copy catches
		// up on the next flush
		log.Error("Failed to delete player %s from room %s: %v", playerID, code, err)
	}
	log.Info("Player %s left room %s", playerID, code)
	gm.afterMutation(room)
	return nil
}

// ProjectedState returns the room state visible to the given viewer.
func (gm *GameManager) ProjectedState(ctx context.Context, code string, viewerID string) (*ProjectedState, error) {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return Project(room.Snapshot(), viewerID), nil
}

// SyncViewer delivers the current room state to a single attached viewer.
func (gm *GameManager) SyncViewer(ctx context.Context, code string, viewerID string) error {
	room, err := gm.resolveRoom(ctx, code)
	if err != nil {
		return err
	}
	payload, err := statePayload(room.Snapshot(), viewerID)
	if err != nil {
		return err
	}
	if err := gm.sink.Send(code, viewerID, payload); err != nil {
		return fmt.Errorf("failed to deliver state to viewer %s: %w", viewerID, err)
	}
	return nil
}

// resolveRoom returns the live room for a code, restoring it from durable
// storage when the process has no live copy yet.
func (gm *GameManager) resolveRoom(ctx context.Context, code string) (*Room, error) {
	if room, ok := gm.registry.Get(code); ok {
		return room, nil
	}

	snapshot, err := gm.repository.LoadRoomSnapshot(ctx, code)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %s: %w", code, err)
	}

	players := make([]RestoredPlayer, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		players = append(players, RestoredPlayer{
			ID:      p.ID,
			Name:    p.Name,
			IsReady: p.IsReady,
		})
	}
	room := RestoreRoom(code, players, snapshot.IsGameStarted, snapshot.CurrentTurn)
	log.Info("Room %s restored from storage with %d players", code, len(players))
	return gm.registry.GetOrPut(room), nil
}

// afterMutation flushes the room's durable fields and broadcasts fresh
// per-viewer projections. The snapshot is taken once so persistence and
// every delivery see the same state, and neither holds the room lock.
func (gm *GameManager) afterMutation(room *Room) Snapshot {
	snapshot := room.Snapshot()

	select {
	case gm.saveRoomChan <- SaveRoomStateRequest{Seq: snapshot.Seq, Snapshot: durableSnapshot(snapshot)}:
	default:
		log.Warn("Save queue full, dropping state flush for room %s", snapshot.Code)
	}

	gm.broadcast(snapshot)
	return snapshot
}

// broadcast delivers one projection per attached viewer. A failed delivery
// is logged and never aborts delivery to the remaining viewers.
func (gm *GameManager) broadcast(snapshot Snapshot) {
	if gm.sink == nil {
		return
	}
	for _, viewerID := range gm.sink.Viewers(snapshot.Code) {
		payload, err := statePayload(snapshot, viewerID)
		if err != nil {
			log.Error("Failed to encode state for viewer %s in room %s: %v", viewerID, snapshot.Code, err)
			continue
		}
		if err := gm.sink.Send(snapshot.Code, viewerID, payload); err != nil {
			log.Warn("Failed to deliver state to viewer %s in room %s: %v", viewerID, snapshot.Code, err)
		}
	}
}

func statePayload(snapshot Snapshot, viewerID string) ([]byte, error) {
	payload, err := json.Marshal(Project(snapshot, viewerID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal projected state: %v", err)
	}
	b, err := json.Marshal(&messages.Message{
		Type:    messages.MessageTypeServerGameState,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %v", err)
	}
	return b, nil
}

func durableSnapshot(snapshot Snapshot) *models.RoomSnapshot {
	durable := &models.RoomSnapshot{
		Code:          snapshot.Code,
		IsGameStarted: snapshot.IsGameStarted,
		CurrentTurn:   snapshot.CurrentTurn,
		Players:       make([]models.PlayerSnapshot, 0, len(snapshot.Players)),
	}
	for _, p := range snapshot.Players {
		durable.Players = append(durable.Players, models.PlayerSnapshot{
			ID:      p.ID,
			Name:    p.Name,
			IsReady: p.IsReady,
		})
	}
	return durable
}
