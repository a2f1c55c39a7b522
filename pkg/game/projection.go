package game

import "github.com/cbodonnell/cardtable/pkg/cards"

// PlayerInfo is the roster entry every viewer sees: identity, readiness, and
// hand size, never the cards themselves.
type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsReady  bool   `json:"isReady"`
	HandSize int    `json:"handSize"`
}

// ProjectedState is the subset of a room's state visible to one viewer.
// Hand holds the viewer's own cards and is only populated when the viewer
// is an occupant of the room.
type ProjectedState struct {
	RoomCode            string       `json:"roomCode"`
	Players             []PlayerInfo `json:"players"`
	CurrentTurnPlayerID string       `json:"currentTurnPlayerId,omitempty"`
	IsGameStarted       bool         `json:"isGameStarted"`
	Hand                []cards.Card `json:"hand,omitempty"`
}

// Project derives the state visible to viewerID from a room snapshot.
// Other players' hands are reduced to their size.
func Project(snapshot Snapshot, viewerID string) *ProjectedState {
	state := &ProjectedState{
		RoomCode:            snapshot.Code,
		Players:             make([]PlayerInfo, 0, len(snapshot.Players)),
		CurrentTurnPlayerID: snapshot.CurrentTurn,
		IsGameStarted:       snapshot.IsGameStarted,
	}
	for _, player := range snapshot.Players {
		state.Players = append(state.Players, PlayerInfo{
			ID:       player.ID,
			Name:     player.Name,
			IsReady:  player.IsReady,
			HandSize: len(player.Hand),
		})
		if player.ID == viewerID {
			hand := make([]cards.Card, len(player.Hand))
			copy(hand, player.Hand)
			state.Hand = hand
		}
	}
	return state
}
