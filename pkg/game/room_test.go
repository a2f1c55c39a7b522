package game

import (
	"fmt"
	"testing"

	"github.com/cbodonnell/cardtable/pkg/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyRoom(t *testing.T, playerCount int) (*Room, []string) {
	t.Helper()
	room := NewRoom("TEST01")
	ids := make([]string, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		id := fmt.Sprintf("player-%d", i+1)
		require.NoError(t, room.AddPlayer(id, fmt.Sprintf("Player %d", i+1)))
		require.NoError(t, room.SetReady(id, true))
		ids = append(ids, id)
	}
	return room, ids
}

func TestRoom_AddPlayer(t *testing.T) {
	room := NewRoom("TEST01")

	for i := 0; i < DefaultMaxPlayers; i++ {
		err := room.AddPlayer(fmt.Sprintf("player-%d", i+1), "name")
		assert.NoError(t, err)
	}

	err := room.AddPlayer("player-5", "late")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, room.Snapshot().Players, DefaultMaxPlayers)

	err = room.AddPlayer("player-1", "duplicate")
	assert.ErrorIs(t, err, ErrPlayerExists)
}

func TestRoom_AddPlayerAfterStart(t *testing.T) {
	room, _ := readyRoom(t, 2)
	require.NoError(t, room.StartGame())

	err := room.AddPlayer("player-3", "late")
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestRoom_StartGame(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) *Room
		wantErr error
	}{
		{
			name: "empty room",
			setup: func(t *testing.T) *Room {
				return NewRoom("TEST01")
			},
			wantErr: ErrNotEnoughPlayers,
		},
		{
			name: "single ready player",
			setup: func(t *testing.T) *Room {
				room, _ := readyRoom(t, 1)
				return room
			},
			wantErr: ErrNotEnoughPlayers,
		},
		{
			name: "player not ready",
			setup: func(t *testing.T) *Room {
				room, ids := readyRoom(t, 2)
				require.NoError(t, room.SetReady(ids[1], false))
				return room
			},
			wantErr: ErrPlayersNotReady,
		},
		{
			name: "two ready players",
			setup: func(t *testing.T) *Room {
				room, _ := readyRoom(t, 2)
				return room
			},
		},
		{
			name: "already started",
			setup: func(t *testing.T) *Room {
				room, _ := readyRoom(t, 2)
				require.NoError(t, room.StartGame())
				return room
			},
			wantErr: ErrGameStarted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := tt.setup(t)
			before := room.Snapshot()

			err := room.StartGame()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				after := room.Snapshot()
				assert.Equal(t, before.IsGameStarted, after.IsGameStarted)
				assert.Equal(t, before.CurrentTurn, after.CurrentTurn)
				return
			}

			assert.NoError(t, err)
			after := room.Snapshot()
			assert.True(t, after.IsGameStarted)
			assert.Equal(t, after.Players[0].ID, after.CurrentTurn)
		})
	}
}

func TestRoom_DealConservesDeck(t *testing.T) {
	for _, playerCount := range []int{2, 3, 4} {
		t.Run(fmt.Sprintf("%d players", playerCount), func(t *testing.T) {
			room, _ := readyRoom(t, playerCount)
			require.NoError(t, room.StartGame())

			snapshot := room.Snapshot()
			seen := make(map[cards.Card]bool)
			dealt := 0
			for _, player := range snapshot.Players {
				assert.Len(t, player.Hand, CardsPerPlayer)
				for _, card := range player.Hand {
					assert.False(t, seen[card], "card %s dealt twice", card)
					seen[card] = true
					dealt++
				}
			}
			assert.Equal(t, cards.DeckSize, dealt+snapshot.DeckRemaining)
		})
	}
}

func TestRoom_AdvanceTurn(t *testing.T) {
	room, ids := readyRoom(t, 4)
	require.NoError(t, room.StartGame())

	assert.True(t, room.IsPlayerTurn(ids[0]))
	for _, id := range ids[1:] {
		room.AdvanceTurn()
		assert.True(t, room.IsPlayerTurn(id))
	}

	// a full cycle returns to the first joiner
	room.AdvanceTurn()
	assert.True(t, room.IsPlayerTurn(ids[0]))
}

func TestRoom_AdvanceTurnBeforeStart(t *testing.T) {
	room, _ := readyRoom(t, 2)
	room.AdvanceTurn()
	assert.Equal(t, "", room.Snapshot().CurrentTurn)
}

func TestRoom_RemovePlayer(t *testing.T) {
	tests := []struct {
		name     string
		remove   []int
		wantTurn int
	}{
		{
			name:     "remove current turn holder",
			remove:   []int{0},
			wantTurn: 1,
		},
		{
			name:     "remove non-turn holder",
			remove:   []int{2},
			wantTurn: 0,
		},
		{
			name:     "remove last joiner holding the turn wraps around",
			remove:   []int{3},
			wantTurn: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, ids := readyRoom(t, 4)
			require.NoError(t, room.StartGame())
			if tt.remove[0] == 3 {
				// move the turn onto the last joiner first
				for i := 0; i < 3; i++ {
					room.AdvanceTurn()
				}
			}

			for _, index := range tt.remove {
				assert.True(t, room.RemovePlayer(ids[index]))
			}
			assert.True(t, room.IsPlayerTurn(ids[tt.wantTurn]))
		})
	}
}

func TestRoom_RemoveAllPlayers(t *testing.T) {
	room, ids := readyRoom(t, 2)
	require.NoError(t, room.StartGame())

	for _, id := range ids {
		assert.True(t, room.RemovePlayer(id))
	}
	assert.Equal(t, "", room.Snapshot().CurrentTurn)
	assert.False(t, room.RemovePlayer(ids[0]))
}

func TestRoom_PlayCard(t *testing.T) {
	room, ids := readyRoom(t, 2)
	require.NoError(t, room.StartGame())

	snapshot := room.Snapshot()
	firstHand := snapshot.Players[0].Hand
	secondHand := snapshot.Players[1].Hand

	// out of turn
	err := room.PlayCard(ids[1], secondHand[0])
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Len(t, room.Snapshot().Players[1].Hand, CardsPerPlayer)

	// unknown player
	err = room.PlayCard("ghost", firstHand[0])
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// card not held: the turn holder playing from the other hand. Both hands
	// partition the deck, so a card in one is never in the other.
	err = room.PlayCard(ids[0], secondHand[0])
	assert.ErrorIs(t, err, ErrCardNotInHand)
	assert.True(t, room.IsPlayerTurn(ids[0]))

	// valid play removes the card and advances the turn
	err = room.PlayCard(ids[0], firstHand[0])
	assert.NoError(t, err)
	assert.Len(t, room.Snapshot().Players[0].Hand, CardsPerPlayer-1)
	assert.True(t, room.IsPlayerTurn(ids[1]))
}

func TestRoom_PlayCardBeforeStart(t *testing.T) {
	room, ids := readyRoom(t, 2)
	err := room.PlayCard(ids[0], cards.Card{Suit: cards.SuitSpades, Rank: 1})
	assert.ErrorIs(t, err, ErrGameNotStarted)
}

func TestRoom_SnapshotSequence(t *testing.T) {
	room, ids := readyRoom(t, 2)
	before := room.Snapshot().Seq

	require.NoError(t, room.StartGame())
	started := room.Snapshot().Seq
	assert.Greater(t, started, before)

	require.NoError(t, room.PlayCard(ids[0], room.Snapshot().Players[0].Hand[0]))
	assert.Greater(t, room.Snapshot().Seq, started)

	// a room rebuilt after eviction keeps sequencing above its old snapshots
	restored := RestoreRoom("TEST01", []RestoredPlayer{{ID: ids[0], Name: "Player 1"}}, false, "")
	require.NoError(t, restored.SetReady(ids[0], true))
	assert.Greater(t, restored.Snapshot().Seq, started)
}

func TestRoom_SetReadyUnknownPlayer(t *testing.T) {
	room := NewRoom("TEST01")
	err := room.SetReady("ghost", true)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRestoreRoom(t *testing.T) {
	players := []RestoredPlayer{
		{ID: "alice", Name: "Alice", IsReady: true},
		{ID: "bob", Name: "Bob", IsReady: false},
	}
	room := RestoreRoom("TEST01", players, true, "bob")

	snapshot := room.Snapshot()
	assert.True(t, snapshot.IsGameStarted)
	assert.Equal(t, "bob", snapshot.CurrentTurn)
	require.Len(t, snapshot.Players, 2)
	assert.Equal(t, "alice", snapshot.Players[0].ID)
	assert.True(t, snapshot.Players[0].IsReady)
	assert.Empty(t, snapshot.Players[0].Hand)

	// a persisted turn pointer naming a departed player is dropped
	room = RestoreRoom("TEST01", players, true, "ghost")
	assert.Equal(t, "", room.Snapshot().CurrentTurn)
}
