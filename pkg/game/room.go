package game

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/cardtable/pkg/cards"
)

// mutationSeq orders room mutations process-wide, so a room restored after
// eviction keeps producing higher sequence numbers than before.
var mutationSeq atomic.Uint64

const (
	// DefaultMaxPlayers is the default room capacity.
	DefaultMaxPlayers = 4
	// MinPlayersToStart is the minimum roster size for a game to start.
	MinPlayersToStart = 2
	// CardsPerPlayer is the number of cards dealt to each player.
	CardsPerPlayer = 13
)

// Room is a bounded, named game session: an insertion-ordered roster of
// players, a deck, and turn state. All methods serialize on the room's own
// lock, so at most one mutation is in progress per room at a time.
type Room struct {
	mu          sync.Mutex
	code        string
	maxPlayers  int
	players     map[string]*Player
	order       []string
	deck        *cards.Deck
	gameStarted bool
	currentTurn string
	seq         uint64
	createdAt   time.Time
	lastActive  time.Time
}

func NewRoom(code string) *Room {
	now := time.Now()
	return &Room{
		code:       code,
		maxPlayers: DefaultMaxPlayers,
		players:    make(map[string]*Player),
		deck:       cards.NewDeck(),
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) Code() string {
	return r.code
}

// touch advances the room's mutation sequence and activity time.
// Caller must hold the room lock.
func (r *Room) touch() {
	r.seq = mutationSeq.Add(1)
	r.lastActive = time.Now()
}

// LastActiveAt returns the time of the room's most recent mutation.
func (r *Room) LastActiveAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// AddPlayer adds a player to the roster. Valid only before the game starts.
func (r *Room) AddPlayer(id string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gameStarted {
		return ErrGameStarted
	}
	if len(r.players) >= r.maxPlayers {
		return ErrRoomFull
	}
	if _, exists := r.players[id]; exists {
		return ErrPlayerExists
	}

	r.players[id] = NewPlayer(id, name)
	r.order = append(r.order, id)
	r.touch()
	return nil
}

// RemovePlayer removes a player from the roster. Returns false if the player
// was not present. If the removed player held the turn, the turn passes to
// the next remaining player in join order, or clears when the room empties.
func (r *Room) RemovePlayer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[id]; !exists {
		return false
	}

	index := r.rosterIndex(id)
	delete(r.players, id)
	r.order = append(r.order[:index], r.order[index+1:]...)
	r.touch()

	if r.currentTurn != id {
		return true
	}
	if len(r.order) == 0 {
		r.currentTurn = ""
		return true
	}
	// the departed player's slot now holds the next player in join order
	r.currentTurn = r.order[index%len(r.order)]
	return true
}

// SetReady sets a player's ready flag.
func (r *Room) SetReady(id string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.players[id]
	if !exists {
		return ErrPlayerNotFound
	}
	player.IsReady = ready
	player.touch()
	r.touch()
	return nil
}

// StartGame transitions the room from waiting to started: the deck is reset
// and shuffled, each player is dealt their cards, and the turn goes to the
// first player in join order. Fails without state change if the game already
// started, fewer than MinPlayersToStart players are present, or any player
// is not ready.
func (r *Room) StartGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gameStarted {
		return ErrGameStarted
	}
	if len(r.players) < MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	for _, player := range r.players {
		if !player.IsReady {
			return ErrPlayersNotReady
		}
	}

	r.deck.Reset()
	r.deck.Shuffle()
	if err := r.deal(); err != nil {
		return err
	}

	r.gameStarted = true
	r.currentTurn = r.order[0]
	r.touch()
	return nil
}

// deal distributes CardsPerPlayer cards to each player round-robin: one card
// per player per pass, in join order. Caller must hold the room lock.
func (r *Room) deal() error {
	for round := 0; round < CardsPerPlayer; round++ {
		for _, id := range r.order {
			card, err := r.deck.Draw()
			if err != nil {
				return fmt.Errorf("failed to deal card: %w", err)
			}
			r.players[id].addCard(card)
		}
	}
	return nil
}

// AdvanceTurn passes the turn to the next player in join order, cyclically.
// No-op when the game has not started or the roster is empty.
func (r *Room) AdvanceTurn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceTurn()
	r.touch()
}

func (r *Room) advanceTurn() {
	if !r.gameStarted || len(r.order) == 0 {
		return
	}
	index := r.rosterIndex(r.currentTurn)
	if index < 0 {
		index = 0
	}
	r.currentTurn = r.order[(index+1)%len(r.order)]
}

// IsPlayerTurn reports whether it is the given player's turn.
func (r *Room) IsPlayerTurn(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentTurn == id
}

// PlayCard removes a card from the player's hand and advances the turn.
// Rejected when the game has not started, it is not the player's turn, or
// the player does not hold the card. Trick resolution is not modeled.
func (r *Room) PlayCard(id string, card cards.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gameStarted {
		return ErrGameNotStarted
	}
	player, exists := r.players[id]
	if !exists {
		return ErrPlayerNotFound
	}
	if r.currentTurn != id {
		return ErrNotYourTurn
	}
	if !player.removeCard(card) {
		return ErrCardNotInHand
	}
	player.touch()
	r.advanceTurn()
	r.touch()
	return nil
}

// rosterIndex returns the position of a player id in join order, or -1.
// Caller must hold the room lock.
func (r *Room) rosterIndex(id string) int {
	for i, memberID := range r.order {
		if memberID == id {
			return i
		}
	}
	return -1
}

// PlayerSnapshot is a copy of one player's state at snapshot time.
type PlayerSnapshot struct {
	ID      string
	Name    string
	IsReady bool
	Hand    []cards.Card
}

// Snapshot is a consistent copy of a room's state, taken under the room lock.
// Projections and persistence work from snapshots so they never race with
// mutations or hold the lock across I/O.
type Snapshot struct {
	Code          string
	MaxPlayers    int
	IsGameStarted bool
	CurrentTurn   string
	Players       []PlayerSnapshot
	DeckRemaining int
	// Seq orders snapshots of the same room: a snapshot with a lower
	// sequence number is older than one with a higher number.
	Seq       uint64
	CreatedAt time.Time
}

// Snapshot returns a copy of the room's current state in join order.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := Snapshot{
		Code:          r.code,
		MaxPlayers:    r.maxPlayers,
		IsGameStarted: r.gameStarted,
		CurrentTurn:   r.currentTurn,
		Players:       make([]PlayerSnapshot, 0, len(r.order)),
		DeckRemaining: r.deck.Remaining(),
		Seq:           r.seq,
		CreatedAt:     r.createdAt,
	}
	for _, id := range r.order {
		player := r.players[id]
		hand := make([]cards.Card, len(player.Hand))
		copy(hand, player.Hand)
		snapshot.Players = append(snapshot.Players, PlayerSnapshot{
			ID:      player.ID,
			Name:    player.Name,
			IsReady: player.IsReady,
			Hand:    hand,
		})
	}
	return snapshot
}

// RestoredPlayer describes a roster entry when rebuilding a room from
// durable storage.
type RestoredPlayer struct {
	ID      string
	Name    string
	IsReady bool
}

// RestoreRoom rebuilds a room from a durable snapshot. Hands are not
// persisted, so a restored started room has empty hands; it exists so the
// roster and flags survive a cold start.
func RestoreRoom(code string, players []RestoredPlayer, gameStarted bool, currentTurn string) *Room {
	room := NewRoom(code)
	for _, p := range players {
		room.players[p.ID] = NewPlayer(p.ID, p.Name)
		room.players[p.ID].IsReady = p.IsReady
		room.order = append(room.order, p.ID)
	}
	room.gameStarted = gameStarted
	if _, exists := room.players[currentTurn]; exists {
		room.currentTurn = currentTurn
	}
	return room
}
