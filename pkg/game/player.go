package game

import (
	"time"

	"github.com/cbodonnell/cardtable/pkg/cards"
)

// Player is one occupant of a room. Mutated only through Room's methods,
// which hold the room lock.
type Player struct {
	ID           string
	Name         string
	Hand         []cards.Card
	IsReady      bool
	LastActiveAt time.Time
}

func NewPlayer(id string, name string) *Player {
	return &Player{
		ID:           id,
		Name:         name,
		LastActiveAt: time.Now(),
	}
}

func (p *Player) addCard(card cards.Card) {
	p.Hand = append(p.Hand, card)
}

// removeCard removes the first matching card from the player's hand.
// Returns false if the player does not hold the card.
func (p *Player) removeCard(card cards.Card) bool {
	for i, held := range p.Hand {
		if held == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) touch() {
	p.LastActiveAt = time.Now()
}
