package cards

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
)

// Suit represents one of the four card suits.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists all suits in the order they are enumerated when a deck is reset.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

const (
	// MinRank is the lowest card rank (Ace).
	MinRank = 1
	// MaxRank is the highest card rank (King).
	MaxRank = 13
	// DeckSize is the number of cards in a full deck.
	DeckSize = 4 * MaxRank
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
var ErrEmptyDeck = errors.New("no cards left in deck")

// Card is an immutable suit and rank pair. Rank runs 1 (Ace) through 13 (King).
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// Name returns the display name for the card's rank.
func (c Card) Name() string {
	switch c.Rank {
	case 1:
		return "Ace"
	case 11:
		return "Jack"
	case 12:
		return "Queen"
	case 13:
		return "King"
	default:
		return strconv.Itoa(c.Rank)
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Name(), c.Suit)
}

// Deck is an ordered sequence of cards. The zero value is an empty deck;
// use NewDeck for a full one.
type Deck struct {
	cards []Card
}

// NewDeck creates a full 52-card deck in reset order.
func NewDeck() *Deck {
	d := &Deck{}
	d.Reset()
	return d
}

// Reset repopulates the deck with one card per suit and rank pair,
// discarding whatever it currently holds.
func (d *Deck) Reset() {
	d.cards = make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := MinRank; rank <= MaxRank; rank++ {
			d.cards = append(d.cards, Card{Suit: suit, Rank: rank})
		}
	}
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card of the deck.
// It returns ErrEmptyDeck when the deck is exhausted.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
