package messages

import "encoding/json"

// Message types
const (
	MessageTypeClientReady     = "ready"
	MessageTypeClientPlayCard  = "play_card"
	MessageTypeClientStartGame = "start_game"
	MessageTypeClientLeave     = "leave"
	MessageTypeServerGameState = "game_state"
	MessageTypeServerError     = "error"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClientReady is sent by a client to toggle their ready flag.
type ClientReady struct {
	IsReady bool `json:"isReady"`
}

// ClientPlayCard is sent by a client to play a card from their hand.
type ClientPlayCard struct {
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

// ServerError is sent to a single client when their command was rejected.
type ServerError struct {
	Message string `json:"message"`
}

// NewServerError builds an error message envelope.
func NewServerError(message string) (*Message, error) {
	payload, err := json.Marshal(&ServerError{Message: message})
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    MessageTypeServerError,
		Payload: payload,
	}, nil
}
