package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/cardtable/pkg/cards"
	"github.com/cbodonnell/cardtable/pkg/messages"
)

// HandleCommand dispatches an inbound realtime message from an attached
// viewer to the corresponding room operation.
func (gm *GameManager) HandleCommand(ctx context.Context, roomCode string, viewerID string, msg *messages.Message) error {
	switch msg.Type {
	case messages.MessageTypeClientReady:
		ready := &messages.ClientReady{}
		if err := json.Unmarshal(msg.Payload, ready); err != nil {
			return fmt.Errorf("invalid ready payload: %v", err)
		}
		_, err := gm.SetReady(ctx, roomCode, viewerID, ready.IsReady)
		return err
	case messages.MessageTypeClientPlayCard:
		play := &messages.ClientPlayCard{}
		if err := json.Unmarshal(msg.Payload, play); err != nil {
			return fmt.Errorf("invalid play_card payload: %v", err)
		}
		card := cards.Card{Suit: cards.Suit(play.Suit), Rank: play.Rank}
		return gm.PlayCard(ctx, roomCode, viewerID, card)
	case messages.MessageTypeClientStartGame:
		return gm.StartGame(ctx, roomCode)
	case messages.MessageTypeClientLeave:
		return gm.LeaveRoom(ctx, roomCode, viewerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
