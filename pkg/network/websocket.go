package network

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/messages"
	"nhooyr.io/websocket"
)

// CommandHandler dispatches an inbound message from an attached viewer.
// The returned error is reported back to that viewer only.
type CommandHandler func(ctx context.Context, roomCode string, viewerID string, msg *messages.Message) error

// WSGateway upgrades HTTP requests to websocket connections, attaches them
// to their room, and runs the per-connection read loop.
type WSGateway struct {
	connections    *ConnectionManager
	handler        CommandHandler
	originPatterns []string
}

type NewWSGatewayOptions struct {
	Connections    *ConnectionManager
	Handler        CommandHandler
	OriginPatterns []string
}

func NewWSGateway(opts NewWSGatewayOptions) *WSGateway {
	return &WSGateway{
		connections:    opts.Connections,
		handler:        opts.Handler,
		originPatterns: opts.OriginPatterns,
	}
}

// Serve upgrades the request and pumps inbound messages until the peer
// disconnects. Detaching emits a connection event for the disconnect path.
func (g *WSGateway) Serve(w http.ResponseWriter, r *http.Request, roomCode string, viewerID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	log.Debug("New WebSocket connection for viewer %s in room %s", viewerID, roomCode)

	g.connections.Attach(roomCode, viewerID, conn)
	defer func() {
		g.connections.Detach(roomCode, viewerID, conn)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				log.Error("Error reading WebSocket message from viewer %s: %v", viewerID, err)
			}
			log.Trace("Connection closed for viewer %s in room %s", viewerID, roomCode)
			return
		}

		msg := &messages.Message{}
		if err := json.Unmarshal(data, msg); err != nil {
			log.Warn("Failed to unmarshal message from viewer %s: %v", viewerID, err)
			g.sendError(roomCode, viewerID, "invalid message")
			continue
		}

		if err := g.handler(ctx, roomCode, viewerID, msg); err != nil {
			log.Debug("Command %s from viewer %s rejected: %v", msg.Type, viewerID, err)
			g.sendError(roomCode, viewerID, err.Error())
		}
	}
}

func (g *WSGateway) sendError(roomCode string, viewerID string, message string) {
	msg, err := messages.NewServerError(message)
	if err != nil {
		log.Error("Failed to build error message: %v", err)
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error("Failed to marshal error message: %v", err)
		return
	}
	if err := g.connections.Send(roomCode, viewerID, b); err != nil {
		log.Warn("Failed to deliver error to viewer %s: %v", viewerID, err)
	}
}
