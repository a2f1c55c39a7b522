package workers

import (
	"context"

	"github.com/cbodonnell/cardtable/pkg/game"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/network"
)

type ConnectionEventWorker struct {
	connectionEventChan <-chan network.ConnectionEvent
	manager             *game.GameManager
}

type NewConnectionEventWorkerOptions struct {
	ConnectionEventChan <-chan network.ConnectionEvent
	Manager             *game.GameManager
}

// NewConnectionEventWorker creates a new ConnectionEventWorker. The worker
// sends a freshly attached viewer the current room state, and treats a
// detach as the viewer leaving the room, which notifies the remaining
// occupants.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		connectionEventChan: opts.ConnectionEventChan,
		manager:             opts.Manager,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.connectionEventChan:
			switch event.Type {
			case network.ConnectionEventTypeAttach:
				if err := w.manager.SyncViewer(ctx, event.RoomCode, event.ViewerID); err != nil {
					log.Warn("Failed to sync viewer %s in room %s: %v", event.ViewerID, event.RoomCode, err)
				}
			case network.ConnectionEventTypeDetach:
				if err := w.manager.LeaveRoom(ctx, event.RoomCode, event.ViewerID); err != nil {
					log.Warn("Failed to remove viewer %s from room %s: %v", event.ViewerID, event.RoomCode, err)
				}
			default:
				log.Error("Unknown connection event type: %v", event.Type)
			}
		}
	}
}
