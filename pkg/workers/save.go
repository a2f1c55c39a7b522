package workers

import (
	"context"

	"github.com/cbodonnell/cardtable/pkg/game"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/repositories"
)

type RoomSaveWorker struct {
	repository   repositories.Repository
	saveRoomChan <-chan game.SaveRoomStateRequest
	lastFlushed  map[string]uint64
}

type NewRoomSaveWorkerOptions struct {
	Repository   repositories.Repository
	SaveRoomChan <-chan game.SaveRoomStateRequest
}

// NewRoomSaveWorker creates a new RoomSaveWorker. The worker flushes room
// state to the repository after each mutation, off the room lock. Failures
// are logged, never propagated: the in-memory room stays authoritative and
// the next flush carries the current state.
func NewRoomSaveWorker(opts NewRoomSaveWorkerOptions) *RoomSaveWorker {
	return &RoomSaveWorker{
		repository:   opts.Repository,
		saveRoomChan: opts.SaveRoomChan,
		lastFlushed:  make(map[string]uint64),
	}
}

func (w *RoomSaveWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest := <-w.saveRoomChan:
			// concurrent mutations can enqueue out of order; never let an
			// older snapshot overwrite a newer one
			if saveRequest.Seq < w.lastFlushed[saveRequest.Snapshot.Code] {
				log.Debug("Skipping stale state flush for room %s", saveRequest.Snapshot.Code)
				continue
			}
			w.lastFlushed[saveRequest.Snapshot.Code] = saveRequest.Seq
			if err := w.repository.SaveRoomState(ctx, saveRequest.Snapshot); err != nil {
				log.Error("Failed to save state for room %s: %v", saveRequest.Snapshot.Code, err)
			}
		}
	}
}
