package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/cardtable/pkg/game"
	"github.com/cbodonnell/cardtable/pkg/log"
	"github.com/cbodonnell/cardtable/pkg/network"
)

type RoomEvictionWorker struct {
	registry    *game.Registry
	connections *network.ConnectionManager
	roomTTL     time.Duration
	interval    time.Duration
}

type NewRoomEvictionWorkerOptions struct {
	Registry    *game.Registry
	Connections *network.ConnectionManager
	RoomTTL     time.Duration
	Interval    time.Duration
}

// NewRoomEvictionWorker creates a new RoomEvictionWorker. The worker
// periodically drops rooms that have no attached viewers and have seen no
// mutation within the TTL. The durable record is kept, so an evicted room
// can still be restored on its next reference.
func NewRoomEvictionWorker(opts NewRoomEvictionWorkerOptions) *RoomEvictionWorker {
	return &RoomEvictionWorker{
		registry:    opts.Registry,
		connections: opts.Connections,
		roomTTL:     opts.RoomTTL,
		interval:    opts.Interval,
	}
}

func (w *RoomEvictionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			w.evictIdleRooms(t)
		}
	}
}

func (w *RoomEvictionWorker) evictIdleRooms(now time.Time) {
	for _, room := range w.registry.Rooms() {
		if len(w.connections.Viewers(room.Code())) > 0 {
			continue
		}
		if now.Sub(room.LastActiveAt()) < w.roomTTL {
			continue
		}
		w.registry.Remove(room.Code())
		log.Info("Evicted idle room %s", room.Code())
	}
}
