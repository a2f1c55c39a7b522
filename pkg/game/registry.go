package game

import (
	"fmt"
	"math/rand"
	"sync"
)

const (
	// RoomCodeLength is the length of generated room codes.
	RoomCodeLength = 6
	// RoomCodeMaxRetries is the maximum number of attempts when generating
	// a code that does not collide with an active room.
	RoomCodeMaxRetries = 1024

	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Registry is the process-wide mapping from room code to live room.
// The registry lock covers only the map; each room serializes its own
// mutations so unrelated games never contend.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create generates a collision-free room code, registers an empty room under
// it, and returns the room.
func (reg *Registry) Create() (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.generateUniqueCode(RoomCodeMaxRetries)
	if err != nil {
		return nil, err
	}
	room := NewRoom(code)
	reg.rooms[code] = room
	return room, nil
}

// Get returns the live room with the given code, if any.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// Exists reports whether a live room with the given code is registered.
func (reg *Registry) Exists(code string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.rooms[code]
	return ok
}

// GetOrPut registers the room under its code unless one is already live,
// and returns whichever room is registered afterwards. Used when restoring
// a room from durable storage, where two callers may race on the same code.
func (reg *Registry) GetOrPut(room *Room) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if existing, ok := reg.rooms[room.Code()]; ok {
		return existing
	}
	reg.rooms[room.Code()] = room
	return room
}

// Remove unregisters the room with the given code.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Rooms returns a copy of all live rooms.
func (reg *Registry) Rooms() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// generateUniqueCode generates a room code not currently registered, with a
// maximum number of retries. Caller must hold the registry lock.
func (reg *Registry) generateUniqueCode(maxRetries int) (string, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		code := generateRoomCode()
		if _, ok := reg.rooms[code]; !ok {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxRetries)
}

func generateRoomCode() string {
	b := make([]byte, RoomCodeLength)
	for i := range b {
		b[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(b)
}
