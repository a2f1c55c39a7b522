package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	// ConnectionEventChannelSize is the size of the connection event channel.
	ConnectionEventChannelSize = 1024
	// DefaultSendTimeout bounds a single delivery so one broken connection
	// never blocks deliveries to the others.
	DefaultSendTimeout = 5 * time.Second
)

// Conn is the subset of a websocket connection the manager writes to.
type Conn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// ConnectionEventType represents the type of a connection event.
type ConnectionEventType int

const (
	ConnectionEventTypeAttach ConnectionEventType = iota
	ConnectionEventTypeDetach
)

// ConnectionEvent represents a viewer connection attaching to or detaching
// from a room.
type ConnectionEvent struct {
	RoomCode string
	ViewerID string
	Type     ConnectionEventType
}

// ConnectionManager tracks which viewer connections are attached to which
// room and delivers payloads to them.
type ConnectionManager struct {
	mu          sync.RWMutex
	rooms       map[string]map[string]Conn
	sendTimeout time.Duration
	eventChan   chan ConnectionEvent
}

type NewConnectionManagerOptions struct {
	SendTimeout time.Duration
}

func NewConnectionManager(opts NewConnectionManagerOptions) *ConnectionManager {
	sendTimeout := opts.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &ConnectionManager{
		rooms:       make(map[string]map[string]Conn),
		sendTimeout: sendTimeout,
		eventChan:   make(chan ConnectionEvent, ConnectionEventChannelSize),
	}
}

// EventChan returns a one-way channel for receiving connection events.
func (cm *ConnectionManager) EventChan() <-chan ConnectionEvent {
	return cm.eventChan
}

// Attach registers a viewer connection with a room. An existing connection
// for the same viewer is closed and replaced.
func (cm *ConnectionManager) Attach(roomCode string, viewerID string, conn Conn) {
	cm.mu.Lock()
	viewers, ok := cm.rooms[roomCode]
	if !ok {
		viewers = make(map[string]Conn)
		cm.rooms[roomCode] = viewers
	}
	previous := viewers[viewerID]
	viewers[viewerID] = conn
	cm.mu.Unlock()

	if previous != nil {
		_ = previous.Close(websocket.StatusPolicyViolation, "replaced by a new connection")
	}

	cm.eventChan <- ConnectionEvent{
		RoomCode: roomCode,
		ViewerID: viewerID,
		Type:     ConnectionEventTypeAttach,
	}
}

// Detach unregisters a viewer connection from a room. Detaching a connection
// that was already replaced is a no-op for the replacement.
func (cm *ConnectionManager) Detach(roomCode string, viewerID string, conn Conn) {
	cm.mu.Lock()
	viewers, ok := cm.rooms[roomCode]
	if ok {
		if current, exists := viewers[viewerID]; exists && (conn == nil || current == conn) {
			delete(viewers, viewerID)
			if len(viewers) == 0 {
				delete(cm.rooms, roomCode)
			}
			ok = true
		} else {
			ok = false
		}
	}
	cm.mu.Unlock()

	if !ok {
		return
	}

	cm.eventChan <- ConnectionEvent{
		RoomCode: roomCode,
		ViewerID: viewerID,
		Type:     ConnectionEventTypeDetach,
	}
}

// Viewers returns the ids of all viewers attached to a room.
func (cm *ConnectionManager) Viewers(roomCode string) []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	viewers := make([]string, 0, len(cm.rooms[roomCode]))
	for viewerID := range cm.rooms[roomCode] {
		viewers = append(viewers, viewerID)
	}
	return viewers
}

// Send delivers a payload to one attached viewer with a bounded timeout.
func (cm *ConnectionManager) Send(roomCode string, viewerID string, payload []byte) error {
	cm.mu.RLock()
	conn, ok := cm.rooms[roomCode][viewerID]
	cm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("viewer %s is not attached to room %s", viewerID, roomCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cm.sendTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("failed to write to connection: %v", err)
	}
	return nil
}
