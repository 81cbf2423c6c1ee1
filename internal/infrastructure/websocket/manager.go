package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one WebSocket connection. A user may hold several
// connections; each gets its own ConnID and room subscription set.
type Client struct {
	ConnID string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	// closed is guarded by the owning Manager's mutex. Send is only ever
	// closed with the write lock held and this flag unset, so concurrent
	// publishers can neither double-close nor send on a closed channel.
	closed bool
}

// Manager is the realtime broadcaster: a registry of connections plus
// per-room subscriber sets. Publish is fire-and-forget; a subscriber whose
// send buffer is full is dropped and must re-fetch state on reconnect.
type Manager struct {
	clients     map[string]*Client
	roomClients map[string]map[string]*Client
	Register    chan *Client
	Unregister  chan *Client
	mutex       sync.RWMutex
}

// NewManager creates a new WebSocket connection manager
func NewManager() *Manager {
	return &Manager{
		clients:     make(map[string]*Client),
		roomClients: make(map[string]map[string]*Client),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ConnID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: conn=%s user=%s", client.ConnID, client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				m.dropLocked(client)
				m.mutex.Unlock()
				log.Printf("Client unregistered: conn=%s user=%s", client.ConnID, client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// dropLocked removes a connection from every registry and closes its Send
// channel. Idempotent; callers must hold m.mutex for writing. This is the
// only place Send is ever closed.
func (m *Manager) dropLocked(client *Client) {
	delete(m.clients, client.ConnID)
	for roomID, subs := range m.roomClients {
		if _, subscribed := subs[client.ConnID]; subscribed {
			delete(subs, client.ConnID)
			if len(subs) == 0 {
				delete(m.roomClients, roomID)
			}
		}
	}
	if !client.closed {
		client.closed = true
		close(client.Send)
	}
}

// Subscribe adds a connection to a room's subscriber set.
func (m *Manager) Subscribe(roomID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	subs, ok := m.roomClients[roomID]
	if !ok {
		subs = make(map[string]*Client)
		m.roomClients[roomID] = subs
	}
	subs[client.ConnID] = client
}

// Unsubscribe removes a connection from a room's subscriber set.
func (m *Manager) Unsubscribe(roomID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if subs, ok := m.roomClients[roomID]; ok {
		delete(subs, client.ConnID)
		if len(subs) == 0 {
			delete(m.roomClients, roomID)
		}
	}
}

// RoomsOf returns the room IDs a connection is currently subscribed to.
func (m *Manager) RoomsOf(client *Client) []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var rooms []string
	for roomID, subs := range m.roomClients {
		if _, ok := subs[client.ConnID]; ok {
			rooms = append(rooms, roomID)
		}
	}
	return rooms
}

// PublishToRoom mirrors a payload to every current subscriber of a room,
// including the originator. Slow subscribers are disconnected rather than
// blocking the publish.
//
// Sends run under the read lock and the close under the write lock, so a
// publisher can never race another publisher's eviction of the same
// subscriber: any client visible in the subscriber map still has an open
// Send channel.
func (m *Manager) PublishToRoom(roomID string, payload []byte) {
	var slow []*Client

	m.mutex.RLock()
	for _, client := range m.roomClients[roomID] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	if len(slow) == 0 {
		return
	}

	m.mutex.Lock()
	for _, client := range slow {
		m.dropLocked(client)
	}
	m.mutex.Unlock()
}

// PublishToRoomExcept mirrors a payload to every subscriber except one
// connection. Used for join/leave notices where the actor already knows.
func (m *Manager) PublishToRoomExcept(roomID, exceptConnID string, payload []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for connID, client := range m.roomClients[roomID] {
		if connID == exceptConnID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// SubscriberCount returns the number of connections subscribed to a room.
func (m *Manager) SubscriberCount(roomID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.roomClients[roomID])
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.DisconnectCleanup(c)
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
