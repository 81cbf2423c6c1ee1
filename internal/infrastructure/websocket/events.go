package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// Event types exchanged with room subscribers. Names match the mobile
// client's socket contract.
const (
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"
	EventDeleteMessage  = "delete-message"
	EventMessageDeleted = "message-deleted"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventPaymentStatus  = "payment-status-changed"
	EventPing           = "ping"
	EventPong           = "pong"
	EventError          = "error"
)

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type      string      `json:"type"`
	RoomID    string      `json:"RoomID,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HandleClientMessage processes one incoming frame from a connection.
func (m *Manager) HandleClientMessage(client *Client, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("WebSocket: malformed frame from conn %s: %v", client.ConnID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch msg.Type {
	case EventPing:
		m.sendToClient(client, WSMessage{
			Type:      EventPong,
			Data:      map[string]string{"status": "alive"},
			Timestamp: time.Now().Format(time.RFC3339),
		})

	case EventJoinRoom:
		m.handleJoinRoom(client, msg)

	case EventLeaveRoom:
		m.handleLeaveRoom(client, msg)

	case EventSendMessage:
		m.handleSendMessage(client, msg)

	case EventDeleteMessage:
		m.handleDeleteMessage(client, msg)

	default:
		log.Printf("WebSocket: unknown frame type '%s' from conn %s", msg.Type, client.ConnID)
		m.sendErrorToClient(client, "Unknown message type")
	}
}

func (m *Manager) handleJoinRoom(client *Client, msg WSMessage) {
	if msg.RoomID == "" {
		m.sendErrorToClient(client, "RoomID is required")
		return
	}

	m.Subscribe(msg.RoomID, client)
	log.Printf("WebSocket: conn %s (user %s) joined room %s", client.ConnID, client.UserID, msg.RoomID)

	m.PublishToRoomExcept(msg.RoomID, client.ConnID, mustMarshal(WSMessage{
		Type:      EventUserJoined,
		RoomID:    msg.RoomID,
		Data:      map[string]string{"userId": client.UserID, "connectionId": client.ConnID},
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

func (m *Manager) handleLeaveRoom(client *Client, msg WSMessage) {
	if msg.RoomID == "" {
		m.sendErrorToClient(client, "RoomID is required")
		return
	}

	m.Unsubscribe(msg.RoomID, client)
	log.Printf("WebSocket: conn %s (user %s) left room %s", client.ConnID, client.UserID, msg.RoomID)

	m.PublishToRoom(msg.RoomID, mustMarshal(WSMessage{
		Type:      EventUserLeft,
		RoomID:    msg.RoomID,
		Data:      map[string]string{"userId": client.UserID, "connectionId": client.ConnID},
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// handleSendMessage mirrors an already-persisted message to every subscriber
// of the room, the sender included, so optimistic client state converges.
// Persistence happens over the REST layer; the socket is a mirror, not a
// write path.
func (m *Manager) handleSendMessage(client *Client, msg WSMessage) {
	if msg.RoomID == "" || msg.Data == nil {
		m.sendErrorToClient(client, "RoomID and message payload are required")
		return
	}

	m.PublishToRoom(msg.RoomID, mustMarshal(WSMessage{
		Type:      EventReceiveMessage,
		RoomID:    msg.RoomID,
		Data:      msg.Data,
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

func (m *Manager) handleDeleteMessage(client *Client, msg WSMessage) {
	if msg.RoomID == "" {
		m.sendErrorToClient(client, "RoomID is required")
		return
	}

	m.PublishToRoom(msg.RoomID, mustMarshal(WSMessage{
		Type:      EventMessageDeleted,
		RoomID:    msg.RoomID,
		Data:      msg.Data,
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// DisconnectCleanup broadcasts a leave notice to every room the connection
// was subscribed to. Called from ReadPump before unregistering.
func (m *Manager) DisconnectCleanup(client *Client) {
	for _, roomID := range m.RoomsOf(client) {
		m.Unsubscribe(roomID, client)
		m.PublishToRoom(roomID, mustMarshal(WSMessage{
			Type:      EventUserLeft,
			RoomID:    roomID,
			Data:      map[string]string{"userId": client.UserID, "connectionId": client.ConnID},
			Timestamp: time.Now().Format(time.RFC3339),
		}))
	}
}

// PublishEvent marshals and mirrors a committed mutation to a room channel.
// Failures are logged and never surfaced to the mutating caller.
func (m *Manager) PublishEvent(roomID, eventType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      eventType,
		RoomID:    roomID,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("WebSocket: failed to marshal %s event for room %s: %v", eventType, roomID, err)
		return
	}

	m.PublishToRoom(roomID, payload)
}

func (m *Manager) sendToClient(client *Client, msg WSMessage) {
	payload := mustMarshal(msg)

	// Same discipline as PublishToRoom: the read lock keeps an eviction
	// from closing Send mid-send.
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if client.closed {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

func (m *Manager) sendErrorToClient(client *Client, message string) {
	m.sendToClient(client, WSMessage{
		Type:      EventError,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func mustMarshal(msg WSMessage) []byte {
	payload, _ := json.Marshal(msg)
	return payload
}
