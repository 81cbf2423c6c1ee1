package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(connID, userID string) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		Send:   make(chan []byte, 16),
	}
}

func drain(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case frame := <-c.Send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func TestPublishToRoomReachesAllSubscribers(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")
	b := newTestClient("conn-b", "user-b")

	m.Subscribe("room-1", a)
	m.Subscribe("room-1", b)

	m.PublishToRoom("room-1", []byte("hello"))

	assert.Equal(t, [][]byte{[]byte("hello")}, drain(a))
	assert.Equal(t, [][]byte{[]byte("hello")}, drain(b))
}

func TestPublishToRoomExceptSkipsOriginator(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")
	b := newTestClient("conn-b", "user-b")

	m.Subscribe("room-1", a)
	m.Subscribe("room-1", b)

	m.PublishToRoomExcept("room-1", "conn-a", []byte("notice"))

	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")

	m.Subscribe("room-1", a)
	assert.Equal(t, 1, m.SubscriberCount("room-1"))

	m.Unsubscribe("room-1", a)
	assert.Equal(t, 0, m.SubscriberCount("room-1"))

	m.PublishToRoom("room-1", []byte("gone"))
	assert.Empty(t, drain(a))
}

func TestRoomsOf(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")

	m.Subscribe("room-1", a)
	m.Subscribe("room-2", a)

	rooms := m.RoomsOf(a)
	assert.ElementsMatch(t, []string{"room-1", "room-2"}, rooms)
}

func TestPublishEventEnvelope(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")
	m.Subscribe("room-1", a)

	m.PublishEvent("room-1", EventPaymentStatus, map[string]string{"status": "paid"})

	frames := drain(a)
	require.Len(t, frames, 1)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(frames[0], &msg))
	assert.Equal(t, EventPaymentStatus, msg.Type)
	assert.Equal(t, "room-1", msg.RoomID)
	assert.NotEmpty(t, msg.Timestamp)
}

func TestHandleClientMessagePing(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")

	m.HandleClientMessage(a, []byte(`{"type":"ping"}`))

	frames := drain(a)
	require.Len(t, frames, 1)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(frames[0], &msg))
	assert.Equal(t, EventPong, msg.Type)
}

func TestHandleClientMessageJoinAndLeave(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")
	b := newTestClient("conn-b", "user-b")

	m.HandleClientMessage(a, []byte(`{"type":"join-room","RoomID":"room-1"}`))
	assert.Equal(t, 1, m.SubscriberCount("room-1"))

	// Second join notifies the existing subscriber, not the newcomer.
	m.HandleClientMessage(b, []byte(`{"type":"join-room","RoomID":"room-1"}`))
	require.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))

	m.HandleClientMessage(b, []byte(`{"type":"leave-room","RoomID":"room-1"}`))
	assert.Equal(t, 1, m.SubscriberCount("room-1"))

	frames := drain(a)
	require.Len(t, frames, 1)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(frames[0], &msg))
	assert.Equal(t, EventUserLeft, msg.Type)
}

func TestHandleClientMessageMalformed(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")

	m.HandleClientMessage(a, []byte(`{not json`))

	frames := drain(a)
	require.Len(t, frames, 1)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(frames[0], &msg))
	assert.Equal(t, EventError, msg.Type)
}

func TestDisconnectCleanup(t *testing.T) {
	m := NewManager()
	a := newTestClient("conn-a", "user-a")
	b := newTestClient("conn-b", "user-b")

	m.Subscribe("room-1", a)
	m.Subscribe("room-1", b)
	m.Subscribe("room-2", a)

	m.DisconnectCleanup(a)

	assert.Empty(t, m.RoomsOf(a))
	assert.Equal(t, 1, m.SubscriberCount("room-1"))

	// The remaining subscriber hears the leave notice.
	frames := drain(b)
	require.Len(t, frames, 1)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(frames[0], &msg))
	assert.Equal(t, EventUserLeft, msg.Type)
	assert.Equal(t, "room-1", msg.RoomID)
}

func TestPublishToRoomDropsSlowSubscriber(t *testing.T) {
	m := NewManager()
	slow := &Client{ConnID: "conn-slow", UserID: "user-slow", Send: make(chan []byte, 1)}
	slow.Send <- []byte("backlog") // buffer full, next publish cannot deliver

	m.Subscribe("room-1", slow)

	m.PublishToRoom("room-1", []byte("overflow"))
	assert.Equal(t, 0, m.SubscriberCount("room-1"))

	// Eviction closed the channel exactly once: the backlog drains, then
	// the receive reports closed. A repeat publish is a no-op.
	m.PublishToRoom("room-1", []byte("again"))

	frame, ok := <-slow.Send
	assert.True(t, ok)
	assert.Equal(t, []byte("backlog"), frame)

	_, ok = <-slow.Send
	assert.False(t, ok)
}

func TestConcurrentPublishersEvictSafely(t *testing.T) {
	m := NewManager()

	// Every subscriber has a full buffer, so every publisher sees every
	// subscriber as slow at the same time.
	for i := 0; i < 100; i++ {
		client := &Client{
			ConnID: fmt.Sprintf("conn-%d", i),
			UserID: fmt.Sprintf("user-%d", i),
			Send:   make(chan []byte, 1),
		}
		client.Send <- []byte("backlog")
		m.Subscribe("room-1", client)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.PublishToRoom("room-1", []byte("payload"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, m.SubscriberCount("room-1"))
}

func TestUnregisterAfterEviction(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	client := &Client{ConnID: "conn-a", UserID: "user-a", Send: make(chan []byte, 1)}
	client.Send <- []byte("backlog")

	m.Register <- client
	m.Subscribe("room-1", client)

	m.PublishToRoom("room-1", []byte("overflow")) // evicts and closes
	assert.Equal(t, 0, m.SubscriberCount("room-1"))

	// The connection's own teardown path must stay a no-op for an already
	// dropped client. Registering a second client afterwards proves the
	// manager loop processed the unregister without panicking.
	m.Unregister <- client
	m.Register <- &Client{ConnID: "conn-b", UserID: "user-b", Send: make(chan []byte, 1)}
}
