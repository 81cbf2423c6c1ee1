package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomMembership(t *testing.T) {
	room := &Room{
		ID: "12345678",
		Members: map[string]Member{
			"seller-1": {Name: "Alice", Role: RoleSeller},
		},
	}

	assert.True(t, room.HasMember("seller-1"))
	assert.False(t, room.HasMember("buyer-1"))

	assert.True(t, room.RoleTaken(RoleSeller))
	assert.False(t, room.RoleTaken(RoleBuyer))

	userID, member := room.MemberByRole(RoleSeller)
	assert.Equal(t, "seller-1", userID)
	assert.Equal(t, "Alice", member.Name)

	_, member = room.MemberByRole(RoleBuyer)
	assert.Nil(t, member)
}

func TestSortedMessagesOrder(t *testing.T) {
	// Map iteration order must not leak into the log: ordering comes from
	// each message's timestamp, with the ID as tiebreaker.
	room := &Room{
		Messages: map[string]*Message{
			"c": {ID: "c", Timestamp: 300, Type: MessageTypeText, Text: "third"},
			"a": {ID: "a", Timestamp: 100, Type: MessageTypeText, Text: "first"},
			"b": {ID: "b", Timestamp: 200, Type: MessageTypeText, Text: "second"},
		},
	}

	messages := room.SortedMessages()

	assert.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
	assert.Equal(t, "third", messages[2].Text)
}

func TestSortedMessagesTimestampTie(t *testing.T) {
	room := &Room{
		Messages: map[string]*Message{
			"2": {ID: "2", Timestamp: 100},
			"1": {ID: "1", Timestamp: 100},
		},
	}

	messages := room.SortedMessages()

	assert.Equal(t, "1", messages[0].ID)
	assert.Equal(t, "2", messages[1].ID)
}
