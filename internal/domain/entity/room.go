package entity

import (
	"sort"
	"time"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

const (
	RoomStatusActive    = "active"
	RoomStatusCompleted = "completed"
	RoomStatusCancelled = "cancelled"
	RoomStatusDispute   = "dispute"
)

// Member is a room participant snapshot keyed by user ID in Room.Members.
type Member struct {
	Name string `json:"name" firestore:"name"`
	Role string `json:"role" firestore:"role"`
}

// Room is the two-party transaction aggregate: membership, the full message
// log and the room lifecycle state live on a single document. JSON field
// names follow the mobile client contract (RoomID, users, ...).
type Room struct {
	ID             string              `json:"RoomID" firestore:"id"`
	Name           string              `json:"roomName" firestore:"roomName"`
	Members        map[string]Member   `json:"users" firestore:"members"`
	Messages       map[string]*Message `json:"messages" firestore:"messages"`
	Status         string              `json:"status" firestore:"status"`
	TrackingNumber string              `json:"trackingNumber,omitempty" firestore:"trackingNumber,omitempty"`
	CreatedAt      time.Time           `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time           `json:"updated_at" firestore:"updatedAt"`
}

func (r *Room) HasMember(userID string) bool {
	_, ok := r.Members[userID]
	return ok
}

// RoleTaken reports whether any member already holds the given role.
func (r *Room) RoleTaken(role string) bool {
	for _, m := range r.Members {
		if m.Role == role {
			return true
		}
	}
	return false
}

// MemberByRole returns the user ID and member holding the given role.
func (r *Room) MemberByRole(role string) (string, *Member) {
	for id, m := range r.Members {
		if m.Role == role {
			member := m
			return id, &member
		}
	}
	return "", nil
}

// SortedMessages returns the log in append order. Storage backends do not
// guarantee map iteration order, so ordering is reconstructed from each
// entry's timestamp with the ID as tie-breaker.
func (r *Room) SortedMessages() []*Message {
	messages := make([]*Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Timestamp != messages[j].Timestamp {
			return messages[i].Timestamp < messages[j].Timestamp
		}
		return messages[i].ID < messages[j].ID
	})
	return messages
}
