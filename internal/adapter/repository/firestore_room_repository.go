package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"savepro/internal/domain/entity"
	"savepro/internal/domain/repository"
	"savepro/pkg/errors"
)

type firestoreRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreRoomRepository(client *firestore.Client) repository.RoomRepository {
	return &firestoreRoomRepository{
		client: client,
	}
}

func (r *firestoreRoomRepository) Create(ctx context.Context, room *entity.Room) error {
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.client.Collection("chatRooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create room", err)
	}

	return nil
}

func (r *firestoreRoomRepository) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	doc, err := r.client.Collection("chatRooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Room", err)
		}
		return nil, errors.Internal("Failed to get room", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreRoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.client.Collection("chatRooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.Internal("Failed to check room code", err)
	}
	return true, nil
}

func (r *firestoreRoomRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*entity.Room, error) {
	// Members live in a map field, so membership cannot be expressed as a
	// Firestore predicate; fetch active rooms and filter in memory.
	query := r.client.Collection("chatRooms").
		Where("status", "==", entity.RoomStatusActive).
		OrderBy("updatedAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching rooms for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch rooms", err)
	}

	var rooms []*entity.Room
	for _, doc := range docs {
		var room entity.Room
		if err := doc.DataTo(&room); err != nil {
			log.Printf("Error parsing room data for user %s: %v", userID, err)
			continue // Skip bad data instead of failing
		}
		if room.HasMember(userID) {
			rooms = append(rooms, &room)
		}
	}

	return rooms, nil
}

func (r *firestoreRoomRepository) Update(ctx context.Context, room *entity.Room) error {
	room.UpdatedAt = time.Now()

	_, err := r.client.Collection("chatRooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to update room", err)
	}

	return nil
}
