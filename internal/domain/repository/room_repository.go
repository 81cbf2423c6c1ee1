package repository

import (
	"context"

	"savepro/internal/domain/entity"
)

// RoomRepository persists the room aggregate (membership + message log) as a
// single record. Callers serialize mutations per room before Update.
type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListActiveByUserID(ctx context.Context, userID string) ([]*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
}
