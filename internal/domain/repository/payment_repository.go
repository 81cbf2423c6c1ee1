package repository

import (
	"context"

	"savepro/internal/domain/entity"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByRoomAndMessage(ctx context.Context, roomID, quotationMessageID string) (*entity.Payment, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id string) error
}
