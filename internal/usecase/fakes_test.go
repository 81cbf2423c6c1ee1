package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"savepro/internal/domain/entity"
	"savepro/pkg/errors"
)

// In-memory repositories backing the use case tests. They mirror the
// Firestore adapters' contract: ID assignment on create, NOT_FOUND app
// errors, and timestamps maintained on write.

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*entity.Room)}
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.ID]; ok {
		return errors.Conflict("room already exists")
	}

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return room, nil
}

func (r *fakeRoomRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.rooms[id]
	return ok, nil
}

func (r *fakeRoomRepo) ListActiveByUserID(ctx context.Context, userID string) ([]*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []*entity.Room
	for _, room := range r.rooms {
		if room.Status == entity.RoomStatusActive && room.HasMember(userID) {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (r *fakeRoomRepo) Update(ctx context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.ID]; !ok {
		return errors.NotFound("Room", nil)
	}
	room.UpdatedAt = time.Now()
	r.rooms[room.ID] = room
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*entity.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*entity.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, errors.NotFound("Payment", nil)
	}
	return payment, nil
}

func (r *fakePaymentRepo) GetByRoomAndMessage(ctx context.Context, roomID, quotationMessageID string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, payment := range r.payments {
		if payment.RoomID == roomID && payment.QuotationMessageID == quotationMessageID {
			return payment, nil
		}
	}
	return nil, errors.NotFound("Payment", nil)
}

func (r *fakePaymentRepo) ListByRoom(ctx context.Context, roomID string) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var payments []*entity.Payment
	for _, payment := range r.payments {
		if payment.RoomID == roomID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (r *fakePaymentRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var payments []*entity.Payment
	for _, payment := range r.payments {
		if payment.IsParty(userID) {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.ID]; !ok {
		return errors.NotFound("Payment", nil)
	}
	payment.UpdatedAt = time.Now()
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[id]; !ok {
		return errors.NotFound("Payment", nil)
	}
	delete(r.payments, id)
	return nil
}
