package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"savepro/internal/domain/entity"
	"savepro/internal/domain/repository"
	"savepro/pkg/errors"
)

type firestorePaymentRepository struct {
	client *firestore.Client
}

func NewFirestorePaymentRepository(client *firestore.Client) repository.PaymentRepository {
	return &firestorePaymentRepository{
		client: client,
	}
}

func (r *firestorePaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := r.client.Collection("payments").Doc(payment.ID).Set(ctx, payment)
	if err != nil {
		return errors.Internal("Failed to create payment", err)
	}

	return nil
}

func (r *firestorePaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	doc, err := r.client.Collection("payments").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Payment", err)
		}
		return nil, errors.Internal("Failed to get payment", err)
	}

	var payment entity.Payment
	if err := doc.DataTo(&payment); err != nil {
		return nil, errors.Internal("Failed to parse payment data", err)
	}

	return &payment, nil
}

func (r *firestorePaymentRepository) GetByRoomAndMessage(ctx context.Context, roomID, quotationMessageID string) (*entity.Payment, error) {
	query := r.client.Collection("payments").
		Where("roomId", "==", roomID).
		Where("quotationMessageId", "==", quotationMessageID).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Payment", nil)
		}
		return nil, errors.Internal("Failed to query payment by quotation", err)
	}

	var payment entity.Payment
	if err := doc.DataTo(&payment); err != nil {
		return nil, errors.Internal("Failed to parse payment data", err)
	}

	return &payment, nil
}

func (r *firestorePaymentRepository) ListByRoom(ctx context.Context, roomID string) ([]*entity.Payment, error) {
	query := r.client.Collection("payments").
		Where("roomId", "==", roomID).
		OrderBy("createdAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching payments for room %s: %v", roomID, err)
		return nil, errors.Internal("Failed to fetch payments", err)
	}

	var payments []*entity.Payment
	for _, doc := range docs {
		var payment entity.Payment
		if err := doc.DataTo(&payment); err != nil {
			log.Printf("Error parsing payment data for room %s: %v", roomID, err)
			continue
		}
		payments = append(payments, &payment)
	}

	return payments, nil
}

func (r *firestorePaymentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error) {
	// Firestore cannot OR across fields in a single query; run one query per
	// role and merge.
	buyerDocs, err := r.client.Collection("payments").
		Where("buyer.userId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch buyer payments", err)
	}

	sellerDocs, err := r.client.Collection("payments").
		Where("seller.userId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch seller payments", err)
	}

	var payments []*entity.Payment
	for _, doc := range append(buyerDocs, sellerDocs...) {
		var payment entity.Payment
		if err := doc.DataTo(&payment); err != nil {
			log.Printf("Error parsing payment data for user %s: %v", userID, err)
			continue
		}
		payments = append(payments, &payment)
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	return payments, nil
}

func (r *firestorePaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	payment.UpdatedAt = time.Now()

	_, err := r.client.Collection("payments").Doc(payment.ID).Set(ctx, payment)
	if err != nil {
		return errors.Internal("Failed to update payment", err)
	}

	return nil
}

func (r *firestorePaymentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("payments").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete payment", err)
	}

	return nil
}
