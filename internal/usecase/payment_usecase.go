package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"savepro/internal/domain/entity"
	"savepro/internal/domain/repository"
	"savepro/internal/domain/service"
	"savepro/internal/infrastructure/lock"
	ws "savepro/internal/infrastructure/websocket"
	"savepro/pkg/errors"
	"savepro/pkg/logger"
)

type PaymentUseCase struct {
	paymentRepo  repository.PaymentRepository
	roomRepo     repository.RoomRepository
	wsManager    *ws.Manager
	roomLocks    *lock.KeyedMutex
	paymentLocks *lock.KeyedMutex
	promptPayID  string
}

func NewPaymentUseCase(
	paymentRepo repository.PaymentRepository,
	roomRepo repository.RoomRepository,
	wsManager *ws.Manager,
	roomLocks *lock.KeyedMutex,
	promptPayID string,
) *PaymentUseCase {
	return &PaymentUseCase{
		paymentRepo:  paymentRepo,
		roomRepo:     roomRepo,
		wsManager:    wsManager,
		roomLocks:    roomLocks,
		paymentLocks: lock.NewKeyedMutex(),
		promptPayID:  promptPayID,
	}
}

// PaymentStatusEvent is the broadcast payload for ledger changes.
type PaymentStatusEvent struct {
	PaymentID string `json:"paymentId"`
	RoomID    string `json:"RoomID"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
}

// QuotationDetail is the payment-page view of a quotation: product fields,
// party snapshots, fee breakdown and whether a ledger record already exists.
type QuotationDetail struct {
	MessageID   string        `json:"messageId"`
	RoomID      string        `json:"RoomID"`
	RoomName    string        `json:"roomName"`
	ProductName string        `json:"productName"`
	Details     string        `json:"details"`
	Images      string        `json:"images"`
	Price       string        `json:"price"`
	Status      bool          `json:"status"`
	Timestamp   int64         `json:"timestamp"`
	Buyer       *entity.Party `json:"buyer,omitempty"`
	Seller      *entity.Party `json:"seller,omitempty"`
	Fee         float64       `json:"fee"`
	TotalDue    float64       `json:"totalDue"`
	HasPayment  bool          `json:"hasPayment"`
	PaymentID   string        `json:"paymentId,omitempty"`
	PromptPayID string        `json:"promptPayId,omitempty"`
}

// CreateFromQuotation creates the ledger record for an accepted quotation.
// The existence check runs under the room lock, so a concurrent accept-and-
// pay race cannot produce two payments for one quotation. The returned bool
// reports whether a new record was created (false = existing record reused).
func (uc *PaymentUseCase) CreateFromQuotation(ctx context.Context, userID, roomID, quotationMessageID string) (*entity.Payment, bool, error) {
	uc.roomLocks.Lock(roomID)
	defer uc.roomLocks.Unlock(roomID)

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, false, err
	}

	if !room.HasMember(userID) {
		return nil, false, errors.Forbidden("You do not have access to this room", nil)
	}

	message, ok := room.Messages[quotationMessageID]
	if !ok || message.Type != entity.MessageTypeQuotation || message.Quotation == nil {
		return nil, false, errors.NotFound("Quotation", nil)
	}

	if !message.Quotation.Status {
		return nil, false, errors.BadRequest("Quotation has not been accepted by the buyer", nil)
	}

	existing, err := uc.paymentRepo.GetByRoomAndMessage(ctx, roomID, quotationMessageID)
	if err == nil {
		log.Printf("CreateFromQuotation: Payment already exists for room %s message %s, reusing %s",
			roomID, quotationMessageID, existing.ID)
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, false, err
	}

	buyerID, buyer := room.MemberByRole(entity.RoleBuyer)
	sellerID, seller := room.MemberByRole(entity.RoleSeller)
	if buyer == nil || seller == nil {
		return nil, false, errors.InvalidRoomComposition("Room must have both a buyer and a seller before payment")
	}

	price, err := strconv.ParseFloat(message.Quotation.Price, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil, false, errors.BadRequest("Quotation price is not a valid amount", err)
	}

	now := time.Now()
	payment := &entity.Payment{
		RoomID:             roomID,
		QuotationMessageID: quotationMessageID,
		Buyer:              entity.Party{UserID: buyerID, Name: buyer.Name},
		Seller:             entity.Party{UserID: sellerID, Name: seller.Name},
		ProductInfo: entity.ProductInfo{
			ProductName: message.Quotation.ProductName,
			Details:     message.Quotation.Details,
			Images:      message.Quotation.Images,
		},
		Price:         price,
		PaymentStatus: entity.PaymentStatusPending,
		StatusHistory: []entity.StatusChange{
			{Status: entity.PaymentStatusPending, UpdatedAt: now, Note: "Payment created from quotation"},
		},
		CreatedBy: userID,
	}

	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		log.Printf("CreateFromQuotation Error: Failed to create payment for room %s: %v", roomID, err)
		return nil, false, err
	}

	uc.wsManager.PublishEvent(roomID, ws.EventPaymentStatus, PaymentStatusEvent{
		PaymentID: payment.ID,
		RoomID:    roomID,
		Status:    payment.PaymentStatus,
	})

	log.Printf("CreateFromQuotation: Payment %s created for room %s quotation %s", payment.ID, roomID, quotationMessageID)
	return payment, true, nil
}

// UpdateStatus advances the payment lifecycle. Illegal transitions (for
// example confirmed back to pending) are rejected; repeating the current
// status is a no-op. Every applied transition lands in the audit trail.
func (uc *PaymentUseCase) UpdateStatus(ctx context.Context, userID, paymentID, newStatus, note string) (*entity.Payment, error) {
	if !entity.ValidPaymentStatus(newStatus) {
		return nil, errors.BadRequest(fmt.Sprintf("Unknown payment status %q", newStatus), nil)
	}

	uc.paymentLocks.Lock(paymentID)
	defer uc.paymentLocks.Unlock(paymentID)

	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.IsParty(userID) {
		return nil, errors.Forbidden("You are not a party to this payment", nil)
	}

	if payment.PaymentStatus == newStatus {
		return payment, nil
	}

	if !entity.CanTransitionPaymentStatus(payment.PaymentStatus, newStatus) {
		return nil, errors.BadRequest(
			fmt.Sprintf("Cannot change payment status from %s to %s", payment.PaymentStatus, newStatus), nil)
	}

	if note == "" {
		note = "Status updated"
	}

	payment.PaymentStatus = newStatus
	payment.StatusHistory = append(payment.StatusHistory, entity.StatusChange{
		Status:    newStatus,
		UpdatedAt: time.Now(),
		Note:      note,
	})

	if err := uc.paymentRepo.Update(ctx, payment); err != nil {
		logger.LogPaymentError(paymentID, "update_status", err)
		return nil, err
	}

	uc.wsManager.PublishEvent(payment.RoomID, ws.EventPaymentStatus, PaymentStatusEvent{
		PaymentID: payment.ID,
		RoomID:    payment.RoomID,
		Status:    newStatus,
		Note:      note,
	})

	log.Printf("UpdateStatus: Payment %s moved to %s by %s", paymentID, newStatus, userID)
	return payment, nil
}

func (uc *PaymentUseCase) GetByID(ctx context.Context, userID, paymentID string) (*entity.Payment, error) {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.IsParty(userID) {
		return nil, errors.Forbidden("You are not a party to this payment", nil)
	}

	return payment, nil
}

func (uc *PaymentUseCase) ListByRoom(ctx context.Context, userID, roomID string) ([]*entity.Payment, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasMember(userID) {
		return nil, errors.Forbidden("You do not have access to this room", nil)
	}

	return uc.paymentRepo.ListByRoom(ctx, roomID)
}

func (uc *PaymentUseCase) ListByUser(ctx context.Context, userID string) ([]*entity.Payment, error) {
	return uc.paymentRepo.ListByUser(ctx, userID)
}

func (uc *PaymentUseCase) Delete(ctx context.Context, userID, paymentID string) error {
	uc.paymentLocks.Lock(paymentID)
	defer uc.paymentLocks.Unlock(paymentID)

	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	if payment.CreatedBy != userID {
		return errors.Forbidden("Only the original submitter can delete this payment", nil)
	}

	if err := uc.paymentRepo.Delete(ctx, paymentID); err != nil {
		logger.LogPaymentError(paymentID, "delete", err)
		return err
	}

	logger.Info("Delete: Payment %s deleted by %s", paymentID, userID)
	return nil
}

// GetQuotationDetail assembles the payment-page view for one quotation
// message, including the fee schedule breakdown.
func (uc *PaymentUseCase) GetQuotationDetail(ctx context.Context, userID, roomID, messageID string) (*QuotationDetail, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasMember(userID) {
		return nil, errors.Forbidden("You do not have access to this room", nil)
	}

	message, ok := room.Messages[messageID]
	if !ok || message.Type != entity.MessageTypeQuotation || message.Quotation == nil {
		return nil, errors.NotFound("Quotation", nil)
	}

	detail := &QuotationDetail{
		MessageID:   messageID,
		RoomID:      roomID,
		RoomName:    room.Name,
		ProductName: message.Quotation.ProductName,
		Details:     message.Quotation.Details,
		Images:      message.Quotation.Images,
		Price:       message.Quotation.Price,
		Status:      message.Quotation.Status,
		Timestamp:   message.Timestamp,
		PromptPayID: uc.promptPayID,
	}

	if buyerID, buyer := room.MemberByRole(entity.RoleBuyer); buyer != nil {
		detail.Buyer = &entity.Party{UserID: buyerID, Name: buyer.Name}
	}
	if sellerID, seller := room.MemberByRole(entity.RoleSeller); seller != nil {
		detail.Seller = &entity.Party{UserID: sellerID, Name: seller.Name}
	}

	if price, err := strconv.ParseFloat(message.Quotation.Price, 64); err == nil && price >= 0 {
		detail.Fee = service.PlatformFee(price)
		detail.TotalDue = service.TotalDue(price)
	}

	existing, err := uc.paymentRepo.GetByRoomAndMessage(ctx, roomID, messageID)
	if err == nil {
		detail.HasPayment = true
		detail.PaymentID = existing.ID
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	return detail, nil
}
