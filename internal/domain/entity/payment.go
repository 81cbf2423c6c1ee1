package entity

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// Party is a denormalized buyer/seller snapshot taken from room membership
// at payment creation time.
type Party struct {
	UserID string `json:"userId" firestore:"userId"`
	Name   string `json:"name" firestore:"name"`
}

// ProductInfo is a snapshot of the quotation's product fields.
type ProductInfo struct {
	ProductName string `json:"productName" firestore:"productName"`
	Details     string `json:"details" firestore:"details"`
	Images      string `json:"images" firestore:"images"`
}

// StatusChange is one entry in a payment's append-only audit trail.
type StatusChange struct {
	Status    string    `json:"status" firestore:"status"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
	Note      string    `json:"note,omitempty" firestore:"note,omitempty"`
}

// Payment is the settlement record for one accepted quotation. At most one
// exists per (RoomID, QuotationMessageID) pair.
type Payment struct {
	ID                 string         `json:"id" firestore:"id"`
	RoomID             string         `json:"RoomID" firestore:"roomId"`
	QuotationMessageID string         `json:"quotationMessageId" firestore:"quotationMessageId"`
	Buyer              Party          `json:"buyer" firestore:"buyer"`
	Seller             Party          `json:"seller" firestore:"seller"`
	ProductInfo        ProductInfo    `json:"productInfo" firestore:"productInfo"`
	Price              float64        `json:"price" firestore:"price"`
	PaymentStatus      string         `json:"paymentStatus" firestore:"paymentStatus"`
	StatusHistory      []StatusChange `json:"statusHistory" firestore:"statusHistory"`
	CreatedBy          string         `json:"createdBy" firestore:"createdBy"`
	CreatedAt          time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt          time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// IsParty reports whether the user is the payment's buyer or seller.
func (p *Payment) IsParty(userID string) bool {
	return p.Buyer.UserID == userID || p.Seller.UserID == userID
}

func IsTerminalPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusConfirmed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusConfirmed,
		PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionPaymentStatus encodes the payment lifecycle:
// pending -> paid -> confirmed, pending -> cancelled, and refunded reachable
// from any non-terminal state. Confirming straight from pending is allowed
// for off-platform settlement where no "paid" step is reported. Terminal
// states accept no further transitions.
func CanTransitionPaymentStatus(from, to string) bool {
	if IsTerminalPaymentStatus(from) {
		return false
	}
	switch to {
	case PaymentStatusPaid:
		return from == PaymentStatusPending
	case PaymentStatusConfirmed:
		return from == PaymentStatusPending || from == PaymentStatusPaid
	case PaymentStatusCancelled:
		return from == PaymentStatusPending
	case PaymentStatusRefunded:
		return true
	}
	return false
}
